package sdes

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// KeyBits is the width of a master key.
	KeyBits = 9
	// MaxKey is the largest valid master key.
	MaxKey = 1<<KeyBits - 1
	// MaxRounds is the largest round count a master key can be scheduled for.
	MaxRounds = KeyBits
	// DefaultRounds is the round count used when none is given.
	DefaultRounds = 2
)

// MasterKey is a 9-bit key from which all round keys are derived.
type MasterKey uint16

// NewMasterKey masks v down to the nine significant key bits.
func NewMasterKey(v uint16) MasterKey {
	return MasterKey(v & MaxKey)
}

func (k MasterKey) String() string {
	return fmt.Sprintf("0x%X", uint16(k))
}

// ParseMasterKey parses a key written as 0x followed by one to three hex
// digits, e.g. "0x1C7". The value must not exceed MaxKey.
func ParseMasterKey(s string) (MasterKey, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok || digits == "" {
		return 0, fmt.Errorf("%w: invalid value for -k option %q", ErrInvalidArgument, s)
	}
	if len(s) > 5 {
		return 0, fmt.Errorf("%w: invalid key value %q (must be 0x0 - 0x1FF)", ErrInvalidArgument, s)
	}
	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid value for -k option %q", ErrInvalidArgument, s)
	}
	if v > MaxKey {
		return 0, fmt.Errorf("%w: invalid key value %q (must be 0x0 - 0x1FF)", ErrInvalidArgument, s)
	}
	return MasterKey(v), nil
}

// ParseRounds parses a decimal round count between 1 and MaxRounds.
func ParseRounds(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid value for -n option %q", ErrInvalidArgument, s)
	}
	if n < 1 || n > MaxRounds {
		return 0, fmt.Errorf("%w: invalid number of rounds %d (must be 1 - %d)", ErrInvalidArgument, n, MaxRounds)
	}
	return n, nil
}

// RoundKeys holds one 8-bit key per Feistel round, in encryption order.
type RoundKeys []uint8

// GenerateRoundKeys derives rounds 8-bit keys from key. Each round key is an
// 8-bit window of the master key, rotated one bit further left than the
// previous one.
func GenerateRoundKeys(key MasterKey, rounds int) (RoundKeys, error) {
	if rounds < 0 || rounds > MaxRounds {
		return nil, fmt.Errorf("%w: %d rounds requested, at most %d supported", ErrInvalidRoundCount, rounds, MaxRounds)
	}

	k := uint32(key) & MaxKey
	leftMask := uint32(1<<(KeyBits-1)-1) << 1 // 0 0000 0001 1111 1110
	rightMask := leftMask << KeyBits          // 1 1111 1110 0000 0000

	keys := make(RoundKeys, rounds)
	for i := range keys {
		left := (k & leftMask) << (KeyBits + i)
		right := (k & rightMask) << i
		keys[i] = uint8((left | right) >> (KeyBits + 1))

		leftMask >>= 1
		rightMask >>= 1
	}
	return keys, nil
}
