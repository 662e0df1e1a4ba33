package sdes

import "fmt"

// FeistelRound runs one round over a 12-bit block: the right half moves to
// the left, and the new right half is the old left XOR Feistel(right, key).
// The four high bits of block are ignored.
func FeistelRound(block uint16, key uint8) uint16 {
	right := uint8(block & halfMask)
	left := uint8(block>>6) & halfMask
	return uint16(right)<<6 | uint16(Feistel(right, key)^left)
}

// swapHalves exchanges the two 6-bit halves of a 12-bit block.
func swapHalves(block uint16) uint16 {
	return (block&halfMask)<<6 | (block>>6)&halfMask
}

// Encrypt runs len(keys) rounds over block, consuming keys in order, and
// swaps the halves once more at the end. With no keys the block is
// returned unchanged.
func Encrypt(block uint16, keys RoundKeys) uint16 {
	block &= blockMask
	if len(keys) == 0 {
		return block
	}
	for _, k := range keys {
		block = FeistelRound(block, k)
	}
	return swapHalves(block)
}

// Decrypt inverts Encrypt by running the same rounds with keys in reverse.
func Decrypt(block uint16, keys RoundKeys) uint16 {
	block &= blockMask
	if len(keys) == 0 {
		return block
	}
	for round := len(keys) - 1; round >= 0; round-- {
		block = FeistelRound(block, keys[round])
	}
	return swapHalves(block)
}

// Cipher is an S-DES instance with a fixed key schedule. It is safe for
// concurrent use; the schedule is never modified after construction.
type Cipher struct {
	keys RoundKeys
}

// NewCipher schedules key for the given number of rounds.
func NewCipher(key MasterKey, rounds int) (*Cipher, error) {
	keys, err := GenerateRoundKeys(key, rounds)
	if err != nil {
		return nil, err
	}
	return &Cipher{keys: keys}, nil
}

// NewCipherFromKeys builds a Cipher around an explicit key schedule.
func NewCipherFromKeys(keys RoundKeys) (*Cipher, error) {
	if len(keys) > MaxRounds {
		return nil, fmt.Errorf("%w: %d round keys given, at most %d supported", ErrInvalidRoundCount, len(keys), MaxRounds)
	}
	return &Cipher{keys: append(RoundKeys(nil), keys...)}, nil
}

// Rounds reports the number of Feistel rounds.
func (c *Cipher) Rounds() int { return len(c.keys) }

// Keys returns a copy of the key schedule.
func (c *Cipher) Keys() RoundKeys { return append(RoundKeys(nil), c.keys...) }

// EncryptBlock encrypts a 12-bit block.
func (c *Cipher) EncryptBlock(block uint16) uint16 { return Encrypt(block, c.keys) }

// DecryptBlock decrypts a 12-bit block.
func (c *Cipher) DecryptBlock(block uint16) uint16 { return Decrypt(block, c.keys) }
