package sdes

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestExpand(t *testing.T) {
	qt.Assert(t, qt.Equals(Expand(0x35), uint8(0xE9)))
	// High bits beyond the half are ignored.
	qt.Assert(t, qt.Equals(Expand(0xF5), uint8(0xE9)))
	qt.Assert(t, qt.Equals(Expand(0x00), uint8(0x00)))
	qt.Assert(t, qt.Equals(Expand(0x3F), uint8(0xFF)))
}

func TestConfuse(t *testing.T) {
	qt.Assert(t, qt.Equals(Confuse(0x74), uint8(0x07)))
	qt.Assert(t, qt.Equals(Confuse(0x0A), uint8(0x28)))

	for b := 0; b < 256; b++ {
		if got := Confuse(uint8(b)); got > halfMask {
			t.Fatalf("Confuse(%#x) = %#x, wider than six bits", b, got)
		}
	}
}

func TestFeistel(t *testing.T) {
	qt.Assert(t, qt.Equals(Feistel(0x25, 0x3B), uint8(0x26)))
	qt.Assert(t, qt.Equals(Feistel(0x35, 0xE3), uint8(0x28)))
}

func TestFeistelRound(t *testing.T) {
	tests := []struct {
		block uint16
		key   uint8
		want  uint16
	}{
		{0xD65, 0x3B, 0x953},
		{0x8B5, 0xE3, 0xD4A},
		{0xF8B5, 0xE3, 0xD4A},
	}
	for _, tt := range tests {
		got := FeistelRound(tt.block, tt.key)
		if got != tt.want {
			t.Errorf("FeistelRound(%#x, %#x) = %#x, want %#x", tt.block, tt.key, got, tt.want)
		}
	}
}

func TestEncryptDecryptVectors(t *testing.T) {
	keys := RoundKeys{0x9D, 0x3B}
	qt.Assert(t, qt.Equals(Encrypt(0x8B5, keys), uint16(0x4E5)))
	qt.Assert(t, qt.Equals(Decrypt(0x4E5, keys), uint16(0x8B5)))
}

func TestZeroRoundsIsIdentity(t *testing.T) {
	for _, block := range []uint16{0x000, 0x8B5, 0xFFF} {
		qt.Assert(t, qt.Equals(Encrypt(block, nil), block))
		qt.Assert(t, qt.Equals(Decrypt(block, nil), block))
	}
	qt.Assert(t, qt.Equals(Encrypt(0xA8B5, nil), uint16(0x8B5)))
}

func TestOutputIsTwelveBits(t *testing.T) {
	keys, err := GenerateRoundKeys(0x1FF, MaxRounds)
	qt.Assert(t, qt.IsNil(err))
	for _, block := range []uint16{0xFFFF, 0xF000, 0x1234} {
		qt.Assert(t, qt.IsTrue(Encrypt(block, keys) <= blockMask))
		qt.Assert(t, qt.IsTrue(Decrypt(block, keys) <= blockMask))
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	keyStep := 1
	if testing.Short() {
		keyStep = 37
	}
	for key := 0; key <= MaxKey; key += keyStep {
		for rounds := 1; rounds <= MaxRounds; rounds++ {
			keys, err := GenerateRoundKeys(MasterKey(key), rounds)
			if err != nil {
				t.Fatalf("GenerateRoundKeys(%#x, %d): %v", key, rounds, err)
			}
			for block := uint16(0); block <= blockMask; block++ {
				enc := Encrypt(block, keys)
				if dec := Decrypt(enc, keys); dec != block {
					t.Fatalf("round trip key=%#x rounds=%d: got %#x want %#x (encrypted %#x)",
						key, rounds, dec, block, enc)
				}
			}
		}
	}
}

func TestCipherMatchesFunctions(t *testing.T) {
	c, err := NewCipher(0x13B, 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(c.Rounds(), 4))

	keys := c.Keys()
	keys[0] ^= 0xFF // must not leak into c
	qt.Assert(t, qt.Equals(c.Keys()[0], uint8(0x9D)))

	for _, block := range []uint16{0x000, 0x8B5, 0xABC, 0xFFF} {
		enc := c.EncryptBlock(block)
		qt.Assert(t, qt.Equals(enc, Encrypt(block, c.Keys())))
		qt.Assert(t, qt.Equals(c.DecryptBlock(enc), block))
	}
}

func TestNewCipherErrors(t *testing.T) {
	_, err := NewCipher(0x1C7, 10)
	qt.Assert(t, qt.ErrorIs(err, ErrInvalidRoundCount))

	_, err = NewCipherFromKeys(make(RoundKeys, MaxRounds+1))
	qt.Assert(t, qt.ErrorIs(err, ErrInvalidRoundCount))

	c, err := NewCipherFromKeys(RoundKeys{0x9D, 0x3B})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(c.EncryptBlock(0x8B5), uint16(0x4E5)))
}

func TestEncryptChangesBlocks(t *testing.T) {
	keys, err := GenerateRoundKeys(0x1C7, DefaultRounds)
	qt.Assert(t, qt.IsNil(err))

	seen := make(map[uint16]bool, blockMask+1)
	for block := uint16(0); block <= blockMask; block++ {
		enc := Encrypt(block, keys)
		if seen[enc] {
			t.Fatalf("Encrypt is not a permutation: %#x produced twice", enc)
		}
		seen[enc] = true
	}
}
