// Package sdes implements the Simplified DES block cipher: a Feistel network
// over 12-bit blocks with 6-bit halves, keyed by a 9-bit master key.
//
// The cipher is a teaching tool. Its key space is 512 values and it offers
// no real confidentiality.
package sdes

const (
	halfMask  = 0x3F  // 6-bit half block
	blockMask = 0xFFF // 12-bit block
)

// sBox1 substitutes the high nibble of the expanded half, sBox2 the low one.
// Both map 4 bits to 3 bits.
var (
	sBox1 = [16]uint8{5, 2, 1, 6, 3, 4, 7, 0, 1, 4, 6, 2, 0, 7, 5, 3}
	sBox2 = [16]uint8{4, 0, 6, 5, 7, 1, 3, 2, 5, 3, 0, 7, 6, 2, 1, 4}
)

// Expand widens a 6-bit half into 8 bits. Labelling the input bits p1..p6
// from the most significant end, the output is p1 p2 p4 p3 p4 p3 p5 p6.
// The two high bits of half are ignored.
func Expand(half uint8) uint8 {
	half &= halfMask
	p12 := half & 0x30
	p3 := half & 0x08
	p4 := half & 0x04
	p56 := half & 0x03

	left := p12<<2 | p4<<3 | p3<<1
	right := p4<<1 | p3>>1 | p56
	return left | right
}

// Confuse runs each nibble of b through its S-box and joins the two 3-bit
// results into a 6-bit half.
func Confuse(b uint8) uint8 {
	return sBox1[b>>4]<<3 | sBox2[b&0x0F]
}

// Feistel is the round function: expansion, key mixing, then substitution.
func Feistel(half, key uint8) uint8 {
	return Confuse(Expand(half) ^ key)
}
