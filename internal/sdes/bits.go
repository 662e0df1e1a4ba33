package sdes

import "strings"

// Bits renders the low width bits of n in binary, most significant first,
// with a space after every fourth digit: Bits(0x13B, 9) == "1001 1101 1".
func Bits(n uint32, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(width + width/4)
	for i := 0; i < width; i++ {
		if i > 0 && i%4 == 0 {
			sb.WriteByte(' ')
		}
		if n&(1<<(width-1-i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
