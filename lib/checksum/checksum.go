// Package checksum implements the internet checksum (RFC 1071).
package checksum

import "encoding/binary"

// Sum adds b to the running 32-bit ones'-complement accumulator.
// An odd trailing byte is padded with a zero byte.
func Sum(b []byte, acc uint32) uint32 {
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		acc += uint32(binary.BigEndian.Uint16(b[i:]))
	}
	if len(b)&1 == 1 {
		acc += uint32(b[len(b)-1]) << 8
	}
	return acc
}

// Fold folds carries back into the low 16 bits and complements.
func Fold(acc uint32) uint16 {
	for acc>>16 != 0 {
		acc = (acc & 0xffff) + (acc >> 16)
	}
	return ^uint16(acc)
}

// Checksum returns the internet checksum over b.
func Checksum(b []byte) uint16 {
	return Fold(Sum(b, 0))
}

// Verify reports whether b, checksum field included, sums to zero.
func Verify(b []byte) bool {
	return Checksum(b) == 0
}

// Update recomputes sum after a 16-bit field changed from old to new (RFC 1624).
func Update(sum, old, new uint16) uint16 {
	acc := uint32(^sum) + uint32(^old) + uint32(new)
	return Fold(acc)
}
