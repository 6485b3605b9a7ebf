package addr

import (
	"math/bits"

	"github.com/pkg/errors"
)

func fillMask(b []byte, n int) {
	for i := range b {
		switch {
		case n >= 8:
			b[i] = 0xff
			n -= 8
		case n > 0:
			b[i] = byte(0xff << (8 - n))
			n = 0
		default:
			b[i] = 0
		}
	}
}

// BitsToMask returns a netmask of size bytes with its first n bits set.
func BitsToMask(n, size int) ([]byte, error) {
	if size <= 0 || n < 0 || n > size*8 {
		return nil, errors.Wrapf(ErrParse, "prefix length %d out of range for %d bytes", n, size)
	}
	b := make([]byte, size)
	fillMask(b, n)
	return b, nil
}

// MaskToBits returns the prefix length of mask. The set bits of mask must
// be contiguous from the most significant end.
func MaskToBits(mask []byte) (int, error) {
	n := 0
	for i, b := range mask {
		if b == 0xff {
			n += 8
			continue
		}
		ones := bits.LeadingZeros8(^b)
		if b<<ones != 0 {
			return 0, errors.Wrapf(ErrParse, "non-contiguous mask % x", mask)
		}
		for _, rest := range mask[i+1:] {
			if rest != 0 {
				return 0, errors.Wrapf(ErrParse, "non-contiguous mask % x", mask)
			}
		}
		return n + ones, nil
	}
	return n, nil
}
