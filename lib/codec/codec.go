// Package codec holds the error classes shared by the header codecs.
package codec

import "github.com/pkg/errors"

var (
	ErrTruncated = errors.New("truncated")
	ErrCapacity  = errors.New("capacity exceeded")
)

// Truncated reports that decoding what needed at least need bytes but got had.
func Truncated(what string, need, had int) error {
	return errors.Wrapf(ErrTruncated, "%s: need %d bytes, got %d", what, need, had)
}

// Need returns a Truncated error if b is shorter than n.
func Need(what string, b []byte, n int) error {
	if len(b) < n {
		return Truncated(what, n, len(b))
	}
	return nil
}
