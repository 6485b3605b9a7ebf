// Package iolib holds small io helpers for moving whole packets through
// streams.
package iolib

import (
	"io"

	"github.com/pkg/errors"
)

var ErrTooLong = errors.New("input too long")

// WriteFull writes all of buf to w, retrying short writes. A writer that
// makes no progress without an error fails with io.ErrShortWrite.
func WriteFull(w io.Writer, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// ReadAtMost reads r to EOF. Input longer than n bytes is an ErrTooLong
// error, so nothing is silently cut off.
func ReadAtMost(r io.Reader, n int) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(n)+1))
	if err != nil {
		return nil, err
	}
	if len(b) > n {
		return nil, errors.Wrapf(ErrTooLong, "more than %d bytes", n)
	}
	return b, nil
}
