// Package blob implements a growable binary buffer with a read/write offset,
// substring search and directive driven packing.
package blob

import (
	"bytes"
	"dnet/lib/codec"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

var (
	ErrClosed   = errors.New("blob is closed")
	ErrFormat   = errors.New("invalid pack format")
	ErrNotFound = errors.New("not found")
)

const initialSize = 128

// Blob is a byte buffer with an offset. Writes overwrite from the offset and
// extend the end of the data as needed. 0 <= offset <= end always holds.
// A Blob is not safe for concurrent use.
type Blob struct {
	data    []byte // data[:cap(data)] is the allocation, data[:end] the content.
	off     int
	maxSize int
	closed  bool
}

type Option func(*Blob)

// WithMaxSize bounds the size the blob may grow to.
func WithMaxSize(n int) Option {
	return func(b *Blob) { b.maxSize = n }
}

func New(opts ...Option) *Blob {
	b := &Blob{data: make([]byte, 0, initialSize)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromBytes returns a blob holding a copy of p, with the offset at 0.
func FromBytes(p []byte, opts ...Option) *Blob {
	b := New(opts...)
	b.data = append(b.data, p...)
	return b
}

func (b *Blob) check() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Len returns the number of bytes between the offset and the end.
func (b *Blob) Len() int    { return len(b.data) - b.off }
func (b *Blob) Size() int   { return len(b.data) }
func (b *Blob) Offset() int { return b.off }
func (b *Blob) Cap() int    { return cap(b.data) }

// Bytes returns a copy of the whole content.
func (b *Blob) Bytes() []byte { return bytes.Clone(b.data) }

func (b *Blob) reserve(n int) error {
	need := b.off + n
	if b.maxSize > 0 && need > b.maxSize {
		return errors.Wrapf(codec.ErrCapacity, "blob would grow to %d bytes, limit is %d", need, b.maxSize)
	}
	if need <= cap(b.data) {
		return nil
	}
	size := cap(b.data) * 2
	if size < need {
		size = need
	}
	if b.maxSize > 0 && size > b.maxSize {
		size = b.maxSize
	}
	grown := make([]byte, len(b.data), size)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Write copies p at the offset and advances it.
func (b *Blob) Write(p []byte) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if err := b.reserve(len(p)); err != nil {
		return 0, err
	}
	if end := b.off + len(p); end > len(b.data) {
		b.data = b.data[:end]
	}
	n := copy(b.data[b.off:], p)
	b.off += n
	return n, nil
}

// Read reads up to len(p) bytes from the offset. It returns io.EOF at the end.
func (b *Blob) Read(p []byte) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if b.off >= len(b.data) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += n
	return n, nil
}

// Next returns a copy of the next n bytes, or fewer at the end, and advances
// the offset past them.
func (b *Blob) Next(n int) ([]byte, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Errorf("invalid length %d", n)
	}
	if n > b.Len() {
		n = b.Len()
	}
	p := bytes.Clone(b.data[b.off : b.off+n])
	b.off += n
	return p, nil
}

// Rest returns a copy of everything from the offset on and moves the offset
// to the end.
func (b *Blob) Rest() ([]byte, error) {
	return b.Next(b.Len())
}

// Seek moves the offset. It fails if the result is before the start or
// past the end.
func (b *Blob) Seek(offset int64, whence int) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += int64(b.off)
	case io.SeekEnd:
		offset += int64(len(b.data))
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}
	if offset < 0 || offset > int64(len(b.data)) {
		return 0, errors.Errorf("offset %d out of range [0, %d]", offset, len(b.data))
	}
	b.off = int(offset)
	return offset, nil
}

func (b *Blob) Rewind() error {
	_, err := b.Seek(0, io.SeekStart)
	return err
}

// Index returns the position of the first occurrence of needle at or after
// the offset, rewinding the offset to the start first when rewind is set.
// The offset is not moved to the match.
func (b *Blob) Index(needle []byte, rewind bool) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if rewind {
		b.off = 0
	}
	i := bytes.Index(b.data[b.off:], needle)
	if i < 0 {
		return 0, errors.Wrapf(ErrNotFound, "% x", needle)
	}
	return b.off + i, nil
}

// Rindex returns the position of the last occurrence of needle at or after
// the offset, or after the start when rewind is set.
func (b *Blob) Rindex(needle []byte, rewind bool) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if rewind {
		b.off = 0
	}
	i := bytes.LastIndex(b.data[b.off:], needle)
	if i < 0 {
		return 0, errors.Wrapf(ErrNotFound, "% x", needle)
	}
	return b.off + i, nil
}

// Dump writes a hex dump of the bytes from the offset to the end.
func (b *Blob) Dump(w io.Writer) error {
	if err := b.check(); err != nil {
		return err
	}
	d := hex.Dumper(w)
	if _, err := d.Write(b.data[b.off:]); err != nil {
		return err
	}
	return d.Close()
}

// Reset empties the blob and keeps its allocation.
func (b *Blob) Reset() error {
	if err := b.check(); err != nil {
		return err
	}
	b.data, b.off = b.data[:0], 0
	return nil
}

// Close releases the buffer. Every later call fails with ErrClosed.
func (b *Blob) Close() error {
	if b.closed {
		return ErrClosed
	}
	b.closed, b.data, b.off = true, nil, 0
	return nil
}
