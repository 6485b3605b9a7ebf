// Package rand is a fast keyed pseudo-random byte stream. It is seeded from
// the operating system and can be reseeded or stirred with extra entropy.
// A Rand is not safe for concurrent use.
package rand

import (
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20"
)

var ErrClosed = errors.New("rand handle is closed")

type Rand struct {
	key    [chacha20.KeySize]byte
	stream *chacha20.Cipher
	closed bool
}

// Open returns a Rand keyed from the system entropy source.
func Open() (*Rand, error) {
	r := &Rand{}
	if _, err := crand.Read(r.key[:]); err != nil {
		return nil, errors.Wrap(err, "reading system entropy")
	}
	if err := r.rekey(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rand) rekey() error {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(r.key[:], nonce[:])
	if err != nil {
		return errors.Wrap(err, "keying stream")
	}
	r.stream = c
	return nil
}

// Get fills buf with random bytes.
func (r *Rand) Get(buf []byte) error {
	if r.closed {
		return ErrClosed
	}
	clear(buf)
	r.stream.XORKeyStream(buf, buf)
	return nil
}

// Set replaces the key with one derived from seed. Two handles set with the
// same seed produce the same stream.
func (r *Rand) Set(seed []byte) error {
	if r.closed {
		return ErrClosed
	}
	r.key = sha256.Sum256(seed)
	return r.rekey()
}

// Add stirs buf into the current key.
func (r *Rand) Add(buf []byte) error {
	if r.closed {
		return ErrClosed
	}
	h := sha256.New()
	h.Write(r.key[:])
	h.Write(buf)
	copy(r.key[:], h.Sum(nil))
	return r.rekey()
}

func (r *Rand) Uint8() (uint8, error) {
	var b [1]byte
	if err := r.Get(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Rand) Uint16() (uint16, error) {
	var b [2]byte
	if err := r.Get(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (r *Rand) Uint32() (uint32, error) {
	var b [4]byte
	if err := r.Get(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// below returns a uniform value in [0, n).
func (r *Rand) below(n uint32) (uint32, error) {
	limit := -n % n // 2^32 mod n
	for {
		v, err := r.Uint32()
		if err != nil {
			return 0, err
		}
		if v >= limit {
			return v % n, nil
		}
	}
}

// Shuffle permutes n elements with a Fisher-Yates shuffle, calling swap to
// exchange elements i and j.
func (r *Rand) Shuffle(n int, swap func(i, j int)) error {
	if r.closed {
		return ErrClosed
	}
	if n < 0 || uint64(n) > 1<<32 {
		return errors.Errorf("invalid shuffle length %d", n)
	}
	for i := n - 1; i > 0; i-- {
		j, err := r.below(uint32(i + 1))
		if err != nil {
			return err
		}
		swap(i, int(j))
	}
	return nil
}

// Close wipes the key. Every later call returns ErrClosed.
func (r *Rand) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	clear(r.key[:])
	r.stream = nil
	return nil
}
