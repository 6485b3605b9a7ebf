// Package kernel holds what the kernel table mirrors have in common: their
// error classes, their lifecycle, and the shape of their operations.
//
// A table handle is opened, used by one owner at a time, and closed. Every
// entry a handle hands out is a copy; changing it never changes the kernel.
package kernel

import (
	"iter"

	"github.com/pkg/errors"
)

var (
	ErrNotOpen      = errors.New("table is not open")
	ErrNotFound     = errors.New("no such entry")
	ErrExist        = errors.New("entry already exists")
	ErrPermission   = errors.New("permission denied")
	ErrNotSupported = errors.New("not supported on this platform")
)

// Walker enumerates a table, calling fn once per entry. A non-nil error from
// fn stops the walk and is returned as is, so a caller can stop early with a
// sentinel of its own.
type Walker[E any] interface {
	Loop(fn func(E) error) error
}

type Getter[K, E any] interface {
	Get(key K) (E, error)
}

type Mutator[E any] interface {
	Add(e E) error
	Delete(e E) error
}

type Table[K, E any] interface {
	Walker[E]
	Getter[K, E]
	Mutator[E]
	Close() error
}

// Entries collects every entry of w.
func Entries[E any](w Walker[E]) ([]E, error) {
	var out []E
	err := w.Loop(func(e E) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var errStop = errors.New("stop")

// All adapts w to a range-over-func sequence. A walk error is yielded once,
// with the zero entry, as the last element.
func All[E any](w Walker[E]) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		err := w.Loop(func(e E) error {
			if !yield(e, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			var zero E
			yield(zero, err)
		}
	}
}
