package kernel

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// OSError is a failure reported by the kernel or a system tool. Err keeps
// the original cause. errors.Is classifies it as ErrPermission, ErrExist or
// ErrNotFound by the errno it carries.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *OSError) Unwrap() error { return e.Err }

func (e *OSError) Is(target error) bool {
	var errno unix.Errno
	if !errors.As(e.Err, &errno) {
		return false
	}
	switch target {
	case ErrPermission:
		return errno == unix.EPERM || errno == unix.EACCES
	case ErrExist:
		return errno == unix.EEXIST
	case ErrNotFound:
		switch errno {
		case unix.ENOENT, unix.ESRCH, unix.ENXIO, unix.ENODEV, unix.ENETUNREACH:
			return true
		}
	}
	return false
}

// Wrap returns nil for a nil err and an *OSError otherwise.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OSError{Op: op, Err: err}
}
