// Package link defines link-layer devices: handles that send and receive
// whole frames.
package link

import (
	"errors"
	"time"
)

var (
	ErrDeviceClosed     = errors.New("device is closed")
	ErrDeadLineExceeded = errors.New("deadline exceeded")
)

// Device sends and receives frames. Each Send transmits exactly one frame
// and each Recv returns at most one, truncated to len(b).
type Device interface {
	Name() string

	Send(frame []byte) (n int, err error)
	Recv(b []byte) (n int, err error)
	Close() error

	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}
