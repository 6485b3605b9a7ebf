//go:build !linux

package eth

import (
	"dnet/link"
	"time"
)

type Handle struct{}

var _ link.Device = (*Handle)(nil)

func Open(name string, opts ...HandleOption) (*Handle, error) {
	return nil, ErrNotSupported
}

func (h *Handle) Name() string                   { return "" }
func (h *Handle) Send(frame []byte) (int, error) { return 0, ErrNotSupported }
func (h *Handle) Recv(b []byte) (int, error)     { return 0, ErrNotSupported }
func (h *Handle) SetReadDeadLine(t time.Time)    {}
func (h *Handle) SetWriteDeadLine(t time.Time)   {}
func (h *Handle) Addr() (Addr, error)            { return Addr{}, ErrNotSupported }
func (h *Handle) SetAddr(a Addr) error           { return ErrNotSupported }
func (h *Handle) Close() error                   { return nil }
