//go:build linux

package eth

import (
	"dnet/link"
	"net"
	"os"
	"sync"
	"time"

	"github.com/mdlayher/packet"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Handle is a raw AF_PACKET socket bound to one interface. Frames are sent
// and received with their Ethernet header. Opening one requires
// CAP_NET_RAW.
type Handle struct {
	ifi  *net.Interface
	conn *packet.Conn
	log  logrus.FieldLogger

	closeOnce sync.Once
	closed    chan struct{}
}

var _ link.Device = (*Handle)(nil)

func Open(name string, opts ...HandleOption) (*Handle, error) {
	cfg := newHandleConfig(opts)

	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up interface %s", name)
	}
	conn, err := packet.Listen(ifi, packet.Raw, unix.ETH_P_ALL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening packet socket on %s", name)
	}

	h := &Handle{
		ifi:    ifi,
		conn:   conn,
		log:    cfg.log.WithField("device", name),
		closed: make(chan struct{}),
	}
	h.log.Debug("opened")
	return h, nil
}

func (h *Handle) Name() string { return h.ifi.Name }

func (h *Handle) isClosed() bool {
	select {
	case <-h.closed:
		return true
	default:
		return false
	}
}

func (h *Handle) wrap(err error, op string) error {
	switch {
	case h.isClosed():
		return link.ErrDeviceClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return link.ErrDeadLineExceeded
	}
	return errors.Wrapf(err, "%s on %s", op, h.ifi.Name)
}

// Send transmits frame, which must start with an Ethernet header.
func (h *Handle) Send(frame []byte) (int, error) {
	if h.isClosed() {
		return 0, link.ErrDeviceClosed
	}
	hdr, err := Decode(frame)
	if err != nil {
		return 0, err
	}

	n, err := h.conn.WriteTo(frame, &packet.Addr{HardwareAddr: net.HardwareAddr(hdr.Dst[:])})
	if err != nil {
		return n, h.wrap(err, "sending frame")
	}
	return n, nil
}

func (h *Handle) Recv(b []byte) (int, error) {
	if h.isClosed() {
		return 0, link.ErrDeviceClosed
	}
	n, _, err := h.conn.ReadFrom(b)
	if err != nil {
		return n, h.wrap(err, "receiving frame")
	}
	return n, nil
}

func (h *Handle) SetReadDeadLine(t time.Time) {
	if err := h.conn.SetReadDeadline(t); err != nil {
		h.log.WithError(err).Warn("setting read deadline")
	}
}

func (h *Handle) SetWriteDeadLine(t time.Time) {
	if err := h.conn.SetWriteDeadline(t); err != nil {
		h.log.WithError(err).Warn("setting write deadline")
	}
}

// Addr returns the current hardware address of the interface.
func (h *Handle) Addr() (Addr, error) {
	ifi, err := net.InterfaceByIndex(h.ifi.Index)
	if err != nil {
		return Addr{}, errors.Wrapf(err, "looking up interface %s", h.ifi.Name)
	}
	if len(ifi.HardwareAddr) != AddrLen {
		return Addr{}, errors.Errorf("interface %s has no ethernet address", h.ifi.Name)
	}
	return Addr(ifi.HardwareAddr), nil
}

// SetAddr changes the hardware address of the interface.
func (h *Handle) SetAddr(a Addr) error {
	l, err := netlink.LinkByIndex(h.ifi.Index)
	if err != nil {
		return errors.Wrapf(err, "looking up link %s", h.ifi.Name)
	}
	if err := netlink.LinkSetHardwareAddr(l, net.HardwareAddr(a[:])); err != nil {
		return errors.Wrapf(err, "setting address of %s", h.ifi.Name)
	}
	h.log.WithField("addr", a).Debug("address changed")
	return nil
}

func (h *Handle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.closed)
		err = h.conn.Close()
		h.log.Debug("closed")
	})
	return err
}
