//go:build linux

package nl

import (
	"dnet/kernel"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// System talks to the running kernel over a netlink socket.
type System struct {
	*netlink.Handle
}

var _ Client = (*System)(nil)

func Open() (Client, error) {
	h, err := netlink.NewHandle(unix.NETLINK_ROUTE)
	if err != nil {
		return nil, kernel.Wrap("open netlink socket", err)
	}
	return &System{Handle: h}, nil
}

// LinkByName maps the library's not-found error to ENODEV so that callers
// can classify it like any other kernel error.
func (s *System) LinkByName(name string) (netlink.Link, error) {
	l, err := s.Handle.LinkByName(name)
	return l, linkErr(err)
}

func (s *System) LinkByIndex(index int) (netlink.Link, error) {
	l, err := s.Handle.LinkByIndex(index)
	return l, linkErr(err)
}

func linkErr(err error) error {
	var nf netlink.LinkNotFoundError
	if errors.As(err, &nf) {
		return errors.Wrap(unix.ENODEV, nf.Error())
	}
	return err
}

func (s *System) Close() error {
	s.Handle.Close()
	return nil
}
