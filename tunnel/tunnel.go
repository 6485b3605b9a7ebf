// Package tunnel opens point-to-point TUN devices. Packets written to a
// tunnel are delivered to the kernel as if they arrived on the interface,
// and packets the kernel routes to the interface are read back.
package tunnel

import (
	"dnet/addr"
	"dnet/kernel/nl"
	"dnet/link"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

var ErrClosed = link.ErrDeviceClosed

type Option func(*config)

type config struct {
	name string
	log  logrus.FieldLogger
}

// WithName requests a device name. The kernel picks tunN when none is set.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.log = l }
}

func newConfig(opts []Option) config {
	c := config{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// configure gives the device named name the local address src, the peer
// dst and the mtu, and brings it up. A zero dst or mtu is skipped.
func configure(c nl.Client, name string, src, dst addr.Addr, mtu int) error {
	l, err := c.LinkByName(name)
	if err != nil {
		return errors.Wrapf(err, "finding %s", name)
	}

	local, err := src.IPNet()
	if err != nil {
		return errors.Wrap(err, "tunnel source")
	}
	a := &netlink.Addr{IPNet: local}
	if !dst.IsZero() {
		if dst.Type() != src.Type() {
			return errors.Wrapf(addr.ErrTypeMismatch, "tunnel %s to %s", src, dst)
		}
		if a.Peer, err = dst.IPNet(); err != nil {
			return errors.Wrap(err, "tunnel destination")
		}
	}
	if err := c.AddrAdd(l, a); err != nil {
		return errors.Wrapf(err, "adding %s to %s", src, name)
	}

	if mtu > 0 {
		if err := c.LinkSetMTU(l, mtu); err != nil {
			return errors.Wrapf(err, "setting mtu of %s", name)
		}
	}
	if err := c.LinkSetUp(l); err != nil {
		return errors.Wrapf(err, "bringing %s up", name)
	}
	return nil
}
