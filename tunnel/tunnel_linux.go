//go:build linux

package tunnel

import (
	"dnet/addr"
	"dnet/kernel"
	"dnet/kernel/nl"
	"dnet/link"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const cloneDevice = "/dev/net/tun"

type Tun struct {
	name string
	fd   int
	file *os.File
	log  logrus.FieldLogger

	closeOnce sync.Once
	closed    chan struct{}
}

var _ link.Device = (*Tun)(nil)

// Open creates a TUN device carrying bare IP packets between src and dst
// and configures it with mtu. The device goes away on Close. Opening one
// needs CAP_NET_ADMIN.
func Open(src, dst addr.Addr, mtu int, opts ...Option) (*Tun, error) {
	cfg := newConfig(opts)

	fd, err := unix.Open(cloneDevice, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, kernel.Wrap("open "+cloneDevice, err)
	}
	name, err := attach(fd, cfg.name)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	t := &Tun{
		name:   name,
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cloneDevice),
		log:    cfg.log.WithField("device", name),
		closed: make(chan struct{}),
	}

	c, err := nl.Open()
	if err != nil {
		t.Close()
		return nil, err
	}
	defer c.Close()
	if err := configure(c, name, src, dst, mtu); err != nil {
		t.Close()
		return nil, kernel.Wrap("configure "+name, err)
	}

	t.log.WithField("src", src.String()).WithField("dst", dst.String()).Debug("opened")
	return t, nil
}

// attach binds fd to a TUN interface and returns the interface name.
func attach(fd int, name string) (string, error) {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return "", errors.Wrapf(err, "device name %q", name)
	}
	ifr.SetUint16(unix.IFF_TUN | unix.IFF_NO_PI)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		return "", kernel.Wrap("TUNSETIFF", err)
	}
	// Non-blocking mode lets the runtime poller honour deadlines.
	if err := unix.SetNonblock(fd, true); err != nil {
		return "", kernel.Wrap("set non-blocking", err)
	}
	return ifr.Name(), nil
}

func (t *Tun) Name() string { return t.name }

// Fd returns the tunnel's file descriptor.
func (t *Tun) Fd() int { return t.fd }

func (t *Tun) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

func (t *Tun) wrap(err error, op string) error {
	switch {
	case t.isClosed(), errors.Is(err, os.ErrClosed):
		return ErrClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return link.ErrDeadLineExceeded
	}
	return errors.Wrapf(err, "%s on %s", op, t.name)
}

// Send injects one IP packet.
func (t *Tun) Send(pkt []byte) (int, error) {
	if t.isClosed() {
		return 0, ErrClosed
	}
	n, err := t.file.Write(pkt)
	if err != nil {
		return n, t.wrap(err, "sending packet")
	}
	return n, nil
}

// Recv reads one IP packet into b.
func (t *Tun) Recv(b []byte) (int, error) {
	if t.isClosed() {
		return 0, ErrClosed
	}
	n, err := t.file.Read(b)
	if err != nil {
		return n, t.wrap(err, "receiving packet")
	}
	return n, nil
}

func (t *Tun) SetReadDeadLine(d time.Time) {
	if err := t.file.SetReadDeadline(d); err != nil {
		t.log.WithError(err).Warn("setting read deadline")
	}
}

func (t *Tun) SetWriteDeadLine(d time.Time) {
	if err := t.file.SetWriteDeadline(d); err != nil {
		t.log.WithError(err).Warn("setting write deadline")
	}
}

func (t *Tun) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.file.Close()
		t.log.Debug("closed")
	})
	return err
}
