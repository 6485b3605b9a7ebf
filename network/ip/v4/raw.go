package ipv4

import (
	"net"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xipv4 "golang.org/x/net/ipv4"
)

var ErrHandleClosed = errors.New("ip handle is closed")

// Handle sends complete IPv4 packets, header included, through a raw socket.
// Opening one requires CAP_NET_RAW.
type Handle struct {
	conn   *xipv4.RawConn
	log    logrus.FieldLogger
	closed bool
}

type HandleOption func(*Handle)

func WithLogger(l logrus.FieldLogger) HandleOption {
	return func(h *Handle) { h.log = l }
}

func OpenRaw(opts ...HandleOption) (*Handle, error) {
	h := &Handle{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(h)
	}

	// Protocol 255 is IPPROTO_RAW.
	c, err := net.ListenPacket("ip4:255", "0.0.0.0")
	if err != nil {
		return nil, errors.Wrap(err, "opening raw ip socket")
	}
	rc, err := xipv4.NewRawConn(c)
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "enabling header inclusion")
	}
	h.conn = rc
	h.log.WithField("device", "ip").Debug("opened")
	return h, nil
}

// Send transmits pkt, which must start with a valid IPv4 header. The kernel
// routes it by the header's destination address.
func (h *Handle) Send(pkt []byte) (int, error) {
	if h.closed {
		return 0, ErrHandleClosed
	}

	hdr, err := xipv4.ParseHeader(pkt)
	if err != nil {
		return 0, errors.Wrap(err, "parsing ipv4 header")
	}
	if err := h.conn.WriteTo(hdr, pkt[hdr.Len:], nil); err != nil {
		return 0, errors.Wrap(err, "sending ipv4 packet")
	}
	return len(pkt), nil
}

func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.log.WithField("device", "ip").Debug("closed")
	return h.conn.Close()
}
