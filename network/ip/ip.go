// Package ip holds what IPv4 and IPv6 share: protocol numbers, transport
// checksum layout and the decoded packet view.
package ip

import (
	"dnet/network"
	"fmt"
)

// Addr is an IP address of either version.
type Addr interface {
	network.Addr

	Version() uint
}

// Packet is a decoded IP packet of either version.
type Packet interface {
	network.Packet

	SrcAddr() Addr
	DstAddr() Addr
	NextProtocol() NextProto
}

// Flow describes p on one line, like "10.0.0.2->10.0.0.9 udp (13 bytes)".
// The length is that of the payload.
func Flow(p Packet) string {
	return fmt.Sprintf("%s->%s %s (%d bytes)", p.SrcAddr(), p.DstAddr(), p.NextProtocol(), len(p.Payload()))
}
