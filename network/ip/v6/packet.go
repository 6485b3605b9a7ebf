package ipv6

import "dnet/network/ip"

// Packet is a decoded IPv6 packet. It references the buffer it was parsed from.
type Packet struct {
	Header
	Extensions []ExtHeader

	upper   ip.NextProto
	payload []byte
}

var _ ip.Packet = (*Packet)(nil)

func ParsePacket(b []byte) (*Packet, error) {
	h, exts, next, seg, err := upper(b)
	if err != nil {
		return nil, err
	}
	return &Packet{Header: h, Extensions: exts, upper: next, payload: seg}, nil
}

func (p *Packet) Payload() []byte            { return p.payload }
func (p *Packet) SrcAddr() ip.Addr           { return p.Src }
func (p *Packet) DstAddr() ip.Addr           { return p.Dst }
func (p *Packet) NextProtocol() ip.NextProto { return p.upper }
