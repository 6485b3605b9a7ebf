package ipv4

import (
	"dnet/lib/option"
	"dnet/network/ip"
)

// Packet is a decoded IPv4 packet. It references the buffer it was parsed from.
type Packet struct {
	Header
	Options []option.Option

	payload []byte
}

var _ ip.Packet = (*Packet)(nil)

func ParsePacket(b []byte) (*Packet, error) {
	h, hl, end, err := bounds(b)
	if err != nil {
		return nil, err
	}
	opts, err := option.Parse(b[HeaderLen:hl])
	if err != nil {
		return nil, err
	}

	return &Packet{Header: h, Options: opts, payload: b[hl:end]}, nil
}

func (p *Packet) Payload() []byte            { return p.payload }
func (p *Packet) SrcAddr() ip.Addr           { return p.Src }
func (p *Packet) DstAddr() ip.Addr           { return p.Dst }
func (p *Packet) NextProtocol() ip.NextProto { return p.Proto }
