package ipv6

import (
	"dnet/lib/codec"
	"dnet/network/ip"
	"encoding/binary"
)

const (
	HeaderLen = 40
	Version   = 6

	DefaultHopLimit = 64
	MaxHopLimit     = 255
	MinMTU          = 1280
)

// Header is the fixed IPv6 header (RFC 8200). Extension headers follow it
// and are chained through NextHeader.
type Header struct {
	Version      uint8 // 4 bits
	TrafficClass uint8
	FlowLabel    uint32 // 20 bits
	PayloadLen   uint16
	NextHeader   ip.NextProto
	HopLimit     uint8
	Src          Addr
	Dst          Addr
}

func NewHeader(next ip.NextProto, src, dst Addr, payloadLen int) Header {
	return Header{
		Version:    Version,
		PayloadLen: uint16(payloadLen),
		NextHeader: next,
		HopLimit:   DefaultHopLimit,
		Src:        src,
		Dst:        dst,
	}
}

func Decode(b []byte) (Header, error) {
	if err := codec.Need("ipv6 header", b, HeaderLen); err != nil {
		return Header{}, err
	}

	flow := binary.BigEndian.Uint32(b[0:4])
	h := Header{
		Version:      uint8(flow >> 28),
		TrafficClass: uint8(flow >> 20),
		FlowLabel:    flow & 0x000fffff,
		PayloadLen:   binary.BigEndian.Uint16(b[4:6]),
		NextHeader:   ip.NextProto(b[6]),
		HopLimit:     b[7],
	}
	copy(h.Src[:], b[8:24])
	copy(h.Dst[:], b[24:40])

	return h, nil
}

func (h Header) AppendTo(b []byte) []byte {
	flow := uint32(h.Version&0x0f)<<28 | uint32(h.TrafficClass)<<20 | h.FlowLabel&0x000fffff
	b = binary.BigEndian.AppendUint32(b, flow)
	b = binary.BigEndian.AppendUint16(b, h.PayloadLen)
	b = append(b, uint8(h.NextHeader), h.HopLimit)
	b = append(b, h.Src[:]...)
	return append(b, h.Dst[:]...)
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}
