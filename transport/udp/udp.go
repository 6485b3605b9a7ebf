// Package udp implements the User Datagram Protocol (UDP) header codec.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc768
package udp

import (
	"dnet/lib/checksum"
	"dnet/lib/codec"
	"encoding/binary"
)

const (
	HeaderLen = 8
	PortMax   = 65535

	// ChecksumOffset locates the checksum field within the header.
	ChecksumOffset = 6
)

type Header struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16 // header and data
	Checksum uint16
}

// NewHeader returns a header for a datagram carrying payloadLen bytes.
func NewHeader(sport, dport uint16, payloadLen int) Header {
	return Header{SrcPort: sport, DstPort: dport, Length: uint16(HeaderLen + payloadLen)}
}

func Decode(b []byte) (Header, error) {
	if err := codec.Need("udp header", b, HeaderLen); err != nil {
		return Header{}, err
	}
	return Header{
		SrcPort:  binary.BigEndian.Uint16(b[0:2]),
		DstPort:  binary.BigEndian.Uint16(b[2:4]),
		Length:   binary.BigEndian.Uint16(b[4:6]),
		Checksum: binary.BigEndian.Uint16(b[6:8]),
	}, nil
}

func (h Header) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, h.SrcPort)
	b = binary.BigEndian.AppendUint16(b, h.DstPort)
	b = binary.BigEndian.AppendUint16(b, h.Length)
	return binary.BigEndian.AppendUint16(b, h.Checksum)
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}

// SetChecksum fills in the checksum field of the encoded datagram b, given the
// partial sum of the IP pseudo-header. A computed zero is sent as 0xffff.
func SetChecksum(b []byte, pseudo uint32) error {
	if err := codec.Need("udp header", b, HeaderLen); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b[ChecksumOffset:], 0)
	sum := checksum.Fold(checksum.Sum(b, pseudo))
	if sum == 0 {
		sum = 0xffff
	}
	binary.BigEndian.PutUint16(b[ChecksumOffset:], sum)
	return nil
}
