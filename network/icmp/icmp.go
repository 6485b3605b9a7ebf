// Package icmp implements the Internet Control Message Protocol header and
// the message bodies that follow it.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc792
package icmp

import (
	"dnet/lib/checksum"
	"dnet/lib/codec"
	"encoding/binary"
)

const (
	HeaderLen = 4
	MinLen    = 8 // header plus the smallest message body

	ChecksumOffset = 2
)

type Header struct {
	Type     Type
	Code     Code
	Checksum uint16
}

func Decode(b []byte) (Header, error) {
	if err := codec.Need("icmp header", b, HeaderLen); err != nil {
		return Header{}, err
	}
	return Header{
		Type:     Type(b[0]),
		Code:     Code(b[1]),
		Checksum: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

func (h Header) AppendTo(b []byte) []byte {
	b = append(b, byte(h.Type), byte(h.Code))
	return binary.BigEndian.AppendUint16(b, h.Checksum)
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}

// Message is an ICMP message body.
type Message interface {
	Len() int
	AppendTo(b []byte) []byte
}

// Marshal encodes a complete ICMP message with its checksum filled in.
func Marshal(typ Type, code Code, msg Message) []byte {
	size := HeaderLen
	if msg != nil {
		size += msg.Len()
	}
	b := Header{Type: typ, Code: code}.AppendTo(make([]byte, 0, size))
	if msg != nil {
		b = msg.AppendTo(b)
	}
	binary.BigEndian.PutUint16(b[ChecksumOffset:], checksum.Checksum(b))
	return b
}

// Verify reports whether the checksum of the ICMP message b is valid.
func Verify(b []byte) bool {
	return len(b) >= HeaderLen && checksum.Verify(b)
}
