// Package tcp implements the Transmission Control Protocol (TCP) header codec.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9293
package tcp

import (
	"dnet/lib/checksum"
	"dnet/lib/codec"
	"dnet/lib/option"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	HeaderLen    = 20
	MaxOptionLen = option.MaxArea
	MaxHeaderLen = HeaderLen + MaxOptionLen

	PortMax   = 65535
	WindowMax = 65535

	// ChecksumOffset locates the checksum field within the header.
	ChecksumOffset = 16

	offsetMultiplier = 4
)

// Reference: https://datatracker.ietf.org/doc/html/rfc9293#section-3.1-3
type Header struct {
	SrcPort, DstPort uint16

	Seq, Ack uint32

	Offset   uint8 // 4 bits, in 32-bit words.
	Reserved uint8 // 4 bits.
	Flags    Flags
	Window   uint16

	Checksum uint16
	Urgent   uint16
}

// NewHeader returns a header without options.
func NewHeader(sport, dport uint16, seq, ack uint32, flags Flags, window uint16) Header {
	return Header{
		SrcPort: sport,
		DstPort: dport,
		Seq:     seq,
		Ack:     ack,
		Offset:  HeaderLen / offsetMultiplier,
		Flags:   flags,
		Window:  window,
	}
}

// Len returns the header length including options, in bytes.
func (h Header) Len() int { return int(h.Offset) * offsetMultiplier }

func Decode(raw []byte) (Header, error) {
	if err := codec.Need("tcp header", raw, HeaderLen); err != nil {
		return Header{}, err
	}

	return Header{
		SrcPort: binary.BigEndian.Uint16(raw[0:2]),
		DstPort: binary.BigEndian.Uint16(raw[2:4]),

		Seq: binary.BigEndian.Uint32(raw[4:8]),
		Ack: binary.BigEndian.Uint32(raw[8:12]),

		Offset:   raw[12] >> 4,
		Reserved: raw[12] & 0x0f,
		Flags:    Flags(raw[13]),
		Window:   binary.BigEndian.Uint16(raw[14:16]),

		Checksum: binary.BigEndian.Uint16(raw[16:18]),
		Urgent:   binary.BigEndian.Uint16(raw[18:20]),
	}, nil
}

func (h Header) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, h.SrcPort)
	b = binary.BigEndian.AppendUint16(b, h.DstPort)

	b = binary.BigEndian.AppendUint32(b, h.Seq)
	b = binary.BigEndian.AppendUint32(b, h.Ack)

	b = append(b, (h.Offset&0x0f)<<4|h.Reserved&0x0f)
	b = append(b, byte(h.Flags))
	b = binary.BigEndian.AppendUint16(b, h.Window)

	b = binary.BigEndian.AppendUint16(b, h.Checksum)
	return binary.BigEndian.AppendUint16(b, h.Urgent)
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}

// Segment is a TCP header with its options and payload.
type Segment struct {
	Header

	Options []option.Option
	Data    []byte
}

// ParseSegment decodes raw. Data references raw.
func ParseSegment(raw []byte) (Segment, error) {
	h, err := Decode(raw)
	if err != nil {
		return Segment{}, err
	}

	dataAt := h.Len()
	if dataAt < HeaderLen || dataAt > len(raw) {
		return Segment{}, errors.Wrapf(codec.ErrTruncated, "advertised data offset %d", dataAt)
	}

	s := Segment{Header: h, Data: raw[dataAt:]}
	if dataAt > HeaderLen {
		// Options present only when data offset > 5.
		if s.Options, err = option.Parse(raw[HeaderLen:dataAt]); err != nil {
			return Segment{}, err
		}
	}
	return s, nil
}

// Bytes encodes s. Offset is recomputed from the options.
func (s Segment) Bytes() ([]byte, error) {
	opts, err := option.Encode(s.Options)
	if err != nil {
		return nil, err
	}

	h := s.Header
	h.Offset = uint8((HeaderLen + len(opts)) / offsetMultiplier)

	b := make([]byte, 0, HeaderLen+len(opts)+len(s.Data))
	b = h.AppendTo(b)
	b = append(b, opts...)
	return append(b, s.Data...), nil
}

// ComputeChecksum returns the checksum of the encoded segment b, given the
// partial sum of the IP pseudo-header. The checksum field of b must be zero on
// the sender's side; on the receiver's side a valid segment yields zero.
// Reference: https://datatracker.ietf.org/doc/html/rfc9293#section-3.1-6.18.1
func ComputeChecksum(b []byte, pseudo uint32) uint16 {
	return checksum.Fold(checksum.Sum(b, pseudo))
}

// SetChecksum fills in the checksum field of the encoded segment b.
func SetChecksum(b []byte, pseudo uint32) error {
	if err := codec.Need("tcp header", b, HeaderLen); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b[ChecksumOffset:], 0)
	binary.BigEndian.PutUint16(b[ChecksumOffset:], ComputeChecksum(b, pseudo))
	return nil
}
