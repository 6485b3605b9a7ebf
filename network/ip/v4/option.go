package ipv4

import (
	"bytes"
	"dnet/lib/codec"
	"dnet/lib/option"
	"dnet/network/ip"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Option type classes.
const (
	OptControl   uint8 = 0x00
	OptReserved1 uint8 = 0x20
	OptDebMeas   uint8 = 0x40
	OptReserved2 uint8 = 0x60
	OptCopy      uint8 = 0x80
)

// Option types.
// Reference: https://www.iana.org/assignments/ip-parameters
const (
	OptEOL    uint8 = 0
	OptNOP    uint8 = 1
	OptSEC    uint8 = 2 | OptCopy
	OptLSRR   uint8 = 3 | OptCopy
	OptTS     uint8 = 4 | OptDebMeas
	OptESEC   uint8 = 5 | OptCopy
	OptCIPSO  uint8 = 6 | OptCopy
	OptRR     uint8 = 7
	OptSATID  uint8 = 8 | OptCopy
	OptSSRR   uint8 = 9 | OptCopy
	OptZSU    uint8 = 10
	OptMTUP   uint8 = 11
	OptMTUR   uint8 = 12
	OptFINN   uint8 = 13 | OptCopy | OptDebMeas
	OptVISA   uint8 = 14 | OptCopy
	OptENCODE uint8 = 15
	OptIMITD  uint8 = 16 | OptCopy
	OptEIP    uint8 = 17 | OptCopy
	OptTR     uint8 = 18 | OptDebMeas
	OptADDEXT uint8 = 19 | OptCopy
	OptRTRALT uint8 = 20 | OptCopy
	OptSDB    uint8 = 21 | OptCopy
	OptNSAPA  uint8 = 22 | OptCopy
	OptDPS    uint8 = 23 | OptCopy
	OptUMP    uint8 = 24 | OptCopy
)

// Timestamp option flags.
const (
	OptTSOnly    uint8 = 0
	OptTSAddr    uint8 = 1
	OptTSPrespec uint8 = 3
)

// Security option levels (RFC 791).
const (
	OptSecUnclass   uint16 = 0x0000
	OptSecConfid    uint16 = 0xf135
	OptSecEFTO      uint16 = 0x789a
	OptSecMMMM      uint16 = 0xbc4d
	OptSecProg      uint16 = 0x5e26
	OptSecRestr     uint16 = 0xaf13
	OptSecSecret    uint16 = 0xd788
	OptSecTopSecret uint16 = 0x6bc5
)

// AddOption inserts opt after the IPv4 header of pkt (proto is
// ip.NextProtoIP) or after the TCP header it carries (ip.NextProtoTCP).
// Option bytes are preceded by no-op padding to a 4-byte boundary, the
// following payload is shifted right, and the header length and total length
// fields are updated. pkt is not modified.
func AddOption(pkt []byte, proto ip.NextProto, opt []byte) ([]byte, error) {
	if proto != ip.NextProtoIP && proto != ip.NextProtoTCP {
		return nil, errors.Errorf("options are not supported for protocol %s", proto)
	}
	if len(opt) == 0 {
		return nil, errors.Wrap(option.ErrInvalid, "empty option")
	}

	h, err := Decode(pkt)
	if err != nil {
		return nil, err
	}
	totalLen := int(h.TotalLen)
	if totalLen > len(pkt) {
		return nil, codec.Truncated("ipv4 packet", totalLen, len(pkt))
	}

	hdrStart, hl := 0, h.Len()
	if hl < HeaderLen || hl > totalLen {
		return nil, errors.Wrapf(codec.ErrTruncated, "ipv4 header length %d", hl)
	}
	if proto == ip.NextProtoTCP {
		hdrStart = hl
		if err := codec.Need("tcp header", pkt[hdrStart:totalLen], 20); err != nil {
			return nil, err
		}
		hl = int(pkt[hdrStart+12]>>4) * 4
		if hl < 20 || hdrStart+hl > totalLen {
			return nil, errors.Wrapf(codec.ErrTruncated, "tcp header length %d", hl)
		}
	}

	if option.TypeOnly(opt[0]) {
		opt = opt[:1]
	}
	padLen := option.Padding(len(opt))
	if hl+len(opt)+padLen > MaxHeaderLen {
		return nil, errors.Wrapf(codec.ErrCapacity,
			"option area %d + %d > %d", hl-HeaderLen, len(opt)+padLen, MaxOptionLen)
	}
	if totalLen+len(opt)+padLen > MaxLen {
		return nil, errors.Wrap(codec.ErrCapacity, "ipv4 packet too long")
	}

	at := hdrStart + hl
	out := make([]byte, 0, len(pkt)+padLen+len(opt))
	out = append(out, pkt[:at]...)
	out = append(out, bytes.Repeat([]byte{option.NOP}, padLen)...)
	out = append(out, opt...)
	out = append(out, pkt[at:]...)

	words := uint8((hl + padLen + len(opt)) / 4)
	if proto == ip.NextProtoIP {
		out[0] = out[0]&0xf0 | words
	} else {
		out[hdrStart+12] = out[hdrStart+12]&0x0f | words<<4
	}
	binary.BigEndian.PutUint16(out[2:4], uint16(totalLen+padLen+len(opt)))

	return out, nil
}

// Options parses the option area of pkt.
func Options(pkt []byte) ([]option.Option, error) {
	h, err := Decode(pkt)
	if err != nil {
		return nil, err
	}
	if err := codec.Need("ipv4 options", pkt, h.Len()); err != nil {
		return nil, err
	}
	if h.Len() < HeaderLen {
		return nil, errors.Wrapf(codec.ErrTruncated, "ipv4 header length %d", h.Len())
	}
	return option.Parse(pkt[HeaderLen:h.Len()])
}
