package ipv4

import (
	"dnet/lib/codec"
	"dnet/lib/symtab"
	"dnet/network/ip"
	"encoding/binary"
)

const (
	HeaderLen    = 20
	MaxOptionLen = 40
	MaxHeaderLen = HeaderLen + MaxOptionLen
	MaxLen       = 65535

	Version    = 4
	DefaultTTL = 64
	MaxTTL     = 255
)

// Type of service.
const (
	TOSDefault     uint8 = 0x00
	TOSLowDelay    uint8 = 0x10
	TOSThroughput  uint8 = 0x08
	TOSReliability uint8 = 0x04
	TOSLowCost     uint8 = 0x02
	TOSECT         uint8 = 0x02 // ECN-capable transport
	TOSCE          uint8 = 0x01 // congestion experienced

	TOSPrecRoutine         uint8 = 0x00
	TOSPrecPriority        uint8 = 0x20
	TOSPrecImmediate       uint8 = 0x40
	TOSPrecFlash           uint8 = 0x60
	TOSPrecFlashOverride   uint8 = 0x80
	TOSPrecCriticECP       uint8 = 0xa0
	TOSPrecInternetControl uint8 = 0xc0
	TOSPrecNetControl      uint8 = 0xe0
)

// Fragmentation flags and offset mask of the Off field.
const (
	FlagRF  uint16 = 0x8000 // reserved
	FlagDF  uint16 = 0x4000 // don't fragment
	FlagMF  uint16 = 0x2000 // more fragments
	OffMask uint16 = 0x1fff
)

var FragFlags = symtab.New(
	symtab.Entry[uint16]{Name: "RF", Value: FlagRF},
	symtab.Entry[uint16]{Name: "DF", Value: FlagDF},
	symtab.Entry[uint16]{Name: "MF", Value: FlagMF},
)

// Header is the fixed part of an IPv4 header. Options are not part of it;
// IHL still records the full header length in 32-bit words.
type Header struct {
	Version  uint8 // 4 bits
	IHL      uint8 // 4 bits
	TOS      uint8
	TotalLen uint16
	ID       uint16
	Off      uint16 // flags and fragment offset
	TTL      uint8
	Proto    ip.NextProto
	Checksum uint16
	Src      Addr
	Dst      Addr
}

// NewHeader returns a header without options for a payload of payloadLen bytes.
func NewHeader(proto ip.NextProto, src, dst Addr, payloadLen int) Header {
	return Header{
		Version:  Version,
		IHL:      HeaderLen / 4,
		TotalLen: uint16(HeaderLen + payloadLen),
		TTL:      DefaultTTL,
		Proto:    proto,
		Src:      src,
		Dst:      dst,
	}
}

// Len returns the header length including options, in bytes.
func (h Header) Len() int { return int(h.IHL) * 4 }

func (h Header) Flags() uint16 { return h.Off &^ OffMask }

// FragOffset returns the fragment offset in 8-byte units.
func (h Header) FragOffset() uint16 { return h.Off & OffMask }

func (h Header) IsFragment() bool {
	return h.FragOffset() != 0 || h.Off&FlagMF != 0
}

func Decode(b []byte) (Header, error) {
	if err := codec.Need("ipv4 header", b, HeaderLen); err != nil {
		return Header{}, err
	}

	h := Header{
		Version:  b[0] >> 4,
		IHL:      b[0] & 0x0f,
		TOS:      b[1],
		TotalLen: binary.BigEndian.Uint16(b[2:4]),
		ID:       binary.BigEndian.Uint16(b[4:6]),
		Off:      binary.BigEndian.Uint16(b[6:8]),
		TTL:      b[8],
		Proto:    ip.NextProto(b[9]),
		Checksum: binary.BigEndian.Uint16(b[10:12]),
	}
	copy(h.Src[:], b[12:16])
	copy(h.Dst[:], b[16:20])

	return h, nil
}

func (h Header) AppendTo(b []byte) []byte {
	b = append(b, (h.Version&0x0f)<<4|h.IHL&0x0f, h.TOS)
	b = binary.BigEndian.AppendUint16(b, h.TotalLen)
	b = binary.BigEndian.AppendUint16(b, h.ID)
	b = binary.BigEndian.AppendUint16(b, h.Off)
	b = append(b, h.TTL, uint8(h.Proto))
	b = binary.BigEndian.AppendUint16(b, h.Checksum)
	b = append(b, h.Src[:]...)
	return append(b, h.Dst[:]...)
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}
