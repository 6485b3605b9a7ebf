package ipv6

import (
	"dnet/lib/codec"
	"dnet/network/ip"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	extLenUnit  = 8
	FragmentLen = 8

	FragOffMask uint16 = 0xfff8
	FragMore    uint16 = 0x0001
)

// IsExt reports whether p names an extension header that SetChecksums
// skips over to reach the upper-layer header.
func IsExt(p ip.NextProto) bool {
	switch p {
	case ip.NextProtoHopOpts, ip.NextProtoROUTING, ip.NextProtoFRAGMENT, ip.NextProtoDSTOPTS:
		return true
	}
	return false
}

// ExtHeader is one extension header. Data holds everything after the next
// header byte, including the length byte of the generic layout.
type ExtHeader struct {
	Type ip.NextProto // type of this header
	Next ip.NextProto
	Data []byte
}

func (e ExtHeader) Len() int { return 1 + len(e.Data) }

func (e ExtHeader) AppendTo(b []byte) []byte {
	b = append(b, uint8(e.Next))
	return append(b, e.Data...)
}

// extLen returns the size of the extension header of type typ at b.
func extLen(typ ip.NextProto, b []byte) (int, error) {
	if err := codec.Need("ipv6 extension header", b, 2); err != nil {
		return 0, err
	}
	n := (int(b[1]) + 1) * extLenUnit
	if typ == ip.NextProtoFRAGMENT {
		n = FragmentLen
	}
	if n > len(b) {
		return 0, codec.Truncated("ipv6 extension header", n, len(b))
	}
	return n, nil
}

// Extensions walks the extension header chain that starts after the fixed
// header. It returns the headers, the upper-layer protocol and the offset
// where the upper-layer data begins.
func Extensions(pkt []byte) ([]ExtHeader, ip.NextProto, int, error) {
	h, err := Decode(pkt)
	if err != nil {
		return nil, 0, 0, err
	}

	var exts []ExtHeader
	next, off := h.NextHeader, HeaderLen
	for IsExt(next) {
		n, err := extLen(next, pkt[off:])
		if err != nil {
			return nil, 0, 0, errors.Wrapf(err, "at offset %d", off)
		}
		e := ExtHeader{Type: next, Next: ip.NextProto(pkt[off]), Data: pkt[off+1 : off+n]}
		exts = append(exts, e)
		next, off = e.Next, off+n
	}
	return exts, next, off, nil
}

// Fragment is the fragment extension header.
type Fragment struct {
	Next   ip.NextProto
	Offset uint16 // in 8-byte units
	More   bool
	ID     uint32
}

func (f Fragment) AppendTo(b []byte) []byte {
	offlg := f.Offset << 3
	if f.More {
		offlg |= FragMore
	}
	b = append(b, uint8(f.Next), 0)
	b = binary.BigEndian.AppendUint16(b, offlg)
	return binary.BigEndian.AppendUint32(b, f.ID)
}

func DecodeFragment(b []byte) (Fragment, error) {
	if err := codec.Need("ipv6 fragment header", b, FragmentLen); err != nil {
		return Fragment{}, err
	}
	offlg := binary.BigEndian.Uint16(b[2:4])
	return Fragment{
		Next:   ip.NextProto(b[0]),
		Offset: (offlg & FragOffMask) >> 3,
		More:   offlg&FragMore != 0,
		ID:     binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// Routing is the leading part of a routing extension header. Data holds
// the type specific remainder.
type Routing struct {
	Next         ip.NextProto
	Type         uint8
	SegmentsLeft uint8
	Data         []byte
}

func (r Routing) Len() int {
	n := 4 + len(r.Data)
	return (n + extLenUnit - 1) / extLenUnit * extLenUnit
}

func (r Routing) AppendTo(b []byte) []byte {
	n := r.Len()
	b = append(b, uint8(r.Next), uint8(n/extLenUnit-1), r.Type, r.SegmentsLeft)
	b = append(b, r.Data...)
	for i := 4 + len(r.Data); i < n; i++ {
		b = append(b, 0)
	}
	return b
}

func DecodeRouting(b []byte) (Routing, error) {
	n, err := extLen(ip.NextProtoROUTING, b)
	if err != nil {
		return Routing{}, err
	}
	return Routing{Next: ip.NextProto(b[0]), Type: b[2], SegmentsLeft: b[3], Data: b[4:n]}, nil
}
