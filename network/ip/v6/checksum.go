package ipv6

import (
	"dnet/lib/checksum"
	"dnet/network/ip"
	"slices"

	"github.com/pkg/errors"
)

var ErrBadChecksum = errors.New("bad checksum")

// PseudoHeaderSum returns the partial sum of the upper-layer pseudo-header
// (RFC 8200 section 8.1).
func PseudoHeaderSum(src, dst Addr, next ip.NextProto, length int) uint32 {
	acc := checksum.Sum(src[:], 0)
	acc = checksum.Sum(dst[:], acc)
	return acc + uint32(length>>16) + uint32(length&0xffff) + uint32(next)
}

// upper locates the upper-layer segment of pkt past any extension headers.
func upper(pkt []byte) (Header, []ExtHeader, ip.NextProto, []byte, error) {
	h, err := Decode(pkt)
	if err != nil {
		return Header{}, nil, 0, nil, err
	}
	end := len(pkt)
	if pl := int(h.PayloadLen); pl > 0 && HeaderLen+pl <= len(pkt) {
		end = HeaderLen + pl
	}

	exts, next, off, err := Extensions(pkt[:end])
	if err != nil {
		return Header{}, nil, 0, nil, err
	}
	return h, exts, next, pkt[off:end], nil
}

// laterFragment reports whether exts holds a fragment header with a non-zero
// offset. Such a packet carries no upper-layer header.
func laterFragment(exts []ExtHeader) bool {
	for _, e := range exts {
		if e.Type != ip.NextProtoFRAGMENT {
			continue
		}
		f, err := DecodeFragment(e.AppendTo(nil))
		if err == nil && f.Offset != 0 {
			return true
		}
	}
	return false
}

// SetChecksums fills in the checksum of the TCP, UDP, ICMPv6, ICMP or IGMP
// segment carried by the IPv6 packet pkt. Hop-by-hop, destination options,
// routing and fragment headers are skipped to find it; a fragment other than
// the first is left untouched. IPv6 has no header checksum of its own.
func SetChecksums(pkt []byte) error {
	h, exts, next, seg, err := upper(pkt)
	if err != nil {
		return err
	}
	if laterFragment(exts) {
		return nil
	}
	ip.SetTransportChecksum(next, seg, PseudoHeaderSum(h.Src, h.Dst, next, len(seg)))
	return nil
}

// Checksum returns a copy of pkt with its checksums filled in.
func Checksum(pkt []byte) ([]byte, error) {
	out := slices.Clone(pkt)
	if err := SetChecksums(out); err != nil {
		return nil, err
	}
	return out, nil
}

func VerifyChecksums(pkt []byte) error {
	h, exts, next, seg, err := upper(pkt)
	if err != nil {
		return err
	}
	if laterFragment(exts) {
		return nil
	}
	valid, known := ip.VerifyTransportChecksum(next, seg, PseudoHeaderSum(h.Src, h.Dst, next, len(seg)))
	if known && !valid {
		return errors.Wrapf(ErrBadChecksum, "%s segment", next)
	}
	return nil
}
