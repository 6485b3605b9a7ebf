package ipv4

import (
	"dnet/lib/checksum"
	"dnet/lib/codec"
	"dnet/network/ip"
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"
)

var ErrBadChecksum = errors.New("bad checksum")

// PseudoHeaderSum returns the partial sum of the TCP/UDP pseudo-header
// (RFC 793, RFC 768).
func PseudoHeaderSum(src, dst Addr, proto ip.NextProto, length int) uint32 {
	acc := checksum.Sum(src[:], 0)
	acc = checksum.Sum(dst[:], acc)
	return acc + uint32(proto) + uint32(length)
}

// bounds returns the header length and the end of the packet data, taken from
// the total length field when it is consistent with pkt.
func bounds(pkt []byte) (Header, int, int, error) {
	h, err := Decode(pkt)
	if err != nil {
		return Header{}, 0, 0, err
	}
	hl := h.Len()
	if hl < HeaderLen || hl > len(pkt) {
		return Header{}, 0, 0, errors.Wrapf(codec.ErrTruncated, "ipv4 header length %d", hl)
	}
	end := len(pkt)
	if tl := int(h.TotalLen); tl >= hl && tl <= len(pkt) {
		end = tl
	}
	return h, hl, end, nil
}

// SetChecksums fills in the header checksum of the IPv4 packet pkt and,
// unless pkt is a fragment, the checksum of the TCP, UDP, ICMP or IGMP
// segment it carries.
func SetChecksums(pkt []byte) error {
	h, hl, end, err := bounds(pkt)
	if err != nil {
		return err
	}

	binary.BigEndian.PutUint16(pkt[10:12], 0)
	binary.BigEndian.PutUint16(pkt[10:12], checksum.Checksum(pkt[:hl]))

	if h.IsFragment() {
		return nil
	}
	seg := pkt[hl:end]
	ip.SetTransportChecksum(h.Proto, seg, PseudoHeaderSum(h.Src, h.Dst, h.Proto, len(seg)))
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

// VerifyChecksums validates the checksums SetChecksums would fill in.
func VerifyChecksums(pkt []byte) error {
	h, hl, end, err := bounds(pkt)
	if err != nil {
		return err
	}
	if !checksum.Verify(pkt[:hl]) {
		return errors.Wrap(ErrBadChecksum, "ipv4 header")
	}
	if h.IsFragment() {
		return nil
	}

	seg := pkt[hl:end]
	valid, known := ip.VerifyTransportChecksum(h.Proto, seg, PseudoHeaderSum(h.Src, h.Dst, h.Proto, len(seg)))
	if known && !valid {
		return errors.Wrapf(ErrBadChecksum, "%s segment", h.Proto)
	}
	return nil
}
