package ipv6

import (
	"bytes"
	"dnet/lib/codec"
	"dnet/network/ip"
	"encoding/binary"
	"net"
	"slices"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSrc = Addr{0x20, 0x01, 0x0d, 0xb8, 15: 0x01}
	testDst = Addr{0x20, 0x01, 0x0d, 0xb8, 15: 0x02}
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func TestHeaderCodec(t *testing.T) {
	h := Header{
		Version:      Version,
		TrafficClass: 0xb8,
		FlowLabel:    0x12345,
		PayloadLen:   8,
		NextHeader:   ip.NextProtoUDP,
		HopLimit:     32,
		Src:          testSrc,
		Dst:          testDst,
	}
	raw := h.Encode()
	require.Len(t, raw, HeaderLen)

	var l layers.IPv6
	require.NoError(t, l.DecodeFromBytes(append(raw, make([]byte, 8)...), gopacket.NilDecodeFeedback))
	assert.Equal(t, uint8(6), l.Version)
	assert.Equal(t, h.TrafficClass, l.TrafficClass)
	assert.Equal(t, h.FlowLabel, l.FlowLabel)
	assert.Equal(t, h.PayloadLen, l.Length)
	assert.Equal(t, layers.IPProtocolUDP, l.NextHeader)
	assert.Equal(t, h.HopLimit, l.HopLimit)
	assert.Equal(t, net.IP(testSrc[:]), l.SrcIP)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)

	_, err = Decode(raw[:HeaderLen-1])
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestNewHeader(t *testing.T) {
	h := NewHeader(ip.NextProtoTCP, testSrc, testDst, 20)
	assert.Equal(t, uint8(Version), h.Version)
	assert.Equal(t, uint16(20), h.PayloadLen)
	assert.Equal(t, uint8(DefaultHopLimit), h.HopLimit)
}

// withDstOpts inserts an empty destination options header in front of the
// upper-layer segment of pkt.
func withDstOpts(pkt []byte) []byte {
	h, _ := Decode(pkt)
	ext := ExtHeader{Type: ip.NextProtoDSTOPTS, Next: h.NextHeader, Data: []byte{0, 1, 4, 0, 0, 0, 0}}
	h.NextHeader = ip.NextProtoDSTOPTS
	h.PayloadLen += uint16(ext.Len())

	out := h.Encode()
	out = ext.AppendTo(out)
	return append(out, pkt[HeaderLen:]...)
}

func TestSetChecksums(t *testing.T) {
	src, dst := net.IP(testSrc[:]), net.IP(testDst[:])
	payload := gopacket.Payload("hello, world")

	udpIP := &layers.IPv6{Version: 6, HopLimit: 64, NextHeader: layers.IPProtocolUDP, SrcIP: src, DstIP: dst}
	udp := &layers.UDP{SrcPort: 5353, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(udpIP))

	tcpIP := &layers.IPv6{Version: 6, HopLimit: 64, NextHeader: layers.IPProtocolTCP, SrcIP: src, DstIP: dst}
	tcp := &layers.TCP{SrcPort: 40000, DstPort: 80, Seq: 1, SYN: true, Window: 65535}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(tcpIP))

	icmpIP := &layers.IPv6{Version: 6, HopLimit: 64, NextHeader: layers.IPProtocolICMPv6, SrcIP: src, DstIP: dst}
	icmp := &layers.ICMPv6{TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeEchoRequest, 0)}
	require.NoError(t, icmp.SetNetworkLayerForChecksum(icmpIP))

	testcases := []struct {
		desc   string
		want   []byte
		offset int
	}{
		{desc: "udp", want: serialize(t, udpIP, udp, payload), offset: 6},
		{desc: "tcp", want: serialize(t, tcpIP, tcp, payload), offset: 16},
		{desc: "icmpv6", want: serialize(t, icmpIP, icmp, payload), offset: 2},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			pkt := append([]byte(nil), tc.want...)
			pkt[HeaderLen+tc.offset], pkt[HeaderLen+tc.offset+1] = 0, 0
			require.NoError(t, SetChecksums(pkt))
			assert.Equal(t, tc.want, pkt)
			assert.NoError(t, VerifyChecksums(pkt))

			pkt[len(pkt)-1] ^= 0xff
			assert.ErrorIs(t, VerifyChecksums(pkt), ErrBadChecksum)
		})

		t.Run(tc.desc+" behind extension header", func(t *testing.T) {
			want := withDstOpts(tc.want)
			pkt := append([]byte(nil), want...)
			off := HeaderLen + 8 + tc.offset
			pkt[off], pkt[off+1] = 0, 0

			out, err := Checksum(pkt)
			require.NoError(t, err)
			assert.Equal(t, want, out)
			assert.Equal(t, []byte{0, 0}, pkt[off:off+2], "input must be left untouched")
		})
	}
}

func TestSetChecksumsFragments(t *testing.T) {
	testcases := []struct {
		desc      string
		offset    uint16
		untouched bool
	}{
		{desc: "first fragment", offset: 0},
		{desc: "later fragment", offset: 100, untouched: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			frag := Fragment{Next: ip.NextProtoTCP, Offset: tc.offset, More: true, ID: 1}
			h := NewHeader(ip.NextProtoFRAGMENT, testSrc, testDst, FragmentLen+24)
			pkt := frag.AppendTo(h.Encode())
			pkt = append(pkt, bytes.Repeat([]byte{0xaa}, 24)...)
			orig := slices.Clone(pkt)

			require.NoError(t, SetChecksums(pkt))
			if tc.untouched {
				assert.Equal(t, orig, pkt)
				assert.NoError(t, VerifyChecksums(pkt))
				return
			}
			off := HeaderLen + FragmentLen + 16
			assert.NotEqual(t, orig[off:off+2], pkt[off:off+2])
			assert.NoError(t, VerifyChecksums(pkt))
		})
	}
}

func TestExtensions(t *testing.T) {
	frag := Fragment{Next: ip.NextProtoUDP, Offset: 185, More: true, ID: 0xdeadbeef}
	route := Routing{Next: ip.NextProtoFRAGMENT, Type: 4, SegmentsLeft: 1, Data: []byte{1, 2}}

	h := NewHeader(ip.NextProtoHopOpts, testSrc, testDst, 0)
	pkt := h.Encode()
	pkt = append(pkt, uint8(ip.NextProtoROUTING), 0, 1, 4, 0, 0, 0, 0)
	pkt = route.AppendTo(pkt)
	pkt = frag.AppendTo(pkt)
	pkt = append(pkt, 0xaa, 0xbb)
	binary.BigEndian.PutUint16(pkt[4:6], uint16(len(pkt)-HeaderLen))

	exts, next, off, err := Extensions(pkt)
	require.NoError(t, err)
	assert.Equal(t, ip.NextProtoUDP, next)
	assert.Equal(t, len(pkt)-2, off)
	require.Len(t, exts, 3)
	assert.Equal(t, ip.NextProtoHopOpts, exts[0].Type)
	assert.Equal(t, ip.NextProtoROUTING, exts[1].Type)
	assert.Equal(t, ip.NextProtoFRAGMENT, exts[2].Type)

	gotRoute, err := DecodeRouting(pkt[HeaderLen+8:])
	require.NoError(t, err)
	assert.Equal(t, route.Next, gotRoute.Next)
	assert.Equal(t, route.SegmentsLeft, gotRoute.SegmentsLeft)
	assert.Equal(t, []byte{1, 2, 0, 0}, gotRoute.Data)

	gotFrag, err := DecodeFragment(pkt[HeaderLen+16:])
	require.NoError(t, err)
	assert.Equal(t, frag, gotFrag)

	p, err := ParsePacket(pkt)
	require.NoError(t, err)
	assert.Equal(t, ip.NextProtoUDP, p.NextProtocol())
	assert.Equal(t, []byte{0xaa, 0xbb}, p.Payload())
	assert.Equal(t, testSrc, p.SrcAddr())

	_, _, _, err = Extensions(pkt[:HeaderLen+12])
	assert.ErrorIs(t, err, codec.ErrTruncated)
}
