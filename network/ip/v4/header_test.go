package ipv4

import (
	"dnet/lib/codec"
	"dnet/network/ip"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleHeader = []byte{
	0x45, 0x00, 0x00, 0x73, 0x00, 0x00, 0x40, 0x00,
	0x40, 0x11, 0xb8, 0x61, 0xc0, 0xa8, 0x00, 0x01,
	0xc0, 0xa8, 0x00, 0xc7,
}

func TestDecode(t *testing.T) {
	h, err := Decode(sampleHeader)
	require.NoError(t, err)

	assert.Equal(t, Header{
		Version:  4,
		IHL:      5,
		TotalLen: 0x73,
		Off:      FlagDF,
		TTL:      64,
		Proto:    ip.NextProtoUDP,
		Checksum: 0xb861,
		Src:      Addr{192, 168, 0, 1},
		Dst:      Addr{192, 168, 0, 199},
	}, h)
	assert.Equal(t, HeaderLen, h.Len())
	assert.Equal(t, FlagDF, h.Flags())
	assert.False(t, h.IsFragment())
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(sampleHeader[:19])
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestEncodeRoundTrip(t *testing.T) {
	testcases := []struct {
		desc string
		in   []byte
	}{
		{desc: "sample", in: sampleHeader},
		{desc: "zeros", in: make([]byte, HeaderLen)},
		{
			desc: "all bits set",
			in: []byte{
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
				0xff, 0xff, 0xff, 0xff,
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			h, err := Decode(tc.in)
			require.NoError(t, err)
			encoded := h.Encode()
			assert.Equal(t, tc.in, encoded)

			again, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, encoded, again.Encode())
		})
	}
}

func TestDecodeMatchesGopacket(t *testing.T) {
	var l layers.IPv4
	require.NoError(t, l.DecodeFromBytes(sampleHeader, gopacket.NilDecodeFeedback))

	h, err := Decode(sampleHeader)
	require.NoError(t, err)

	assert.Equal(t, l.Version, h.Version)
	assert.Equal(t, l.IHL, h.IHL)
	assert.Equal(t, l.Length, h.TotalLen)
	assert.Equal(t, l.Id, h.ID)
	assert.Equal(t, l.TTL, h.TTL)
	assert.Equal(t, uint8(l.Protocol), uint8(h.Proto))
	assert.Equal(t, l.Checksum, h.Checksum)
	assert.True(t, l.SrcIP.Equal(net.IP(h.Src[:])))
	assert.True(t, l.DstIP.Equal(net.IP(h.Dst[:])))
}

func TestNewHeader(t *testing.T) {
	h := NewHeader(ip.NextProtoTCP, AddrLoopback, AddrLoopback, 12)
	assert.Equal(t, uint16(32), h.TotalLen)
	assert.Equal(t, uint8(DefaultTTL), h.TTL)
	assert.Equal(t, byte(0x45), h.Encode()[0])
}

func TestParsePacket(t *testing.T) {
	pkt := NewHeader(ip.NextProtoUDP, Addr{10, 0, 0, 1}, Addr{10, 0, 0, 2}, 4).Encode()
	pkt = append(pkt, 1, 2, 3, 4, 0xee) // trailing byte past total length

	p, err := ParsePacket(pkt)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, p.Payload())
	assert.Equal(t, "10.0.0.1", p.SrcAddr().String())
	assert.Equal(t, "10.0.0.2", p.DstAddr().String())
	assert.Equal(t, ip.NextProtoUDP, p.NextProtocol())
	assert.Empty(t, p.Options)
}
