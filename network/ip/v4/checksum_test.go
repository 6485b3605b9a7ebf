package ipv4

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func clearSum(pkt []byte, offsets ...int) []byte {
	out := append([]byte(nil), pkt...)
	for _, off := range offsets {
		out[off], out[off+1] = 0, 0
	}
	return out
}

func TestSetChecksums(t *testing.T) {
	src, dst := net.IP{10, 0, 0, 1}, net.IP{10, 0, 0, 2}
	payload := gopacket.Payload("hello, world")

	udpIP := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: src, DstIP: dst}
	udp := &layers.UDP{SrcPort: 5353, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(udpIP))

	tcpIP := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolTCP, SrcIP: src, DstIP: dst}
	tcp := &layers.TCP{SrcPort: 40000, DstPort: 80, Seq: 1, SYN: true, Window: 65535}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(tcpIP))

	icmpIP := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolICMPv4, SrcIP: src, DstIP: dst}
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0), Id: 7, Seq: 1}

	testcases := []struct {
		desc    string
		want    []byte
		offsets []int
	}{
		{desc: "udp", want: serialize(t, udpIP, udp, payload), offsets: []int{10, 20 + 6}},
		{desc: "tcp", want: serialize(t, tcpIP, tcp, payload), offsets: []int{10, 20 + 16}},
		{desc: "icmp", want: serialize(t, icmpIP, icmp, payload), offsets: []int{10, 20 + 2}},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			pkt := clearSum(tc.want, tc.offsets...)
			require.NoError(t, SetChecksums(pkt))
			assert.Equal(t, tc.want, pkt)
			assert.NoError(t, VerifyChecksums(pkt))

			pkt[len(pkt)-1] ^= 0xff
			assert.ErrorIs(t, VerifyChecksums(pkt), ErrBadChecksum)
		})
	}
}

func TestChecksumCopies(t *testing.T) {
	pkt := NewHeader(17, Addr{1, 2, 3, 4}, Addr{5, 6, 7, 8}, 0).Encode()

	out, err := Checksum(pkt)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, pkt[10:12], "input must be left untouched")
	assert.NotEqual(t, pkt, out)
	assert.NoError(t, VerifyChecksums(out))
}

func TestSetChecksumsFragment(t *testing.T) {
	h := NewHeader(17, Addr{1, 2, 3, 4}, Addr{5, 6, 7, 8}, 8)
	h.Off = FlagMF
	pkt := append(h.Encode(), make([]byte, 8)...)

	require.NoError(t, SetChecksums(pkt))
	assert.Equal(t, make([]byte, 8), pkt[HeaderLen:], "fragments carry no transport checksum")
}
