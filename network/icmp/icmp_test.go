package icmp

import (
	"dnet/lib/codec"
	ipv4 "dnet/network/ip/v4"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderCodec(t *testing.T) {
	raw := []byte{0x03, 0x04, 0xab, 0xcd}

	h, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Header{Type: TypeUnreach, Code: UnreachNeedFrag, Checksum: 0xabcd}, h)
	assert.Equal(t, raw, h.Encode())

	_, err = Decode(raw[:3])
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestMarshalEcho(t *testing.T) {
	payload := []byte("ping")
	b := Marshal(TypeEcho, 0, &Echo{ID: 0x1234, Seq: 7, Data: payload})
	require.Len(t, b, MinLen+len(payload))
	assert.True(t, Verify(b))

	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf,
		gopacket.SerializeOptions{ComputeChecksums: true},
		&layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
			Id:       0x1234,
			Seq:      7,
		},
		gopacket.Payload(payload),
	))
	assert.Equal(t, buf.Bytes(), b)

	echo, err := DecodeEcho(b[HeaderLen:])
	require.NoError(t, err)
	assert.Equal(t, &Echo{ID: 0x1234, Seq: 7, Data: payload}, echo)

	b[len(b)-1] ^= 0xff
	assert.False(t, Verify(b))
	assert.False(t, Verify(b[:2]))
}

func TestMessages(t *testing.T) {
	gw := ipv4.Addr{10, 0, 0, 1}

	testcases := []struct {
		desc   string
		msg    Message
		decode func([]byte) (Message, error)
		want   []byte
	}{
		{
			desc:   "quote",
			msg:    &Quote{Data: []byte{0x45, 0x00}},
			decode: func(b []byte) (Message, error) { return DecodeQuote(b) },
			want:   []byte{0, 0, 0, 0, 0x45, 0x00},
		},
		{
			desc:   "need frag",
			msg:    &NeedFrag{MTU: 1400, Data: []byte{0x45}},
			decode: func(b []byte) (Message, error) { return DecodeNeedFrag(b) },
			want:   []byte{0, 0, 0x05, 0x78, 0x45},
		},
		{
			desc:   "redirect",
			msg:    &Redirect{Gateway: gw, Data: []byte{0x45}},
			decode: func(b []byte) (Message, error) { return DecodeRedirect(b) },
			want:   []byte{10, 0, 0, 1, 0x45},
		},
		{
			desc:   "parameter problem",
			msg:    &ParamProb{Pointer: 9, Data: []byte{}},
			decode: func(b []byte) (Message, error) { return DecodeParamProb(b) },
			want:   []byte{9, 0, 0, 0},
		},
		{
			desc: "router advertisement",
			msg: &RtrAdvert{Lifetime: 1800, Addrs: []RtrAddr{
				{Addr: gw, Preference: RtrPrefNoDefault},
			}},
			decode: func(b []byte) (Message, error) { return DecodeRtrAdvert(b) },
			want:   []byte{1, 2, 0x07, 0x08, 10, 0, 0, 1, 0x80, 0, 0, 0},
		},
		{
			desc:   "timestamp",
			msg:    &Timestamp{ID: 1, Seq: 2, Origin: 3, Receive: 4, Transmit: 5},
			decode: func(b []byte) (Message, error) { return DecodeTimestamp(b) },
			want:   []byte{0, 1, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0, 5},
		},
		{
			desc:   "mask",
			msg:    &Mask{ID: 1, Seq: 2, Mask: ipv4.Addr{255, 255, 255, 0}},
			decode: func(b []byte) (Message, error) { return DecodeMask(b) },
			want:   []byte{0, 1, 0, 2, 255, 255, 255, 0},
		},
		{
			desc:   "traceroute",
			msg:    &Traceroute{ID: 1, OutHops: 2, ReturnHops: 0xffff, Speed: 4, MTU: 1500},
			decode: func(b []byte) (Message, error) { return DecodeTraceroute(b) },
			want:   []byte{0, 1, 0, 0, 0, 2, 0xff, 0xff, 0, 0, 0, 4, 0, 0, 0x05, 0xdc},
		},
		{
			desc:   "dns reply",
			msg:    &DNSReply{ID: 1, Seq: 2, TTL: -1, Names: []byte{3, 'f', 'o', 'o', 0}},
			decode: func(b []byte) (Message, error) { return DecodeDNSReply(b) },
			want:   []byte{0, 1, 0, 2, 0xff, 0xff, 0xff, 0xff, 3, 'f', 'o', 'o', 0},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			b := tc.msg.AppendTo(nil)
			assert.Equal(t, tc.want, b)
			assert.Equal(t, tc.msg.Len(), len(b))

			got, err := tc.decode(b)
			require.NoError(t, err)
			assert.Equal(t, tc.msg, got)

			_, err = tc.decode(b[:3])
			assert.ErrorIs(t, err, codec.ErrTruncated)
		})
	}
}

func TestDecodeRtrAdvertTruncatedEntries(t *testing.T) {
	_, err := DecodeRtrAdvert([]byte{2, 2, 0, 0, 10, 0, 0, 1, 0, 0, 0, 0})
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "echo", TypeEcho.String())
	assert.Equal(t, "unreach", TypeUnreach.String())
	assert.Equal(t, "99", Type(99).String())

	typ, ok := Types.Parse("TimExceed")
	require.True(t, ok)
	assert.Equal(t, TypeTimeExceed, typ)
}
