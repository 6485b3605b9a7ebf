package addr

import (
	"context"
	"net"
	"net/netip"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testcases := []struct {
		desc    string
		input   string
		typ     Type
		bits    int
		repr    string
		wantErr error
	}{
		{desc: "ipv4", input: "192.168.1.10", typ: TypeIP, bits: 32, repr: "192.168.1.10"},
		{desc: "ipv4 cidr", input: "192.168.1.10/24", typ: TypeIP, bits: 24, repr: "192.168.1.10/24"},
		{desc: "ipv4 full prefix", input: "10.0.0.1/32", typ: TypeIP, bits: 32, repr: "10.0.0.1"},
		{desc: "ipv6", input: "2001:DB8::1", typ: TypeIP6, bits: 128, repr: "2001:db8::1"},
		{desc: "ipv6 cidr", input: "fe80::/10", typ: TypeIP6, bits: 10, repr: "fe80::/10"},
		{desc: "mac", input: "de:ad:be:ef:ba:be", typ: TypeEth, bits: 48, repr: "de:ad:be:ef:ba:be"},
		{desc: "mac with hyphens", input: "DE-AD-BE-EF-BA-BE", typ: TypeEth, bits: 48, repr: "de:ad:be:ef:ba:be"},
		{desc: "mac with prefix", input: "de:ad:be:00:00:00/24", typ: TypeEth, bits: 24, repr: "de:ad:be:00:00:00/24"},
		{desc: "prefix too long", input: "10.0.0.0/33", wantErr: ErrParse},
		{desc: "ipv6 prefix too long", input: "::/129", wantErr: ErrParse},
		{desc: "negative prefix", input: "10.0.0.0/-1", wantErr: ErrParse},
		{desc: "empty prefix", input: "10.0.0.0/", wantErr: ErrParse},
		{desc: "signed prefix", input: "10.0.0.1/+24", wantErr: ErrParse},
		{desc: "zero padded prefix", input: "10.0.0.1/024", wantErr: ErrParse},
		{desc: "spaced prefix", input: "10.0.0.1/ 24", wantErr: ErrParse},
		{desc: "bad ipv6", input: "1::2::3", wantErr: ErrParse},
		{desc: "empty", input: "", wantErr: ErrParse},
		{desc: "hostname without resolver", input: "localhost", wantErr: ErrParse},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			a, err := ParseLiteral(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Zero(t, a)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.typ, a.Type())
			assert.Equal(t, tc.bits, a.Bits())
			assert.Equal(t, tc.repr, a.String())

			// Formatting is lossless.
			again, err := ParseLiteral(a.String())
			require.NoError(t, err)
			assert.Equal(t, a, again)
		})
	}
}

type fakeResolver map[string][]netip.Addr

func (r fakeResolver) LookupNetIP(_ context.Context, _, host string) ([]netip.Addr, error) {
	ips, ok := r[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return ips, nil
}

func TestParserResolve(t *testing.T) {
	p := Parser{Resolver: fakeResolver{
		"dual":   {netip.MustParseAddr("2001:db8::1"), netip.MustParseAddr("192.0.2.1")},
		"v6only": {netip.MustParseAddr("2001:db8::2")},
		"empty":  {},
	}}
	ctx := context.Background()

	a, err := p.Parse(ctx, "dual")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", a.String())

	a, err = p.Parse(ctx, "dual/24")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1/24", a.String())

	a, err = p.Parse(ctx, "v6only")
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::2", a.String())

	_, err = p.Parse(ctx, "missing")
	assert.ErrorIs(t, err, ErrResolve)
	assert.NotErrorIs(t, err, ErrParse)

	_, err = p.Parse(ctx, "empty")
	assert.ErrorIs(t, err, ErrResolve)

	// Literals never reach the resolver.
	a, err = p.Parse(ctx, "10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, TypeIP, a.Type())
}

func TestNetworkBroadcast(t *testing.T) {
	a := MustParse("192.168.1.10/24")

	n, err := a.Network()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.0/24", n.String())

	b, err := a.Broadcast()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.255/24", b.String())

	m, err := a.Mask()
	require.NoError(t, err)
	assert.Equal(t, "255.255.255.0", m.String())

	n6, err := MustParse("2001:db8:1:2::5/64").Network()
	require.NoError(t, err)
	assert.Equal(t, "2001:db8:1:2::/64", n6.String())

	ne, err := MustParse("de:ad:be:ef:ba:be/24").Network()
	require.NoError(t, err)
	assert.Equal(t, "de:ad:be:00:00:00/24", ne.String())

	_, err = MustParse("2001:db8::1/64").Broadcast()
	assert.ErrorIs(t, err, ErrNotApplicable)
	_, err = MustParse("de:ad:be:ef:ba:be").Broadcast()
	assert.ErrorIs(t, err, ErrNotApplicable)
	_, err = Addr{}.Network()
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestNetworkClearsHostBits(t *testing.T) {
	for _, s := range []string{"10.255.255.255/8", "172.16.33.7/20", "1.2.3.4/0", "ffff::ffff/17"} {
		t.Run(s, func(t *testing.T) {
			a := MustParse(s)
			n, err := a.Network()
			require.NoError(t, err)

			assert.True(t, n.Contains(a))
			assert.True(t, a.Contains(n))

			c, err := Compare(n, a)
			require.NoError(t, err)
			assert.LessOrEqual(t, c, 0)

			p, err := a.Prefix()
			require.NoError(t, err)
			assert.Equal(t, p.Masked().Addr().String(), mustNetIP(t, n).String())
		})
	}
}

func mustNetIP(t *testing.T, a Addr) netip.Addr {
	t.Helper()
	ip, ok := a.NetIP()
	require.True(t, ok)
	return ip
}

func TestCompare(t *testing.T) {
	testcases := []struct {
		desc string
		a, b string
		want int
	}{
		{desc: "equal", a: "10.0.0.1", b: "10.0.0.1", want: 0},
		{desc: "less", a: "10.0.0.1", b: "10.0.0.2", want: -1},
		{desc: "greater", a: "10.0.1.0", b: "10.0.0.255", want: 1},
		{desc: "same bytes, shorter prefix first", a: "10.0.0.0/8", b: "10.0.0.0/16", want: -1},
		{desc: "mac", a: "00:00:00:00:00:02", b: "00:00:00:00:00:01", want: 1},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			c, err := Compare(MustParse(tc.a), MustParse(tc.b))
			require.NoError(t, err)
			assert.Equal(t, tc.want, c)
		})
	}

	_, err := Compare(MustParse("10.0.0.1"), MustParse("::1"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestMaskConversions(t *testing.T) {
	m, err := BitsToMask(20, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xf0, 0x00}, m)

	n, err := MaskToBits(m)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = MaskToBits([]byte{0xff, 0xff, 0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	n, err = MaskToBits(make([]byte, 16))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = MaskToBits([]byte{0xff, 0x0f, 0, 0})
	assert.ErrorIs(t, err, ErrParse)
	_, err = MaskToBits([]byte{0xff, 0x00, 0x01, 0})
	assert.ErrorIs(t, err, ErrParse)
	_, err = BitsToMask(33, 4)
	assert.ErrorIs(t, err, ErrParse)
}

func TestConversions(t *testing.T) {
	a, err := FromIP(net.ParseIP("192.0.2.1"))
	require.NoError(t, err)
	assert.Equal(t, TypeIP, a.Type())

	_, n, err := net.ParseCIDR("2001:db8::/32")
	require.NoError(t, err)
	a, err = FromIPNet(n)
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::/32", a.String())

	ipn, err := a.IPNet()
	require.NoError(t, err)
	assert.Equal(t, n.String(), ipn.String())

	hw, err := net.ParseMAC("02:00:5e:10:00:01")
	require.NoError(t, err)
	a, err = FromHardwareAddr(hw)
	require.NoError(t, err)
	got, ok := a.HardwareAddr()
	assert.True(t, ok)
	assert.Equal(t, hw, got)
	_, err = a.IPNet()
	assert.ErrorIs(t, err, ErrNotApplicable)

	a = FromNetIP(netip.MustParseAddr("::ffff:10.0.0.1"))
	assert.Equal(t, TypeIP, a.Type())

	a, err = FromPrefix(netip.MustParsePrefix("10.0.0.0/8"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", a.String())

	_, err = New(TypeIP, []byte{1, 2, 3}, 32)
	assert.ErrorIs(t, err, ErrParse)
}

func TestTextMarshaling(t *testing.T) {
	var a Addr
	require.NoError(t, a.UnmarshalText([]byte("10.0.0.0/8")))
	text, err := a.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", string(text))

	err = a.UnmarshalText([]byte("not an address"))
	assert.True(t, errors.Is(err, ErrParse))
}
