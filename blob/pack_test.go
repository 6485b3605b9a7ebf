package blob

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	b := New()
	n, err := b.Pack("%4D", 0xDEADBEEF)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b.Bytes())

	require.NoError(t, b.Rewind())
	var v uint32
	require.NoError(t, b.Unpack("%4D", &v))
	assert.Equal(t, uint32(0xDEADBEEF), v)
}

func TestPack(t *testing.T) {
	host32 := binary.NativeEndian.AppendUint32(nil, 0x01020304)
	host16 := binary.NativeEndian.AppendUint16(nil, 0x0102)

	testcases := []struct {
		desc   string
		format string
		args   []any
		want   []byte
	}{
		{desc: "network u32", format: "%D", args: []any{uint32(0x01020304)}, want: []byte{1, 2, 3, 4}},
		{desc: "network u16", format: "%H", args: []any{0x0102}, want: []byte{1, 2}},
		{desc: "byte", format: "%c", args: []any{uint8(0xff)}, want: []byte{0xff}},
		{desc: "host u32", format: "%d", args: []any{0x01020304}, want: host32},
		{desc: "host u16", format: "%h", args: []any{uint16(0x0102)}, want: host16},
		{desc: "buffer", format: "%3b", args: []any{[]byte("abcdef")}, want: []byte("abc")},
		{desc: "buffer with star length", format: "%*b", args: []any{2, "xyz"}, want: []byte("xy")},
		{desc: "string", format: "%s", args: []any{"hi"}, want: []byte("hi\x00")},
		{desc: "string padded", format: "%5s", args: []any{"hi"}, want: []byte("hi\x00\x00\x00")},
		{desc: "string truncated", format: "%3s", args: []any{"hello"}, want: []byte("he\x00")},
		{desc: "literals", format: "GET %s\r\n", args: []any{"/"}, want: []byte("GET /\x00\r\n")},
		{
			desc:   "mixed",
			format: "%H%H%c%*b",
			args:   []any{80, 443, 6, 4, []byte{10, 0, 0, 1}},
			want:   []byte{0, 80, 1, 0xbb, 6, 10, 0, 0, 1},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			b := New()
			n, err := b.Pack(tc.format, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, len(tc.want), n)
			assert.Equal(t, tc.want, b.Bytes())
		})
	}
}

func TestPackErrors(t *testing.T) {
	testcases := []struct {
		desc   string
		format string
		args   []any
	}{
		{desc: "unknown directive", format: "%x", args: []any{1}},
		{desc: "dangling percent", format: "abc%", args: nil},
		{desc: "dangling length", format: "%12", args: nil},
		{desc: "missing argument", format: "%D%D", args: []any{1}},
		{desc: "extra argument", format: "%D", args: []any{1, 2}},
		{desc: "value too large", format: "%c", args: []any{256}},
		{desc: "negative value", format: "%H", args: []any{-1}},
		{desc: "wrong integer length", format: "%2D", args: []any{1}},
		{desc: "buffer without length", format: "%b", args: []any{[]byte("abc")}},
		{desc: "buffer too short", format: "%4b", args: []any{[]byte("abc")}},
		{desc: "star needs an int", format: "%*b", args: []any{"2", "abc"}},
		{desc: "string needs text", format: "%s", args: []any{42}},
		{desc: "late failure", format: "%D%D%x", args: []any{1, 2, 3}},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			b := FromBytes([]byte("keep"))
			_, err := b.Pack(tc.format, tc.args...)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Equal(t, []byte("keep"), b.Bytes(), "failed pack must not write")
			assert.Zero(t, b.Offset())
		})
	}
}

func TestUnpack(t *testing.T) {
	b := New()
	_, err := b.Pack("%D%H%c%d%h%4b%s:%*b", uint32(7), 8, 9, 10, 11, []byte("wxyz"), "name", 2, []byte("ok"))
	require.NoError(t, err)
	require.NoError(t, b.Rewind())

	var (
		d32, h32 uint32
		d16, h16 uint16
		c        uint8
		buf      = make([]byte, 4)
		name     string
		tail     []byte
	)
	require.NoError(t, b.Unpack("%D%H%c%d%h%4b%16s:%*b", &d32, &d16, &c, &h32, &h16, buf, &name, 2, &tail))

	assert.Equal(t, uint32(7), d32)
	assert.Equal(t, uint16(8), d16)
	assert.Equal(t, uint8(9), c)
	assert.Equal(t, uint32(10), h32)
	assert.Equal(t, uint16(11), h16)
	assert.Equal(t, []byte("wxyz"), buf)
	assert.Equal(t, "name", name)
	assert.Equal(t, []byte("ok"), tail)
	assert.Zero(t, b.Len())
}

func TestUnpackErrors(t *testing.T) {
	data := []byte{0, 1, 2, 3, 'a', 'b', 'c'}

	testcases := []struct {
		desc   string
		format string
		dests  func() []any
	}{
		{desc: "not enough data", format: "%D%D", dests: func() []any { return []any{new(uint32), new(uint32)} }},
		{desc: "wrong destination type", format: "%D", dests: func() []any { return []any{new(uint16)} }},
		{desc: "literal mismatch", format: "%Hx", dests: func() []any { return []any{new(uint16)} }},
		{desc: "string without length", format: "%4b%s", dests: func() []any { return []any{make([]byte, 4), new(string)} }},
		{desc: "string without nul", format: "%4b%3s", dests: func() []any { return []any{make([]byte, 4), new(string)} }},
		{desc: "buffer destination too small", format: "%4b", dests: func() []any { return []any{make([]byte, 2)} }},
		{desc: "unknown directive", format: "%q", dests: func() []any { return []any{new(uint8)} }},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			b := FromBytes(data)
			err := b.Unpack(tc.format, tc.dests()...)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Zero(t, b.Offset(), "failed unpack must not move the offset")
		})
	}
}

func TestUnpackAtomic(t *testing.T) {
	b := FromBytes([]byte{0, 0, 0, 42, 0xff})
	var first, second uint32
	err := b.Unpack("%D%D", &first, &second)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Zero(t, first, "no destination is assigned on failure")
}
