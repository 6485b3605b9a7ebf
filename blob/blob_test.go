package blob

import (
	"bytes"
	"dnet/lib/codec"
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSeekRead(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 129, 1000} {
		b := New()
		data := bytes.Repeat([]byte{0xa5}, n)

		written, err := b.Write(data)
		require.NoError(t, err)
		assert.Equal(t, n, written)
		assert.Equal(t, n, b.Offset())

		off, err := b.Seek(0, io.SeekStart)
		require.NoError(t, err)
		assert.Zero(t, off)

		got, err := b.Next(n)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestWriteOverwrites(t *testing.T) {
	b := FromBytes([]byte("hello, world"))
	_, err := b.Seek(7, io.SeekStart)
	require.NoError(t, err)

	_, err = b.Write([]byte("gophers"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello, gophers"), b.Bytes())
	assert.Equal(t, 14, b.Size())
	assert.Zero(t, b.Len())
}

func TestRead(t *testing.T) {
	b := FromBytes([]byte("abcdef"))

	p := make([]byte, 4)
	n, err := b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(p[:n]))

	n, err = b.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(p[:n]))

	_, err = b.Read(p)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, b.Rewind())
	rest, err := b.Rest()
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(rest))

	all, err := io.ReadAll(FromBytes([]byte("xyz")))
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(all))
}

func TestSeek(t *testing.T) {
	b := FromBytes([]byte("0123456789"))

	testcases := []struct {
		desc    string
		offset  int64
		whence  int
		want    int64
		wantErr bool
	}{
		{desc: "start", offset: 3, whence: io.SeekStart, want: 3},
		{desc: "current", offset: 2, whence: io.SeekCurrent, want: 5},
		{desc: "end", offset: -1, whence: io.SeekEnd, want: 9},
		{desc: "exactly the end", offset: 0, whence: io.SeekEnd, want: 10},
		{desc: "negative", offset: -11, whence: io.SeekEnd, wantErr: true},
		{desc: "past the end", offset: 11, whence: io.SeekStart, wantErr: true},
		{desc: "bad whence", offset: 0, whence: 7, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			before := b.Offset()
			off, err := b.Seek(tc.offset, tc.whence)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Equal(t, before, b.Offset())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, off)
		})
	}
}

func TestIndex(t *testing.T) {
	b := FromBytes([]byte("abcabcabc"))
	_, err := b.Seek(2, io.SeekStart)
	require.NoError(t, err)

	i, err := b.Index([]byte("abc"), false)
	require.NoError(t, err)
	assert.Equal(t, 3, i)
	assert.Equal(t, 2, b.Offset())

	i, err = b.Index([]byte("abc"), true)
	require.NoError(t, err)
	assert.Zero(t, i)

	i, err = b.Rindex([]byte("abc"), false)
	require.NoError(t, err)
	assert.Equal(t, 6, i)

	_, err = b.Index([]byte("zzz"), true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Rindex([]byte("zzz"), false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRindexFromOffset(t *testing.T) {
	b := FromBytes([]byte("abcxxabcxx"))
	_, err := b.Seek(6, io.SeekStart)
	require.NoError(t, err)

	_, err = b.Rindex([]byte("abc"), false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 6, b.Offset())

	_, err = b.Seek(4, io.SeekStart)
	require.NoError(t, err)
	i, err := b.Rindex([]byte("abc"), false)
	require.NoError(t, err)
	assert.Equal(t, 5, i)

	i, err = b.Rindex([]byte("xx"), true)
	require.NoError(t, err)
	assert.Equal(t, 8, i)
	assert.Zero(t, b.Offset())
}

func TestNextNegative(t *testing.T) {
	b := FromBytes([]byte("abc"))
	assert.NotPanics(t, func() {
		_, err := b.Next(-1)
		assert.Error(t, err)
	})
	assert.Zero(t, b.Offset())
}

func TestDump(t *testing.T) {
	data := []byte("0123456789abcdefXYZ")
	b := FromBytes(data)

	var out bytes.Buffer
	require.NoError(t, b.Dump(&out))
	assert.Equal(t, hex.Dump(data), out.String())
}

func TestMaxSize(t *testing.T) {
	b := New(WithMaxSize(8))
	_, err := b.Write(make([]byte, 8))
	require.NoError(t, err)

	_, err = b.Write([]byte{1})
	assert.ErrorIs(t, err, codec.ErrCapacity)
	assert.Equal(t, 8, b.Size())
}

func TestReset(t *testing.T) {
	b := FromBytes([]byte("data"))
	require.NoError(t, b.Reset())
	assert.Zero(t, b.Size())
	assert.Zero(t, b.Offset())
}

func TestClose(t *testing.T) {
	b := FromBytes([]byte("data"))
	require.NoError(t, b.Close())

	_, err := b.Write([]byte{1})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Index([]byte("d"), true)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Pack("%c", 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Unpack("%c", new(uint8)), ErrClosed)
	assert.ErrorIs(t, b.Dump(io.Discard), ErrClosed)
	assert.ErrorIs(t, b.Close(), ErrClosed)
}
