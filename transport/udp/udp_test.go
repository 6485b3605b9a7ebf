package udp

import (
	"dnet/lib/codec"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderCodec(t *testing.T) {
	raw := []byte{0x14, 0xe9, 0x00, 0x35, 0x00, 0x0d, 0xbe, 0xef}

	h, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Header{SrcPort: 5353, DstPort: 53, Length: 13, Checksum: 0xbeef}, h)
	assert.Equal(t, raw, h.Encode())

	var l layers.UDP
	require.NoError(t, l.DecodeFromBytes(raw, gopacket.NilDecodeFeedback))
	assert.Equal(t, uint16(l.SrcPort), h.SrcPort)
	assert.Equal(t, uint16(l.DstPort), h.DstPort)
	assert.Equal(t, l.Length, h.Length)
	assert.Equal(t, l.Checksum, h.Checksum)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestNewHeader(t *testing.T) {
	h := NewHeader(1, 2, 5)
	assert.Equal(t, uint16(13), h.Length)
}

func TestSetChecksum(t *testing.T) {
	b := append(NewHeader(1, 2, 2).Encode(), 0xab, 0xcd)
	require.NoError(t, SetChecksum(b, 0x1234))

	// Summing again, checksum included, must fold to zero.
	var acc uint32 = 0x1234
	for i := 0; i < len(b); i += 2 {
		acc += uint32(b[i])<<8 | uint32(b[i+1])
	}
	for acc>>16 != 0 {
		acc = acc&0xffff + acc>>16
	}
	assert.Equal(t, uint32(0xffff), acc)

	assert.ErrorIs(t, SetChecksum(b[:4], 0), codec.ErrTruncated)
}
