package iolib

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trickleWriter accepts at most max bytes per call.
type trickleWriter struct {
	buf bytes.Buffer
	max int
}

func (w *trickleWriter) Write(p []byte) (int, error) {
	if len(p) > w.max {
		p = p[:w.max]
	}
	return w.buf.Write(p)
}

func TestWriteFull(t *testing.T) {
	data := []byte("Hello, World!")

	testcases := []struct {
		desc string
		max  int
	}{
		{desc: "single write", max: 64},
		{desc: "short writes", max: 3},
		{desc: "byte at a time", max: 1},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			w := &trickleWriter{max: tc.max}
			n, err := WriteFull(w, data)
			require.NoError(t, err)
			assert.Equal(t, len(data), n)
			assert.Equal(t, data, w.buf.Bytes())
		})
	}

	t.Run("stalled writer", func(t *testing.T) {
		n, err := WriteFull(&trickleWriter{max: 0}, data)
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Zero(t, n)
	})
}

func TestReadAtMost(t *testing.T) {
	b, err := ReadAtMost(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("12345"), b)

	b, err = ReadAtMost(strings.NewReader(""), 5)
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = ReadAtMost(strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, ErrTooLong)
}
