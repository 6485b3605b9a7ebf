package log

import (
	"bytes"
	"dnet/internal/config"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.Log{Level: "info", Format: config.LogJSON}, &buf)
	require.NoError(t, err)

	l.Debug("hidden")
	l.WithField("table", "arp").Info("opened")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "opened", line["msg"])
	assert.Equal(t, "arp", line["table"])

	buf.Reset()
	l, err = New(config.Log{Level: "debug", Format: config.LogText}, &buf)
	require.NoError(t, err)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(config.Log{Level: "loud", Format: config.LogText}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New(config.Log{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
