package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dnet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{Log: Log{Level: "warn", Format: LogText}, Output: OutputText}, cfg)
}

func TestSources(t *testing.T) {
	path := writeFile(t, "interface: eth0\nlog:\n  level: info\n  format: json\noutput: yaml\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "eth0", cfg.Interface)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, LogJSON, cfg.Log.Format)
	assert.Equal(t, OutputYAML, cfg.Output)

	t.Setenv("DNET_INTERFACE", "eth1")
	t.Setenv("DNET_LOG_LEVEL", "debug")
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "eth1", cfg.Interface, "environment beats the file")
	assert.Equal(t, "debug", cfg.Log.Level)

	flags := pflag.NewFlagSet("dnet", pflag.ContinueOnError)
	flags.String("interface", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--interface", "wg0"}))
	cfg, err = Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "wg0", cfg.Interface, "a set flag beats the environment")
	assert.Equal(t, "debug", cfg.Log.Level, "an unset flag does not")
}

func TestInvalid(t *testing.T) {
	testcases := []struct {
		desc    string
		content string
	}{
		{desc: "log level", content: "log:\n  level: loud\n"},
		{desc: "log format", content: "log:\n  format: xml\n"},
		{desc: "output", content: "output: csv\n"},
		{desc: "not yaml", content: "output: [\n"},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.content), nil)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
