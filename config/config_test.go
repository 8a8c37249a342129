package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/autotox/peer"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Millisecond, cfg.TickMax())
	assert.Len(t, cfg.BootstrapNodes, 3)
	assert.False(t, cfg.Bootstrap)
	assert.False(t, cfg.AutoReplyAddresses, "address replies are opt-in")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autotox.yaml")
	content := `name: bob
download_dir: /tmp/downloads
start_port: 40000
end_port: 40010
bootstrap: true
auto_reply_addresses: true
bootstrap_nodes:
  - address: example.org
    port: 33445
    public_key: F404ABAA1C99A9D37D61AB54898F56793E1DEF8BD46B1038B9D822E8460FAB67
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Name)
	assert.Equal(t, "/tmp/downloads", cfg.DownloadDir)
	assert.Equal(t, uint16(40000), cfg.StartPort)
	assert.Equal(t, uint16(40010), cfg.EndPort)
	assert.True(t, cfg.Bootstrap)
	assert.True(t, cfg.AutoReplyAddresses)
	require.Len(t, cfg.BootstrapNodes, 1)
	assert.Equal(t, peer.BootstrapNode{
		Address:   "example.org",
		Port:      33445,
		PublicKey: "F404ABAA1C99A9D37D61AB54898F56793E1DEF8BD46B1038B9D822E8460FAB67",
	}, cfg.BootstrapNodes[0])
	assert.Equal(t, "autobot", cfg.StatusMessage, "unset keys keep their defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("AUTOTOX_LOG_LEVEL", "debug")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "autotox.yaml")
	cfg := Default()
	cfg.Name = "carol"
	cfg.HistoryCount = 50
	require.NoError(t, Write(path, cfg, false))
	assert.Error(t, Write(path, cfg, false), "existing files are not replaced")
	require.NoError(t, Write(path, cfg, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty_savedata", mutate: func(c *Config) { c.SavedataFile = "" }},
		{name: "inverted_ports", mutate: func(c *Config) { c.StartPort, c.EndPort = 2, 1 }},
		{name: "zero_port", mutate: func(c *Config) { c.StartPort = 0 }},
		{name: "short_key", mutate: func(c *Config) { c.BootstrapNodes[0].PublicKey = "ABCD" }},
		{name: "non_hex_key", mutate: func(c *Config) {
			c.BootstrapNodes[0].PublicKey = "ZZ04ABAA1C99A9D37D61AB54898F56793E1DEF8BD46B1038B9D822E8460FAB67"
		}},
		{name: "missing_address", mutate: func(c *Config) { c.BootstrapNodes[1].Address = "" }},
		{name: "long_name", mutate: func(c *Config) { c.Name = string(make([]byte, 200)) }},
		{name: "history", mutate: func(c *Config) { c.HistoryCount = 0 }},
		{name: "tick", mutate: func(c *Config) { c.TickMaxMS = -1 }},
		{name: "log_level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
