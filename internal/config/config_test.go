package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Engine.SyncModifiers)
	assert.Equal(t, "stdout", cfg.Host.Transport)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 99 }},
		{"unknown transport", func(c *Config) { c.Host.Transport = "carrier-pigeon" }},
		{"unix without address", func(c *Config) { c.Host.Transport = "unix"; c.Host.Address = "" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"file output without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }},
		{"metrics without listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "cfg.toml", `
version = 1

[engine]
sync_modifiers = false

[host]
transport = "tcp"
address = "127.0.0.1:7000"

[logging]
level = "debug"
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.False(t, cfg.Engine.SyncModifiers)
	assert.Equal(t, "tcp", cfg.Host.Transport)
	assert.Equal(t, "127.0.0.1:7000", cfg.Host.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset sections keep their defaults.
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadYAMLAndJSON(t *testing.T) {
	yml := writeConfig(t, "cfg.yaml", `
version: 1
host:
  transport: unix
  address: /tmp/keybridge.sock
`)
	cfg, err := NewLoader(yml).Load()
	require.NoError(t, err)
	assert.Equal(t, "unix", cfg.Host.Transport)

	js := writeConfig(t, "cfg.json", `{
  "version": 1,
  "keymap": {"path": "custom.toml"}
}`)
	cfg, err = NewLoader(js).Load()
	require.NoError(t, err)
	assert.Equal(t, "custom.toml", cfg.Keymap.Path)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "cfg.toml", `
version = 1

[host]
transport = "smoke-signal"
`)
	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KEYBRIDGE_SYNC_MODIFIERS", "false")
	t.Setenv("KEYBRIDGE_HOST_TRANSPORT", "tcp")
	t.Setenv("KEYBRIDGE_HOST_ADDRESS", "127.0.0.1:7001")
	t.Setenv("KEYBRIDGE_LOG_LEVEL", "warn")
	t.Setenv("KEYBRIDGE_METRICS_LISTEN", "127.0.0.1:9999")

	cfg := LoadFromEnv()
	assert.False(t, cfg.Engine.SyncModifiers)
	assert.Equal(t, "tcp", cfg.Host.Transport)
	assert.Equal(t, "127.0.0.1:7001", cfg.Host.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Metrics.Listen)
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := writeConfig(t, "cfg.toml", `
version = 1

[logging]
level = "info"
`)

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	defer loader.Close()

	changed := make(chan *Config, 1)
	loader.OnChange(func(c *Config) { changed <- c })
	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte(`
version = 1

[logging]
level = "debug"
`), 0644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "debug", loader.Config().Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatchRejectsInvalidReload(t *testing.T) {
	path := writeConfig(t, "cfg.toml", "version = 1\n")

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	defer loader.Close()

	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte(`
version = 1

[host]
transport = "smoke-signal"
`), 0644))

	select {
	case err := <-loader.Errors():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
	// The previous good config stays in effect.
	assert.Equal(t, "stdout", loader.Config().Host.Transport)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
