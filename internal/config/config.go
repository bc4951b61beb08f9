// Package config handles configuration loading, validation, and management
// for keybridge.
package config

import (
	"os"
	"strconv"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Engine configuration for the key translation core.
	Engine EngineConfig `toml:"engine" json:"engine" yaml:"engine"`

	// Keymap configuration for the static lookup tables.
	Keymap KeymapConfig `toml:"keymap" json:"keymap" yaml:"keymap"`

	// Host configuration for the outbound event channel.
	Host HostConfig `toml:"host" json:"host" yaml:"host"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Metrics configuration.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// EngineConfig holds key-engine configuration.
type EngineConfig struct {
	// SyncModifiers enables the critical-key synchronization passes
	// that reconcile recorded modifier state with true OS state.
	SyncModifiers bool `toml:"sync_modifiers" json:"sync_modifiers" yaml:"sync_modifiers"`
}

// KeymapConfig holds lookup-table configuration.
type KeymapConfig struct {
	// Path points to an external table file overlaid on the built-in
	// defaults. Empty means defaults only. TOML, JSON, and YAML are
	// accepted by extension.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// HostConfig holds outbound event channel configuration.
type HostConfig struct {
	// Transport selects the event sink: "stdout" writes JSON lines and
	// self-acknowledges, "unix" and "tcp" stream the framed protocol.
	Transport string `toml:"transport" json:"transport" yaml:"transport"`

	// Address is the socket path (unix) or host:port (tcp).
	Address string `toml:"address" json:"address" yaml:"address"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the output format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is where logs go: stdout, stderr, file, both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output includes "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled turns the scrape endpoint on.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Listen is the address the metrics HTTP server binds.
	Listen string `toml:"listen" json:"listen" yaml:"listen"`
}

// ApplyEnvOverrides overlays settings from the environment. Recognized
// variables mirror the file keys with a KEYBRIDGE_ prefix.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("KEYBRIDGE_SYNC_MODIFIERS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.SyncModifiers = b
		}
	}
	if v := os.Getenv("KEYBRIDGE_KEYMAP_PATH"); v != "" {
		c.Keymap.Path = v
	}
	if v := os.Getenv("KEYBRIDGE_HOST_TRANSPORT"); v != "" {
		c.Host.Transport = v
	}
	if v := os.Getenv("KEYBRIDGE_HOST_ADDRESS"); v != "" {
		c.Host.Address = v
	}
	if v := os.Getenv("KEYBRIDGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("KEYBRIDGE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("KEYBRIDGE_METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
		c.Metrics.Enabled = true
	}
}
