package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Version <= 0 || c.Version > Version {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}

	switch strings.ToLower(c.Host.Transport) {
	case "stdout", "":
	case "unix", "tcp":
		if c.Host.Address == "" {
			return fmt.Errorf("host transport %q requires an address", c.Host.Transport)
		}
	default:
		return fmt.Errorf("unknown host transport %q", c.Host.Transport)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	switch strings.ToLower(c.Logging.Output) {
	case "", "stdout", "stderr":
	case "file", "both":
		if c.Logging.FilePath == "" {
			return fmt.Errorf("log output %q requires file_path", c.Logging.Output)
		}
	default:
		return fmt.Errorf("unknown log output %q", c.Logging.Output)
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics enabled without a listen address")
	}

	return nil
}
