package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Engine: EngineConfig{
			SyncModifiers: true,
		},
		Keymap: KeymapConfig{
			Path: "",
		},
		Host: HostConfig{
			Transport: "stdout",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9614",
		},
	}
}
