// internal/config/normalize.go
package config

// Normalize fills in defaults for everything left unset.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.BaudRate == 0 {
		cfg.Device.BaudRate = 9600
	}
	if cfg.Device.Address == 0 {
		cfg.Device.Address = 0xF8
	}
	if cfg.Device.ReadTimeoutMs == 0 {
		cfg.Device.ReadTimeoutMs = 200
	}
	if cfg.Device.PollIntervalMs == 0 {
		cfg.Device.PollIntervalMs = 200
	}

	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = ":9090"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
}
