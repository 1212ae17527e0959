// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/gotjoshua/pzem004t"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Device.Port == "" {
		return fmt.Errorf("device: port is required")
	}
	if cfg.Device.BaudRate < 0 {
		return fmt.Errorf("device: baud_rate must be positive, got %d", cfg.Device.BaudRate)
	}
	if cfg.Device.ReadTimeoutMs < 0 {
		return fmt.Errorf("device: read_timeout_ms must be positive, got %d", cfg.Device.ReadTimeoutMs)
	}
	if cfg.Device.PollIntervalMs < 0 {
		return fmt.Errorf("device: poll_interval_ms must be positive, got %d", cfg.Device.PollIntervalMs)
	}

	if cfg.Log.Level != "" {
		if _, err := pzem.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}

	return nil
}
