package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sensormon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sensormon or lower the version field.")
	}

	if err := validateSerial(cfg.Serial); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'serial' section in your .sensormon.yaml.")
	}

	if err := validateConnect(cfg.Connect, cfg.Serial.Port); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'connect' section in your .sensormon.yaml.")
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your .sensormon.yaml.")
	}

	return nil
}

// validateSerial checks serial link settings.
func validateSerial(s SerialConfig) error {
	if s.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive (got %d) - the board talks at 115200", s.BaudRate)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("serial.read_timeout must be positive (got %v) - try '1s'", s.ReadTimeout)
	}
	for _, m := range s.Markers {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("serial.markers has an empty entry - remove it or add a marker")
		}
	}
	for _, vid := range s.VendorIDs {
		if !isVendorID(vid) {
			return fmt.Errorf("serial.vendor_ids entry '%s' isn't a 4-digit hex USB vendor id like '303a'", vid)
		}
	}
	return nil
}

func isVendorID(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// validateConnect checks connection settings. Retry mode needs a fixed port.
func validateConnect(c ConnectConfig, port string) error {
	switch c.Mode {
	case ModeAuto:
	case ModeRetry:
		if port == "" {
			return fmt.Errorf("connect.mode 'retry' needs serial.port - retry mode reopens one fixed port")
		}
	default:
		return fmt.Errorf("connect.mode '%s' isn't valid - use 'auto' or 'retry'", c.Mode)
	}

	if c.RetryInterval <= 0 {
		return fmt.Errorf("connect.retry_interval must be positive (got %v)", c.RetryInterval)
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("connect.reconnect_delay can't be negative")
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("connect.failure_threshold must be at least 1 (got %d)", c.FailureThreshold)
	}
	if c.ErrorBackoff < 0 {
		return fmt.Errorf("connect.error_backoff can't be negative")
	}
	return nil
}

// validateLog checks log settings.
func validateLog(l LogConfig) error {
	if l.MaxSizeMB < 0 {
		return fmt.Errorf("log.max_size_mb can't be negative (got %d)", l.MaxSizeMB)
	}
	return nil
}
