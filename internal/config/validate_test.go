package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "retry with port",
			mutate: func(c *Config) {
				c.Connect.Mode = ModeRetry
				c.Serial.Port = "/dev/ttyACM0"
			},
		},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "zero baud",
			mutate:  func(c *Config) { c.Serial.BaudRate = 0 },
			wantErr: "serial.baud_rate",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Serial.ReadTimeout = 0 },
			wantErr: "serial.read_timeout",
		},
		{
			name:    "blank marker",
			mutate:  func(c *Config) { c.Serial.Markers = []string{"jtag", " "} },
			wantErr: "serial.markers",
		},
		{
			name:    "bad vendor id",
			mutate:  func(c *Config) { c.Serial.VendorIDs = []string{"0x303a"} },
			wantErr: "serial.vendor_ids",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Connect.Mode = "manual" },
			wantErr: "connect.mode 'manual'",
		},
		{
			name:    "retry without port",
			mutate:  func(c *Config) { c.Connect.Mode = ModeRetry },
			wantErr: "needs serial.port",
		},
		{
			name:    "zero retry interval",
			mutate:  func(c *Config) { c.Connect.RetryInterval = 0 },
			wantErr: "connect.retry_interval",
		},
		{
			name:    "negative reconnect delay",
			mutate:  func(c *Config) { c.Connect.ReconnectDelay = -time.Second },
			wantErr: "connect.reconnect_delay",
		},
		{
			name:    "zero failure threshold",
			mutate:  func(c *Config) { c.Connect.FailureThreshold = 0 },
			wantErr: "connect.failure_threshold",
		},
		{
			name:    "negative backoff",
			mutate:  func(c *Config) { c.Connect.ErrorBackoff = -1 },
			wantErr: "connect.error_backoff",
		},
		{
			name:    "negative log size",
			mutate:  func(c *Config) { c.Log.MaxSizeMB = -1 },
			wantErr: "log.max_size_mb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
