package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/monitor"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with an empty HOME so no
// real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("TMPDIR", dir)
	return dir
}

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMonitorConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := loadMonitorConfig("", MonitorFlags{})
	require.NoError(t, err)
	assert.Equal(t, config.ModeAuto, cfg.Connect.Mode)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Empty(t, cfg.Serial.Port)
}

func TestLoadMonitorConfig_FlagsOverrideFile(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, `version: 1
serial:
  port: /dev/ttyUSB0
connect:
  mode: auto
display:
  network: true
`)

	cfg, err := loadMonitorConfig("", MonitorFlags{Port: "COM5", Mode: "retry", NoNetwork: true})
	require.NoError(t, err)
	assert.Equal(t, "COM5", cfg.Serial.Port)
	assert.Equal(t, config.ModeRetry, cfg.Connect.Mode)
	assert.False(t, cfg.Display.Network)
}

func TestLoadMonitorConfig_RetryNeedsPort(t *testing.T) {
	isolate(t)

	_, err := loadMonitorConfig("", MonitorFlags{Mode: "retry"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadMonitorConfig_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := loadMonitorConfig(filepath.Join(dir, "nope.yaml"), MonitorFlags{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestTransportConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Serial.BaudRate = 9600
	cfg.Serial.ReadTimeout = 250 * time.Millisecond
	cfg.Connect.FailureThreshold = 3
	cfg.Connect.ErrorBackoff = time.Second

	got := transportConfig(cfg)
	assert.Equal(t, transport.Config{
		BaudRate:         9600,
		ReadTimeout:      250 * time.Millisecond,
		FailureThreshold: 3,
		ErrorBackoff:     time.Second,
	}, got)
}

func TestMonitorOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Serial.Port = "COM5"
	cfg.Connect.Mode = config.ModeRetry
	cfg.Connect.RetryInterval = 3 * time.Second
	cfg.Display.Network = false

	manager := transport.NewManager(transportConfig(cfg))
	scanner := transport.NewScanner(nil, nil)

	opts, err := monitorOptions(cfg, manager, scanner, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultTitle, opts.Title)
	assert.Equal(t, monitor.ModeRetry, opts.Mode)
	assert.Equal(t, "COM5", opts.Port)
	assert.False(t, opts.Network)
	assert.Equal(t, 3*time.Second, opts.RetryInterval)
	assert.Equal(t, time.Second, opts.ReconnectDelay)
	assert.Same(t, manager, opts.Connector)
	require.NotNil(t, opts.Parser)

	// Network rules are off with the panel.
	_, matched := opts.Parser.Match("Channel:     15")
	assert.False(t, matched)

	model := monitor.NewModel(opts)
	assert.Equal(t, monitor.StateIdle, model.State())
}

func TestMonitorOptions_BadMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Connect.Mode = "sometimes"

	_, err := monitorOptions(cfg, nil, nil, logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
