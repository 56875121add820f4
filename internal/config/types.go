package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Connection modes.
const (
	// ModeAuto discovers the board once at startup and reconnects once after a loss.
	ModeAuto = "auto"
	// ModeRetry reopens a fixed port until it succeeds.
	ModeRetry = "retry"
)

// Config represents the complete .sensormon.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version" json:"version"`
	Serial  SerialConfig  `yaml:"serial" mapstructure:"serial" json:"serial"`
	Connect ConnectConfig `yaml:"connect" mapstructure:"connect" json:"connect"`
	Display DisplayConfig `yaml:"display" mapstructure:"display" json:"display"`
	Log     LogConfig     `yaml:"log" mapstructure:"log" json:"log"`
}

// SerialConfig describes the serial link to the board.
type SerialConfig struct {
	// Port is the device to open, e.g. /dev/ttyACM0 or COM3.
	// Empty means discover it.
	Port string `yaml:"port,omitempty" mapstructure:"port" json:"port"`

	BaudRate    int           `yaml:"baud_rate" mapstructure:"baud_rate" json:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout"`

	// Markers are case-insensitive substrings matched against the port's
	// product description and name during discovery.
	Markers []string `yaml:"markers,omitempty" mapstructure:"markers" json:"markers"`

	// VendorIDs are USB vendor ids (hex, no 0x) accepted during discovery.
	VendorIDs []string `yaml:"vendor_ids,omitempty" mapstructure:"vendor_ids" json:"vendor_ids"`
}

// ConnectConfig controls connection and reconnection behavior.
type ConnectConfig struct {
	// Mode is "auto" or "retry".
	Mode string `yaml:"mode" mapstructure:"mode" json:"mode"`

	// RetryInterval is the delay between open attempts in retry mode.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval" json:"retry_interval"`

	// ReconnectDelay is how long to wait after a lost connection.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay" json:"reconnect_delay"`

	// FailureThreshold is how many consecutive read errors are tolerated.
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold" json:"failure_threshold"`

	// ErrorBackoff is the pause after a tolerated read error.
	ErrorBackoff time.Duration `yaml:"error_backoff" mapstructure:"error_backoff" json:"error_backoff"`
}

// DisplayConfig controls the dashboard.
type DisplayConfig struct {
	// Network shows the Zigbee network panel and enables its parse rules.
	Network bool   `yaml:"network" mapstructure:"network" json:"network"`
	Title   string `yaml:"title" mapstructure:"title" json:"title"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	// File is the log path. Empty disables logging.
	File      string `yaml:"file,omitempty" mapstructure:"file" json:"file"`
	Debug     bool   `yaml:"debug" mapstructure:"debug" json:"debug"`
	MaxSizeMB int    `yaml:"max_size_mb" mapstructure:"max_size_mb" json:"max_size_mb"`
}

// DefaultTitle is the dashboard heading.
const DefaultTitle = "ESP32-C6 Sensor Monitor"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Serial: SerialConfig{
			BaudRate:    115200,
			ReadTimeout: time.Second,
			Markers:     []string{"espressif", "jtag", "cp210", "ch340", "ch9102", "ftdi", "usb serial"},
			VendorIDs:   []string{"303a", "10c4", "1a86", "0403"},
		},
		Connect: ConnectConfig{
			Mode:             ModeAuto,
			RetryInterval:    2 * time.Second,
			ReconnectDelay:   time.Second,
			FailureThreshold: 5,
			ErrorBackoff:     500 * time.Millisecond,
		},
		Display: DisplayConfig{
			Network: true,
			Title:   DefaultTitle,
		},
		Log: LogConfig{
			MaxSizeMB: 5,
		},
	}
}
