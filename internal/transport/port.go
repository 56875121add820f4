package transport

import (
	"time"

	"go.bug.st/serial"
)

// SerialPort is the subset of serial.Port the transport needs.
// Tests substitute an in-memory implementation.
type SerialPort interface {
	Read(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
}

// PortFactory opens a serial port by name.
type PortFactory func(name string, mode *serial.Mode) (SerialPort, error)

// DefaultPortFactory opens real serial ports through go.bug.st/serial.
func DefaultPortFactory(name string, mode *serial.Mode) (SerialPort, error) {
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Config holds session and read-loop settings.
type Config struct {
	BaudRate    int
	ReadTimeout time.Duration

	// FailureThreshold is how many consecutive read failures are tolerated;
	// one more tears the session down.
	FailureThreshold int
	// ErrorBackoff throttles retries while below the threshold.
	ErrorBackoff time.Duration
}

// Defaults used when a Config field is zero.
const (
	DefaultBaudRate         = 115200
	DefaultReadTimeout      = time.Second
	DefaultFailureThreshold = 5
	DefaultErrorBackoff     = 500 * time.Millisecond
)

// DefaultConfig returns the settings the sensor firmware expects.
func DefaultConfig() Config {
	return Config{
		BaudRate:         DefaultBaudRate,
		ReadTimeout:      DefaultReadTimeout,
		FailureThreshold: DefaultFailureThreshold,
		ErrorBackoff:     DefaultErrorBackoff,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaudRate <= 0 {
		c.BaudRate = d.BaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = d.ErrorBackoff
	}
	return c
}

// mode returns the 8N1 serial mode for the configured baud rate.
func (c Config) mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}
