package transport

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"go.bug.st/serial"
)

// maxLineLength bounds the pending buffer when a device never sends '\n'.
const maxLineLength = 4096

// Session is one open serial connection.
type Session struct {
	name    string
	cfg     Config
	port    SerialPort
	buf     []byte
	pending []byte

	mu     sync.Mutex
	closed bool
}

// Open opens name at the configured baud rate and read timeout.
// Failures carry the ErrConnection code and the OS message.
func Open(name string, cfg Config, factory PortFactory) (*Session, error) {
	cfg = cfg.withDefaults()
	if factory == nil {
		factory = DefaultPortFactory
	}
	if name == "" {
		return nil, errors.New(errors.ErrConnection,
			"No serial port selected",
			"Pass --port or set serial.port in .sensormon.yaml")
	}

	port, err := factory(name, cfg.mode())
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnection,
			fmt.Sprintf("Couldn't open %s", name),
			openSuggestion(err))
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, errors.WrapWithCode(err, errors.ErrConnection,
			fmt.Sprintf("Couldn't set read timeout on %s", name),
			"")
	}

	return &Session{
		name: name,
		cfg:  cfg,
		port: port,
		buf:  make([]byte, 256),
	}, nil
}

// openSuggestion maps serial library error codes to a hint for the user.
func openSuggestion(err error) string {
	var portErr *serial.PortError
	if !stderrors.As(err, &portErr) {
		return "Check the board is plugged in"
	}
	switch portErr.Code() {
	case serial.PortNotFound:
		return "Check the board is plugged in and the port name is right (sensormon ports)"
	case serial.PermissionDenied:
		return "Add your user to the dialout (Linux) or uucp (Arch) group"
	case serial.PortBusy:
		return "Close any other serial monitor using this port"
	default:
		return "Check the board is plugged in"
	}
}

// Name returns the port identifier.
func (s *Session) Name() string {
	return s.name
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ReadLine returns the next complete line, decoded and trimmed.
// It waits at most about one read timeout. An empty string with a nil
// error means no complete line arrived in time; partial data is kept for
// the next call. Read failures carry the ErrTransport code.
func (s *Session) ReadLine() (string, error) {
	if s.Closed() {
		return "", errors.New(errors.ErrTransport,
			fmt.Sprintf("Session on %s is closed", s.name), "")
	}

	if line, ok := s.takeLine(); ok {
		return line, nil
	}

	deadline := time.Now().Add(s.cfg.ReadTimeout)
	for {
		n, err := s.port.Read(s.buf)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrTransport,
				fmt.Sprintf("Read from %s failed", s.name), "")
		}
		if n == 0 {
			return "", nil
		}

		s.pending = append(s.pending, s.buf[:n]...)
		if line, ok := s.takeLine(); ok {
			return line, nil
		}
		if len(s.pending) >= maxLineLength {
			line := DecodeLine(s.pending)
			s.pending = s.pending[:0]
			return line, nil
		}
		if time.Now().After(deadline) {
			return "", nil
		}
	}
}

// takeLine removes and decodes the first '\n'-terminated line in pending.
func (s *Session) takeLine() (string, bool) {
	idx := bytes.IndexByte(s.pending, '\n')
	if idx < 0 {
		return "", false
	}
	line := DecodeLine(s.pending[:idx])
	s.pending = append(s.pending[:0], s.pending[idx+1:]...)
	return line, true
}

// Close releases the port. Calling it again is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.port.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Couldn't close %s", s.name), "")
	}
	return nil
}

// DecodeLine converts raw bytes to text, dropping invalid UTF-8 sequences
// and trimming surrounding whitespace (including '\r').
func DecodeLine(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}
