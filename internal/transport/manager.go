// Package transport owns the serial connection to the sensor board:
// port discovery, the session lifecycle, and the background read loop.
//
// A Manager holds at most one Session. Each session gets one Reader
// goroutine that turns the byte stream into line events. Cancellation uses
// a per-session context, which the reader observes within one read timeout.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/logger"
)

// eventBuffer is the capacity of the manager's event channel.
const eventBuffer = 64

// Manager owns the single active session and its reader.
type Manager struct {
	cfg     Config
	factory PortFactory
	log     logger.Logger
	events  chan Event

	lockDir   string
	lockStale time.Duration

	mu      sync.Mutex
	lock    *lock.Lock
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithPortFactory replaces the function used to open ports.
func WithPortFactory(f PortFactory) Option {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithPortLock makes Connect take a per-port lock under dir, so a second
// sensormon can't open the same board. stale <= 0 disables age expiry.
func WithPortLock(dir string, stale time.Duration) Option {
	return func(m *Manager) {
		m.lockDir = dir
		m.lockStale = stale
	}
}

// NewManager creates a manager with no open session.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:     cfg.withDefaults(),
		factory: DefaultPortFactory,
		log:     logger.Noop(),
		events:  make(chan Event, eventBuffer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the effective transport settings.
func (m *Manager) Config() Config {
	return m.cfg
}

// Events returns the channel that receives reader events for every session.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Connect opens port and starts its reader. It is a no-op while a session
// is already open, so there is never more than one.
func (m *Manager) Connect(port string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && !m.session.Closed() {
		m.log.Debug("connect %s ignored: already connected to %s", port, m.session.Name())
		return nil
	}
	m.releaseLocked()

	if m.lockDir != "" && port != "" {
		l, err := lock.TryAcquire(m.lockDir, port, m.lockStale)
		if err != nil {
			m.log.Warn("lock %s failed: %v", port, err)
			return err
		}
		m.lock = l
	}

	session, err := Open(port, m.cfg, m.factory)
	if err != nil {
		m.log.Warn("open %s failed: %v", port, err)
		m.releaseLock()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	reader := NewReader(session, m.cfg, m.events, m.log)

	m.session = session
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		reader.Run(ctx)
	}()

	m.log.Info("connected to %s at %d baud", port, m.cfg.BaudRate)
	return nil
}

// Disconnect stops the reader, waits for it to exit and closes the port.
// It is safe to call when nothing is open.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	name := m.session.Name()
	m.releaseLocked()
	m.log.Info("disconnected from %s", name)
	return nil
}

// releaseLocked cancels and waits for the current reader, then closes the
// session. Callers hold m.mu.
func (m *Manager) releaseLocked() {
	defer m.releaseLock()
	if m.session == nil {
		return
	}
	m.cancel()
	<-m.done
	if err := m.session.Close(); err != nil {
		m.log.Debug("close %s: %v", m.session.Name(), err)
	}
	m.session = nil
	m.cancel = nil
	m.done = nil
}

// releaseLock drops the port lock, if held. Callers hold m.mu.
func (m *Manager) releaseLock() {
	if m.lock == nil {
		return
	}
	if err := m.lock.Release(); err != nil {
		m.log.Warn("release lock %s: %v", m.lock.Dir, err)
	}
	m.lock = nil
}

// Connected reports whether a session is open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && !m.session.Closed()
}

// Port returns the name of the open session's port, or "".
func (m *Manager) Port() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.Closed() {
		return ""
	}
	return m.session.Name()
}
