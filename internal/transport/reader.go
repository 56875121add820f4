package transport

import (
	"context"
	"time"

	"github.com/rileyhilliard/sensormon/internal/logger"
)

// EventKind distinguishes reader events.
type EventKind int

const (
	// EventLine carries one non-empty line.
	EventLine EventKind = iota
	// EventLost reports that the session was torn down after repeated read failures.
	EventLost
)

// String returns a human-readable event kind.
func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Event is emitted by a Reader. Events are values and safe to pass between goroutines.
type Event struct {
	Kind EventKind
	Port string
	Line string
	Err  error
	Time time.Time
}

// Reader runs the read loop for one session.
type Reader struct {
	session *Session
	cfg     Config
	out     chan<- Event
	log     logger.Logger

	// sleep waits for d or until ctx is done; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewReader creates a reader for session that sends events to out.
func NewReader(session *Session, cfg Config, out chan<- Event, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Noop()
	}
	return &Reader{
		session: session,
		cfg:     cfg.withDefaults(),
		out:     out,
		log:     log,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Run reads until ctx is cancelled or the failure threshold is exceeded.
// Cancellation is observed within one read timeout. When the threshold is
// exceeded the session is closed and a single EventLost is sent.
func (r *Reader) Run(ctx context.Context) {
	failures := 0
	name := r.session.Name()

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := r.session.ReadLine()
		if err != nil {
			failures++
			r.log.Debug("read error %d/%d on %s: %v", failures, r.cfg.FailureThreshold, name, err)

			if failures > r.cfg.FailureThreshold {
				r.log.Warn("connection to %s lost after %d consecutive read errors", name, failures)
				if cerr := r.session.Close(); cerr != nil {
					r.log.Debug("close after failure: %v", cerr)
				}
				r.emit(ctx, Event{Kind: EventLost, Port: name, Err: err, Time: time.Now()})
				return
			}

			if !r.sleep(ctx, r.cfg.ErrorBackoff) {
				return
			}
			continue
		}

		if line == "" {
			continue
		}

		failures = 0
		r.emit(ctx, Event{Kind: EventLine, Port: name, Line: line, Time: time.Now()})
	}
}

// emit delivers ev unless ctx is cancelled first.
func (r *Reader) emit(ctx context.Context, ev Event) {
	select {
	case r.out <- ev:
	case <-ctx.Done():
	}
}
