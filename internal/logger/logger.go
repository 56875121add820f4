// Package logger provides a simple logging interface for sensormon components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
//
// The production implementation is backed by zap. While the dashboard owns the
// terminal, log output goes to a lumberjack-rotated file instead of stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugEnv enables debug output for file loggers regardless of log.debug.
const DebugEnv = "SENSORMON_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// zapLogger implements Logger on top of a sugared zap logger.
type zapLogger struct {
	prefix string
	sugar  *zap.SugaredLogger
}

// newWriterLogger builds a console-encoded zap logger that writes to w.
func newWriterLogger(prefix string, w io.Writer, debug bool) *zapLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return &zapLogger{prefix: prefix, sugar: zap.New(core).Sugar()}
}

func (l *zapLogger) format(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return msg
	}
	return l.prefix + " " + msg
}

func (l *zapLogger) Debug(format string, args ...interface{}) {
	l.sugar.Debug(l.format(format, args...))
}

func (l *zapLogger) Info(format string, args ...interface{}) {
	l.sugar.Info(l.format(format, args...))
}

func (l *zapLogger) Warn(format string, args ...interface{}) {
	l.sugar.Warn(l.format(format, args...))
}

func (l *zapLogger) Error(format string, args ...interface{}) {
	l.sugar.Error(l.format(format, args...))
}

// FileOptions controls the rotating log file used while the dashboard runs.
type FileOptions struct {
	Path       string
	Debug      bool
	MaxSizeMB  int
	MaxBackups int
}

// FileLogger writes to a rotating file. Close flushes zap and closes the file.
type FileLogger struct {
	*zapLogger
	out *lumberjack.Logger
}

// NewFileLogger creates a logger writing to opts.Path with size-based rotation.
// The SENSORMON_DEBUG environment variable also turns on debug output.
func NewFileLogger(prefix string, opts FileOptions) *FileLogger {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	out := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	debug := opts.Debug || os.Getenv(DebugEnv) != ""
	return &FileLogger{
		zapLogger: newWriterLogger(prefix, out, debug),
		out:       out,
	}
}

// Close flushes buffered entries and closes the underlying file.
func (l *FileLogger) Close() error {
	_ = l.sugar.Sync()
	return l.out.Close()
}

// WithPrefix returns a logger sharing l's output with a different prefix.
func WithPrefix(l Logger, prefix string) Logger {
	switch base := l.(type) {
	case *zapLogger:
		return &zapLogger{prefix: prefix, sugar: base.sugar}
	case *FileLogger:
		return &zapLogger{prefix: prefix, sugar: base.sugar}
	default:
		return l
	}
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// It is safe for use from the serial reader goroutine.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.add("debug", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.add("info", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.add("warn", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.add("error", format, args...)
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.Messages))
	copy(out, l.Messages)
	return out
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = Noop()

// Default returns the default logger for the package. It discards output
// until SetDefault installs a real logger, so the dashboard's screen is
// never written to by accident.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
