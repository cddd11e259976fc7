// Package logging fans structured log entries out to pluggable sinks:
// stdout, file and Sentry. Sinks are described by the YAML document in
// LOGGING_ADAPTERS_CONFIG; when that document enables no adapter (or is
// absent) a single JSON stdout sink is wired.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"boardsync/internal/config"
)

// Level orders entry severities. Entries below a logger's level are
// discarded before any sink sees them.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "info"
	}
}

// ParseLevel maps a LOG_LEVEL string to a Level, defaulting to info on
// anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Entry is one log record as handed to every sink.
type Entry struct {
	Level   Level
	Message string
	Time    time.Time
	Fields  map[string]interface{}
}

// Sink is one log destination. Emit must be safe for concurrent use; the
// fan-out logger calls it from whichever goroutine logged.
type Sink interface {
	Emit(e *Entry) error
	Close() error
	Name() string
}

// Logger is the interface the rest of the system logs through. The chaining
// methods (WithField, WithFields, WithContext) return derived loggers
// sharing the same sinks; the receiver is never mutated.
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger

	SetLevel(level Level)
	Close() error
}

// fanout writes each entry to every registered sink. A sink failure is
// printed to stderr rather than logged, to avoid recursing into the logger.
type fanout struct {
	mu    sync.RWMutex
	sinks []Sink
	level Level
	bound map[string]interface{}
	ctx   context.Context
}

func newFanout(level Level, sinks []Sink) *fanout {
	return &fanout{sinks: sinks, level: level, ctx: context.Background()}
}

func (f *fanout) emit(level Level, message string, extra []map[string]interface{}) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if level < f.level {
		return
	}

	fields := make(map[string]interface{}, len(f.bound))
	for k, v := range f.bound {
		fields[k] = v
	}
	for _, m := range extra {
		for k, v := range m {
			fields[k] = v
		}
	}

	entry := &Entry{Level: level, Message: message, Time: time.Now().UTC(), Fields: fields}
	for _, s := range f.sinks {
		if err := s.Emit(entry); err != nil {
			fmt.Fprintf(os.Stderr, "log sink %s: %v\n", s.Name(), err)
		}
	}
}

func (f *fanout) Debug(message string, fields ...map[string]interface{}) {
	f.emit(LevelDebug, message, fields)
}

func (f *fanout) Info(message string, fields ...map[string]interface{}) {
	f.emit(LevelInfo, message, fields)
}

func (f *fanout) Warn(message string, fields ...map[string]interface{}) {
	f.emit(LevelWarn, message, fields)
}

func (f *fanout) Error(message string, fields ...map[string]interface{}) {
	f.emit(LevelError, message, fields)
}

// Fatal logs the entry, flushes every sink, and exits the process.
func (f *fanout) Fatal(message string, fields ...map[string]interface{}) {
	f.emit(LevelFatal, message, fields)
	f.Close()
	os.Exit(1)
}

func (f *fanout) derive(extra map[string]interface{}, ctx context.Context) *fanout {
	f.mu.RLock()
	defer f.mu.RUnlock()

	bound := make(map[string]interface{}, len(f.bound)+len(extra))
	for k, v := range f.bound {
		bound[k] = v
	}
	for k, v := range extra {
		bound[k] = v
	}
	if ctx == nil {
		ctx = f.ctx
	}
	return &fanout{sinks: f.sinks, level: f.level, bound: bound, ctx: ctx}
}

func (f *fanout) WithField(key string, value interface{}) Logger {
	return f.derive(map[string]interface{}{key: value}, nil)
}

func (f *fanout) WithFields(fields map[string]interface{}) Logger {
	return f.derive(fields, nil)
}

func (f *fanout) WithContext(ctx context.Context) Logger {
	return f.derive(nil, ctx)
}

func (f *fanout) SetLevel(level Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = level
}

func (f *fanout) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var failed []string
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("closing log sinks: %s", strings.Join(failed, "; "))
	}
	return nil
}

// buildSink constructs the sink a LogAdapterSpec describes.
func buildSink(spec config.LogAdapterSpec) (Sink, error) {
	switch spec.Type {
	case "stdout":
		return newStdoutSink(spec.Name, spec.Options), nil
	case "file":
		return newFileSink(spec.Name, spec.Options)
	case "sentry":
		return newSentrySink(spec.Name, spec.Options)
	default:
		return nil, fmt.Errorf("unknown log adapter type %q", spec.Type)
	}
}

var (
	globalMu     sync.Mutex
	globalLogger *fanout
)

// InitializeLogging builds the process-wide logger from configuration.
// Disabled adapter specs are skipped; an empty spec list yields a single
// JSON stdout sink.
func InitializeLogging(cfg *config.Config) error {
	var sinks []Sink
	for _, spec := range cfg.Logging.Adapters {
		if !spec.Enabled {
			continue
		}
		sink, err := buildSink(spec)
		if err != nil {
			return fmt.Errorf("log adapter %q: %w", spec.Name, err)
		}
		sinks = append(sinks, sink)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, newStdoutSink("stdout", nil))
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = newFanout(ParseLevel(cfg.Logging.Level), sinks)
	return nil
}

// GetGlobalLogger returns the process-wide logger, falling back to a plain
// JSON stdout logger when InitializeLogging has not run (tests, early
// startup failures).
func GetGlobalLogger() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = newFanout(LevelInfo, []Sink{newStdoutSink("stdout", nil)})
	}
	return globalLogger
}

// CloseLogging flushes and closes every sink on the process-wide logger.
func CloseLogging() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		return nil
	}
	err := globalLogger.Close()
	globalLogger = nil
	return err
}
