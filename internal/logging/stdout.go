package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// stdoutSink writes entries to standard output, one line each, as JSON
// (default) or human-readable text with optional ANSI colors.
type stdoutSink struct {
	mu        sync.Mutex
	name      string
	text      bool
	colorized bool
}

func newStdoutSink(name string, options map[string]interface{}) *stdoutSink {
	return &stdoutSink{
		name:      name,
		text:      optString(options, "format", "json") == "text",
		colorized: optBool(options, "colorized", false),
	}
}

func (s *stdoutSink) Emit(e *Entry) error {
	line, err := renderEntry(e, s.text, s.colorized)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Fprintln(os.Stdout, line)
	return err
}

func (s *stdoutSink) Close() error { return nil }
func (s *stdoutSink) Name() string { return s.name }

// renderEntry is shared with the file sink, which supports the same two
// formats minus colors.
func renderEntry(e *Entry, text, colorized bool) (string, error) {
	if !text {
		record := make(map[string]interface{}, len(e.Fields)+3)
		for k, v := range e.Fields {
			record[k] = v
		}
		record["level"] = e.Level.String()
		record["message"] = e.Message
		record["time"] = e.Time.Format(time.RFC3339)
		b, err := json.Marshal(record)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	level := strings.ToUpper(e.Level.String())
	if colorized {
		level = colorLevel(e.Level, level)
	}

	var sb strings.Builder
	sb.WriteString(e.Time.Format("2006-01-02T15:04:05.000Z07:00"))
	sb.WriteString(" [")
	sb.WriteString(level)
	sb.WriteString("] ")
	sb.WriteString(e.Message)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
		}
	}
	return sb.String(), nil
}

func colorLevel(l Level, label string) string {
	const reset = "\033[0m"
	switch l {
	case LevelDebug:
		return "\033[90m" + label + reset
	case LevelWarn:
		return "\033[33m" + label + reset
	case LevelError, LevelFatal:
		return "\033[31m" + label + reset
	default:
		return "\033[34m" + label + reset
	}
}

// Option readers for the loosely-typed YAML option maps. YAML numbers
// arrive as int, durations as strings.

func optString(options map[string]interface{}, key, fallback string) string {
	if v, ok := options[key].(string); ok {
		return v
	}
	return fallback
}

func optBool(options map[string]interface{}, key string, fallback bool) bool {
	if v, ok := options[key].(bool); ok {
		return v
	}
	return fallback
}

func optInt(options map[string]interface{}, key string, fallback int) int {
	switch v := options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func optDuration(options map[string]interface{}, key string, fallback time.Duration) time.Duration {
	if s, ok := options[key].(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}
