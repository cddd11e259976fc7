package logging

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// sentrySink forwards Error and Fatal entries to Sentry, tagging each event
// with the source/portal name when the entry carries one. It holds its own
// client and hub so log-driven reporting doesn't fight over global Sentry
// state with the internal/reporting collector.
type sentrySink struct {
	name string
	hub  *sentry.Hub
}

func newSentrySink(name string, options map[string]interface{}) (*sentrySink, error) {
	dsn := optString(options, "dsn", "")
	if dsn == "" {
		return nil, fmt.Errorf("sentry adapter requires a dsn option")
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: optString(options, "environment", "dev"),
	})
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &sentrySink{name: name, hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *sentrySink) Emit(e *Entry) error {
	if e.Level < LevelError {
		return nil
	}

	s.hub.WithScope(func(scope *sentry.Scope) {
		if source, ok := e.Fields["source"]; ok {
			scope.SetTag("source", fmt.Sprintf("%v", source))
		}
		scope.SetExtras(e.Fields)

		event := sentry.NewEvent()
		event.Message = e.Message
		event.Timestamp = e.Time
		event.Level = sentryLevel(e.Level)
		s.hub.CaptureEvent(event)
	})
	return nil
}

func (s *sentrySink) Close() error {
	s.hub.Flush(2 * time.Second)
	return nil
}

func (s *sentrySink) Name() string { return s.name }

func sentryLevel(l Level) sentry.Level {
	if l == LevelFatal {
		return sentry.LevelFatal
	}
	return sentry.LevelError
}
