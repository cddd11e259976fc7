// Package reporting wraps the Sentry SDK to report pipeline failures,
// tagged by source/portal name so issues group per job board.
package reporting

import (
	"time"

	"github.com/getsentry/sentry-go"

	"boardsync/internal/config"
)

// Collector reports errors to Sentry. It is a no-op when not configured
// (empty DSN or ENV=dev), so local development and tests never require a
// live Sentry project.
type Collector struct {
	enabled bool
}

// New initializes the global Sentry SDK client from configuration and
// returns a Collector bound to it. Nothing is sent when DSN is empty or
// Environment is "dev".
func New(cfg *config.Config) (*Collector, error) {
	if cfg.Reporting.SentryDSN == "" || cfg.Reporting.Environment == "dev" {
		return &Collector{enabled: false}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Reporting.SentryDSN,
		Environment:      cfg.Reporting.Environment,
		TracesSampleRate: cfg.Reporting.TracesSampleRate,
	})
	if err != nil {
		return nil, err
	}

	return &Collector{enabled: true}, nil
}

// ReportSourceFailure reports a failure encountered while running a single
// source, tagging the event with the source name so Sentry issues group by
// source.
func (c *Collector) ReportSourceFailure(source string, err error) {
	if !c.enabled || err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("source", source)
		sentry.CaptureException(err)
	})
}

// ReportPanic reports a recovered panic from a scheduled job, tagged with
// the source name when known.
func (c *Collector) ReportPanic(source string, recovered interface{}) {
	if !c.enabled {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if source != "" {
			scope.SetTag("source", source)
		}
		sentry.CurrentHub().Recover(recovered)
	})
}

// Flush blocks until buffered events are sent, or the timeout elapses.
func (c *Collector) Flush(timeout time.Duration) {
	if !c.enabled {
		return
	}
	sentry.Flush(timeout)
}
