package reporting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/config"
)

func TestNew_EmptyDSNIsDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Reporting.Environment = "production"

	c, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.enabled)
}

func TestNew_DevEnvironmentIsDisabledEvenWithDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.Reporting.SentryDSN = "https://public@example.com/1"
	cfg.Reporting.Environment = "dev"

	c, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, c.enabled)
}

func TestDisabledCollector_ReportMethodsAreNoops(t *testing.T) {
	c := &Collector{}
	assert.NotPanics(t, func() {
		c.ReportSourceFailure("remotive", errors.New("boom"))
		c.ReportPanic("remotive", "recovered value")
		c.Flush(10 * time.Millisecond)
	})
}

func TestEnabledCollector_NilErrorIsIgnored(t *testing.T) {
	c := &Collector{enabled: true}
	assert.NotPanics(t, func() {
		c.ReportSourceFailure("remotive", nil)
	})
}
