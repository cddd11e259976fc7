package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIsRetryable(t *testing.T) {
	assert.True(t, NewTransientNetworkError("src", "boom", 503, nil).IsRetryable())
	assert.True(t, NewUpstreamBlockedError("src", "blocked", 403, true, nil).IsRetryable())
	assert.False(t, NewUpstreamBlockedError("src", "blocked", 410, false, nil).IsRetryable())
	assert.False(t, NewInvalidSalaryError("bad salary").IsRetryable())
	assert.False(t, NewSchemaMismatchError("src", "bad shape", nil).IsRetryable())

	var nilErr *DomainError
	assert.False(t, nilErr.IsRetryable())
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := NewConfigurationError("unknown source")
	wrapped := NewDatabaseError("failed to advance watermark", cause)

	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "failed to advance watermark")
}
