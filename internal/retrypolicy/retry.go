// Package retrypolicy wraps HTTP-producing operations with bounded
// exponential backoff and jitter. Only transient faults are retried; the
// final attempt's error is returned unchanged.
package retrypolicy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"boardsync/internal/logging"
	"boardsync/pkg/utils"
)

// Policy configures a retry loop.
type Policy struct {
	MaxAttempts         int
	MinWait             time.Duration
	MaxWait             time.Duration
	AdditionalRetryable map[int]bool // extra HTTP status codes to treat as retryable
}

// Default returns the stock policy: 5 attempts, 1s-5s waits.
func Default() Policy {
	return Policy{MaxAttempts: 5, MinWait: time.Second, MaxWait: 5 * time.Second}
}

// Do runs op, retrying on transient faults per the policy. A failure is
// retried when it is a net.Error, or a *utils.DomainError of kind
// TransientNetwork or UpstreamBlocked that is flagged Retryable or carries a
// 429, 5xx or AdditionalRetryable status (see isRetryable); any other error
// is returned immediately.
func Do[T any](ctx context.Context, source string, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	logger := logging.GetGlobalLogger()

	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = Default().MaxAttempts
	}
	if policy.MinWait <= 0 {
		policy.MinWait = Default().MinWait
	}
	if policy.MaxWait <= 0 {
		policy.MaxWait = Default().MaxWait
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.MinWait
	bo.MaxInterval = policy.MaxWait
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.5

	bounded := backoff.WithMaxRetries(bo, uint64(policy.MaxAttempts-1))
	withCtx := backoff.WithContext(bounded, ctx)

	var result T
	attempt := 0

	operation := func() error {
		attempt++
		var err error
		result, err = op(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err, policy.AdditionalRetryable) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("retrying after error", map[string]interface{}{
			"source":   source,
			"error":    err.Error(),
			"attempt":  attempt,
			"wait_for": wait.String(),
		})
	}

	err := backoff.RetryNotify(operation, withCtx, notify)
	return result, err
}

// isRetryable classifies a failure: network errors are always retryable,
// HTTP status errors are retryable on 429/5xx or any caller-supplied
// additional code. Context cancellation is never retryable.
func isRetryable(err error, additional map[int]bool) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var domainErr *utils.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Kind != utils.KindTransientNetwork && domainErr.Kind != utils.KindUpstreamBlocked {
			return false
		}
		if domainErr.Retryable {
			return true
		}
		return statusRetryable(domainErr.StatusCode, additional)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

func statusRetryable(status int, additional map[int]bool) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status >= 500 && status < 600 {
		return true
	}
	return additional[status]
}
