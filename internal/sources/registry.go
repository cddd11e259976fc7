package sources

import (
	"time"

	"golang.org/x/time/rate"

	"boardsync/internal/antibot"
	"boardsync/internal/config"
	"boardsync/internal/httpclient"
	"boardsync/internal/retrypolicy"
)

// BuildRegistry constructs every adapter this system knows about, wired to
// the given config's timeouts, batch sizes, and anti-bot credentials.
func BuildRegistry(cfg *config.Config) *Registry {
	policy := retrypolicy.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		MinWait:     cfg.Retry.MinWait,
		MaxWait:     cfg.Retry.MaxWait,
	}

	// Gateway rejections with 403 or 422 are retried for the anti-bot source.
	gatewayPolicy := policy
	gatewayPolicy.AdditionalRetryable = map[int]bool{403: true, 422: true}

	defaultClient := httpclient.New(cfg.Sources.DefaultHTTPTimeout)
	gateway := &antibot.Client{
		APIKey:     cfg.AntiBot.ScrapflyAPIKey,
		HTTPClient: httpclient.New(antibotTimeout(cfg)),
	}

	reg := NewRegistry()
	reg.Register(&Himalayas{
		HTTPClient: defaultClient,
		BatchSize:  cfg.Sources.HimalayasBatchSize,
		Limiter:    batchLimiter(cfg.Sources.HimalayasBatchSize),
		Policy:     policy,
	})
	reg.Register(&Remotive{HTTPClient: defaultClient, Policy: policy})
	reg.Register(&WeWorkRemotely{HTTPClient: defaultClient, Policy: policy})
	reg.Register(&PythonDotOrg{HTTPClient: defaultClient, Policy: policy})
	reg.Register(&Wellfound{
		Gateway:   gateway,
		BatchSize: cfg.Sources.WellfoundBatchSize,
		Limiter:   batchLimiter(cfg.Sources.WellfoundBatchSize),
		Policy:    gatewayPolicy,
	})
	reg.Register(&WorkAtAStartup{
		HTTPClient: defaultClient,
		Cookie:     cfg.Sources.WorkAtAStartupCookie,
		CSRFToken:  cfg.Sources.WorkAtAStartupCSRFToken,
		Policy:     policy,
	})
	return reg
}

// batchLimiter allows one full batch of requests per second, so a paginated
// source never bursts past its configured fan-out bound even across
// back-to-back batches.
func batchLimiter(batchSize int) *rate.Limiter {
	if batchSize <= 0 {
		batchSize = 5
	}
	return rate.NewLimiter(rate.Limit(batchSize), batchSize)
}

func antibotTimeout(cfg *config.Config) time.Duration {
	if cfg.AntiBot.ScrapflyRequestTimeout > 0 {
		return cfg.AntiBot.ScrapflyRequestTimeout
	}
	return 500 * time.Second
}
