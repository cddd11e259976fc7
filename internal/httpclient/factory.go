// Package httpclient builds pre-configured HTTP clients: total timeout,
// HTTP/2, optional cookie/header injection, and a round tripper that
// raises a *utils.DomainError on non-2xx responses so callers never see a
// "successful" response they'd have to status-check themselves.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"boardsync/pkg/utils"
)

// Option customizes a client built by New.
type Option func(*options)

type options struct {
	timeout time.Duration
	headers map[string]string
	cookie  string
	source  string
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

func WithCookie(cookie string) Option {
	return func(o *options) { o.cookie = cookie }
}

// WithSource tags raised DomainErrors with a source/portal name for logging.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

// New builds an *http.Client with HTTP/2 enabled and a transport that raises
// a *utils.DomainError (classified transient vs. upstream-blocked) on any
// non-2xx response, so callers can feed the result straight into
// internal/retrypolicy.Do.
func New(defaultTimeout time.Duration, opts ...Option) *http.Client {
	o := &options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	base := &http.Transport{}
	_ = http2.ConfigureTransport(base)

	return &http.Client{
		Timeout: o.timeout,
		Transport: &raisingRoundTripper{
			base:    base,
			headers: o.headers,
			cookie:  o.cookie,
			source:  o.source,
		},
	}
}

type raisingRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
	cookie  string
	source  string
}

func (rt *raisingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range rt.headers {
		req.Header.Set(k, v)
	}
	if rt.cookie != "" {
		req.Header.Set("Cookie", rt.cookie)
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return nil, utils.NewTransientNetworkError(rt.source, err.Error(), 0, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		message := fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, req.URL.String())
		if len(body) > 0 {
			message = fmt.Sprintf("%s: %s", message, string(body))
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, utils.NewTransientNetworkError(rt.source, message, resp.StatusCode, nil)
		}
		return nil, utils.NewUpstreamBlockedError(rt.source, message, resp.StatusCode, false, nil)
	}

	return resp, nil
}
