// Package antibot adapts the Scrapfly scraping gateway used for sources
// that block direct polling. The gateway always answers 200 and encodes
// the real outcome in a JSON envelope; this package unwraps that envelope
// into the same fault model every other fetch path uses.
package antibot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"boardsync/pkg/utils"
)

const (
	gatewayEndpoint = "https://api.scrapfly.io/scrape"

	// DefaultTimeout matches DEFAULT_HTTP_TIMEOUT for non-ASP requests.
	DefaultTimeout = 30 * time.Second
	// ASPTimeout matches SCRAPFLY_REQUEST_TIMEOUT: ASP (anti-bot) mode needs
	// much longer to clear JS challenges upstream.
	ASPTimeout = 500 * time.Second
)

// sentinelNoExtraInfo is returned (not as an error) when the gateway reports
// HTTP 410 for the requested URL: the listing is retired, and the caller
// should degrade gracefully rather than fail the whole source run.
const sentinelNoExtraInfo = ""

// Client fetches pages through the anti-bot gateway on behalf of sources
// that cannot be polled directly.
type Client struct {
	APIKey     string
	HTTPClient *http.Client
	Source     string // registry name, attached to any DomainError raised
}

type envelope struct {
	Result struct {
		Success         bool              `json:"success"`
		StatusCode      int               `json:"status_code"`
		Content         string            `json:"content"`
		URL             string            `json:"url"`
		ResponseHeaders map[string]string `json:"response_headers"`
		Error           *struct {
			Message   string `json:"message"`
			Retryable bool   `json:"retryable"`
		} `json:"error"`
	} `json:"result"`
}

// Fetch retrieves targetURL through the gateway. asp enables anti-bot mode
// (JS rendering, proxy rotation, CAPTCHA solving upstream) and bounds the
// request by ASPTimeout instead of DefaultTimeout. That bound is a context
// deadline; the HTTPClient's own Timeout, if shorter, still ends the request
// first.
func (c *Client) Fetch(ctx context.Context, targetURL string, asp bool) (string, error) {
	timeout := DefaultTimeout
	if asp {
		timeout = ASPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?key=%s&url=%s&asp=%t",
		gatewayEndpoint, url.QueryEscape(c.APIKey), url.QueryEscape(targetURL), asp)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", utils.NewSchemaMismatchError(c.Source, "failed to build gateway request", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", utils.NewTransientNetworkError(c.Source, "gateway request failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.NewTransientNetworkError(c.Source, "failed to read gateway response", resp.StatusCode, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", utils.NewSchemaMismatchError(c.Source, "malformed gateway envelope", err)
	}

	if env.Result.Success {
		return env.Result.Content, nil
	}

	status := env.Result.StatusCode
	if status == http.StatusGone {
		// Listing retired upstream; the per-listing parser should degrade
		// gracefully rather than treat this as a source-run failure.
		return sentinelNoExtraInfo, nil
	}

	message := "gateway reported failure"
	retryable := false
	if env.Result.Error != nil {
		message = env.Result.Error.Message
		retryable = env.Result.Error.Retryable
	}

	if retryable {
		return "", utils.NewTransientNetworkError(c.Source, message, status, nil)
	}
	return "", utils.NewUpstreamBlockedError(c.Source, message, status, retryable, nil)
}
