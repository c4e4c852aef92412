package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// apiError is the JSON error envelope returned by the Last.fm API.
// Errors can arrive with a 200 as well as a 4xx status, so the body
// is always inspected.
type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

const maxRetries = 3

// backoffUnit is the base delay between retries. Attempt n waits
// n * backoffUnit (linear backoff). Overridden in tests.
var backoffUnit = 1 * time.Second

// call makes a GET request to the Last.fm API with retry logic.
//
// It handles:
// - Request construction with api_key and format=json
// - Response parsing and the API error envelope
// - Retry of transient network and server failures
// - Context cancellation
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("method", method)
	query.Set("api_key", c.apiKey)
	query.Set("format", "json")

	reqURL := c.baseURL + "?" + query.Encode()

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		c.logDebugf("lastfm: calling %s (attempt %d/%d)", method, attempt, maxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "timewarp/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetryNetworkError(err) && attempt < maxRetries {
				c.logDebugf("lastfm: network error, retrying: %v", err)
				if !sleep(ctx, backoff(attempt)) {
					return nil, ctx.Err()
				}
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if attempt < maxRetries {
				c.logDebugf("lastfm: server error, retrying: %v", lastErr)
				if !sleep(ctx, backoff(attempt)) {
					return nil, ctx.Err()
				}
				continue
			}
			return nil, lastErr
		}

		// The error envelope may arrive with any non-5xx status.
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			lastfmErr := &Error{
				Code:    apiErr.Code,
				Message: apiErr.Message,
			}

			if lastfmErr.Temporary() && attempt < maxRetries {
				c.logDebugf("lastfm: temporary error, retrying: %v", lastfmErr)
				lastErr = lastfmErr
				if !sleep(ctx, backoff(attempt)) {
					return nil, ctx.Err()
				}
				continue
			}

			return nil, lastfmErr
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		c.logDebugf("lastfm: %s succeeded", method)
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// backoff returns the delay before the next retry after the given attempt.
// The delay grows linearly with the attempt number.
func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * backoffUnit
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	// URL errors may wrap network errors
	if urlErr, ok := err.(*url.Error); ok {
		if _, ok := urlErr.Err.(net.Error); ok {
			return true
		}
	}

	return false
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
