// Package spotify is a thin client for the Spotify Web API surface this
// application touches: the token endpoint, the player endpoints, and
// track search. The playback SDK itself is treated as an opaque remote
// device; this package only mirrors and nudges its state.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the Web API endpoint.
	DefaultBaseURL = "https://api.spotify.com/v1"
	// DefaultAccountsURL is the authorization server.
	DefaultAccountsURL = "https://accounts.spotify.com"
)

// Config holds client configuration.
type Config struct {
	ClientID     string       // Required for token grants
	ClientSecret string       // Required for the client-credentials grant only
	RedirectURI  string       // Redirect target registered with the app
	HTTPClient   *http.Client // Optional (defaults to http.DefaultClient)
	BaseURL      string       // Optional, used for testing
	AccountsURL  string       // Optional, used for testing
	Logger       zerolog.Logger
}

// Client talks to the Spotify Web API. Access tokens are passed per
// call rather than cached on the client: the credential may be evicted
// at any moment, so callers re-read it from the store for every
// request.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	baseURL      string
	accountsURL  string
	logger       zerolog.Logger
}

// NewClient creates a Spotify Web API client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	accountsURL := cfg.AccountsURL
	if accountsURL == "" {
		accountsURL = DefaultAccountsURL
	}
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		httpClient:   httpClient,
		baseURL:      baseURL,
		accountsURL:  accountsURL,
		logger:       cfg.Logger.With().Str("component", "spotify").Logger(),
	}
}

const maxRetries = 3

// backoffUnit is the base retry delay; attempt n waits n * backoffUnit.
// Overridden in tests.
var backoffUnit = 1 * time.Second

// do performs an authenticated request with the shared retry policy and
// returns the response body. 4xx responses are decoded into *Error and
// never retried; network failures and 5xx responses are retried up to
// the budget.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, token string) ([]byte, int, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = io.ReadAll(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = strings.NewReader(string(payload))
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if isNetworkError(err) && attempt < maxRetries {
				c.logger.Debug().Err(err).Str("path", path).Msg("Network error, retrying")
				if !sleep(ctx, backoff(attempt)) {
					return nil, 0, ctx.Err()
				}
				continue
			}
			return nil, 0, fmt.Errorf("http request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if attempt < maxRetries {
				c.logger.Debug().Err(lastErr).Str("path", path).Msg("Server error, retrying")
				if !sleep(ctx, backoff(attempt)) {
					return nil, 0, ctx.Err()
				}
				continue
			}
			return nil, resp.StatusCode, lastErr
		}

		if resp.StatusCode >= 400 {
			return nil, resp.StatusCode, parseAPIError(resp.StatusCode, respBody)
		}

		return respBody, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get performs a GET and decodes the JSON response into v when v is
// non-nil and content was returned. It reports whether content was
// present (the player endpoints answer 204 when nothing is playing).
func (c *Client) get(ctx context.Context, path string, query url.Values, token string, v interface{}) (bool, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, query, nil, token)
	if err != nil {
		return false, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return false, nil
	}
	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return true, nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * backoffUnit
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(net.Error); ok {
		return true
	}
	if urlErr, ok := err.(*url.Error); ok {
		if _, ok := urlErr.Err.(net.Error); ok {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
