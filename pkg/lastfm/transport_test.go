package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fastBackoff shrinks the retry delay for the duration of a test.
func fastBackoff(t *testing.T) {
	t.Helper()
	orig := backoffUnit
	backoffUnit = time.Millisecond
	t.Cleanup(func() { backoffUnit = orig })
}

// TestCall_RetriesServerErrors verifies that 5xx responses are retried
// up to the retry budget and succeed when the server recovers.
func TestCall_RetriesServerErrors(t *testing.T) {
	fastBackoff(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if _, err := w.Write([]byte(`{"user":{"name":"ok","registered":{"unixtime":"0"}}}`)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.User().GetInfo(context.Background(), "ok"); err != nil {
		t.Fatalf("expected recovery after retries, got error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestCall_RetryBudgetExhausted verifies the failure surfaces after the
// third attempt.
func TestCall_RetryBudgetExhausted(t *testing.T) {
	fastBackoff(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.User().GetInfo(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "server error") {
		t.Errorf("expected server error, got: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}

// TestCall_PermanentAPIErrorNotRetried verifies non-temporary API errors
// fail immediately.
func TestCall_PermanentAPIErrorNotRetried(t *testing.T) {
	fastBackoff(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if _, err := w.Write([]byte(`{"error":6,"message":"User not found"}`)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.User().GetInfo(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error")
	}

	var lfmErr *Error
	if e, ok := err.(*Error); ok {
		lfmErr = e
	}
	if lfmErr == nil || lfmErr.Code != ErrCodeInvalidParameters {
		t.Fatalf("expected lastfm error code 6, got: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}

// TestCall_TemporaryAPIErrorRetried verifies code 11/16 envelopes are
// retried like transient failures.
func TestCall_TemporaryAPIErrorRetried(t *testing.T) {
	fastBackoff(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			if _, err := w.Write([]byte(`{"error":16,"message":"Service temporarily unavailable"}`)); err != nil {
				t.Fatalf("failed to write response body: %v", err)
			}
			return
		}
		if _, err := w.Write([]byte(`{"user":{"name":"ok","registered":{"unixtime":"0"}}}`)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.User().GetInfo(context.Background(), "ok"); err != nil {
		t.Fatalf("expected success after temporary error, got: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

// TestBackoff_IsLinear pins the linear backoff schedule.
func TestBackoff_IsLinear(t *testing.T) {
	for attempt := 1; attempt <= 3; attempt++ {
		want := time.Duration(attempt) * backoffUnit
		if got := backoff(attempt); got != want {
			t.Errorf("backoff(%d) = %v, want %v", attempt, got, want)
		}
	}
}

// TestCall_ContextCancellation verifies a cancelled context aborts the
// retry loop.
func TestCall_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.User().GetInfo(ctx, "ok"); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
