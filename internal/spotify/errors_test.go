package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsTokenExpired(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "expired token message",
			err:  &Error{Status: 401, Message: "The access token expired"},
			want: true,
		},
		{
			name: "wrapped expired token",
			err:  fmt.Errorf("poll failed: %w", &Error{Status: 401, Message: "The access token expired"}),
			want: true,
		},
		{
			name: "other 401",
			err:  &Error{Status: 401, Message: "Invalid access token"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("The access token expired"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTokenExpired(tt.err); got != tt.want {
				t.Errorf("IsTokenExpired(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "documented envelope",
			status:      http.StatusNotFound,
			body:        `{"error":{"status":404,"message":"Device not found"}}`,
			wantStatus:  404,
			wantMessage: "Device not found",
		},
		{
			name:        "non-json body falls back to http status",
			status:      http.StatusBadGateway,
			body:        "upstream exploded",
			wantStatus:  502,
			wantMessage: "unexpected status 502",
		},
		{
			name:        "empty envelope falls back",
			status:      http.StatusInternalServerError,
			body:        `{}`,
			wantStatus:  500,
			wantMessage: "unexpected status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError(tt.status, []byte(tt.body))

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.wantStatus)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}
