package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is the Web API's regular error object.
type Error struct {
	Status  int    // HTTP status carried in the payload
	Message string // Human-readable message from Spotify
}

func (e *Error) Error() string {
	return fmt.Sprintf("spotify: error %d: %s", e.Status, e.Message)
}

// Named failures surfaced to users as distinct conditions rather than
// generic request errors.
var (
	// ErrNoDevice means no playback device is available. Starting the
	// Spotify app (or the web player) on some device resolves it.
	ErrNoDevice = errors.New("spotify: no active playback device found, open Spotify on a device and try again")

	// ErrPlaybackForbidden means the account is not entitled to remote
	// playback control. In practice this is the no-Premium case.
	ErrPlaybackForbidden = errors.New("spotify: playback failed, this feature requires Spotify Premium")
)

// tokenExpiredMessage is the exact message Spotify places in the error
// payload when an access token has expired. The match is on response
// content, not status code, and the literal is load-bearing: it must
// track what the service actually sends.
const tokenExpiredMessage = "The access token expired"

// IsTokenExpired reports whether err is Spotify telling us the access
// token expired. This is the only place the fragile message string is
// compared.
func IsTokenExpired(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Message == tokenExpiredMessage
}

// apiEnvelope is the wire shape of an error response.
type apiEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseAPIError maps an error response body to *Error, falling back to
// the HTTP status when the body is not the documented envelope.
func parseAPIError(status int, body []byte) error {
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return &Error{Status: env.Error.Status, Message: env.Error.Message}
	}
	return &Error{Status: status, Message: fmt.Sprintf("unexpected status %d", status)}
}
