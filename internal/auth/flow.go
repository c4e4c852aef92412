package auth

import (
	"context"
	"errors"
	"net/url"
)

// Scopes requested from Spotify. Playback control and read access; the
// profile scopes are required by the Web Playback SDK.
var Scopes = []string{
	"streaming",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-email",
	"user-read-private",
}

// ErrStateMismatch rejects a redirect whose state parameter does not
// match the persisted handshake. Treated as a forgery or replay; the
// code is never exchanged.
var ErrStateMismatch = errors.New("auth: redirect state does not match pending authorization")

// Flow produces a Credential from an authorization redirect. Two
// variants exist: the implicit grant and authorization code with PKCE,
// selected at startup by configuration.
type Flow interface {
	// Name identifies the variant in logs and configuration.
	Name() string

	// AuthorizeURL builds the URL the user visits to grant access.
	AuthorizeURL() (string, error)

	// HandleRedirect consumes the redirect the authorization server
	// sent back. A nil Credential with a nil error means the redirect
	// carried no grant and the flow stays idle.
	HandleRedirect(ctx context.Context, redirect *url.URL) (*Credential, error)
}

// StripGrant returns the redirect URL with grant material removed, for
// rewriting the visible URL after the grant is consumed.
func StripGrant(redirect *url.URL) *url.URL {
	clean := *redirect
	clean.Fragment = ""
	clean.RawFragment = ""
	q := clean.Query()
	q.Del("code")
	q.Del("state")
	clean.RawQuery = q.Encode()
	return &clean
}
