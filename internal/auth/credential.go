// Package auth owns the Spotify credential lifecycle: the two
// acquisition flows (implicit grant and authorization code with PKCE),
// the in-memory store with expiry-driven eviction, and the verifier and
// state handshake that survives the authorization redirect.
package auth

import (
	"time"
)

// Credential is a live Spotify access grant. Instances are owned by the
// Store; consumers receive copies and must re-read rather than cache
// them, since the store may evict concurrently.
type Credential struct {
	AccessToken  string
	RefreshToken string // empty for the implicit grant flow
	ExpiresAt    time.Time
}

// ImplicitGrantLifetime is assumed for tokens arriving via the implicit
// grant flow. That flow does not reliably report a lifetime, so a
// conservative hour is used.
const ImplicitGrantLifetime = time.Hour

// Expired reports whether the credential is past its expiry at the
// given instant.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
