package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// Session storage keys for the pending handshake. The names match the
// keys the web client used, so a half-finished authorization from an
// older build still resolves.
const (
	sessionKeyVerifier = "spotify_pkce_verifier"
	sessionKeyState    = "spotify_pkce_state"
)

// verifierBytes is the entropy behind the code verifier.
const verifierBytes = 64

// Handshake is the verifier and CSRF state pair scoped to one
// authorization attempt.
type Handshake struct {
	Verifier string
	State    string
}

// Challenge returns the S256 code challenge for the verifier:
// the URL-safe unpadded base64 of its SHA-256 digest.
func (h Handshake) Challenge() string {
	sum := sha256.Sum256([]byte(h.Verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// newHandshake generates a fresh verifier and state.
func newHandshake() (Handshake, error) {
	buf := make([]byte, verifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return Handshake{}, fmt.Errorf("failed to generate verifier: %w", err)
	}
	return Handshake{
		Verifier: base64.RawURLEncoding.EncodeToString(buf),
		State:    uuid.NewString(),
	}, nil
}

// LoadOrCreateHandshake returns the pending handshake from the session
// store, generating and persisting one only if none exists. Reading
// before generating keeps re-entry idempotent: rebuilding the authorize
// URL while an authorization is in flight must not invalidate it.
func LoadOrCreateHandshake(session SessionStore) (Handshake, error) {
	verifier, okV, err := session.Get(sessionKeyVerifier)
	if err != nil {
		return Handshake{}, err
	}
	state, okS, err := session.Get(sessionKeyState)
	if err != nil {
		return Handshake{}, err
	}
	if okV && okS && verifier != "" && state != "" {
		return Handshake{Verifier: verifier, State: state}, nil
	}

	hs, err := newHandshake()
	if err != nil {
		return Handshake{}, err
	}
	if err := session.Set(sessionKeyVerifier, hs.Verifier); err != nil {
		return Handshake{}, err
	}
	if err := session.Set(sessionKeyState, hs.State); err != nil {
		return Handshake{}, err
	}
	return hs, nil
}

// ClearHandshake drops any pending handshake. Called once an attempt
// completes or is rejected.
func ClearHandshake(session SessionStore) error {
	if err := session.Delete(sessionKeyVerifier); err != nil {
		return err
	}
	return session.Delete(sessionKeyState)
}
