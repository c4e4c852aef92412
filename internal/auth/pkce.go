package auth

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// PKCEFlow is the Authorization-Code-with-PKCE variant. The code
// exchange is bound to a locally held verifier so a party that only
// observes the redirect cannot redeem the code, and a random state
// parameter guards the redirect endpoint against cross-site request
// forgery.
type PKCEFlow struct {
	config  *oauth2.Config
	session SessionStore
	store   *Store
	logger  zerolog.Logger
}

// NewPKCEFlow creates the PKCE flow. The handshake is persisted in the
// given session store so it survives the redirect round trip.
func NewPKCEFlow(config *oauth2.Config, session SessionStore, store *Store, logger zerolog.Logger) *PKCEFlow {
	return &PKCEFlow{
		config:  config,
		session: session,
		store:   store,
		logger:  logger.With().Str("component", "auth").Str("flow", "pkce").Logger(),
	}
}

func (f *PKCEFlow) Name() string { return "pkce" }

// AuthorizeURL builds the response_type=code authorization URL carrying
// the S256 challenge and CSRF state. The pending handshake is reused if
// one exists, so rebuilding the URL does not invalidate an in-flight
// authorization.
func (f *PKCEFlow) AuthorizeURL() (string, error) {
	hs, err := LoadOrCreateHandshake(f.session)
	if err != nil {
		return "", err
	}
	return f.config.AuthCodeURL(hs.State, oauth2.S256ChallengeOption(hs.Verifier)), nil
}

// HandleRedirect validates the redirect's state against the persisted
// handshake and exchanges the authorization code plus verifier for a
// credential. A state mismatch aborts before any exchange. An exchange
// failure is logged and leaves the store unchanged; the user must
// re-initiate.
func (f *PKCEFlow) HandleRedirect(ctx context.Context, redirect *url.URL) (*Credential, error) {
	q := redirect.Query()
	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		return nil, nil
	}

	hs, err := LoadOrCreateHandshake(f.session)
	if err != nil {
		return nil, err
	}

	if state != hs.State {
		f.logger.Warn().Msg("Rejecting redirect: state mismatch")
		if err := ClearHandshake(f.session); err != nil {
			f.logger.Debug().Err(err).Msg("Failed to clear handshake")
		}
		return nil, ErrStateMismatch
	}

	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(hs.Verifier))
	if err != nil {
		f.logger.Error().Err(err).Msg("Token exchange failed")
		return nil, err
	}

	if err := ClearHandshake(f.session); err != nil {
		f.logger.Debug().Err(err).Msg("Failed to clear handshake")
	}

	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	f.store.Set(cred)
	f.logger.Info().Time("expires_at", cred.ExpiresAt).Msg("Authorization code exchanged")
	return &cred, nil
}
