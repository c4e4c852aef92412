package auth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ImplicitFlow is the implicit grant variant: the access token arrives
// directly in the redirect's URL fragment, with no exchange step and no
// refresh token.
type ImplicitFlow struct {
	clientID     string
	redirectURI  string
	authorizeURL string
	store        *Store
	logger       zerolog.Logger
	now          func() time.Time
}

// NewImplicitFlow creates the implicit grant flow. authorizeURL is the
// authorization server's authorize endpoint.
func NewImplicitFlow(authorizeURL, clientID, redirectURI string, store *Store, logger zerolog.Logger) *ImplicitFlow {
	return &ImplicitFlow{
		clientID:     clientID,
		redirectURI:  redirectURI,
		authorizeURL: authorizeURL,
		store:        store,
		logger:       logger.With().Str("component", "auth").Str("flow", "implicit").Logger(),
		now:          time.Now,
	}
}

func (f *ImplicitFlow) Name() string { return "implicit" }

// AuthorizeURL builds the response_type=token authorization URL.
func (f *ImplicitFlow) AuthorizeURL() (string, error) {
	q := url.Values{}
	q.Set("client_id", f.clientID)
	q.Set("response_type", "token")
	q.Set("redirect_uri", f.redirectURI)
	q.Set("scope", strings.Join(Scopes, " "))
	return f.authorizeURL + "?" + q.Encode(), nil
}

// HandleRedirect reads the access token out of the URL fragment. A
// fragment token that differs from the stored one is accepted with a
// fixed one-hour expiry. A redirect without a fragment token leaves the
// flow idle; there is no rejection path for this variant.
func (f *ImplicitFlow) HandleRedirect(_ context.Context, redirect *url.URL) (*Credential, error) {
	fragment, err := url.ParseQuery(redirect.Fragment)
	if err != nil {
		f.logger.Debug().Err(err).Msg("Unparseable redirect fragment")
		return nil, nil
	}

	token := fragment.Get("access_token")
	if token == "" {
		return nil, nil
	}

	if current := f.store.Get(); current != nil && current.AccessToken == token {
		// Same token replayed; nothing new to store.
		return nil, nil
	}

	cred := Credential{
		AccessToken: token,
		ExpiresAt:   f.now().Add(ImplicitGrantLifetime),
	}
	f.store.Set(cred)
	f.logger.Info().Time("expires_at", cred.ExpiresAt).Msg("Access token accepted from redirect fragment")
	return &cred, nil
}
