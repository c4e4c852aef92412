package spotify

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuthConfig returns the oauth2 configuration for the user-facing
// authorization flows.
func (c *Client) OAuthConfig(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.clientID,
		RedirectURL: c.redirectURI,
		Scopes:      scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.accountsURL + "/authorize",
			TokenURL: c.accountsURL + "/api/token",
		},
	}
}

// AuthorizeURL returns the authorization server's authorize endpoint.
func (c *Client) AuthorizeURL() string {
	return c.accountsURL + "/authorize"
}

// AppToken obtains an application-level token via the client-credentials
// grant. It carries no user scope; it is enough for catalog lookups
// such as album artwork.
func (c *Client) AppToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("spotify: client credentials not configured")
	}

	cfg := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.accountsURL + "/api/token",
	}

	token, err := cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain app token: %w", err)
	}
	return token.AccessToken, nil
}
