package backend

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthConfig describes how requests to the chat backend are authenticated.
// An empty config means no authentication.
type AuthConfig struct {
	Token        string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func (a AuthConfig) clientCredentials() bool {
	return a.TokenURL != "" && a.ClientID != ""
}

// Authenticated returns an *http.Client that attaches a bearer token to every
// request. Client credentials take precedence over a static token; tokens
// fetched from TokenURL are cached and refreshed by oauth2.
func Authenticated(ctx context.Context, a AuthConfig) *http.Client {
	switch {
	case a.clientCredentials():
		cc := &clientcredentials.Config{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			TokenURL:     a.TokenURL,
			Scopes:       a.Scopes,
		}
		return cc.Client(ctx)
	case a.Token != "":
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: a.Token,
			TokenType:   "Bearer",
		}))
	default:
		return &http.Client{}
	}
}
