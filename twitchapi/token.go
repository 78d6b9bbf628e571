package twitchapi

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/endpoints"
)

// TokenSource fetches and caches a Twitch app access (client credentials)
// token via golang.org/x/oauth2. NOTE: this token CANNOT be used for IRC
// chat; chat requires a user (bot) OAuth token with chat:read/chat:edit
// scopes.
type TokenSource struct {
	ClientID     string
	ClientSecret string
	// TokenURL overrides the Twitch identity token endpoint (tests).
	TokenURL   string
	HTTPClient *http.Client

	once sync.Once
	src  oauth2.TokenSource
}

// Get returns a valid (fresh or cached) app access token. Refresh and
// caching are handled by the underlying oauth2 token source.
func (ts *TokenSource) Get(ctx context.Context) (string, error) {
	if ts.ClientID == "" || ts.ClientSecret == "" {
		return "", errors.New("missing client id/secret")
	}
	ts.once.Do(func() {
		tokenURL := ts.TokenURL
		if tokenURL == "" {
			tokenURL = endpoints.Twitch.TokenURL
		}
		cfg := &clientcredentials.Config{
			ClientID:     ts.ClientID,
			ClientSecret: ts.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		// The source outlives any single caller, so drop ctx cancellation
		// but keep its values for the bound HTTP client.
		srcCtx := context.WithoutCancel(ctx)
		if ts.HTTPClient != nil {
			srcCtx = context.WithValue(srcCtx, oauth2.HTTPClient, ts.HTTPClient)
		}
		ts.src = cfg.TokenSource(srcCtx)
	})
	tok, err := ts.src.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
