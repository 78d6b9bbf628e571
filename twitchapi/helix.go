// Package twitchapi contains minimal helpers to interact with Twitch Helix
// APIs for user id resolution and follower listing, plus the OAuth grants the
// bot needs for its chat token.
package twitchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

const defaultHelixBaseURL = "https://api.twitch.tv"

// HelixClient provides the handful of Helix calls the bot needs.
type HelixClient struct {
	AppTokenSource *TokenSource
	ClientID       string
	HTTPClient     *http.Client
	// BaseURL overrides the Helix API base (tests).
	BaseURL string
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

func (hc *HelixClient) base() string {
	if hc.BaseURL != "" {
		return hc.BaseURL
	}
	return defaultHelixBaseURL
}

// get performs an authenticated Helix GET and decodes the JSON body into out.
func (hc *HelixClient) get(ctx context.Context, path string, query url.Values, out any) error {
	tok, err := hc.AppTokenSource.Get(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.base()+path, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Client-Id", hc.ClientID)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := hc.http().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("helix %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetUserID resolves a login name to its user ID.
func (hc *HelixClient) GetUserID(ctx context.Context, login string) (string, error) {
	if login == "" {
		return "", fmt.Errorf("login empty")
	}
	q := url.Values{}
	q.Set("login", login)
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := hc.get(ctx, "/helix/users", q, &body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("user not found")
	}
	return body.Data[0].ID, nil
}

// GetChannelFollowers lists display names of the broadcaster's followers,
// following pagination cursors until exhausted.
func (hc *HelixClient) GetChannelFollowers(ctx context.Context, broadcasterID string) ([]string, error) {
	if broadcasterID == "" {
		return nil, fmt.Errorf("broadcasterID empty")
	}
	var names []string
	after := ""
	for {
		q := url.Values{}
		q.Set("broadcaster_id", broadcasterID)
		q.Set("first", "100")
		if after != "" {
			q.Set("after", after)
		}
		var body struct {
			Data []struct {
				UserName string `json:"user_name"`
			} `json:"data"`
			Pagination struct {
				Cursor string `json:"cursor"`
			} `json:"pagination"`
		}
		if err := hc.get(ctx, "/helix/channels/followers", q, &body); err != nil {
			return nil, err
		}
		for _, f := range body.Data {
			names = append(names, f.UserName)
		}
		if body.Pagination.Cursor == "" {
			return names, nil
		}
		after = body.Pagination.Cursor
	}
}

// GetFollowedChannels lists login names of the channels a user follows.
func (hc *HelixClient) GetFollowedChannels(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID empty")
	}
	var logins []string
	after := ""
	for {
		q := url.Values{}
		q.Set("user_id", userID)
		q.Set("first", "100")
		if after != "" {
			q.Set("after", after)
		}
		var body struct {
			Data []struct {
				BroadcasterLogin string `json:"broadcaster_login"`
			} `json:"data"`
			Pagination struct {
				Cursor string `json:"cursor"`
			} `json:"pagination"`
		}
		if err := hc.get(ctx, "/helix/channels/followed", q, &body); err != nil {
			return nil, err
		}
		for _, f := range body.Data {
			logins = append(logins, f.BroadcasterLogin)
		}
		if body.Pagination.Cursor == "" {
			return logins, nil
		}
		after = body.Pagination.Cursor
	}
}
