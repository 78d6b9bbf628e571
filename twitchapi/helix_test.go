package twitchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// helixFixture returns a HelixClient pointed at a test server that serves the
// token grant plus any extra handlers.
func helixFixture(t *testing.T, handlers map[string]http.HandlerFunc) *HelixClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "app-token",
			"expires_in":   3600,
			"token_type":   "bearer",
		})
	})
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &HelixClient{
		AppTokenSource: &TokenSource{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			TokenURL:     server.URL + "/oauth2/token",
		},
		ClientID: "test-client",
		BaseURL:  server.URL,
	}
}

func TestGetUserID(t *testing.T) {
	hc := helixFixture(t, map[string]http.HandlerFunc{
		"/helix/users": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("login"); got != "somechannel" {
				t.Errorf("login query = %q, want somechannel", got)
			}
			if got := r.Header.Get("Client-Id"); got != "test-client" {
				t.Errorf("Client-Id header = %q", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer app-token" {
				t.Errorf("Authorization header = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]string{{"id": "12345", "login": "somechannel"}},
			})
		},
	})

	id, err := hc.GetUserID(context.Background(), "somechannel")
	if err != nil {
		t.Fatalf("GetUserID: %v", err)
	}
	if id != "12345" {
		t.Errorf("id = %q, want 12345", id)
	}
}

func TestGetUserIDNotFound(t *testing.T) {
	hc := helixFixture(t, map[string]http.HandlerFunc{
		"/helix/users": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]string{}})
		},
	})
	if _, err := hc.GetUserID(context.Background(), "nobody"); err == nil {
		t.Error("expected error for unknown user")
	}
	if _, err := hc.GetUserID(context.Background(), ""); err == nil {
		t.Error("expected error for empty login")
	}
}

func TestGetChannelFollowersPaginates(t *testing.T) {
	pages := []struct {
		names  []string
		cursor string
	}{
		{[]string{"Alice", "Bob"}, "cursor-1"},
		{[]string{"Carol"}, ""},
	}
	call := 0
	hc := helixFixture(t, map[string]http.HandlerFunc{
		"/helix/channels/followers": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("broadcaster_id"); got != "12345" {
				t.Errorf("broadcaster_id = %q, want 12345", got)
			}
			if call == 1 && r.URL.Query().Get("after") != "cursor-1" {
				t.Errorf("after = %q, want cursor-1", r.URL.Query().Get("after"))
			}
			page := pages[call]
			call++
			data := make([]map[string]string, 0, len(page.names))
			for _, n := range page.names {
				data = append(data, map[string]string{"user_name": n})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data":       data,
				"pagination": map[string]string{"cursor": page.cursor},
			})
		},
	})

	names, err := hc.GetChannelFollowers(context.Background(), "12345")
	if err != nil {
		t.Fatalf("GetChannelFollowers: %v", err)
	}
	want := []string{"Alice", "Bob", "Carol"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if call != 2 {
		t.Errorf("server calls = %d, want 2", call)
	}
}

func TestGetFollowedChannels(t *testing.T) {
	hc := helixFixture(t, map[string]http.HandlerFunc{
		"/helix/channels/followed": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("user_id"); got != "777" {
				t.Errorf("user_id = %q, want 777", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]string{
					{"broadcaster_login": "gamedev"},
					{"broadcaster_login": "musicchan"},
				},
				"pagination": map[string]string{},
			})
		},
	})

	logins, err := hc.GetFollowedChannels(context.Background(), "777")
	if err != nil {
		t.Fatalf("GetFollowedChannels: %v", err)
	}
	if len(logins) != 2 || logins[0] != "gamedev" || logins[1] != "musicchan" {
		t.Errorf("logins = %v", logins)
	}
}

func TestHelixErrorStatus(t *testing.T) {
	hc := helixFixture(t, map[string]http.HandlerFunc{
		"/helix/users": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	if _, err := hc.GetUserID(context.Background(), "somechannel"); err == nil {
		t.Error("expected error for 500 response")
	}
}
