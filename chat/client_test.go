package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/CodedBeard/devchatterbot/config"
	"github.com/CodedBeard/devchatterbot/db"
	"github.com/CodedBeard/devchatterbot/testutil"
)

func TestNewClientRequiresUsername(t *testing.T) {
	cfg := &config.Config{TwitchOAuthToken: "sometoken"}
	if _, err := NewClient(context.Background(), cfg, nil, "somechannel"); err == nil {
		t.Fatal("expected error without bot username")
	}
}

func TestNewClientRequiresSomeToken(t *testing.T) {
	cfg := &config.Config{TwitchBotUsername: "botty"}
	_, err := NewClient(context.Background(), cfg, nil, "somechannel")
	if err == nil {
		t.Fatal("expected error without any token source")
	}
	if !strings.Contains(err.Error(), "no twitch chat token") {
		t.Errorf("err = %v", err)
	}
}

func TestNewClientWithEnvToken(t *testing.T) {
	cfg := &config.Config{TwitchBotUsername: "botty", TwitchOAuthToken: "oauth:abc123"}
	client, err := NewClient(context.Background(), cfg, nil, "somechannel")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.channel != "somechannel" {
		t.Errorf("channel = %q", client.channel)
	}
}

func TestNewClientFallsBackToStoredToken(t *testing.T) {
	dbx := testutil.SetupTestDB(t)
	ctx := context.Background()
	if err := db.UpsertOAuthToken(ctx, dbx, "twitch", "stored-access", "stored-refresh", time.Now().Add(time.Hour), "chat:read chat:edit"); err != nil {
		t.Fatalf("UpsertOAuthToken: %v", err)
	}

	cfg := &config.Config{TwitchBotUsername: "botty"}
	client, err := NewClient(ctx, cfg, dbx, "somechannel")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.irc == nil {
		t.Error("irc client not constructed")
	}
}
