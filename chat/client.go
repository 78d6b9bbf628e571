package chat

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/CodedBeard/devchatterbot/config"
	"github.com/CodedBeard/devchatterbot/db"
)

// Client is a connected IRC presence in one channel.
type Client struct {
	irc     *twitch.Client
	channel string
}

// NewClient builds an IRC client for channel using the configured bot
// credentials. When cfg carries no OAuth token it tries the stored "twitch"
// token row instead.
func NewClient(ctx context.Context, cfg *config.Config, database *sql.DB, channel string) (*Client, error) {
	if cfg.TwitchBotUsername == "" {
		return nil, fmt.Errorf("missing TWITCH_BOT_USERNAME")
	}
	token := cfg.TwitchOAuthToken
	if token == "" && database != nil {
		access, _, _, _, err := db.GetOAuthToken(ctx, database, "twitch")
		if err != nil {
			return nil, fmt.Errorf("load stored twitch token: %w", err)
		}
		token = access
	}
	if token == "" {
		return nil, fmt.Errorf("no twitch chat token: set TWITCH_OAUTH_TOKEN or complete /auth/twitch/start")
	}
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	return &Client{
		irc:     twitch.NewClient(cfg.TwitchBotUsername, token),
		channel: channel,
	}, nil
}

// SendMessage writes text to the channel, fire-and-forget.
func (c *Client) SendMessage(text string) {
	c.irc.Say(c.channel, text)
}

// OnMessage installs the inbound chat handler. Must be called before Run.
// The handler runs on the IRC client's goroutine; the room loop hands the
// message to itself before touching any state.
func (c *Client) OnMessage(fn func(sender, text string)) {
	c.irc.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		fn(msg.User.DisplayName, msg.Message)
	})
}

// Run joins the channel and blocks on the IRC connection until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := c.irc.Disconnect(); err != nil {
			slog.Debug("twitch chat disconnect", slog.Any("err", err))
		}
		close(done)
	}()

	c.irc.Join(c.channel)
	if err := c.irc.Connect(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("twitch chat connect: %w", err)
	}
	<-done
	return nil
}
