// Package streaming contains systems reacting to stream platform events,
// currently follower notifications. Handlers are invoked synchronously on
// the room loop; the Helix-backed poller hands its results to the loop
// rather than calling subscribers from its own goroutine.
package streaming

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CodedBeard/devchatterbot/automation"
	"github.com/CodedBeard/devchatterbot/telemetry"
)

// Token identifies a follower subscription for later removal.
type Token int

// FollowerService delivers batches of new follower display names to
// subscribers and can list the channels the broadcaster follows.
type FollowerService interface {
	Subscribe(handler func(names []string)) Token
	Unsubscribe(t Token)
	UsersWeFollow(ctx context.Context) ([]string, error)
}

// Currency grants coins to viewers.
type Currency interface {
	AddCurrency(ctx context.Context, names []string, amount int) error
}

// FollowableSystem welcomes each new follower in chat and grants them a
// fixed coin reward.
type FollowableSystem struct {
	sink      automation.Sink
	followers FollowerService
	currency  Currency
	reward    int

	ctx   context.Context
	token Token
}

func NewFollowableSystem(sink automation.Sink, followers FollowerService, currency Currency, reward int) *FollowableSystem {
	return &FollowableSystem{sink: sink, followers: followers, currency: currency, reward: reward}
}

// Start subscribes to follower notifications. ctx is used for currency
// grants triggered by later notifications.
func (f *FollowableSystem) Start(ctx context.Context) {
	f.ctx = ctx
	f.token = f.followers.Subscribe(f.handleNewFollowers)
}

// Stop detaches from follower notifications.
func (f *FollowableSystem) Stop() {
	f.followers.Unsubscribe(f.token)
}

func (f *FollowableSystem) handleNewFollowers(names []string) {
	for _, name := range names {
		if err := f.currency.AddCurrency(f.ctx, []string{name}, f.reward); err != nil {
			slog.Error("follower reward grant failed", slog.String("follower", name), slog.Any("err", err))
		} else {
			telemetry.AddCurrencyGranted(f.reward)
		}
		f.sink.SendMessage(fmt.Sprintf("Welcome, %s! Thank you for following! %d coins to have some fun. Everyone, say \"hello\"!", name, f.reward))
	}
	telemetry.CountFollowersWelcomed(len(names))
}
