package streaming

import (
	"context"
	"log/slog"
	"time"

	"github.com/CodedBeard/devchatterbot/twitchapi"
)

// HelixFollowerService implements FollowerService by polling the Helix
// followers endpoint and diffing the known follower set. Notifications are
// handed to Deliver, which the room wires to its own loop so subscribers
// run serialized with the rest of the room's state mutation.
type HelixFollowerService struct {
	Helix       *twitchapi.HelixClient
	Broadcaster string // channel login
	Interval    time.Duration
	// Deliver posts fn onto the owning room loop. When nil, fn runs inline
	// (tests and single-threaded hosts).
	Deliver func(fn func())

	subscribers map[Token]func(names []string)
	lastToken   Token
	known       map[string]struct{}
	primed      bool
}

// Subscribe attaches handler and returns a token for Unsubscribe. Meant to
// be called from the room loop (or before it starts).
func (s *HelixFollowerService) Subscribe(handler func(names []string)) Token {
	if s.subscribers == nil {
		s.subscribers = make(map[Token]func(names []string))
	}
	s.lastToken++
	s.subscribers[s.lastToken] = handler
	return s.lastToken
}

// Unsubscribe detaches the handler registered under t. Unknown tokens are a
// no-op.
func (s *HelixFollowerService) Unsubscribe(t Token) {
	delete(s.subscribers, t)
}

// UsersWeFollow lists the login names of channels the broadcaster follows.
func (s *HelixFollowerService) UsersWeFollow(ctx context.Context) ([]string, error) {
	id, err := s.Helix.GetUserID(ctx, s.Broadcaster)
	if err != nil {
		return nil, err
	}
	return s.Helix.GetFollowedChannels(ctx, id)
}

// Run polls the follower list until ctx is done. The first successful poll
// primes the known set without notifying, so a restart does not re-welcome
// the whole follower base.
func (s *HelixFollowerService) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	broadcasterID, err := s.Helix.GetUserID(ctx, s.Broadcaster)
	if err != nil {
		slog.Error("follower poller: resolve broadcaster", slog.String("channel", s.Broadcaster), slog.Any("err", err))
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("follower poller started", slog.String("channel", s.Broadcaster), slog.Duration("interval", interval))
	for {
		s.pollOnce(ctx, broadcasterID)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *HelixFollowerService) pollOnce(ctx context.Context, broadcasterID string) {
	followers, err := s.Helix.GetChannelFollowers(ctx, broadcasterID)
	if err != nil {
		slog.Debug("follower poller: list followers", slog.Any("err", err))
		return
	}
	if s.known == nil {
		s.known = make(map[string]struct{}, len(followers))
	}
	var fresh []string
	for _, name := range followers {
		if _, ok := s.known[name]; !ok {
			s.known[name] = struct{}{}
			fresh = append(fresh, name)
		}
	}
	if !s.primed {
		s.primed = true
		return
	}
	if len(fresh) == 0 {
		return
	}
	notify := func() { s.dispatch(fresh) }
	if s.Deliver != nil {
		s.Deliver(notify)
		return
	}
	notify()
}

func (s *HelixFollowerService) dispatch(names []string) {
	for _, handler := range s.subscribers {
		handler(names)
	}
}
