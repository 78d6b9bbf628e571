package commands

import (
	"context"
	"fmt"
	"math/rand"
)

// FollowedDirectory lists channels the broadcaster follows, used when a
// shout-out target is not given explicitly.
type FollowedDirectory interface {
	UsersWeFollow(ctx context.Context) ([]string, error)
}

// ShoutOut implements "!so [@channel]". Without an argument it shouts out a
// random channel the broadcaster follows.
type ShoutOut struct {
	Directory FollowedDirectory
}

func (c *ShoutOut) Name() string  { return "so" }
func (c *ShoutOut) Usage() string { return "so [@channel]" }

func (c *ShoutOut) Execute(ctx context.Context, sender string, args Args, sink Sink) error {
	name, ok := args.Optional(0)
	if !ok {
		if c.Directory == nil {
			return ErrMissingArgument
		}
		followed, err := c.Directory.UsersWeFollow(ctx)
		if err != nil {
			return fmt.Errorf("list followed channels: %w", err)
		}
		if len(followed) == 0 {
			return ErrMissingArgument
		}
		name = followed[rand.Intn(len(followed))] //nolint:gosec // G404: picking a shout-out target, not a secret
	}
	sink.SendMessage(fmt.Sprintf("Huge shout out to @%s ! You should go check out their channel! https://www.twitch.tv/%s", name, name))
	return nil
}
