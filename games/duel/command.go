package duel

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodedBeard/devchatterbot/commands"
	"github.com/CodedBeard/devchatterbot/telemetry"
)

// Command adapts the duel system to the chat dispatcher:
// "!duel @opponent" issues a challenge, "!duel accept @challenger" accepts one.
type Command struct {
	System *System
}

func (c *Command) Name() string  { return "duel" }
func (c *Command) Usage() string { return "duel <@opponent> | duel accept <@challenger>" }

func (c *Command) Execute(ctx context.Context, sender string, args commands.Args, sink commands.Sink) error {
	first, err := args.Get(0)
	if err != nil {
		return err
	}
	if !strings.EqualFold(first, "accept") {
		if strings.EqualFold(first, sender) {
			sink.SendMessage(fmt.Sprintf("You can't duel yourself, %s.", sender))
			return nil
		}
		c.System.RequestDuel(sender, first)
		return nil
	}
	challenger, err := args.Get(1)
	if err != nil {
		return err
	}
	d, ok := c.System.GetChallenges(sender, challenger)
	if !ok {
		sink.SendMessage(fmt.Sprintf("There is no challenge from %s waiting for you, %s.", challenger, sender))
		return nil
	}
	c.System.RemoveDuel(sender)
	telemetry.CountDuelAccepted()
	sink.SendMessage(fmt.Sprintf("The duel between %s and %s begins!", d.Challenger, d.Opponent))
	return nil
}
