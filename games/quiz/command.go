package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CodedBeard/devchatterbot/commands"
)

// Command adapts the game to the chat dispatcher: "!quiz start|join|leave|guess <letter>".
type Command struct {
	Game *Game
}

func (c *Command) Name() string  { return "quiz" }
func (c *Command) Usage() string { return "quiz <start|join|leave|guess> [letter]" }

func (c *Command) Execute(ctx context.Context, sender string, args commands.Args, sink commands.Sink) error {
	sub, err := args.Get(0)
	if err != nil {
		return err
	}
	switch strings.ToLower(sub) {
	case "start":
		switch err := c.Game.Start(ctx); {
		case err == nil:
			sink.SendMessage("A quiz game is starting! Type \"!quiz join\" to play!")
		case errors.Is(err, ErrAlreadyRunning):
			sink.SendMessage(fmt.Sprintf("A quiz game is already running, %s.", sender))
		case errors.Is(err, ErrNoQuestions):
			sink.SendMessage("There are no quiz questions to ask right now. Try again later!")
		default:
			return err
		}
	case "join":
		switch err := c.Game.Join(sender); {
		case err == nil:
			sink.SendMessage(fmt.Sprintf("%s joined the game!", sender))
		case errors.Is(err, ErrAlreadyInGame):
			sink.SendMessage(fmt.Sprintf("You're already in this game, %s and you aren't a multi-tasker.", sender))
		case errors.Is(err, ErrNotJoinable):
			sink.SendMessage(fmt.Sprintf("Sorry, %s this is not the time to join!", sender))
		default:
			return err
		}
	case "leave":
		switch err := c.Game.Leave(sender); {
		case err == nil:
			sink.SendMessage(fmt.Sprintf("%s has quit the game.", sender))
		case errors.Is(err, ErrNotRunning):
			sink.SendMessage("You can't leave a game that isn't being played.")
		case errors.Is(err, ErrCannotLeaveNow):
			sink.SendMessage("The questions have started, you can't leave.")
		case errors.Is(err, ErrNotInGame):
			sink.SendMessage(fmt.Sprintf("You aren't in this game, %s", sender))
		default:
			return err
		}
	case "guess":
		guess, err := args.Get(1)
		if err != nil {
			return err
		}
		switch err := c.Game.Guess(sender, guess); {
		case err == nil:
			sink.SendMessage(fmt.Sprintf("You updated your guess to %s, %s.", guess, sender))
		case errors.Is(err, ErrNotInGame):
			sink.SendMessage(fmt.Sprintf("You aren't playing. Stop it, %s.", sender))
		case errors.Is(err, ErrInvalidGuess):
			sink.SendMessage(fmt.Sprintf("Guess with a single letter, %s.", sender))
		default:
			return err
		}
	default:
		return commands.ErrMissingArgument
	}
	return nil
}
