// Package commands routes chat messages to registered command handlers.
//
// A message is a command when its first whitespace-delimited token starts
// with the dispatcher's prefix (default "!"). The token is matched
// case-insensitively against registered commands; remaining tokens become
// positional arguments with any leading "@" mention marker stripped.
// Ordinary chat and unknown commands produce no output at all.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CodedBeard/devchatterbot/telemetry"
)

// ErrMissingArgument signals that a handler needed an argument the sender
// did not supply. The dispatcher turns it into a usage reply instead of
// surfacing an error.
var ErrMissingArgument = errors.New("missing command argument")

// Args are the tokens after the command token, mention markers stripped.
type Args []string

// Get returns the i-th argument or ErrMissingArgument.
func (a Args) Get(i int) (string, error) {
	if i < 0 || i >= len(a) {
		return "", ErrMissingArgument
	}
	return a[i], nil
}

// Optional returns the i-th argument and whether it was supplied.
func (a Args) Optional(i int) (string, bool) {
	if i < 0 || i >= len(a) {
		return "", false
	}
	return a[i], true
}

// Sink is the chat surface replies are written to.
type Sink interface {
	SendMessage(text string)
}

// Command is one registered chat command.
type Command interface {
	// Name is the bare command token, without prefix.
	Name() string
	// Usage is shown (prefixed) when the sender omits a required argument.
	Usage() string
	Execute(ctx context.Context, sender string, args Args, sink Sink) error
}

// Dispatcher maps command tokens to handlers for one chat room.
type Dispatcher struct {
	prefix   string
	commands map[string]Command
}

func NewDispatcher(prefix string) *Dispatcher {
	if prefix == "" {
		prefix = "!"
	}
	return &Dispatcher{prefix: prefix, commands: make(map[string]Command)}
}

// Register adds cmd under its (lowercased) name, replacing any previous
// registration for the same token.
func (d *Dispatcher) Register(cmd Command) {
	d.commands[strings.ToLower(cmd.Name())] = cmd
}

// Dispatch routes raw chat text from sender. It reports whether the message
// matched a registered command. Unmatched messages are silent; a handler
// that fails on a missing argument gets a usage reply; any other handler
// error is logged and swallowed so chat traffic can never crash the room.
func (d *Dispatcher) Dispatch(ctx context.Context, raw, sender string, sink Sink) bool {
	fields := strings.Fields(raw)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], d.prefix) {
		return false
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], d.prefix))
	cmd, ok := d.commands[name]
	if !ok {
		telemetry.CountUnknownCommand()
		return false
	}
	args := make(Args, 0, len(fields)-1)
	for _, f := range fields[1:] {
		args = append(args, strings.TrimPrefix(f, "@"))
	}
	telemetry.TimeFunc(telemetry.DispatchDuration, func() {
		err := cmd.Execute(ctx, sender, args, sink)
		switch {
		case err == nil:
		case errors.Is(err, ErrMissingArgument):
			sink.SendMessage(fmt.Sprintf("Usage: %s%s", d.prefix, cmd.Usage()))
		default:
			telemetry.LoggerWithCorr(ctx).Error("command failed",
				slog.String("command", name),
				slog.String("sender", sender),
				slog.Any("err", err))
		}
	})
	telemetry.CountCommand(name)
	return true
}

// Prefix returns the command marker this dispatcher matches on.
func (d *Dispatcher) Prefix() string { return d.prefix }
