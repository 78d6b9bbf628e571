// Package bot hosts one Room per joined channel. A Room owns the channel's
// scheduler, dispatcher and game state, and serializes everything onto a
// single goroutine so none of those need locks.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/CodedBeard/devchatterbot/automation"
	"github.com/CodedBeard/devchatterbot/commands"
	"github.com/CodedBeard/devchatterbot/games/quiz"
	"github.com/CodedBeard/devchatterbot/telemetry"
)

// Message is a chat line delivered to a Room.
type Message struct {
	Sender string
	Text   string
}

// Room runs the per-channel event loop. Chat messages, posted closures and
// scheduler ticks are all handled on the loop goroutine, one at a time.
type Room struct {
	channel    string
	sched      *automation.Scheduler
	dispatcher *commands.Dispatcher
	quiz       *quiz.Game
	sink       commands.Sink

	messages chan Message
	ops      chan func()

	tickEvery time.Duration
}

// NewRoom wires a Room around an already-built scheduler, dispatcher and quiz
// game. tickEvery controls how often wall-clock time is folded into the
// scheduler; one second matches chat pacing well.
func NewRoom(channel string, sched *automation.Scheduler, dispatcher *commands.Dispatcher, quizGame *quiz.Game, sink commands.Sink, tickEvery time.Duration) *Room {
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	return &Room{
		channel:    channel,
		sched:      sched,
		dispatcher: dispatcher,
		quiz:       quizGame,
		sink:       sink,
		messages:   make(chan Message, 64),
		ops:        make(chan func(), 16),
		tickEvery:  tickEvery,
	}
}

// Channel returns the channel name this Room serves.
func (r *Room) Channel() string { return r.channel }

// HandleMessage queues a chat message for the loop. Safe to call from any
// goroutine; drops the message if the Room is backed up rather than blocking
// the IRC reader.
func (r *Room) HandleMessage(sender, text string) {
	select {
	case r.messages <- Message{Sender: sender, Text: text}:
	default:
		slog.Warn("room message queue full, dropping", "channel", r.channel, "sender", sender)
	}
}

// Post runs fn on the Room's loop goroutine. Used by pollers and other
// background workers that need to touch Room-owned state.
func (r *Room) Post(fn func()) {
	select {
	case r.ops <- fn:
	default:
		// Fall back to blocking; ops are rare and must not be lost.
		r.ops <- fn
	}
}

// Run drives the loop until ctx is cancelled. It owns the scheduler clock:
// elapsed wall time between ticker fires is folded in via Tick.
func (r *Room) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()

	last := time.Now()
	slog.Info("room started", "channel", r.channel)
	for {
		select {
		case <-ctx.Done():
			if r.quiz != nil {
				r.quiz.Reset()
			}
			slog.Info("room stopped", "channel", r.channel)
			return
		case msg := <-r.messages:
			r.dispatcher.Dispatch(ctx, msg.Text, msg.Sender, r.sink)
		case fn := <-r.ops:
			fn()
		case now := <-ticker.C:
			r.sched.Tick(now.Sub(last))
			last = now
			telemetry.SetSchedulerDepth(r.channel, r.sched.Pending())
		}
	}
}
