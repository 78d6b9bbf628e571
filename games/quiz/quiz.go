// Package quiz implements the scheduler-driven quiz game: a join window, a
// randomly drawn question with shuffled letter-labelled choices, timed hints,
// and a resolution step that rewards every player whose guess matches the
// letter assigned to the correct answer.
//
// Phases move strictly forward: Idle -> join window -> question asking ->
// resolved -> Idle. All timing runs through the room's automation.Scheduler,
// so the game itself never touches wall-clock time.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/CodedBeard/devchatterbot/automation"
	"github.com/CodedBeard/devchatterbot/telemetry"
)

// CurrencyIssuer grants coins to winners.
type CurrencyIssuer interface {
	AddCurrency(ctx context.Context, names []string, amount int) error
}

// Config holds the round timeline and reward. All delays are measured from
// game start except the hint and resolve delays, which are measured from
// question start.
type Config struct {
	JoinWarningAfter time.Duration
	QuestionAfter    time.Duration
	Hint1After       time.Duration
	Hint2After       time.Duration
	ResolveAfter     time.Duration
	Reward           int
}

// DefaultConfig mirrors the classic timeline: 30s join warning, question at
// 60s, hints 10s and 20s in, resolution at 30s, 10 coins per winner.
func DefaultConfig() Config {
	return Config{
		JoinWarningAfter: 30 * time.Second,
		QuestionAfter:    60 * time.Second,
		Hint1After:       10 * time.Second,
		Hint2After:       20 * time.Second,
		ResolveAfter:     30 * time.Second,
		Reward:           10,
	}
}

// Game is one room's quiz state machine. Not safe for concurrent use; the
// room loop owns it together with the scheduler it runs on.
type Game struct {
	sched    *automation.Scheduler
	sink     automation.Sink
	repo     Repository
	currency CurrencyIssuer
	cfg      Config
	rng      *rand.Rand

	running         bool
	questionStarted bool
	players         map[string]byte // display name -> guessed letter, 0 = unset
	pool            []Question

	joinWarning   automation.Handle
	questionStart automation.Handle
	hint1         automation.Handle
	hint2         automation.Handle
	resolve       automation.Handle
}

func New(sched *automation.Scheduler, sink automation.Sink, repo Repository, currency CurrencyIssuer, cfg Config) *Game {
	return &Game{
		sched:    sched,
		sink:     sink,
		repo:     repo,
		currency: currency,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // G404: shuffling quiz answers, not security-sensitive
		players:  make(map[string]byte),
	}
}

// Running reports whether a game is in progress (join window or question).
func (g *Game) Running() bool { return g.running }

// Joinable reports whether new players are still accepted.
func (g *Game) Joinable() bool { return g.running && !g.questionStarted }

// Start opens the join window and arms the join warning and the automatic
// question-phase transition. It fails with ErrAlreadyRunning when a game is
// in progress and ErrNoQuestions when the repository is empty; in both cases
// state is unchanged and a later Start is still permitted.
func (g *Game) Start(ctx context.Context) error {
	if g.running {
		return ErrAlreadyRunning
	}
	pool, err := g.repo.ListQuestions(ctx)
	if err != nil {
		return fmt.Errorf("list quiz questions: %w", err)
	}
	if len(pool) == 0 {
		return ErrNoQuestions
	}
	g.pool = pool
	g.running = true
	telemetry.CountQuizStarted()

	warnLeft := int((g.cfg.QuestionAfter - g.cfg.JoinWarningAfter).Seconds())
	g.joinWarning = g.sched.ScheduleMessage(g.cfg.JoinWarningAfter,
		fmt.Sprintf("You only have %d seconds left to join the quiz game! Type \"!quiz join\" to join the game!", warnLeft), g.sink)
	g.questionStart = g.sched.ScheduleCallback(g.cfg.QuestionAfter, func() { g.startQuestion(ctx) })
	return nil
}

// Join adds user to the current game with an unset guess.
func (g *Game) Join(user string) error {
	if g.findPlayer(user) != "" {
		return ErrAlreadyInGame
	}
	if !g.Joinable() {
		return ErrNotJoinable
	}
	g.players[user] = 0
	return nil
}

// Leave removes user from the game; only allowed during the join window.
func (g *Game) Leave(user string) error {
	if !g.running {
		return ErrNotRunning
	}
	if g.questionStarted {
		return ErrCannotLeaveNow
	}
	key := g.findPlayer(user)
	if key == "" {
		return ErrNotInGame
	}
	delete(g.players, key)
	return nil
}

// Guess records user's answer letter, overwriting any earlier guess. The
// last guess before resolution counts.
func (g *Game) Guess(user, guess string) error {
	guess = strings.ToLower(strings.TrimSpace(guess))
	if len(guess) != 1 {
		return ErrInvalidGuess
	}
	key := g.findPlayer(user)
	if key == "" {
		return ErrNotInGame
	}
	g.players[key] = guess[0]
	return nil
}

// Reset aborts the round: pending hint/resolution actions are cancelled and
// all session state cleared. Safe to call in any phase.
func (g *Game) Reset() {
	g.sched.Cancel(g.joinWarning)
	g.sched.Cancel(g.questionStart)
	g.sched.Cancel(g.hint1)
	g.sched.Cancel(g.hint2)
	g.sched.Cancel(g.resolve)
	g.joinWarning, g.questionStart, g.hint1, g.hint2, g.resolve = 0, 0, 0, 0, 0
	g.running = false
	g.questionStarted = false
	g.players = make(map[string]byte)
	g.pool = nil
}

// startQuestion is the automatic join-window -> question transition. It
// snapshots the drawn question and its shuffled order into the scheduled
// closures so a mid-flight reset cannot hand stale session state to them.
func (g *Game) startQuestion(ctx context.Context) {
	g.questionStarted = true
	g.sink.SendMessage("Starting the quiz now! Our competitors are: " + strings.Join(g.playerNames(), ", "))

	q := g.pool[g.rng.Intn(len(g.pool))]
	ordered := make([]string, len(q.Choices))
	copy(ordered, q.Choices)
	g.rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })

	g.sink.SendMessage(q.MainQuestion)
	g.sink.SendMessage(formatChoices(ordered))

	g.hint1 = g.sched.ScheduleMessage(g.cfg.Hint1After, "Hint 1: "+q.Hint1, g.sink)
	g.hint2 = g.sched.ScheduleMessage(g.cfg.Hint2After, "Hint 2: "+q.Hint2, g.sink)
	g.resolve = g.sched.ScheduleCallback(g.cfg.ResolveAfter, func() { g.completeQuestion(ctx, q, ordered) })
}

func (g *Game) completeQuestion(ctx context.Context, q Question, ordered []string) {
	g.sink.SendMessage("The correct answer was... " + q.CorrectAnswer)

	letter := winnerLetter(ordered, q.CorrectAnswer)
	var winners []string
	for name, guessed := range g.players {
		if guessed != 0 && guessed == letter {
			winners = append(winners, name)
		}
	}
	sort.Strings(winners)
	if len(winners) > 0 {
		g.sink.SendMessage("Congratulations to " + strings.Join(winners, ", "))
		if err := g.currency.AddCurrency(ctx, winners, g.cfg.Reward); err != nil {
			slog.Error("quiz reward grant failed", slog.Any("err", err), slog.Int("winners", len(winners)))
		}
		telemetry.AddCurrencyGranted(g.cfg.Reward * len(winners))
	}
	telemetry.CountQuizResolved()
	g.Reset()
}

// findPlayer resolves user to the stored player key, case-insensitively.
func (g *Game) findPlayer(user string) string {
	for name := range g.players {
		if strings.EqualFold(name, user) {
			return name
		}
	}
	return ""
}

func (g *Game) playerNames() []string {
	names := make([]string, 0, len(g.players))
	for name := range g.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
