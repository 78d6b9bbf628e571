// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsDispatched *prometheus.CounterVec
	CommandsUnknown    prometheus.Counter
	ActionsFired       prometheus.Counter
	ActionPanics       prometheus.Counter
	QuizRoundsStarted  prometheus.Counter
	QuizRoundsResolved prometheus.Counter
	DuelsRequested     prometheus.Counter
	DuelsAccepted      prometheus.Counter
	DuelsExpired       prometheus.Counter
	CurrencyGranted    prometheus.Counter
	FollowersWelcomed  prometheus.Counter

	// Histograms (seconds)
	DispatchDuration prometheus.Observer

	// Gauges
	SchedulerDepth *prometheus.GaugeVec
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{Name: "bot_commands_dispatched_total", Help: "Chat commands dispatched to a handler"}, []string{"command"})
		CommandsUnknown = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_unknown_total", Help: "Prefixed chat messages with no registered handler"})
		ActionsFired = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_actions_fired_total", Help: "Scheduled actions fired"})
		ActionPanics = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_action_panics_total", Help: "Scheduled action effects recovered from panic"})
		QuizRoundsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_quiz_rounds_started_total", Help: "Quiz games started"})
		QuizRoundsResolved = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_quiz_rounds_resolved_total", Help: "Quiz games resolved through to winner announcement"})
		DuelsRequested = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_duels_requested_total", Help: "Duel challenges issued"})
		DuelsAccepted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_duels_accepted_total", Help: "Duel challenges accepted"})
		DuelsExpired = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_duels_expired_total", Help: "Duel challenges expired unanswered"})
		CurrencyGranted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_currency_granted_total", Help: "Coins granted across all reward paths"})
		FollowersWelcomed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_followers_welcomed_total", Help: "New followers welcomed in chat"})
		DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_dispatch_duration_seconds", Help: "Command dispatch duration seconds", Buckets: prometheus.DefBuckets})
		SchedulerDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{Name: "bot_scheduler_pending_actions", Help: "Pending scheduled actions per channel"}, []string{"channel"})
	})
}

// CountCommand records one dispatched command. All helpers here are no-ops
// before Init so core packages stay usable in tests without registration.
func CountCommand(name string) {
	if CommandsDispatched != nil {
		CommandsDispatched.WithLabelValues(name).Inc()
	}
}

// CountUnknownCommand records a prefixed message that matched no handler.
func CountUnknownCommand() {
	if CommandsUnknown != nil {
		CommandsUnknown.Inc()
	}
}

// CountActionFired records one scheduled action firing.
func CountActionFired() {
	if ActionsFired != nil {
		ActionsFired.Inc()
	}
}

// CountActionPanic records a recovered effect panic.
func CountActionPanic() {
	if ActionPanics != nil {
		ActionPanics.Inc()
	}
}

func CountQuizStarted() {
	if QuizRoundsStarted != nil {
		QuizRoundsStarted.Inc()
	}
}

func CountQuizResolved() {
	if QuizRoundsResolved != nil {
		QuizRoundsResolved.Inc()
	}
}

func CountDuelRequested() {
	if DuelsRequested != nil {
		DuelsRequested.Inc()
	}
}

func CountDuelAccepted() {
	if DuelsAccepted != nil {
		DuelsAccepted.Inc()
	}
}

func CountDuelExpired() {
	if DuelsExpired != nil {
		DuelsExpired.Inc()
	}
}

// AddCurrencyGranted records coins granted (quiz rewards, follower rewards).
func AddCurrencyGranted(amount int) {
	if CurrencyGranted != nil && amount > 0 {
		CurrencyGranted.Add(float64(amount))
	}
}

// CountFollowersWelcomed records n new followers greeted in chat.
func CountFollowersWelcomed(n int) {
	if FollowersWelcomed != nil && n > 0 {
		FollowersWelcomed.Add(float64(n))
	}
}

// SetSchedulerDepth records the pending action count for a channel.
func SetSchedulerDepth(channel string, n int) {
	if SchedulerDepth != nil {
		SchedulerDepth.WithLabelValues(channel).Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
