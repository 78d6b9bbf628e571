// Command devchatterbot is the main entrypoint for the chat bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Joins each configured Twitch channel and runs a per-channel room loop
//     hosting the command dispatcher, quiz and duel games, and the scheduler.
//   - Polls Helix for new followers and keeps the stored OAuth token fresh.
//   - Exposes a minimal HTTP server with /healthz, /status, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/CodedBeard/devchatterbot/automation"
	"github.com/CodedBeard/devchatterbot/bot"
	"github.com/CodedBeard/devchatterbot/chat"
	"github.com/CodedBeard/devchatterbot/commands"
	"github.com/CodedBeard/devchatterbot/config"
	"github.com/CodedBeard/devchatterbot/db"
	"github.com/CodedBeard/devchatterbot/games/duel"
	"github.com/CodedBeard/devchatterbot/games/quiz"
	"github.com/CodedBeard/devchatterbot/oauth"
	"github.com/CodedBeard/devchatterbot/server"
	"github.com/CodedBeard/devchatterbot/streaming"
	"github.com/CodedBeard/devchatterbot/telemetry"
	"github.com/CodedBeard/devchatterbot/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("devchatterbot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	migrationCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrationCtx, database); err != nil {
		cancelMigrate()
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}
	questions := &db.QuestionStore{DB: database}
	if err := questions.SeedDefaultQuestions(migrationCtx); err != nil {
		slog.Warn("failed to seed quiz questions", slog.Any("err", err))
	}
	cancelMigrate()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Helix client for follower polling and shout-outs. App token via client
	// credentials; not used for IRC chat.
	var helix *twitchapi.HelixClient
	if cfg.HelixReady() {
		helix = &twitchapi.HelixClient{
			AppTokenSource: &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret},
			ClientID:       cfg.TwitchClientID,
		}
	} else {
		slog.Info("helix disabled (missing TWITCH_CLIENT_ID/TWITCH_CLIENT_SECRET); follower polling and !so off")
	}

	currency := &db.CurrencyStore{DB: database}

	channels := cfg.TwitchChannels
	if len(channels) == 0 {
		slog.Warn("no channels configured; running HTTP surface only")
	}
	slog.Info("starting rooms", slog.Int("channel_count", len(channels)), slog.Any("channels", channels))

	for _, channel := range channels {
		client, err := chat.NewClient(ctx, cfg, database, channel)
		if err != nil {
			slog.Error("chat client init failed", slog.String("channel", channel), slog.Any("err", err))
			os.Exit(1)
		}

		sched := automation.NewScheduler()
		quizGame := quiz.New(sched, client, questions, currency, quiz.Config{
			JoinWarningAfter: cfg.QuizJoinWarningAfter,
			QuestionAfter:    cfg.QuizQuestionAfter,
			Hint1After:       cfg.QuizHint1After,
			Hint2After:       cfg.QuizHint2After,
			ResolveAfter:     cfg.QuizResolveAfter,
			Reward:           cfg.QuizReward,
		})
		duels := duel.NewSystem(sched, client, cfg.DuelExpiry)

		dispatcher := commands.NewDispatcher(cfg.CommandPrefix)
		dispatcher.Register(&quiz.Command{Game: quizGame})
		dispatcher.Register(&duel.Command{System: duels})
		dispatcher.Register(&commands.Coins{Store: currency})

		room := bot.NewRoom(channel, sched, dispatcher, quizGame, client, cfg.TickInterval)
		client.OnMessage(room.HandleMessage)

		if helix != nil {
			followers := &streaming.HelixFollowerService{
				Helix:       helix,
				Broadcaster: channel,
				Interval:    cfg.FollowerPollInterval,
				Deliver:     room.Post,
			}
			dispatcher.Register(&commands.ShoutOut{Directory: followers})
			followable := streaming.NewFollowableSystem(client, followers, currency, cfg.FollowerReward)
			followable.Start(ctx)
			go followers.Run(ctx)
		}

		go room.Run(ctx)
		go func(channel string) {
			if err := client.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("chat client exited", slog.String("channel", channel), slog.Any("err", err))
			}
		}(channel)
	}

	// Keep the stored user token fresh for restarts.
	if cfg.HelixReady() {
		oauth.StartRefresher(ctx, database, "twitch", 5*time.Minute, 15*time.Minute, func(rctx context.Context, refreshToken string) (string, string, time.Time, string, error) {
			res, err := twitchapi.RefreshToken(rctx, cfg.TwitchClientID, cfg.TwitchClientSecret, refreshToken)
			if err != nil {
				return "", "", time.Time{}, "", err
			}
			return res.AccessToken, res.RefreshToken, twitchapi.ComputeExpiry(res.ExpiresIn), strings.Join(res.Scope, " "), nil
		})
	}

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics/oauth)
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	go func() {
		if err := server.Start(ctx, database, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}
