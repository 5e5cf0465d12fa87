// @title Both Sides Duel API
// @version 1.0
// @description Time-pressured one-on-one debate duels with a fail-open AI judge.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/bootstrap"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/config"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/database"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/discord"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/duel"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/judge"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/notification"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/scheduler"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/server"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/sse"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/worker"
	"github.com/bothsides-platform-dev/both-sides-sub000/migrations"
)

const (
	shutdownTimeout   = 30 * time.Second
	workerQueueSize   = 16
	judgeMaxRetries   = 1
	startupDBTimeout  = 30 * time.Second
	exitCodeStartFail = 1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(exitCodeStartFail)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Failed to set up logger", "error", err)
		os.Exit(exitCodeStartFail)
	}

	runErr := run(cfg)
	if runErr != nil {
		slog.Error("Service exited with error", "error", runErr)
	}
	_ = logFile.Close()
	if runErr != nil {
		os.Exit(exitCodeStartFail)
	}
}

func run(cfg *config.Config) error {
	startCtx, cancel := context.WithTimeout(context.Background(), startupDBTimeout)
	defer cancel()

	dbPool, err := database.NewPool(startCtx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := database.Migrate(startCtx, dbPool, migrations.FS); err != nil {
		return err
	}

	repos := bootstrap.InitializeRepositories(dbPool)

	eventBus := bootstrap.InitializeEventSystem()
	hub := sse.NewHub()
	bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus: eventBus,
		Hub:      hub,
	})

	guard, err := newJudgeGuard(cfg, bootstrap.JudgeFallbackPublisher(eventBus))
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	duelService := duel.NewService(repos.Duel, repos.Topic, guard, eventBus, notifier, duel.Config{
		ChallengeExpiry:  cfg.ChallengeExpiry,
		InactivityWindow: cfg.InactivityWindow,
		MaxConcurrent:    cfg.MaxConcurrent,
		MinDuration:      cfg.MinDuration,
		MaxDuration:      cfg.MaxDuration,
		MaxGroundLength:  cfg.MaxGroundLength,
	})

	workerPool := worker.NewPool(cfg.WorkerCount, workerQueueSize, worker.DefaultJobTimeout)
	workerPool.Start()

	janitor := worker.NewJanitor(duelService, workerPool, cfg.JanitorNudgeGap)
	sched := scheduler.New(workerPool)
	sched.Schedule(cfg.JanitorInterval, janitor)

	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		AdminAPIKey:    cfg.AdminAPIKey,
		TrustedProxies: cfg.TrustedProxies,
		SSEKeepalive:   cfg.SSEKeepalive,
	}, dbPool, duelService, janitor, hub)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:      srv,
		Scheduler:   sched,
		WorkerPool:  workerPool,
		DuelService: duelService,
	})

	return runErr
}

// newJudgeGuard builds the fail-open judge. Without an API key the guard has
// no backing model and always takes its defaults.
func newJudgeGuard(cfg *config.Config, onFallback judge.FallbackFunc) (*judge.Guard, error) {
	lines := judge.DefaultHostLines()
	if cfg.HostLinesPath != "" {
		loaded, err := judge.LoadHostLines(cfg.HostLinesPath)
		if err != nil {
			return nil, err
		}
		lines = loaded
	}

	var model judge.Judge
	if cfg.JudgeEnabled() {
		model = judge.NewOpenAIJudge(judge.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.JudgeModel,
			MaxRetries: judgeMaxRetries,
		})
		slog.Info("Judge enabled", "model", cfg.JudgeModel, "timeout", cfg.JudgeTimeout)
	} else {
		slog.Warn("Judge disabled, every ground is accepted without penalty")
	}

	return judge.NewGuard(model, cfg.JudgeTimeout, lines, onFallback), nil
}

func newNotifier(cfg *config.Config) (notification.Notifier, error) {
	notifiers := notification.Multi{notification.LogNotifier{}}
	if cfg.DiscordEnabled() {
		d, err := discord.New(discord.Config{
			Token:     cfg.DiscordToken,
			ChannelID: cfg.DiscordChannel,
			DuelURL:   cfg.DuelURLFormat,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, d)
		slog.Info("Discord notifications enabled", "channel", cfg.DiscordChannel)
	}
	return notifiers, nil
}
