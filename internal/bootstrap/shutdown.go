package bootstrap

import (
	"context"
	"log/slog"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/duel"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/scheduler"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/server"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server      *server.Server
	Scheduler   *scheduler.Scheduler
	WorkerPool  *worker.Pool
	DuelService duel.Service
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (stop accepting requests, close viewer streams)
// 2. Scheduler (no new janitor runs)
// 3. Worker pool (cancel and drain in-flight sweeps)
// 4. Duel service (wait for outstanding notifications)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	if components.DuelService != nil {
		shutdownService(ctx, ServiceNameDuel, components.DuelService)
	}

	slog.Info(LogMsgServerStopped)
}

type shutdownableService interface {
	Shutdown(context.Context) error
}

func shutdownService(ctx context.Context, name string, service shutdownableService) {
	if err := service.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgServiceShutdownFailed, "error", err)
	}
}
