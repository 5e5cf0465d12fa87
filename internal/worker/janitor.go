package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Sweeper is the lifecycle maintenance the janitor drives
type Sweeper interface {
	ExpireStale(ctx context.Context) (int, error)
	ForfeitInactive(ctx context.Context) (int, error)
	EndExhaustedClocks(ctx context.Context) (int, error)
}

// Janitor runs every sweep as one job. It is scheduled periodically and can
// also be nudged by request traffic; nudges closer together than gap are
// ignored.
type Janitor struct {
	sweeper Sweeper
	pool    *Pool
	gap     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	lastRun time.Time
	queued  bool
}

// NewJanitor creates a janitor that enqueues onto pool
func NewJanitor(sweeper Sweeper, pool *Pool, gap time.Duration) *Janitor {
	return &Janitor{
		sweeper: sweeper,
		pool:    pool,
		gap:     gap,
		now:     time.Now,
	}
}

// Name implements Job
func (j *Janitor) Name() string {
	return JobNameJanitor
}

// Process runs all sweeps. A failing sweep does not stop the others.
func (j *Janitor) Process(ctx context.Context) error {
	j.mu.Lock()
	j.lastRun = j.now()
	j.queued = false
	j.mu.Unlock()

	var errs []error
	for _, sweep := range []func(context.Context) (int, error){
		j.sweeper.ExpireStale,
		j.sweeper.ForfeitInactive,
		j.sweeper.EndExhaustedClocks,
	} {
		if _, err := sweep(ctx); err != nil {
			slog.Warn(LogMsgJanitorSweepError, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nudge queues a sweep unless one is already queued or ran within gap.
// It never blocks.
func (j *Janitor) Nudge() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.queued || j.now().Sub(j.lastRun) < j.gap {
		return false
	}
	if !j.pool.TryEnqueue(j) {
		slog.Debug(LogMsgJanitorQueueFull)
		return false
	}
	j.queued = true
	slog.Debug(LogMsgJanitorNudged)
	return true
}
