package duel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/metrics"
)

// Janitor sweeps. Each one lists candidates, then re-reads every candidate
// under its duel lock and re-checks the condition before transitioning, so
// sweeps are idempotent and safe to run concurrently with each other and
// with participant actions.

// ExpireStale marks pending challenges older than the expiry window as expired
func (s *service) ExpireStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.ChallengeExpiry)
	candidates, err := s.repo.ListStalePending(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale challenges: %w", err)
	}
	return s.sweep(ctx, SweepExpire, candidates, func(ctx context.Context, d *domain.Duel, now time.Time) (bool, error) {
		if d.Status != domain.DuelStatusPending || !s.challengeExpired(d, now) {
			return false, nil
		}
		return true, s.expire(ctx, d, now)
	})
}

// ForfeitInactive ends active duels idle past the inactivity window. The
// participant holding the turn loses.
func (s *service) ForfeitInactive(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.InactivityWindow)
	candidates, err := s.repo.ListInactive(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list inactive duels: %w", err)
	}
	return s.sweep(ctx, SweepForfeit, candidates, func(ctx context.Context, d *domain.Duel, now time.Time) (bool, error) {
		if d.Status != domain.DuelStatusActive || d.CurrentTurn == nil || now.Sub(d.LastActivityAt) <= s.cfg.InactivityWindow {
			return false, nil
		}
		dc, err := s.duelContext(ctx, d)
		if err != nil {
			return false, err
		}
		winner := d.Opponent(*d.CurrentTurn)
		_, _, err = s.finish(ctx, d, dc, &winner, domain.EndReasonAbandoned, now, nil)
		return err == nil, err
	})
}

// EndExhaustedClocks ends active duels whose turn holder has no time left
func (s *service) EndExhaustedClocks(ctx context.Context) (int, error) {
	candidates, err := s.repo.ListClockExhausted(ctx, s.now(), s.cfg.SweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list exhausted clocks: %w", err)
	}
	return s.sweep(ctx, SweepClock, candidates, func(ctx context.Context, d *domain.Duel, now time.Time) (bool, error) {
		if d.Status != domain.DuelStatusActive || d.CurrentTurn == nil || liveHP(d, now) > 0 {
			return false, nil
		}
		_, err := s.endOnClock(ctx, d, now)
		return err == nil, err
	})
}

type sweepFunc func(ctx context.Context, d *domain.Duel, now time.Time) (bool, error)

func (s *service) sweep(ctx context.Context, name string, candidates []domain.Duel, fn sweepFunc) (int, error) {
	var transitioned atomic.Int64

	p := pool.New().WithMaxGoroutines(s.cfg.SweepConcurrency).WithContext(ctx)
	for i := range candidates {
		id := candidates[i].ID
		p.Go(func(ctx context.Context) error {
			ok, err := s.sweepOne(ctx, id, fn)
			if err != nil {
				logger.FromContext(ctx).Warn(LogMsgSweepItemFailed, "sweep", name, "duel_id", id, "error", err)
				return err
			}
			if ok {
				transitioned.Add(1)
			}
			return nil
		})
	}
	err := p.Wait()

	n := int(transitioned.Load())
	metrics.JanitorSweeps.WithLabelValues(name).Inc()
	metrics.JanitorTransitions.WithLabelValues(name).Add(float64(n))
	logger.FromContext(ctx).Info(LogMsgSweepCompleted, "sweep", name, "candidates", len(candidates), "transitioned", n)
	return n, err
}

func (s *service) sweepOne(ctx context.Context, id uuid.UUID, fn sweepFunc) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	ok, err := fn(ctx, d, s.now())
	if errors.Is(err, domain.ErrVersionConflict) {
		// another process got there first
		return false, nil
	}
	return ok, err
}
