package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/metrics"
)

// FallbackFunc observes every fallback the Guard takes
type FallbackFunc func(ctx context.Context, operation string, err error)

// Guard wraps a Judge with a hard timeout and fail-open defaults.
// None of its methods return errors.
type Guard struct {
	judge      Judge
	timeout    time.Duration
	lines      *HostLines
	onFallback FallbackFunc
}

// NewGuard creates a Guard. A nil judge is allowed and always falls back.
func NewGuard(j Judge, timeout time.Duration, lines *HostLines, onFallback FallbackFunc) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if lines == nil {
		lines = DefaultHostLines()
	}
	return &Guard{judge: j, timeout: timeout, lines: lines, onFallback: onFallback}
}

// Lines exposes the host-line catalogue for prompts the judge never writes
func (g *Guard) Lines() *HostLines {
	return g.lines
}

// Evaluate scores text. On timeout, transport error or an unusable response it
// returns a valid, no-penalty verdict with FailedOpen set.
func (g *Guard) Evaluate(ctx context.Context, ec EvalContext, text string) domain.Verdict {
	verdict, err := callWithTimeout(ctx, g, OpEvaluate, func(ctx context.Context) (domain.Verdict, error) {
		v, err := g.judge.Evaluate(ctx, ec, text)
		if err != nil {
			return v, err
		}
		if !v.Validity.Valid() {
			return v, fmt.Errorf("%w: %q", errUnknownValidity, v.Validity)
		}
		return v, nil
	})
	if err != nil {
		return domain.Verdict{
			Validity:    domain.ValidityValid,
			Explanation: g.lines.FallbackVerdict(),
			FailedOpen:  true,
		}
	}
	return verdict
}

// OpeningLine returns the host's opening line, or a static line on failure
func (g *Guard) OpeningLine(ctx context.Context, dc DuelContext) string {
	line, err := callWithTimeout(ctx, g, OpOpeningLine, func(ctx context.Context) (string, error) {
		return nonEmpty(g.judge.OpeningLine(ctx, dc))
	})
	if err != nil {
		return g.lines.Opening(dc)
	}
	return line
}

// ClosingLine returns the host's closing line, or a static line on failure.
// winnerID is nil when the duel ended without a winner.
func (g *Guard) ClosingLine(ctx context.Context, dc DuelContext, winnerID *uuid.UUID) string {
	line, err := callWithTimeout(ctx, g, OpClosingLine, func(ctx context.Context) (string, error) {
		return nonEmpty(g.judge.ClosingLine(ctx, dc, winnerID))
	})
	if err != nil {
		return g.lines.Closing(dc, winnerID)
	}
	return line
}

var (
	errUnknownValidity = errors.New(ErrMsgUnknownValidity)
	errEmptyLine       = errors.New(ErrMsgEmptyLine)
	errNotEnabled      = errors.New(ErrMsgJudgeNotEnabled)
)

func nonEmpty(s string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptyLine
	}
	return s, nil
}

// callWithTimeout runs fn under the guard's deadline. Any failure is wrapped
// in domain.ErrUpstreamUnavailable, logged and reported to onFallback.
func callWithTimeout[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	var (
		result T
		err    error
	)
	if g.judge == nil {
		err = errNotEnabled
	} else {
		result, err = runBounded(ctx, g.timeout, fn)
	}
	metrics.JudgeCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.JudgeCallsTotal.WithLabelValues(op, OutcomeOK).Inc()
		return result, nil
	}

	err = fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, op, err)
	metrics.JudgeCallsTotal.WithLabelValues(op, OutcomeFallback).Inc()
	logger.FromContext(ctx).Warn(LogMsgJudgeFallback, "operation", op, "error", err)
	if g.onFallback != nil {
		g.onFallback(ctx, op, err)
	}
	return zero, err
}

// runBounded returns when fn finishes or the deadline passes, whichever is first.
// A judge that ignores its context cannot stall the caller.
func runBounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("judge panicked: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{v: v, err: err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
