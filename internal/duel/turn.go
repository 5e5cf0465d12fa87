package duel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/hpclock"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/judge"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// SubmitGround runs one turn: drain the submitter's clock, judge the ground,
// apply any penalty, then either end the duel or pass the turn.
//
// The drained HP and the argument are committed before the judge is called.
// The judge's own latency is charged to nobody: the next clock starts when
// the verdict is in.
func (s *service) SubmitGround(ctx context.Context, actorID, duelID uuid.UUID, text string) (*TurnResult, error) {
	text, ok := normalizeText(text, s.cfg.MaxGroundLength)
	if !ok {
		return nil, fmt.Errorf("%w: must be 1 to %d characters", domain.ErrInvalidGround, s.cfg.MaxGroundLength)
	}

	unlock := s.locks.Lock(duelID)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if err := requireActiveParticipant(d, actorID); err != nil {
		return nil, err
	}
	if !d.HoldsTurn(actorID) {
		return nil, domain.ErrNotYourTurn
	}

	dc, err := s.duelContext(ctx, d)
	if err != nil {
		return nil, err
	}

	now := s.now()
	opponent := d.Opponent(actorID)
	hp := hpclock.Live(d.HP(actorID), *d.TurnStartedAt, now)
	if hp <= 0 {
		// out of time before speaking; the ground is never judged
		ended, msgs, err := s.finish(ctx, d, dc, &opponent, domain.EndReasonHPZero, now, nil)
		if err != nil {
			return nil, err
		}
		return &TurnResult{Duel: ended, Messages: messageValues(msgs)}, nil
	}

	history, err := s.repo.ListMessages(ctx, duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load argument log: %w", err)
	}

	// from here the turn commits as a unit even if the caller goes away,
	// the guard still bounds the judge with its own timeout
	ctx = context.WithoutCancel(ctx)

	d.SetHP(actorID, hp)
	d.TurnStartedAt = &now
	d.LastActivityAt = now
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to commit clock drain: %w", err)
	}
	ground := &domain.GroundMessage{
		ID:        uuid.New(),
		DuelID:    d.ID,
		Role:      d.RoleOf(actorID),
		AuthorID:  &actorID,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.repo.AppendMessages(ctx, ground); err != nil {
		return nil, fmt.Errorf("failed to append ground: %w", err)
	}
	s.publish(ctx, event.DuelHPUpdated, d, domain.DuelEventPayload{})
	s.publishMessages(ctx, d, []*domain.GroundMessage{ground})

	verdict := s.guard.Evaluate(ctx, judge.EvalContext{DuelContext: dc, SubmitterID: actorID, History: history}, text)
	judgedAt := s.now()

	verdictMsg := s.applyVerdict(ctx, d, dc, actorID, opponent, verdict, history, judgedAt)
	logger.FromContext(ctx).Info(LogMsgGroundJudged,
		"duel_id", d.ID,
		"validity", verdict.Validity,
		"failed_open", verdict.FailedOpen,
		"challenger_hp", d.ChallengerHP,
		"challenged_hp", d.ChallengedHP)

	if d.ChallengerHP <= 0 || d.ChallengedHP <= 0 {
		d.TurnStartedAt = &judgedAt
		winner := d.ChallengerID
		if d.ChallengerHP <= 0 {
			winner = d.ChallengedID
		}
		ended, msgs, err := s.finish(ctx, d, dc, &winner, domain.EndReasonHPZero, judgedAt, []*domain.GroundMessage{verdictMsg})
		if err != nil {
			return nil, err
		}
		s.publish(ctx, event.DuelGroundJudged, ended, domain.DuelEventPayload{Verdict: &verdict})
		msgs = append([]*domain.GroundMessage{ground}, msgs...)
		return &TurnResult{Duel: ended, Verdict: &verdict, Messages: messageValues(msgs)}, nil
	}

	var prompt *domain.GroundMessage
	if verdict.Validity == domain.ValidityAmbiguous {
		prompt = hostMessage(d.ID, s.guard.Lines().Clarify(dc.SideOf(actorID)), judgedAt)
	} else {
		d.CurrentTurn = &opponent
		prompt = hostMessage(d.ID, s.guard.Lines().YourTurn(dc.SideOf(opponent)), judgedAt)
	}
	d.TurnStartedAt = &judgedAt
	d.LastActivityAt = judgedAt
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to commit verdict: %w", err)
	}

	msgs := []*domain.GroundMessage{verdictMsg, prompt}
	if err := s.repo.AppendMessages(ctx, msgs...); err != nil {
		return nil, fmt.Errorf("failed to append verdict: %w", err)
	}

	s.publish(ctx, event.DuelGroundJudged, d, domain.DuelEventPayload{Verdict: &verdict})
	s.publishMessages(ctx, d, msgs)
	s.publish(ctx, event.DuelHPUpdated, d, domain.DuelEventPayload{})
	s.publish(ctx, event.DuelTurnChanged, d, domain.DuelEventPayload{})
	if verdict.Validity != domain.ValidityAmbiguous {
		s.notify(opponent, domain.NotifyYourTurn, d.ID)
	}

	all := append([]*domain.GroundMessage{ground}, msgs...)
	return &TurnResult{Duel: d, Verdict: &verdict, Messages: messageValues(all)}, nil
}

// applyVerdict mutates HP for the verdict and returns the host message
// recording it. It does not persist anything.
func (s *service) applyVerdict(ctx context.Context, d *domain.Duel, dc judge.DuelContext, submitter, opponent uuid.UUID, v domain.Verdict, history []domain.GroundMessage, at time.Time) *domain.GroundMessage {
	lines := s.guard.Lines()
	msg := hostMessage(d.ID, lines.Accepted(), at)
	msg.Verdict = &v

	var target uuid.UUID
	var amount int
	switch v.Validity {
	case domain.ValidityInvalid:
		target, amount = submitter, hpclock.Penalty(d.DurationSeconds, hpclock.InvalidPenaltyPercent)
	case domain.ValidityValid:
		if v.CountersIndex != nil {
			if countersOpponent(history, *v.CountersIndex, opponent) {
				target, amount = opponent, hpclock.Penalty(d.DurationSeconds, hpclock.CounterPenaltyPercent)
			} else {
				logger.FromContext(ctx).Debug(LogMsgUnknownCounterRef, "duel_id", d.ID, "counters_index", *v.CountersIndex)
			}
		}
	case domain.ValidityAmbiguous:
		msg.Text = ambiguousVerdictText
	}

	if amount > 0 {
		d.SetHP(target, hpclock.Subtract(d.HP(target), amount))
		delta := -amount
		msg.HPDelta = &delta
		msg.TargetID = &target
		msg.Text = lines.Penalty(v.Validity, dc.SideOf(target), amount)
	}

	switch {
	case v.FailedOpen:
		msg.Text = lines.FallbackVerdict()
	case v.Explanation != "":
		msg.Text += " " + v.Explanation
	}
	return msg
}

// countersOpponent reports whether seq names an argument the opponent made
func countersOpponent(history []domain.GroundMessage, seq int, opponent uuid.UUID) bool {
	for i := range history {
		m := &history[i]
		if m.Seq == seq {
			return m.IsArgument() && m.AuthorID != nil && *m.AuthorID == opponent
		}
	}
	return false
}

// Resign ends the duel in the opponent's favour
func (s *service) Resign(ctx context.Context, actorID, duelID uuid.UUID) (*domain.Duel, error) {
	unlock := s.locks.Lock(duelID)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if err := requireActiveParticipant(d, actorID); err != nil {
		return nil, err
	}

	dc, err := s.duelContext(ctx, d)
	if err != nil {
		return nil, err
	}
	winner := d.Opponent(actorID)
	ended, _, err := s.finish(ctx, d, dc, &winner, domain.EndReasonResigned, s.now(), nil)
	return ended, err
}

// ClaimTimeout ends the duel if the turn holder's clock has run out. Either
// participant may call it.
func (s *service) ClaimTimeout(ctx context.Context, actorID, duelID uuid.UUID) (*domain.Duel, error) {
	unlock := s.locks.Lock(duelID)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if err := requireActiveParticipant(d, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	if live := liveHP(d, now); live > 0 {
		return nil, fmt.Errorf("%w: turn holder has %d HP left", domain.ErrInvalidDuelState, live)
	}
	return s.endOnClock(ctx, d, now)
}

func (s *service) endOnClock(ctx context.Context, d *domain.Duel, now time.Time) (*domain.Duel, error) {
	dc, err := s.duelContext(ctx, d)
	if err != nil {
		return nil, err
	}
	winner := d.Opponent(*d.CurrentTurn)
	ended, _, err := s.finish(ctx, d, dc, &winner, domain.EndReasonHPZero, now, nil)
	return ended, err
}

// ForceEnd closes an active duel with no winner
func (s *service) ForceEnd(ctx context.Context, duelID uuid.UUID) (*domain.Duel, error) {
	unlock := s.locks.Lock(duelID)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DuelStatusActive {
		return nil, domain.ErrInvalidDuelState
	}

	dc, err := s.duelContext(ctx, d)
	if err != nil {
		return nil, err
	}
	ended, _, err := s.finish(ctx, d, dc, nil, domain.EndReasonAdminForceEnded, s.now(), nil)
	return ended, err
}

func requireActiveParticipant(d *domain.Duel, actorID uuid.UUID) error {
	if d.Status != domain.DuelStatusActive {
		return domain.ErrInvalidDuelState
	}
	if !d.IsParticipant(actorID) {
		return domain.ErrNotParticipant
	}
	return nil
}

// liveHP is the turn holder's HP at now, or 0 when no clock is running
func liveHP(d *domain.Duel, now time.Time) int {
	if d.CurrentTurn == nil || d.TurnStartedAt == nil {
		return 0
	}
	return hpclock.Live(d.HP(*d.CurrentTurn), *d.TurnStartedAt, now)
}

// finish is the single termination path. It settles the running clock,
// marks the duel completed and appends pre, the ending line and the closing
// line to the log. winnerID is nil for a moderator ending.
func (s *service) finish(ctx context.Context, d *domain.Duel, dc judge.DuelContext, winnerID *uuid.UUID, reason domain.EndReason, now time.Time, pre []*domain.GroundMessage) (*domain.Duel, []*domain.GroundMessage, error) {
	ctx = context.WithoutCancel(ctx)
	if d.CurrentTurn != nil && d.TurnStartedAt != nil {
		d.SetHP(*d.CurrentTurn, hpclock.Live(d.HP(*d.CurrentTurn), *d.TurnStartedAt, now))
	}

	d.Status = domain.DuelStatusCompleted
	d.EndReason = &reason
	d.WinnerID = winnerID
	d.CurrentTurn = nil
	d.TurnStartedAt = nil
	d.EndedAt = &now
	d.LastActivityAt = now
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return nil, nil, fmt.Errorf("failed to end duel: %w", err)
	}
	s.cache.Invalidate(d.ID)

	loserLabel := ""
	if winnerID != nil {
		loserLabel = dc.SideOf(d.Opponent(*winnerID))
	}
	msgs := append([]*domain.GroundMessage{}, pre...)
	msgs = append(msgs,
		hostMessage(d.ID, s.guard.Lines().Ended(reason, loserLabel), now),
		hostMessage(d.ID, s.guard.ClosingLine(ctx, dc, winnerID), now),
	)
	if err := s.repo.AppendMessages(ctx, msgs...); err != nil {
		return nil, nil, fmt.Errorf("failed to append closing messages: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgDuelEnded, "duel_id", d.ID, "end_reason", reason, "winner_id", winnerID)

	s.publishMessages(ctx, d, msgs)
	s.publish(ctx, event.DuelHPUpdated, d, domain.DuelEventPayload{})
	s.publish(ctx, event.DuelEnded, d, domain.DuelEventPayload{})
	s.notify(d.ChallengerID, domain.NotifyDuelEnded, d.ID)
	s.notify(d.ChallengedID, domain.NotifyDuelEnded, d.ID)
	return d, msgs, nil
}
