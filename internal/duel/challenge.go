package duel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// Challenge creates a pending duel proposed by actorID
func (s *service) Challenge(ctx context.Context, actorID uuid.UUID, req ChallengeRequest) (*domain.Duel, error) {
	if actorID == req.ChallengedID {
		return nil, domain.ErrSelfChallenge
	}
	if !req.ChallengerSide.Valid() {
		return nil, domain.ErrInvalidSide
	}
	if err := s.checkDuration(req.DurationSeconds); err != nil {
		return nil, err
	}
	if _, err := s.topics.GetTopic(ctx, req.TopicID); err != nil {
		return nil, err
	}

	now := s.now()
	d := &domain.Duel{
		ID:              uuid.New(),
		TopicID:         req.TopicID,
		ChallengerID:    actorID,
		ChallengedID:    req.ChallengedID,
		ChallengerSide:  req.ChallengerSide,
		ChallengedSide:  req.ChallengerSide.Opposite(),
		Status:          domain.DuelStatusPending,
		DurationSeconds: req.DurationSeconds,
		ProposedBy:      actorID,
		ChallengerHP:    req.DurationSeconds,
		ChallengedHP:    req.DurationSeconds,
		LastActivityAt:  now,
		CreatedAt:       now,
		Version:         1,
	}

	if err := s.repo.CreateDuel(ctx, d, s.cfg.MaxConcurrent); err != nil {
		return nil, fmt.Errorf("failed to create duel: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgChallengeCreated,
		"duel_id", d.ID,
		"challenger_id", d.ChallengerID,
		"challenged_id", d.ChallengedID,
		"duration_seconds", d.DurationSeconds)

	s.publish(ctx, event.DuelChallenged, d, domain.DuelEventPayload{})
	s.notify(d.ChallengedID, domain.NotifyChallengeReceived, d.ID)
	return d, nil
}

func (s *service) checkDuration(seconds int) error {
	if seconds < s.cfg.MinDuration || seconds > s.cfg.MaxDuration {
		return fmt.Errorf("%w: must be between %d and %d seconds", domain.ErrInvalidDuration, s.cfg.MinDuration, s.cfg.MaxDuration)
	}
	return nil
}

// Respond accepts, declines or counters a pending challenge. Only the party
// who did not make the current proposal may respond.
func (s *service) Respond(ctx context.Context, actorID, duelID uuid.UUID, action Action, durationSeconds int) (*domain.Duel, error) {
	switch action {
	case ActionAccept, ActionDecline:
	case ActionCounter:
		if err := s.checkDuration(durationSeconds); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidAction
	}

	unlock := s.locks.Lock(duelID)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DuelStatusPending {
		return nil, domain.ErrInvalidDuelState
	}
	if !d.IsParticipant(actorID) {
		return nil, domain.ErrNotParticipant
	}

	now := s.now()
	if s.challengeExpired(d, now) {
		if err := s.expire(ctx, d, now); err != nil {
			return nil, err
		}
		logger.FromContext(ctx).Info(LogMsgLazyExpire, "duel_id", d.ID)
		return nil, fmt.Errorf("%w: challenge expired", domain.ErrInvalidDuelState)
	}
	if d.ProposedBy == actorID {
		return nil, domain.ErrOwnProposal
	}

	switch action {
	case ActionDecline:
		return s.decline(ctx, d, now)
	case ActionCounter:
		return s.counter(ctx, d, actorID, durationSeconds, now)
	default:
		return s.accept(ctx, d)
	}
}

func (s *service) challengeExpired(d *domain.Duel, now time.Time) bool {
	return now.Sub(d.CreatedAt) > s.cfg.ChallengeExpiry
}

func (s *service) expire(ctx context.Context, d *domain.Duel, now time.Time) error {
	d.Status = domain.DuelStatusExpired
	d.EndedAt = &now
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return fmt.Errorf("failed to expire duel: %w", err)
	}
	s.publish(ctx, event.DuelExpired, d, domain.DuelEventPayload{})
	return nil
}

func (s *service) decline(ctx context.Context, d *domain.Duel, now time.Time) (*domain.Duel, error) {
	d.Status = domain.DuelStatusDeclined
	d.EndedAt = &now
	d.LastActivityAt = now
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to decline duel: %w", err)
	}

	s.publish(ctx, event.DuelDeclined, d, domain.DuelEventPayload{})
	s.notify(d.ProposedBy, domain.NotifyChallengeDeclined, d.ID)
	return d, nil
}

func (s *service) counter(ctx context.Context, d *domain.Duel, actorID uuid.UUID, seconds int, now time.Time) (*domain.Duel, error) {
	proposer := d.ProposedBy
	d.DurationSeconds = seconds
	d.ChallengerHP = seconds
	d.ChallengedHP = seconds
	d.ProposedBy = actorID
	d.LastActivityAt = now
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to counter duel: %w", err)
	}

	s.publish(ctx, event.DuelCountered, d, domain.DuelEventPayload{})
	s.notify(proposer, domain.NotifyCounterProposed, d.ID)
	return d, nil
}

// accept activates the duel. The opening line is fetched before the clock
// starts so judge latency is never charged to the challenger.
func (s *service) accept(ctx context.Context, d *domain.Duel) (*domain.Duel, error) {
	dc, err := s.duelContext(ctx, d)
	if err != nil {
		return nil, err
	}
	opening := s.guard.OpeningLine(ctx, dc)

	now := s.now()
	challenger := d.ChallengerID
	d.Status = domain.DuelStatusActive
	d.ChallengerHP = d.DurationSeconds
	d.ChallengedHP = d.DurationSeconds
	d.CurrentTurn = &challenger
	d.TurnStartedAt = &now
	d.StartedAt = &now
	d.LastActivityAt = now
	if err := s.repo.ActivateDuel(ctx, d, s.cfg.MaxConcurrent); err != nil {
		return nil, fmt.Errorf("failed to activate duel: %w", err)
	}

	msgs := []*domain.GroundMessage{
		hostMessage(d.ID, opening, now),
		hostMessage(d.ID, s.guard.Lines().YourTurn(dc.SideOf(challenger)), now),
	}
	if err := s.repo.AppendMessages(ctx, msgs...); err != nil {
		return nil, fmt.Errorf("failed to append opening messages: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgDuelStarted, "duel_id", d.ID, "duration_seconds", d.DurationSeconds)

	s.publish(ctx, event.DuelStarted, d, domain.DuelEventPayload{})
	s.publishMessages(ctx, d, msgs)
	s.notify(d.ChallengerID, domain.NotifyDuelStarted, d.ID)
	s.notify(d.ChallengedID, domain.NotifyDuelStarted, d.ID)
	s.notify(d.ChallengerID, domain.NotifyYourTurn, d.ID)
	return d, nil
}
