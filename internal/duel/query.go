package duel

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// GetDuel returns the duel, its topic and full log. For an active duel
// LiveHP carries the turn holder's drained HP; nothing is written.
func (s *service) GetDuel(ctx context.Context, duelID uuid.UUID) (*domain.DuelSnapshot, error) {
	if snap, ok := s.cache.Get(duelID); ok {
		return snap, nil
	}

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	topic, err := s.topics.GetTopic(ctx, d.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}
	msgs, err := s.repo.ListMessages(ctx, duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load argument log: %w", err)
	}

	snap := &domain.DuelSnapshot{Duel: d, Topic: topic, Messages: msgs}
	if d.Status == domain.DuelStatusActive {
		live := liveHP(d, s.now())
		snap.LiveHP = &live
	}
	s.cache.Set(snap)
	return snap, nil
}

// ListDuels pages through duels matching filter
func (s *service) ListDuels(ctx context.Context, filter domain.DuelFilter) (*domain.DuelPage, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *filter.Status)
	}
	return s.repo.ListDuels(ctx, filter)
}

// SetHidden toggles the moderation flag. Allowed in every status.
func (s *service) SetHidden(ctx context.Context, duelID uuid.UUID, hidden bool) (*domain.Duel, error) {
	unlock := s.locks.Lock(duelID)
	defer unlock()

	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if d.Hidden == hidden {
		return d, nil
	}

	d.Hidden = hidden
	if err := s.repo.UpdateDuel(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update duel visibility: %w", err)
	}
	s.cache.Invalidate(d.ID)
	s.publish(ctx, event.DuelHidden, d, domain.DuelEventPayload{})
	return d, nil
}

// AddComment appends an observer comment. Comments never touch duel state.
func (s *service) AddComment(ctx context.Context, actorID, duelID uuid.UUID, text string) (*domain.ObserverComment, error) {
	text, ok := normalizeText(text, s.cfg.MaxCommentLength)
	if !ok {
		return nil, fmt.Errorf("%w: comment must be 1 to %d characters", domain.ErrInvalidInput, s.cfg.MaxCommentLength)
	}

	c := &domain.ObserverComment{
		ID:        uuid.New(),
		DuelID:    duelID,
		AuthorID:  actorID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, event.NewDuelEvent(event.DuelCommentAdded, duelID, domain.DuelEventPayload{Comment: c})); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", event.DuelCommentAdded, "duel_id", duelID, "error", err)
	}
	return c, nil
}

// ListComments returns a page of comments, oldest first
func (s *service) ListComments(ctx context.Context, duelID uuid.UUID, limit, offset int) ([]domain.ObserverComment, error) {
	if _, err := s.repo.GetDuel(ctx, duelID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, duelID, limit, offset)
}
