package duel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/concurrency"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/judge"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/notification"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/repository"
)

// Action is a response to a pending challenge
type Action string

// ChallengeRequest describes a new challenge
type ChallengeRequest struct {
	TopicID         uuid.UUID
	ChallengedID    uuid.UUID
	ChallengerSide  domain.Side
	DurationSeconds int
}

// TurnResult is the outcome of one ground submission
type TurnResult struct {
	Duel *domain.Duel `json:"duel"`
	// Verdict is nil when the clock ran out before the ground was judged
	Verdict  *domain.Verdict       `json:"verdict,omitempty"`
	Messages []domain.GroundMessage `json:"messages"`
}

// Service defines the interface for duel operations.
//
// Every mutating operation on an existing duel runs under a per-duel lock and
// writes through the repository's version check, so two concurrent actions on
// the same duel can never both succeed.
type Service interface {
	Challenge(ctx context.Context, actorID uuid.UUID, req ChallengeRequest) (*domain.Duel, error)
	Respond(ctx context.Context, actorID, duelID uuid.UUID, action Action, durationSeconds int) (*domain.Duel, error)
	SubmitGround(ctx context.Context, actorID, duelID uuid.UUID, text string) (*TurnResult, error)
	Resign(ctx context.Context, actorID, duelID uuid.UUID) (*domain.Duel, error)
	ClaimTimeout(ctx context.Context, actorID, duelID uuid.UUID) (*domain.Duel, error)

	ForceEnd(ctx context.Context, duelID uuid.UUID) (*domain.Duel, error)
	SetHidden(ctx context.Context, duelID uuid.UUID, hidden bool) (*domain.Duel, error)

	GetDuel(ctx context.Context, duelID uuid.UUID) (*domain.DuelSnapshot, error)
	ListDuels(ctx context.Context, filter domain.DuelFilter) (*domain.DuelPage, error)
	AddComment(ctx context.Context, actorID, duelID uuid.UUID, text string) (*domain.ObserverComment, error)
	ListComments(ctx context.Context, duelID uuid.UUID, limit, offset int) ([]domain.ObserverComment, error)

	ExpireStale(ctx context.Context) (int, error)
	ForfeitInactive(ctx context.Context) (int, error)
	EndExhaustedClocks(ctx context.Context) (int, error)

	Shutdown(ctx context.Context) error
}

// Config holds the rules of play
type Config struct {
	ChallengeExpiry   time.Duration
	InactivityWindow  time.Duration
	MaxConcurrent     int
	MinDuration       int
	MaxDuration       int
	MaxGroundLength   int
	MaxCommentLength  int
	SweepBatchSize    int
	SweepConcurrency  int
	SnapshotCacheSize int
	SnapshotCacheTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChallengeExpiry <= 0 {
		c.ChallengeExpiry = DefaultChallengeExpiry
	}
	if c.InactivityWindow <= 0 {
		c.InactivityWindow = DefaultInactivityWindow
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MinDuration <= 0 {
		c.MinDuration = DefaultMinDuration
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	if c.MaxGroundLength <= 0 {
		c.MaxGroundLength = DefaultMaxGroundLength
	}
	if c.MaxCommentLength <= 0 {
		c.MaxCommentLength = DefaultMaxCommentLength
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = DefaultSweepBatchSize
	}
	if c.SweepConcurrency <= 0 {
		c.SweepConcurrency = DefaultSweepConcurrency
	}
	if c.SnapshotCacheSize <= 0 {
		c.SnapshotCacheSize = DefaultSnapshotCacheSize
	}
	if c.SnapshotCacheTTL <= 0 {
		c.SnapshotCacheTTL = DefaultSnapshotCacheTTL
	}
	return c
}

type service struct {
	repo     repository.Duel
	topics   repository.Topic
	guard    *judge.Guard
	eventBus event.Bus
	notifier notification.Notifier
	locks    *concurrency.LockManager
	cache    *snapshotCache
	cfg      Config
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService creates a new duel service
func NewService(repo repository.Duel, topics repository.Topic, guard *judge.Guard, eventBus event.Bus, notifier notification.Notifier, cfg Config) Service {
	cfg = cfg.withDefaults()
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &service{
		repo:     repo,
		topics:   topics,
		guard:    guard,
		eventBus: eventBus,
		notifier: notifier,
		locks:    concurrency.NewLockManager(),
		cache:    newSnapshotCache(cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Shutdown waits for in-flight notifications
func (s *service) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgShutdown)
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgShutdownComplete)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (s *service) duelContext(ctx context.Context, d *domain.Duel) (judge.DuelContext, error) {
	topic, err := s.topics.GetTopic(ctx, d.TopicID)
	if err != nil {
		return judge.DuelContext{}, fmt.Errorf("failed to load topic: %w", err)
	}
	return judge.NewDuelContext(d, *topic), nil
}

func (s *service) publish(ctx context.Context, t event.Type, d *domain.Duel, payload domain.DuelEventPayload) {
	if payload.Duel == nil && d != nil {
		payload.Duel = d.Clone()
	}
	if err := s.eventBus.Publish(ctx, event.NewDuelEvent(t, d.ID, payload)); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", t, "duel_id", d.ID, "error", err)
	}
}

func (s *service) publishMessages(ctx context.Context, d *domain.Duel, msgs []*domain.GroundMessage) {
	for _, m := range msgs {
		s.publish(ctx, event.DuelMessage, d, domain.DuelEventPayload{Message: m})
	}
}

// notify delivers a notice in the background. Failures are logged only.
func (s *service) notify(userID uuid.UUID, kind domain.NotificationKind, duelID uuid.UUID) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		n := notification.Notice{UserID: userID, Kind: kind, DuelID: duelID}
		if err := s.notifier.Notify(ctx, n); err != nil {
			slog.Warn(LogMsgNotifyFailed, "user_id", userID, "kind", kind, "duel_id", duelID, "error", err)
		}
	}()
}

func hostMessage(duelID uuid.UUID, text string, at time.Time) *domain.GroundMessage {
	return &domain.GroundMessage{
		ID:        uuid.New(),
		DuelID:    duelID,
		Role:      domain.RoleHost,
		Text:      text,
		CreatedAt: at,
	}
}

func messageValues(msgs []*domain.GroundMessage) []domain.GroundMessage {
	out := make([]domain.GroundMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, *m)
	}
	return out
}
