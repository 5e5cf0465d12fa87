package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// Duel defines the interface for duel data access.
//
// Writes are compare-and-swap on Duel.Version: an update succeeds only when
// the stored version equals duel.Version, and on success duel.Version is
// incremented in place. A stale write returns domain.ErrVersionConflict.
type Duel interface {
	// CreateDuel inserts a pending duel if its challenger holds fewer than
	// maxOpen pending or active duels. The count and insert are serialized
	// per user; a full slot returns domain.ErrDuelCapReached.
	CreateDuel(ctx context.Context, duel *domain.Duel, maxOpen int) error
	GetDuel(ctx context.Context, id uuid.UUID) (*domain.Duel, error)
	ListDuels(ctx context.Context, filter domain.DuelFilter) (*domain.DuelPage, error)

	// UpdateDuel persists every mutable field of duel
	UpdateDuel(ctx context.Context, duel *domain.Duel) error
	// ActivateDuel is UpdateDuel plus a cap check for both participants that
	// ignores duel itself
	ActivateDuel(ctx context.Context, duel *domain.Duel, maxOpen int) error

	// Janitor candidates
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Duel, error)
	ListInactive(ctx context.Context, lastActivityBefore time.Time, limit int) ([]domain.Duel, error)
	ListClockExhausted(ctx context.Context, now time.Time, limit int) ([]domain.Duel, error)

	// AppendMessages assigns consecutive Seq values and inserts msgs in order
	AppendMessages(ctx context.Context, msgs ...*domain.GroundMessage) error
	ListMessages(ctx context.Context, duelID uuid.UUID) ([]domain.GroundMessage, error)

	AddComment(ctx context.Context, comment *domain.ObserverComment) error
	ListComments(ctx context.Context, duelID uuid.UUID, limit, offset int) ([]domain.ObserverComment, error)
}

// Topic defines read access to debate topics
type Topic interface {
	GetTopic(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
}
