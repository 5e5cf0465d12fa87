package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/repository"
)

type topicRepository struct {
	db *pgxpool.Pool
}

// NewTopicRepository creates a new PostgreSQL topic repository
func NewTopicRepository(db *pgxpool.Pool) repository.Topic {
	return &topicRepository{db: db}
}

func (r *topicRepository) GetTopic(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	var t domain.Topic
	err := r.db.QueryRow(ctx, `
		SELECT topic_id, title, description, side_a_label, side_b_label
		FROM topics WHERE topic_id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.SideALabel, &t.SideBLabel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &t, nil
}
