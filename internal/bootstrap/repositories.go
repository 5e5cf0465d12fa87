package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/database/postgres"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/repository"
)

// Repositories holds all repository implementations used by the application.
type Repositories struct {
	Duel  repository.Duel
	Topic repository.Topic
}

// InitializeRepositories creates all repository implementations
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Duel:  postgres.NewDuelRepository(dbPool),
		Topic: postgres.NewTopicRepository(dbPool),
	}
}
