package duel

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

func TestSnapshotCache_SkipsLiveDuels(t *testing.T) {
	c := newSnapshotCache(4, time.Minute)
	c.Set(&domain.DuelSnapshot{Duel: &domain.Duel{ID: uuid.New(), Status: domain.DuelStatusActive}})
	c.Set(nil)
	assert.Equal(t, 0, c.Len())
}

func TestSnapshotCache_EntriesExpire(t *testing.T) {
	c := newSnapshotCache(4, 20*time.Millisecond)
	id := uuid.New()
	c.Set(&domain.DuelSnapshot{Duel: &domain.Duel{ID: id, Status: domain.DuelStatusCompleted}})

	_, ok := c.Get(id)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(id)
		return !ok
	}, time.Second, 5*time.Millisecond)
}
