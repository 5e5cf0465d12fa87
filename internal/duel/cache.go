package duel

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// snapshotCache holds read models of terminal duels. Terminal duels only
// change through moderation, which invalidates the entry. The cache is per
// process: a hide on another instance is seen here only once the entry
// expires, so the TTL bounds how long a stale Hidden flag can be served.
type snapshotCache struct {
	lru *expirable.LRU[uuid.UUID, *domain.DuelSnapshot]
}

func newSnapshotCache(size int, ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		lru: expirable.NewLRU[uuid.UUID, *domain.DuelSnapshot](size, nil, ttl),
	}
}

func (c *snapshotCache) Get(id uuid.UUID) (*domain.DuelSnapshot, bool) {
	return c.lru.Get(id)
}

// Set stores snap if its duel is terminal
func (c *snapshotCache) Set(snap *domain.DuelSnapshot) {
	if snap == nil || snap.Duel == nil || !snap.Duel.Status.IsTerminal() {
		return
	}
	c.lru.Add(snap.Duel.ID, snap)
}

func (c *snapshotCache) Invalidate(id uuid.UUID) {
	c.lru.Remove(id)
}

func (c *snapshotCache) Len() int {
	return c.lru.Len()
}
