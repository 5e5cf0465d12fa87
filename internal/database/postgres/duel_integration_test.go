package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

func newPendingDuel(topicID, challenger, challenged uuid.UUID, createdAt time.Time) *domain.Duel {
	return &domain.Duel{
		ID:              uuid.New(),
		TopicID:         topicID,
		ChallengerID:    challenger,
		ChallengedID:    challenged,
		ChallengerSide:  domain.SideA,
		ChallengedSide:  domain.SideB,
		Status:          domain.DuelStatusPending,
		DurationSeconds: 300,
		ProposedBy:      challenger,
		ChallengerHP:    300,
		ChallengedHP:    300,
		LastActivityAt:  createdAt,
		CreatedAt:       createdAt,
		Version:         1,
	}
}

func activate(d *domain.Duel, at time.Time) {
	d.Status = domain.DuelStatusActive
	turn := d.ChallengerID
	d.CurrentTurn = &turn
	d.TurnStartedAt = &at
	d.StartedAt = &at
	d.LastActivityAt = at
}

func TestDuelRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewDuelRepository(pool)
	topics := NewTopicRepository(pool)
	topicID := insertTopic(t, pool, "Pineapple belongs on pizza")
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("GetTopic", func(t *testing.T) {
		topic, err := topics.GetTopic(ctx, topicID)
		require.NoError(t, err)
		assert.Equal(t, "Pineapple belongs on pizza", topic.Title)
		assert.Equal(t, "Yes", topic.SideALabel)

		_, err = topics.GetTopic(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrTopicNotFound)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		d := newPendingDuel(topicID, uuid.New(), uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, d, 3))

		got, err := repo.GetDuel(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DuelStatusPending, got.Status)
		assert.Equal(t, domain.SideA, got.ChallengerSide)
		assert.Nil(t, got.CurrentTurn)
		assert.Equal(t, 1, got.Version)

		_, err = repo.GetDuel(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrDuelNotFound)
	})

	t.Run("UnknownTopic", func(t *testing.T) {
		d := newPendingDuel(uuid.New(), uuid.New(), uuid.New(), now)
		err := repo.CreateDuel(ctx, d, 3)
		assert.ErrorIs(t, err, domain.ErrTopicNotFound)
	})

	t.Run("CapCountsIssuedPendingOnly", func(t *testing.T) {
		challenger := uuid.New()
		require.NoError(t, repo.CreateDuel(ctx, newPendingDuel(topicID, challenger, uuid.New(), now), 2))
		require.NoError(t, repo.CreateDuel(ctx, newPendingDuel(topicID, challenger, uuid.New(), now), 2))

		err := repo.CreateDuel(ctx, newPendingDuel(topicID, challenger, uuid.New(), now), 2)
		assert.ErrorIs(t, err, domain.ErrDuelCapReached)

		// Incoming challenges do not consume the recipient's slots
		recipient := uuid.New()
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.CreateDuel(ctx, newPendingDuel(topicID, uuid.New(), recipient, now), 1))
		}
	})

	t.Run("ConcurrentCreateRespectsCap", func(t *testing.T) {
		challenger := uuid.New()
		const attempts = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.CreateDuel(ctx, newPendingDuel(topicID, challenger, uuid.New(), now), 3); err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 3, created)
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		d := newPendingDuel(topicID, uuid.New(), uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, d, 3))

		stale := d.Clone()
		activate(d, now)
		require.NoError(t, repo.ActivateDuel(ctx, d, 3))
		assert.Equal(t, 2, d.Version)

		stale.Status = domain.DuelStatusDeclined
		assert.ErrorIs(t, repo.UpdateDuel(ctx, stale), domain.ErrVersionConflict)

		d.ChallengerHP = 250
		require.NoError(t, repo.UpdateDuel(ctx, d))
		assert.Equal(t, 3, d.Version)

		got, err := repo.GetDuel(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DuelStatusActive, got.Status)
		assert.Equal(t, 250, got.ChallengerHP)
		require.NotNil(t, got.CurrentTurn)
		assert.Equal(t, d.ChallengerID, *got.CurrentTurn)

		ghost := d.Clone()
		ghost.ID = uuid.New()
		assert.ErrorIs(t, repo.UpdateDuel(ctx, ghost), domain.ErrDuelNotFound)
	})

	t.Run("ActivateChecksOpponentCap", func(t *testing.T) {
		busy := uuid.New()
		other := newPendingDuel(topicID, busy, uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, other, 1))
		activate(other, now)
		require.NoError(t, repo.ActivateDuel(ctx, other, 1))

		incoming := newPendingDuel(topicID, uuid.New(), busy, now)
		require.NoError(t, repo.CreateDuel(ctx, incoming, 1))
		activate(incoming, now)
		assert.ErrorIs(t, repo.ActivateDuel(ctx, incoming, 1), domain.ErrDuelCapReached)
	})

	t.Run("Completion", func(t *testing.T) {
		d := newPendingDuel(topicID, uuid.New(), uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, d, 3))
		activate(d, now)
		require.NoError(t, repo.ActivateDuel(ctx, d, 3))

		reason := domain.EndReasonResigned
		winner := d.ChallengedID
		d.Status = domain.DuelStatusCompleted
		d.EndReason = &reason
		d.WinnerID = &winner
		d.CurrentTurn = nil
		d.TurnStartedAt = nil
		d.EndedAt = &now
		require.NoError(t, repo.UpdateDuel(ctx, d))

		got, err := repo.GetDuel(ctx, d.ID)
		require.NoError(t, err)
		require.NotNil(t, got.EndReason)
		assert.Equal(t, domain.EndReasonResigned, *got.EndReason)
		assert.Equal(t, winner, *got.WinnerID)
	})

	t.Run("MessagesGetConsecutiveSeq", func(t *testing.T) {
		d := newPendingDuel(topicID, uuid.New(), uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, d, 3))

		author := d.ChallengerID
		delta := -12
		counters := 1
		first := &domain.GroundMessage{ID: uuid.New(), DuelID: d.ID, Role: domain.RoleHost, Text: "Begin.", CreatedAt: now}
		second := &domain.GroundMessage{
			ID: uuid.New(), DuelID: d.ID, Role: domain.RoleChallenger, AuthorID: &author,
			Text: "Sweet and salty is balance.", HPDelta: &delta, TargetID: &author,
			Verdict:   &domain.Verdict{Validity: domain.ValidityInvalid, CountersIndex: &counters, Explanation: "Off topic."},
			CreatedAt: now,
		}
		require.NoError(t, repo.AppendMessages(ctx, first, second))
		assert.Equal(t, 1, first.Seq)
		assert.Equal(t, 2, second.Seq)

		third := &domain.GroundMessage{ID: uuid.New(), DuelID: d.ID, Role: domain.RoleHost, Text: "Next.", CreatedAt: now}
		require.NoError(t, repo.AppendMessages(ctx, third))
		assert.Equal(t, 3, third.Seq)

		msgs, err := repo.ListMessages(ctx, d.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Nil(t, msgs[0].Verdict)
		require.NotNil(t, msgs[1].Verdict)
		assert.Equal(t, domain.ValidityInvalid, msgs[1].Verdict.Validity)
		require.NotNil(t, msgs[1].Verdict.CountersIndex)
		assert.Equal(t, 1, *msgs[1].Verdict.CountersIndex)
		assert.Equal(t, -12, *msgs[1].HPDelta)
	})

	t.Run("Comments", func(t *testing.T) {
		d := newPendingDuel(topicID, uuid.New(), uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, d, 3))

		for i := 0; i < 3; i++ {
			c := &domain.ObserverComment{ID: uuid.New(), DuelID: d.ID, AuthorID: uuid.New(), Text: "nice", CreatedAt: now.Add(time.Duration(i) * time.Second)}
			require.NoError(t, repo.AddComment(ctx, c))
		}

		page, err := repo.ListComments(ctx, d.ID, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := repo.ListComments(ctx, d.ID, 2, 2)
		require.NoError(t, err)
		assert.Len(t, rest, 1)

		err = repo.AddComment(ctx, &domain.ObserverComment{ID: uuid.New(), DuelID: uuid.New(), AuthorID: uuid.New(), Text: "x", CreatedAt: now})
		assert.ErrorIs(t, err, domain.ErrDuelNotFound)
	})

	t.Run("JanitorCandidates", func(t *testing.T) {
		old := now.Add(-2 * time.Hour)

		stale := newPendingDuel(topicID, uuid.New(), uuid.New(), old)
		require.NoError(t, repo.CreateDuel(ctx, stale, 3))

		idle := newPendingDuel(topicID, uuid.New(), uuid.New(), old)
		require.NoError(t, repo.CreateDuel(ctx, idle, 3))
		activate(idle, old)
		require.NoError(t, repo.ActivateDuel(ctx, idle, 3))

		pending, err := repo.ListStalePending(ctx, now.Add(-time.Hour), 100)
		require.NoError(t, err)
		assert.True(t, containsDuel(pending, stale.ID))
		assert.False(t, containsDuel(pending, idle.ID))

		inactive, err := repo.ListInactive(ctx, now.Add(-time.Hour), 100)
		require.NoError(t, err)
		assert.True(t, containsDuel(inactive, idle.ID))

		// 300s clock started two hours ago is long exhausted
		exhausted, err := repo.ListClockExhausted(ctx, now, 100)
		require.NoError(t, err)
		assert.True(t, containsDuel(exhausted, idle.ID))
		assert.False(t, containsDuel(exhausted, stale.ID))
	})

	t.Run("ListDuelsHidesHidden", func(t *testing.T) {
		participant := uuid.New()
		visible := newPendingDuel(topicID, participant, uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, visible, 5))
		hidden := newPendingDuel(topicID, participant, uuid.New(), now)
		require.NoError(t, repo.CreateDuel(ctx, hidden, 5))
		hidden.Hidden = true
		require.NoError(t, repo.UpdateDuel(ctx, hidden))

		page, err := repo.ListDuels(ctx, domain.DuelFilter{ParticipantID: &participant, Limit: 10})
		require.NoError(t, err)
		assert.True(t, containsDuel(page.Duels, visible.ID))
		assert.False(t, containsDuel(page.Duels, hidden.ID))

		page, err = repo.ListDuels(ctx, domain.DuelFilter{ParticipantID: &participant, IncludeHidden: true, Limit: 10})
		require.NoError(t, err)
		assert.True(t, containsDuel(page.Duels, hidden.ID))
	})
}

func containsDuel(duels []domain.Duel, id uuid.UUID) bool {
	for _, d := range duels {
		if d.ID == id {
			return true
		}
	}
	return false
}
