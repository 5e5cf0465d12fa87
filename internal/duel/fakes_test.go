package duel

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/judge"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/notification"
)

// memoryRepo is an in-memory repository.Duel and repository.Topic with the
// same version-check semantics as the postgres implementation. Writes fail
// on a done context as pgx does.
type memoryRepo struct {
	mu       sync.Mutex
	duels    map[uuid.UUID]*domain.Duel
	messages map[uuid.UUID][]domain.GroundMessage
	comments map[uuid.UUID][]domain.ObserverComment
	topics   map[uuid.UUID]*domain.Topic
	updates  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		duels:    make(map[uuid.UUID]*domain.Duel),
		messages: make(map[uuid.UUID][]domain.GroundMessage),
		comments: make(map[uuid.UUID][]domain.ObserverComment),
		topics:   make(map[uuid.UUID]*domain.Topic),
	}
}

func (r *memoryRepo) addTopic(t domain.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics[t.ID] = &t
}

func (r *memoryRepo) GetTopic(_ context.Context, id uuid.UUID) (*domain.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	c := *t
	return &c, nil
}

func (r *memoryRepo) openSlots(userID, exclude uuid.UUID) int {
	n := 0
	for _, d := range r.duels {
		if d.ID == exclude {
			continue
		}
		switch {
		case d.Status == domain.DuelStatusActive && d.IsParticipant(userID):
			n++
		case d.Status == domain.DuelStatusPending && d.ChallengerID == userID:
			n++
		}
	}
	return n
}

func (r *memoryRepo) CreateDuel(_ context.Context, d *domain.Duel, maxOpen int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[d.TopicID]; !ok {
		return domain.ErrTopicNotFound
	}
	if r.openSlots(d.ChallengerID, d.ID) >= maxOpen {
		return domain.ErrDuelCapReached
	}
	r.duels[d.ID] = d.Clone()
	return nil
}

func (r *memoryRepo) GetDuel(_ context.Context, id uuid.UUID) (*domain.Duel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.duels[id]
	if !ok {
		return nil, domain.ErrDuelNotFound
	}
	return d.Clone(), nil
}

func (r *memoryRepo) ListDuels(_ context.Context, f domain.DuelFilter) (*domain.DuelPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Duel
	for _, d := range r.duels {
		if f.TopicID != nil && d.TopicID != *f.TopicID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.ParticipantID != nil && !d.IsParticipant(*f.ParticipantID) {
			continue
		}
		if d.Hidden && !f.IncludeHidden {
			continue
		}
		out = append(out, *d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return &domain.DuelPage{Duels: out, Total: len(out)}, nil
}

func (r *memoryRepo) update(d *domain.Duel) error {
	cur, ok := r.duels[d.ID]
	if !ok {
		return domain.ErrDuelNotFound
	}
	if cur.Version != d.Version {
		return domain.ErrVersionConflict
	}
	d.Version++
	r.duels[d.ID] = d.Clone()
	r.updates++
	return nil
}

func (r *memoryRepo) UpdateDuel(ctx context.Context, d *domain.Duel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(d)
}

func (r *memoryRepo) ActivateDuel(_ context.Context, d *domain.Duel, maxOpen int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range []uuid.UUID{d.ChallengerID, d.ChallengedID} {
		if r.openSlots(u, d.ID) >= maxOpen {
			return domain.ErrDuelCapReached
		}
	}
	return r.update(d)
}

func (r *memoryRepo) list(match func(*domain.Duel) bool, limit int) []domain.Duel {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Duel
	for _, d := range r.duels {
		if match(d) && len(out) < limit {
			out = append(out, *d.Clone())
		}
	}
	return out
}

func (r *memoryRepo) ListStalePending(_ context.Context, before time.Time, limit int) ([]domain.Duel, error) {
	return r.list(func(d *domain.Duel) bool {
		return d.Status == domain.DuelStatusPending && d.CreatedAt.Before(before)
	}, limit), nil
}

func (r *memoryRepo) ListInactive(_ context.Context, before time.Time, limit int) ([]domain.Duel, error) {
	return r.list(func(d *domain.Duel) bool {
		return d.Status == domain.DuelStatusActive && d.LastActivityAt.Before(before)
	}, limit), nil
}

func (r *memoryRepo) ListClockExhausted(_ context.Context, now time.Time, limit int) ([]domain.Duel, error) {
	return r.list(func(d *domain.Duel) bool {
		return d.Status == domain.DuelStatusActive && liveHP(d, now) <= 0
	}, limit), nil
}

func (r *memoryRepo) AppendMessages(ctx context.Context, msgs ...*domain.GroundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		if _, ok := r.duels[m.DuelID]; !ok {
			return domain.ErrDuelNotFound
		}
		m.Seq = len(r.messages[m.DuelID]) + 1
		r.messages[m.DuelID] = append(r.messages[m.DuelID], *m)
	}
	return nil
}

func (r *memoryRepo) ListMessages(_ context.Context, duelID uuid.UUID) ([]domain.GroundMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.GroundMessage(nil), r.messages[duelID]...), nil
}

func (r *memoryRepo) AddComment(_ context.Context, c *domain.ObserverComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.duels[c.DuelID]; !ok {
		return domain.ErrDuelNotFound
	}
	r.comments[c.DuelID] = append(r.comments[c.DuelID], *c)
	return nil
}

func (r *memoryRepo) ListComments(_ context.Context, duelID uuid.UUID, limit, offset int) ([]domain.ObserverComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.comments[duelID]
	if offset >= len(all) {
		return []domain.ObserverComment{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return append([]domain.ObserverComment(nil), all...), nil
}

func (r *memoryRepo) stored(id uuid.UUID) *domain.Duel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duels[id].Clone()
}

// scriptedJudge returns queued verdicts in order and counts evaluations
type scriptedJudge struct {
	mu       sync.Mutex
	verdicts []domain.Verdict
	err      error
	calls    int
	onCall   func()
}

func (j *scriptedJudge) Evaluate(_ context.Context, _ judge.EvalContext, _ string) (domain.Verdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	if j.onCall != nil {
		j.onCall()
	}
	if j.err != nil {
		return domain.Verdict{}, j.err
	}
	if len(j.verdicts) == 0 {
		return domain.Verdict{Validity: domain.ValidityValid}, nil
	}
	v := j.verdicts[0]
	j.verdicts = j.verdicts[1:]
	return v, nil
}

func (j *scriptedJudge) OpeningLine(context.Context, judge.DuelContext) (string, error) {
	return "", errors.New("no flavor in tests")
}

func (j *scriptedJudge) ClosingLine(context.Context, judge.DuelContext, *uuid.UUID) (string, error) {
	return "", errors.New("no flavor in tests")
}

func (j *scriptedJudge) evaluations() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

// testClock is a manually advanced clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n notification.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *recordingNotifier) kinds(userID uuid.UUID) []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NotificationKind
	for _, n := range r.notices {
		if n.UserID == userID {
			out = append(out, n.Kind)
		}
	}
	return out
}

type recordingBus struct {
	*event.MemoryBus
	mu    sync.Mutex
	types []event.Type
}

func newRecordingBus() *recordingBus {
	b := &recordingBus{MemoryBus: event.NewMemoryBus()}
	event.SubscribeMany(b.MemoryBus, event.DuelEventTypes, func(_ context.Context, e event.Event) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.types = append(b.types, e.Type)
		return nil
	})
	return b
}

func (b *recordingBus) seen() []event.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]event.Type(nil), b.types...)
}
