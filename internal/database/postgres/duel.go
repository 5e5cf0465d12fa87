package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/repository"
)

type duelRepository struct {
	db *pgxpool.Pool
}

// NewDuelRepository creates a new PostgreSQL duel repository
func NewDuelRepository(db *pgxpool.Pool) repository.Duel {
	return &duelRepository{db: db}
}

const duelColumns = `
	duel_id, topic_id, challenger_id, challenged_id, challenger_side, challenged_side,
	status, duration_seconds, proposed_by, challenger_hp, challenged_hp,
	current_turn, turn_started_at, winner_id, end_reason, hidden,
	last_activity_at, created_at, started_at, ended_at, version`

// openSlotsQuery counts the duels that occupy a user's concurrency slot:
// active duels on either side plus pending challenges the user issued.
// Incoming pending challenges do not occupy a slot.
const openSlotsQuery = `
	SELECT COUNT(*) FROM duels
	WHERE duel_id <> $2 AND (
		(status = 'active' AND (challenger_id = $1 OR challenged_id = $1))
		OR (status = 'pending' AND challenger_id = $1)
	)`

func scanDuel(row pgx.Row) (*domain.Duel, error) {
	var (
		d                                     domain.Duel
		challengerSide, challengedSide, state string
		endReason                             *string
	)
	err := row.Scan(
		&d.ID, &d.TopicID, &d.ChallengerID, &d.ChallengedID, &challengerSide, &challengedSide,
		&state, &d.DurationSeconds, &d.ProposedBy, &d.ChallengerHP, &d.ChallengedHP,
		&d.CurrentTurn, &d.TurnStartedAt, &d.WinnerID, &endReason, &d.Hidden,
		&d.LastActivityAt, &d.CreatedAt, &d.StartedAt, &d.EndedAt, &d.Version,
	)
	if err != nil {
		return nil, err
	}
	d.ChallengerSide = domain.Side(challengerSide)
	d.ChallengedSide = domain.Side(challengedSide)
	d.Status = domain.DuelStatus(state)
	if endReason != nil {
		r := domain.EndReason(*endReason)
		d.EndReason = &r
	}
	return &d, nil
}

func collectDuels(rows pgx.Rows) ([]domain.Duel, error) {
	defer rows.Close()
	var duels []domain.Duel
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duel: %w", err)
		}
		duels = append(duels, *d)
	}
	return duels, rows.Err()
}

// lockUserSlots takes transaction-scoped advisory locks for users in a stable
// order so concurrent cap checks on overlapping users cannot deadlock.
func lockUserSlots(ctx context.Context, tx pgx.Tx, users ...uuid.UUID) error {
	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, u.String())
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, $2))`, k, LockNamespaceUserSlot); err != nil {
			return fmt.Errorf("failed to lock user slot: %w", err)
		}
	}
	return nil
}

func checkSlots(ctx context.Context, tx pgx.Tx, exclude uuid.UUID, maxOpen int, users ...uuid.UUID) error {
	for _, u := range users {
		var open int
		if err := tx.QueryRow(ctx, openSlotsQuery, u, exclude).Scan(&open); err != nil {
			return fmt.Errorf("failed to count open duels: %w", err)
		}
		if open >= maxOpen {
			return domain.ErrDuelCapReached
		}
	}
	return nil
}

func (r *duelRepository) CreateDuel(ctx context.Context, duel *domain.Duel, maxOpen int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	if err := lockUserSlots(ctx, tx, duel.ChallengerID); err != nil {
		return err
	}
	if err := checkSlots(ctx, tx, duel.ID, maxOpen, duel.ChallengerID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO duels (`+duelColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		duel.ID, duel.TopicID, duel.ChallengerID, duel.ChallengedID, string(duel.ChallengerSide), string(duel.ChallengedSide),
		string(duel.Status), duel.DurationSeconds, duel.ProposedBy, duel.ChallengerHP, duel.ChallengedHP,
		duel.CurrentTurn, duel.TurnStartedAt, duel.WinnerID, endReasonArg(duel.EndReason), duel.Hidden,
		duel.LastActivityAt, duel.CreatedAt, duel.StartedAt, duel.EndedAt, duel.Version,
	)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == PgErrorCodeForeignKeyViolation && constraint == ConstraintDuelsTopicFK {
			return domain.ErrTopicNotFound
		}
		return fmt.Errorf("failed to insert duel: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit duel: %w", err)
	}
	return nil
}

func (r *duelRepository) GetDuel(ctx context.Context, id uuid.UUID) (*domain.Duel, error) {
	d, err := scanDuel(r.db.QueryRow(ctx, `SELECT `+duelColumns+` FROM duels WHERE duel_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDuelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	return d, nil
}

func (r *duelRepository) ListDuels(ctx context.Context, filter domain.DuelFilter) (*domain.DuelPage, error) {
	var where strings.Builder
	where.WriteString(" WHERE 1=1")
	args := []interface{}{}
	argNum := 1

	if filter.TopicID != nil {
		fmt.Fprintf(&where, " AND topic_id = $%d", argNum)
		args = append(args, *filter.TopicID)
		argNum++
	}
	if filter.Status != nil {
		fmt.Fprintf(&where, " AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}
	if filter.ParticipantID != nil {
		fmt.Fprintf(&where, " AND (challenger_id = $%d OR challenged_id = $%d)", argNum, argNum)
		args = append(args, *filter.ParticipantID)
		argNum++
	}
	if !filter.IncludeHidden {
		where.WriteString(" AND hidden = FALSE")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM duels`+where.String(), args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count duels: %w", err)
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM duels%s ORDER BY created_at DESC, duel_id LIMIT $%d OFFSET $%d`,
		duelColumns, where.String(), argNum, argNum+1)
	args = append(args, clampLimit(filter.Limit), offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list duels: %w", err)
	}
	duels, err := collectDuels(rows)
	if err != nil {
		return nil, err
	}
	if duels == nil {
		duels = []domain.Duel{}
	}
	return &domain.DuelPage{Duels: duels, Total: total}, nil
}

const updateDuelQuery = `
	UPDATE duels SET
		status = $2, duration_seconds = $3, proposed_by = $4,
		challenger_hp = $5, challenged_hp = $6, current_turn = $7, turn_started_at = $8,
		winner_id = $9, end_reason = $10, hidden = $11, last_activity_at = $12,
		started_at = $13, ended_at = $14, version = version + 1
	WHERE duel_id = $1 AND version = $15`

func (r *duelRepository) UpdateDuel(ctx context.Context, duel *domain.Duel) error {
	tag, err := r.db.Exec(ctx, updateDuelQuery, updateArgs(duel)...)
	if err != nil {
		return fmt.Errorf("failed to update duel: %w", err)
	}
	return r.finishUpdate(ctx, duel, tag.RowsAffected())
}

func (r *duelRepository) ActivateDuel(ctx context.Context, duel *domain.Duel, maxOpen int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	if err := lockUserSlots(ctx, tx, duel.ChallengerID, duel.ChallengedID); err != nil {
		return err
	}
	if err := checkSlots(ctx, tx, duel.ID, maxOpen, duel.ChallengerID, duel.ChallengedID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, updateDuelQuery, updateArgs(duel)...)
	if err != nil {
		return fmt.Errorf("failed to activate duel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.finishUpdate(ctx, duel, 0)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	duel.Version++
	return nil
}

func updateArgs(duel *domain.Duel) []interface{} {
	return []interface{}{
		duel.ID, string(duel.Status), duel.DurationSeconds, duel.ProposedBy,
		duel.ChallengerHP, duel.ChallengedHP, duel.CurrentTurn, duel.TurnStartedAt,
		duel.WinnerID, endReasonArg(duel.EndReason), duel.Hidden, duel.LastActivityAt,
		duel.StartedAt, duel.EndedAt, duel.Version,
	}
}

// finishUpdate turns a compare-and-swap outcome into the caller's result.
// Zero rows means the duel is gone or another writer got there first.
func (r *duelRepository) finishUpdate(ctx context.Context, duel *domain.Duel, affected int64) error {
	if affected == 1 {
		duel.Version++
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM duels WHERE duel_id = $1)`, duel.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check duel existence: %w", err)
	}
	if !exists {
		return domain.ErrDuelNotFound
	}
	return domain.ErrVersionConflict
}

func endReasonArg(r *domain.EndReason) interface{} {
	if r == nil {
		return nil
	}
	return string(*r)
}

func (r *duelRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Duel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+duelColumns+` FROM duels
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at LIMIT $2`, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending duels: %w", err)
	}
	return collectDuels(rows)
}

func (r *duelRepository) ListInactive(ctx context.Context, lastActivityBefore time.Time, limit int) ([]domain.Duel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+duelColumns+` FROM duels
		WHERE status = 'active' AND last_activity_at < $1
		ORDER BY last_activity_at LIMIT $2`, lastActivityBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive duels: %w", err)
	}
	return collectDuels(rows)
}

func (r *duelRepository) ListClockExhausted(ctx context.Context, now time.Time, limit int) ([]domain.Duel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+duelColumns+` FROM duels
		WHERE status = 'active'
		  AND turn_started_at + make_interval(secs => CASE
				WHEN current_turn = challenger_id THEN challenger_hp
				ELSE challenged_hp END) <= $1
		ORDER BY turn_started_at LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exhausted duels: %w", err)
	}
	return collectDuels(rows)
}

func (r *duelRepository) AppendMessages(ctx context.Context, msgs ...*domain.GroundMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	duelID := msgs[0].DuelID

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, $2))`, duelID.String(), LockNamespaceDuelAppend); err != nil {
		return fmt.Errorf("failed to lock message log: %w", err)
	}

	var seq int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM duel_messages WHERE duel_id = $1`, duelID).Scan(&seq); err != nil {
		return fmt.Errorf("failed to read message sequence: %w", err)
	}

	batch := &pgx.Batch{}
	for _, m := range msgs {
		if m.DuelID != duelID {
			return fmt.Errorf("%w: messages span multiple duels", domain.ErrInvalidInput)
		}
		seq++
		m.Seq = seq

		var verdict []byte
		if m.Verdict != nil {
			if verdict, err = json.Marshal(m.Verdict); err != nil {
				return fmt.Errorf("failed to encode verdict: %w", err)
			}
		}
		batch.Queue(`
			INSERT INTO duel_messages (message_id, duel_id, seq, role, author_id, body, hp_delta, target_id, verdict, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			m.ID, m.DuelID, m.Seq, string(m.Role), m.AuthorID, m.Text, m.HPDelta, m.TargetID, verdict, m.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert messages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit messages: %w", err)
	}
	return nil
}

func (r *duelRepository) ListMessages(ctx context.Context, duelID uuid.UUID) ([]domain.GroundMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT message_id, duel_id, seq, role, author_id, body, hp_delta, target_id, verdict, created_at
		FROM duel_messages WHERE duel_id = $1 ORDER BY seq`, duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	msgs := []domain.GroundMessage{}
	for rows.Next() {
		var (
			m       domain.GroundMessage
			role    string
			verdict []byte
		)
		if err := rows.Scan(&m.ID, &m.DuelID, &m.Seq, &role, &m.AuthorID, &m.Text, &m.HPDelta, &m.TargetID, &verdict, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(role)
		if len(verdict) > 0 {
			var v domain.Verdict
			if err := json.Unmarshal(verdict, &v); err != nil {
				return nil, fmt.Errorf("failed to decode verdict: %w", err)
			}
			m.Verdict = &v
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *duelRepository) AddComment(ctx context.Context, c *domain.ObserverComment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO duel_comments (comment_id, duel_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.DuelID, c.AuthorID, c.Text, c.CreatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == PgErrorCodeForeignKeyViolation {
			return domain.ErrDuelNotFound
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *duelRepository) ListComments(ctx context.Context, duelID uuid.UUID, limit, offset int) ([]domain.ObserverComment, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT comment_id, duel_id, author_id, body, created_at
		FROM duel_comments WHERE duel_id = $1
		ORDER BY created_at, comment_id LIMIT $2 OFFSET $3`, duelID, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.ObserverComment{}
	for rows.Next() {
		var c domain.ObserverComment
		if err := rows.Scan(&c.ID, &c.DuelID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
