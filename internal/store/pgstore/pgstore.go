// Package pgstore implements the progress and to-do repositories on
// PostgreSQL for multi-user deployments.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/starpath/internal/store"
)

// PgStore is a PostgreSQL-backed store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Connect opens a pool for dsn and ensures the tables exist.
func Connect(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPgStore(pool)
	if err := s.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure tables: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

// EnsureTables creates the node_progress and todo_items tables if they
// don't exist.
func (s *PgStore) EnsureTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS node_progress (
			user_id        TEXT NOT NULL,
			node_id        TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			unlocked_at    TIMESTAMPTZ,
			mastered_at    TIMESTAMPTZ,
			progress_score INTEGER NOT NULL DEFAULT 0,
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, node_id)
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS todo_items (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			text         TEXT NOT NULL,
			completed    BOOLEAN NOT NULL DEFAULT FALSE,
			category     TEXT NOT NULL DEFAULT '',
			node_id      TEXT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_todo_items_user ON todo_items(user_id, node_id)`)
	return err
}

// ProgressRepo returns a store.ProgressRepo backed by this pool.
func (s *PgStore) ProgressRepo() store.ProgressRepo {
	return &progressRepo{pool: s.pool}
}

// TodoRepo returns a store.TodoRepo backed by this pool.
func (s *PgStore) TodoRepo() store.TodoRepo {
	return &todoRepo{pool: s.pool}
}

type progressRepo struct {
	pool *pgxpool.Pool
}

func (r *progressRepo) List(ctx context.Context, userID string) ([]store.ProgressRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, node_id, category, status, unlocked_at, mastered_at, progress_score, updated_at
		FROM node_progress WHERE user_id = $1 ORDER BY node_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []store.ProgressRecord
	for rows.Next() {
		var p store.ProgressRecord
		if err := rows.Scan(&p.UserID, &p.NodeID, &p.Category, &p.Status,
			&p.UnlockedAt, &p.MasteredAt, &p.ProgressScore, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *progressRepo) Get(ctx context.Context, userID, nodeID string) (*store.ProgressRecord, error) {
	var p store.ProgressRecord
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, node_id, category, status, unlocked_at, mastered_at, progress_score, updated_at
		FROM node_progress WHERE user_id = $1 AND node_id = $2`, userID, nodeID).
		Scan(&p.UserID, &p.NodeID, &p.Category, &p.Status,
			&p.UnlockedAt, &p.MasteredAt, &p.ProgressScore, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress %s: %w", nodeID, err)
	}
	return &p, nil
}

func (r *progressRepo) Upsert(ctx context.Context, p store.ProgressRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO node_progress (user_id, node_id, category, status, unlocked_at, mastered_at, progress_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, node_id) DO UPDATE SET
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			unlocked_at = EXCLUDED.unlocked_at,
			mastered_at = EXCLUDED.mastered_at,
			progress_score = EXCLUDED.progress_score,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.NodeID, p.Category, p.Status, p.UnlockedAt, p.MasteredAt, p.ProgressScore, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert progress %s: %w", p.NodeID, err)
	}
	return nil
}

func (r *progressRepo) DeleteUser(ctx context.Context, userID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM node_progress WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete progress for %s: %w", userID, err)
	}
	return int(tag.RowsAffected()), nil
}

type todoRepo struct {
	pool *pgxpool.Pool
}

const todoSelect = `SELECT id, user_id, text, completed, category, COALESCE(node_id, ''), created_at, completed_at FROM todo_items`

func scanTodo(row pgx.Row) (store.TodoRecord, error) {
	var t store.TodoRecord
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Category, &t.NodeID, &t.CreatedAt, &t.CompletedAt)
	return t, err
}

func (r *todoRepo) List(ctx context.Context, userID string) ([]store.TodoRecord, error) {
	rows, err := r.pool.Query(ctx, todoSelect+` WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var out []store.TodoRecord
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *todoRepo) Get(ctx context.Context, userID, id string) (store.TodoRecord, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx, todoSelect+` WHERE user_id = $1 AND id = $2`, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.TodoRecord{}, fmt.Errorf("todo %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return store.TodoRecord{}, fmt.Errorf("get todo %s: %w", id, err)
	}
	return t, nil
}

func (r *todoRepo) Add(ctx context.Context, t store.TodoRecord) (store.TodoRecord, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.CreatedAt = t.CreatedAt.Truncate(time.Microsecond)

	var nodeID *string
	if t.NodeID != "" {
		nodeID = &t.NodeID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO todo_items (id, user_id, text, completed, category, node_id, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.Text, t.Completed, t.Category, nodeID, t.CreatedAt, t.CompletedAt)
	if err != nil {
		return store.TodoRecord{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

// Toggle flips completion in one statement so concurrent toggles
// serialize on the row.
func (r *todoRepo) Toggle(ctx context.Context, userID, id string, now time.Time) (store.TodoRecord, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx, `
		UPDATE todo_items SET
			completed = NOT completed,
			completed_at = CASE WHEN completed THEN NULL ELSE $3::timestamptz END
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, text, completed, category, COALESCE(node_id, ''), created_at, completed_at`,
		userID, id, now.Truncate(time.Microsecond)))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.TodoRecord{}, fmt.Errorf("todo %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return store.TodoRecord{}, fmt.Errorf("toggle todo %s: %w", id, err)
	}
	return t, nil
}

func (r *todoRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todo_items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", id, store.ErrNotFound)
	}
	return nil
}
