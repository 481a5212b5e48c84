package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var todoColumns = []string{
	"id", "user_id", "text", "completed", "category", "node_id", "created_at", "completed_at",
}

// todoRepo implements TodoRepo on the todo_items table.
type todoRepo struct {
	db *sql.DB
}

func (r *todoRepo) List(ctx context.Context, userID string) ([]TodoRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(todoColumns...).
		From(b.Table(tableTodoItems)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("created_at", "id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []TodoRecord
	for rows.Next() {
		rec, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *todoRepo) Get(ctx context.Context, userID, id string) (TodoRecord, error) {
	return getTodo(ctx, r.db, userID, id)
}

func (r *todoRepo) Add(ctx context.Context, rec TodoRecord) (TodoRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableTodoItems).
		Columns(todoColumns...).
		Values(rec.ID, rec.UserID, rec.Text, rec.Completed, rec.Category,
			nullString(rec.NodeID), rec.CreatedAt, nullTime(rec.CompletedAt)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return TodoRecord{}, fmt.Errorf("insert todo: %w", err)
	}
	return rec, nil
}

func (r *todoRepo) Toggle(ctx context.Context, userID, id string, now time.Time) (TodoRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return TodoRecord{}, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	rec, err := getTodo(ctx, tx, userID, id)
	if err != nil {
		return TodoRecord{}, err
	}

	rec.Completed = !rec.Completed
	upd := entsql.Dialect(dialect.SQLite).
		Update(tableTodoItems).
		Set("completed", rec.Completed).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID)))
	if rec.Completed {
		t := now.UTC()
		rec.CompletedAt = &t
		upd.Set("completed_at", t)
	} else {
		rec.CompletedAt = nil
		upd.SetNull("completed_at")
	}

	query, args := upd.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return TodoRecord{}, fmt.Errorf("toggle todo %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return TodoRecord{}, fmt.Errorf("commit toggle: %w", err)
	}
	return rec, nil
}

func (r *todoRepo) Delete(ctx context.Context, userID, id string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableTodoItems).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTodo(ctx context.Context, q queryRower, userID, id string) (TodoRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(todoColumns...).
		From(b.Table(tableTodoItems)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))).
		Query()

	rec, err := scanTodo(q.QueryRowContext(ctx, query, args...))
	if isNoRows(err) {
		return TodoRecord{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (TodoRecord, error) {
	var (
		rec       TodoRecord
		nodeID    sql.NullString
		completed sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Text, &rec.Completed, &rec.Category,
		&nodeID, &rec.CreatedAt, &completed)
	if err != nil {
		if isNoRows(err) {
			return rec, err
		}
		return rec, fmt.Errorf("scan todo: %w", err)
	}
	rec.NodeID = nodeID.String
	rec.CompletedAt = timePtr(completed)
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
