package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var progressColumns = []string{
	"user_id", "node_id", "category", "status",
	"unlocked_at", "mastered_at", "progress_score", "updated_at",
}

// progressRepo implements ProgressRepo on the node_progress table.
type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) List(ctx context.Context, userID string) ([]ProgressRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(progressColumns...).
		From(b.Table(tableNodeProgress)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("node_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *progressRepo) Get(ctx context.Context, userID, nodeID string) (*ProgressRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(progressColumns...).
		From(b.Table(tableNodeProgress)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("node_id", nodeID))).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get progress %s/%s: %w", userID, nodeID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanProgress(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *progressRepo) Upsert(ctx context.Context, rec ProgressRecord) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableNodeProgress).
		Columns(progressColumns...).
		Values(rec.UserID, rec.NodeID, rec.Category, rec.Status,
			nullTime(rec.UnlockedAt), nullTime(rec.MasteredAt), rec.ProgressScore, rec.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "node_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert progress %s/%s: %w", rec.UserID, rec.NodeID, err)
	}
	return nil
}

func (r *progressRepo) DeleteUser(ctx context.Context, userID string) (int, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableNodeProgress).
		Where(entsql.EQ("user_id", userID)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete progress for %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete progress for %s: %w", userID, err)
	}
	return int(n), nil
}

func scanProgress(rows *sql.Rows) (ProgressRecord, error) {
	var (
		rec                ProgressRecord
		unlocked, mastered sql.NullTime
	)
	err := rows.Scan(&rec.UserID, &rec.NodeID, &rec.Category, &rec.Status,
		&unlocked, &mastered, &rec.ProgressScore, &rec.UpdatedAt)
	if err != nil {
		return rec, fmt.Errorf("scan progress: %w", err)
	}
	rec.UnlockedAt = timePtr(unlocked)
	rec.MasteredAt = timePtr(mastered)
	return rec, nil
}
