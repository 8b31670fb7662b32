package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mraff116/vugru/internal/domain/activity"
)

var _ activity.Repository = (*ActivityRepository)(nil)

// ActivityRepository stores the workflow activity log.
type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log appends entry and fills in its ID. A zero CreatedAt is stamped with
// the current time.
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO activity_log (project_id, account_id, activity_type, summary, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ProjectID, entry.AccountID, entry.Type, entry.Summary, entry.CreatedAt,
	)
	if err != nil {
		return mapWriteError("log activity", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns matching entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	where, args := activityFilter(opts)
	query := `SELECT id, project_id, account_id, activity_type, summary, created_at FROM activity_log` +
		where + ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, max(opts.Offset, 0))
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.Entry{}
	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.AccountID, &e.Type, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity rows: %w", err)
	}
	return entries, nil
}

func activityFilter(opts activity.ListOptions) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		clauses = append(clauses, clause)
		args = append(args, arg)
	}
	if opts.ProjectID != "" {
		add("project_id = ?", opts.ProjectID)
	}
	if opts.AccountID != "" {
		add("account_id = ?", opts.AccountID)
	}
	if opts.Type != nil {
		add("activity_type = ?", string(*opts.Type))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
