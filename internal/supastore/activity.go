package supastore

import (
	"context"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/mraff116/vugru/internal/domain/activity"
)

var _ activity.Repository = (*ActivityRepository)(nil)

type activityRow struct {
	ID        int64         `json:"id,omitempty"`
	ProjectID string        `json:"project_id"`
	AccountID string        `json:"account_id"`
	Type      activity.Type `json:"activity_type"`
	Summary   string        `json:"summary"`
	CreatedAt time.Time     `json:"created_at"`
}

// ActivityRepository implements activity.Repository over PostgREST.
type ActivityRepository struct {
	client Client
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(client Client) *ActivityRepository {
	return &ActivityRepository{client: client}
}

// Log inserts a new activity entry and records the assigned ID
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	row := activityRow{
		ProjectID: entry.ProjectID,
		AccountID: entry.AccountID,
		Type:      entry.Type,
		Summary:   entry.Summary,
		CreatedAt: entry.CreatedAt,
	}
	var rows []activityRow
	_, err := r.client.From(activityTable).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return mapError("log activity", err)
	}
	if len(rows) > 0 {
		entry.ID = rows[0].ID
	}
	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	query := r.client.From(activityTable).Select("*", "", false)
	if opts.ProjectID != "" {
		query = query.Eq("project_id", opts.ProjectID)
	}
	if opts.AccountID != "" {
		query = query.Eq("account_id", opts.AccountID)
	}
	if opts.Type != nil {
		query = query.Eq("activity_type", string(*opts.Type))
	}
	query = query.
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Order("id", &postgrest.OrderOpts{Ascending: false})
	if opts.Limit > 0 {
		query = query.Range(opts.Offset, opts.Offset+opts.Limit-1, "")
	}

	var rows []activityRow
	if _, err := query.ExecuteTo(&rows); err != nil {
		return nil, mapError("list activity", err)
	}
	entries := make([]activity.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, activity.Entry{
			ID:        row.ID,
			ProjectID: row.ProjectID,
			AccountID: row.AccountID,
			Type:      row.Type,
			Summary:   row.Summary,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}
