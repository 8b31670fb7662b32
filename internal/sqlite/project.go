package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/repository"
)

var _ project.Repository = (*ProjectRepository)(nil)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db  *DB
	now func() time.Time
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const projectColumns = `
	id, client_id, videographer_id, client_name, name, description,
	shoot_date, location, deliverables, status, quoted_price,
	estimated_duration, included_services, last_message, last_update,
	comments, created_at, updated_at`

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	deliverables, err := encodeList(proj.Deliverables)
	if err != nil {
		return err
	}
	comments, err := encodeComments(proj.Comments)
	if err != nil {
		return err
	}
	var services sql.NullString
	if proj.IncludedServices != nil {
		s, err := encodeList(proj.IncludedServices)
		if err != nil {
			return err
		}
		services = sql.NullString{String: s, Valid: true}
	}

	updatedAt := proj.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.conn(ctx).ExecContext(ctx, query,
		proj.ID,
		proj.ClientID,
		proj.VideographerID,
		proj.ClientName,
		proj.Name,
		proj.Description,
		nullTime(proj.Date),
		proj.Location,
		deliverables,
		proj.Status,
		nullString(proj.QuotedPrice),
		nullString(proj.EstimatedDuration),
		services,
		nullString(proj.LastMessage),
		nullTime(proj.LastUpdate),
		comments,
		proj.CreatedAt,
		updatedAt,
	)
	if err != nil {
		return mapWriteError("create project", err)
	}

	proj.UpdatedAt = updatedAt
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	proj, err := scanProject(r.db.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return proj, nil
}

// Update writes every non-nil field of upd in a single statement and stamps
// updated_at.
func (r *ProjectRepository) Update(ctx context.Context, id string, upd project.Update) error {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.QuotedPrice != nil {
		set("quoted_price", *upd.QuotedPrice)
	}
	if upd.EstimatedDuration != nil {
		set("estimated_duration", *upd.EstimatedDuration)
	}
	if upd.IncludedServices != nil {
		s, err := encodeList(upd.IncludedServices)
		if err != nil {
			return err
		}
		set("included_services", s)
	}
	if upd.LastMessage != nil {
		set("last_message", *upd.LastMessage)
	}
	if upd.LastUpdate != nil {
		set("last_update", *upd.LastUpdate)
	}
	if upd.Comments != nil {
		c, err := encodeComments(upd.Comments)
		if err != nil {
			return err
		}
		set("comments", c)
	}
	set("updated_at", r.now())

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	result, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("update project", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByParticipant returns the projects where the account holds role,
// newest first.
func (r *ProjectRepository) ListByParticipant(ctx context.Context, accountID string, role account.Role) ([]project.Project, error) {
	column, err := participantColumn(role)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + column + ` = ?
		ORDER BY created_at DESC, id ASC`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// DeleteByParticipant removes every project where the account holds role and
// returns the removed IDs.
func (r *ProjectRepository) DeleteByParticipant(ctx context.Context, accountID string, role account.Role) ([]string, error) {
	column, err := participantColumn(role)
	if err != nil {
		return nil, err
	}

	var ids []string
	err = r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.conn(ctx)
		rows, err := q.QueryContext(ctx, `SELECT id FROM projects WHERE `+column+` = ?`, accountID)
		if err != nil {
			return fmt.Errorf("failed to select projects: %w", err)
		}
		ids = []string{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan project id: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating project ids: %w", err)
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM projects WHERE `+column+` = ?`, accountID); err != nil {
			return fmt.Errorf("failed to delete projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func participantColumn(role account.Role) (string, error) {
	switch role {
	case account.RoleClient:
		return "client_id", nil
	case account.RoleVideographer:
		return "videographer_id", nil
	}
	return "", fmt.Errorf("unknown role %q: %w", role, repository.ErrInvalidInput)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var (
		proj         project.Project
		shootDate    sql.NullTime
		deliverables string
		price        sql.NullString
		duration     sql.NullString
		services     sql.NullString
		lastMessage  sql.NullString
		lastUpdate   sql.NullTime
		comments     string
	)
	err := row.Scan(
		&proj.ID,
		&proj.ClientID,
		&proj.VideographerID,
		&proj.ClientName,
		&proj.Name,
		&proj.Description,
		&shootDate,
		&proj.Location,
		&deliverables,
		&proj.Status,
		&price,
		&duration,
		&services,
		&lastMessage,
		&lastUpdate,
		&comments,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if shootDate.Valid {
		proj.Date = &shootDate.Time
	}
	if lastUpdate.Valid {
		proj.LastUpdate = &lastUpdate.Time
	}
	proj.QuotedPrice = stringPtr(price)
	proj.EstimatedDuration = stringPtr(duration)
	proj.LastMessage = stringPtr(lastMessage)

	if err := json.Unmarshal([]byte(deliverables), &proj.Deliverables); err != nil {
		return nil, fmt.Errorf("decoding deliverables: %w", err)
	}
	if len(proj.Deliverables) == 0 {
		proj.Deliverables = nil
	}
	if services.Valid {
		if err := json.Unmarshal([]byte(services.String), &proj.IncludedServices); err != nil {
			return nil, fmt.Errorf("decoding included services: %w", err)
		}
	}
	proj.Comments = []project.Comment{}
	if err := json.Unmarshal([]byte(comments), &proj.Comments); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}

	return &proj, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func encodeComments(comments []project.Comment) (string, error) {
	if comments == nil {
		comments = []project.Comment{}
	}
	b, err := json.Marshal(comments)
	if err != nil {
		return "", fmt.Errorf("encoding comments: %w", err)
	}
	return string(b), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
