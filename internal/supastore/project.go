package supastore

import (
	"context"
	"fmt"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/repository"
)

var _ project.Repository = (*ProjectRepository)(nil)

// projectRow maps to the projects table. Comments, deliverables and
// included_services are jsonb columns.
type projectRow struct {
	ID                string            `json:"id"`
	ClientID          string            `json:"client_id"`
	VideographerID    string            `json:"videographer_id"`
	ClientName        string            `json:"client_name"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	ShootDate         *time.Time        `json:"shoot_date"`
	Location          string            `json:"location"`
	Deliverables      []string          `json:"deliverables"`
	Status            project.Status    `json:"status"`
	QuotedPrice       *string           `json:"quoted_price"`
	EstimatedDuration *string           `json:"estimated_duration"`
	IncludedServices  []string          `json:"included_services"`
	LastMessage       *string           `json:"last_message"`
	LastUpdate        *time.Time        `json:"last_update"`
	Comments          []project.Comment `json:"comments"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func toProjectRow(p *project.Project) projectRow {
	row := projectRow{
		ID:                p.ID,
		ClientID:          p.ClientID,
		VideographerID:    p.VideographerID,
		ClientName:        p.ClientName,
		Name:              p.Name,
		Description:       p.Description,
		ShootDate:         p.Date,
		Location:          p.Location,
		Deliverables:      p.Deliverables,
		Status:            p.Status,
		QuotedPrice:       p.QuotedPrice,
		EstimatedDuration: p.EstimatedDuration,
		IncludedServices:  p.IncludedServices,
		LastMessage:       p.LastMessage,
		LastUpdate:        p.LastUpdate,
		Comments:          p.Comments,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if row.Deliverables == nil {
		row.Deliverables = []string{}
	}
	if row.Comments == nil {
		row.Comments = []project.Comment{}
	}
	return row
}

func (row projectRow) project() project.Project {
	p := project.Project{
		ID:                row.ID,
		ClientID:          row.ClientID,
		VideographerID:    row.VideographerID,
		ClientName:        row.ClientName,
		Name:              row.Name,
		Description:       row.Description,
		Date:              row.ShootDate,
		Location:          row.Location,
		Deliverables:      row.Deliverables,
		Status:            row.Status,
		QuotedPrice:       row.QuotedPrice,
		EstimatedDuration: row.EstimatedDuration,
		IncludedServices:  row.IncludedServices,
		LastMessage:       row.LastMessage,
		LastUpdate:        row.LastUpdate,
		Comments:          row.Comments,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if len(p.Deliverables) == 0 {
		p.Deliverables = nil
	}
	if p.Comments == nil {
		p.Comments = []project.Comment{}
	}
	return p
}

// ProjectRepository implements project.Repository over PostgREST.
type ProjectRepository struct {
	client Client
	now    func() time.Time
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(client Client) *ProjectRepository {
	return &ProjectRepository{client: client, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if proj.UpdatedAt.IsZero() {
		proj.UpdatedAt = r.now()
	}
	_, _, err := r.client.From(projectsTable).
		Insert(toProjectRow(proj), false, "", "minimal", "").
		Execute()
	if err != nil {
		return mapError("create project", err)
	}
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	var rows []projectRow
	_, err := r.client.From(projectsTable).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, mapError("get project", err)
	}
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	p := rows[0].project()
	return &p, nil
}

// Update sends every non-nil field of upd as one PATCH and stamps
// updated_at.
func (r *ProjectRepository) Update(ctx context.Context, id string, upd project.Update) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	patch := map[string]any{"updated_at": r.now()}
	if upd.Status != nil {
		patch["status"] = *upd.Status
	}
	if upd.QuotedPrice != nil {
		patch["quoted_price"] = *upd.QuotedPrice
	}
	if upd.EstimatedDuration != nil {
		patch["estimated_duration"] = *upd.EstimatedDuration
	}
	if upd.IncludedServices != nil {
		patch["included_services"] = upd.IncludedServices
	}
	if upd.LastMessage != nil {
		patch["last_message"] = *upd.LastMessage
	}
	if upd.LastUpdate != nil {
		patch["last_update"] = *upd.LastUpdate
	}
	if upd.Comments != nil {
		patch["comments"] = upd.Comments
	}

	var rows []projectRow
	_, err := r.client.From(projectsTable).
		Update(patch, "representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return mapError("update project", err)
	}
	if len(rows) == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	var rows []projectRow
	_, err := r.client.From(projectsTable).
		Delete("representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return mapError("delete project", err)
	}
	if len(rows) == 0 {
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
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	var rows []projectRow
	_, err = r.client.From(projectsTable).
		Select("*", "", false).
		Eq(column, accountID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, mapError("list projects", err)
	}
	projects := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.project())
	}
	return projects, nil
}

// DeleteByParticipant removes every project where the account holds role
// with a single request and returns the removed IDs.
func (r *ProjectRepository) DeleteByParticipant(ctx context.Context, accountID string, role account.Role) ([]string, error) {
	column, err := participantColumn(role)
	if err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `json:"id"`
	}
	_, err = r.client.From(projectsTable).
		Delete("representation", "").
		Eq(column, accountID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, mapError("delete projects", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
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
