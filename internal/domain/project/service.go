package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/repository"
)

// Service runs the project workflow against its collaborators. Every
// mutating call loads the project, computes one Update and commits it with
// a single repository write.
type Service struct {
	repo     Repository
	accounts AccountLookup
	notifier Notifier
	activity ActivityLogger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, accounts AccountLookup, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:     repo,
		accounts: accounts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest defines a client's quote request.
type CreateRequest struct {
	VideographerID string     `validate:"required"`
	Name           string     `validate:"required"`
	Description    string     `validate:"required"`
	Date           *time.Time `validate:"omitempty"`
	Location       string
	Deliverables   []string
}

// RequestQuote creates a pending project from a client to a videographer.
func (s *Service) RequestQuote(ctx context.Context, actor account.Identity, req CreateRequest) (*Project, error) {
	if actor.ID == "" || actor.Role != account.RoleClient {
		return nil, ErrUnauthorized
	}
	req.VideographerID = strings.TrimSpace(req.VideographerID)
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	videographer, err := s.accounts.Get(ctx, req.VideographerID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) || errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: videographer %s not found", ErrValidation, req.VideographerID)
		}
		return nil, &PersistenceError{Op: "loading videographer", Err: err}
	}
	if videographer.Role != account.RoleVideographer {
		return nil, fmt.Errorf("%w: account %s is not a videographer", ErrValidation, req.VideographerID)
	}

	now := s.now()
	proj := &Project{
		ID:             s.newID(),
		ClientID:       actor.ID,
		VideographerID: videographer.ID,
		ClientName:     actor.Name,
		Name:           req.Name,
		Description:    req.Description,
		Date:           req.Date,
		Location:       strings.TrimSpace(req.Location),
		Deliverables:   slices.Clone(req.Deliverables),
		Status:         StatusPending,
		LastUpdate:     &now,
		Comments:       []Comment{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, &PersistenceError{Op: "creating project", Err: err}
	}

	s.record(ctx, proj.ID, actor, activity.TypeQuoteRequested, fmt.Sprintf("quote requested from %s", videographer.Name))
	s.notify(proj)
	return proj, nil
}

// Get returns a project visible to the actor.
func (s *Service) Get(ctx context.Context, actor account.Identity, id string) (*Project, error) {
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(proj, actor); err != nil {
		return nil, err
	}
	return proj, nil
}

// List returns every project where the actor is the participant for their
// role.
func (s *Service) List(ctx context.Context, actor account.Identity) ([]Project, error) {
	if !actor.Role.Valid() {
		return nil, ErrUnauthorized
	}
	projects, err := s.repo.ListByParticipant(ctx, actor.ID, actor.Role)
	if err != nil {
		return nil, &PersistenceError{Op: "listing projects", Err: err}
	}
	return projects, nil
}

// SubmitQuoteResponse applies the videographer's response to a pending
// project.
func (s *Service) SubmitQuoteResponse(ctx context.Context, actor account.Identity, id string, resp QuoteResponse) (*Project, error) {
	if err := s.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	upd, err := RespondToQuote(proj, actor, resp, s.now())
	if err != nil {
		return nil, err
	}
	updated, err := s.commit(ctx, proj, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote response submitted", "project_id", id, "response", resp.Type, "status", updated.Status)
	s.record(ctx, id, actor, activity.TypeQuoteResponded, fmt.Sprintf("%s -> %s", resp.Type, updated.Status))
	return updated, nil
}

// AddComment appends a comment written by the actor.
func (s *Service) AddComment(ctx context.Context, actor account.Identity, id, text string) (*Project, error) {
	updated, err := s.addComment(ctx, actor, id, text)
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, actor, activity.TypeCommentAdded, "comment added")
	return updated, nil
}

// MarkMessagesRead marks every comment on the project as read by the actor.
// Nothing is written when there is nothing new to mark.
func (s *Service) MarkMessagesRead(ctx context.Context, actor account.Identity, id string) (*Project, error) {
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	upd, err := MarkRead(proj, actor)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return proj, nil
	}
	updated, err := s.commit(ctx, proj, upd)
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, actor, activity.TypeMessagesRead, "messages read")
	return updated, nil
}

// SendReminder posts a follow-up comment from the videographer. An empty
// message falls back to the status-specific template.
func (s *Service) SendReminder(ctx context.Context, actor account.Identity, id, message string) (*Project, error) {
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckReminder(proj, actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		message = ReminderMessage(proj)
	}
	updated, err := s.appendTo(ctx, proj, actor, message)
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, actor, activity.TypeReminderSent, "reminder sent")
	return updated, nil
}

// Delete permanently removes a project. Either participant may delete it.
func (s *Service) Delete(ctx context.Context, actor account.Identity, id string) error {
	proj, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := checkParticipant(proj, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return &PersistenceError{Op: "deleting project", Err: err}
	}

	s.logger.Info("project deleted", "project_id", id, "account_id", actor.ID)
	s.record(ctx, id, actor, activity.TypeProjectDeleted, "project deleted")
	s.notify(proj)
	return nil
}

// DeleteByParticipant removes every project where the account is the
// participant for role. It backs account deletion.
func (s *Service) DeleteByParticipant(ctx context.Context, accountID string, role account.Role) (int, error) {
	if accountID == "" || !role.Valid() {
		return 0, ErrValidation
	}
	projects, err := s.repo.ListByParticipant(ctx, accountID, role)
	if err != nil {
		return 0, &PersistenceError{Op: "listing projects", Err: err}
	}
	ids, err := s.repo.DeleteByParticipant(ctx, accountID, role)
	if err != nil {
		return 0, &PersistenceError{Op: "deleting projects", Err: err}
	}
	for i := range projects {
		s.notify(&projects[i])
	}
	return len(ids), nil
}

func (s *Service) addComment(ctx context.Context, actor account.Identity, id, text string) (*Project, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is empty", ErrValidation)
	}
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.appendTo(ctx, proj, actor, text)
}

func (s *Service) appendTo(ctx context.Context, proj *Project, actor account.Identity, text string) (*Project, error) {
	c, err := NewComment(s.newID(), actor, text, s.now())
	if err != nil {
		return nil, err
	}
	upd, err := AppendComment(proj, actor, c)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, proj, upd)
}

func (s *Service) load(ctx context.Context, id string) (*Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrValidation)
	}
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, &PersistenceError{Op: "loading project", Err: err}
	}
	return proj, nil
}

// commit persists upd and returns proj with it applied. UpdatedAt keeps the
// loaded value since the store stamps its own.
func (s *Service) commit(ctx context.Context, proj *Project, upd Update) (*Project, error) {
	if err := s.repo.Update(ctx, proj.ID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, &PersistenceError{Op: "updating project", Err: err}
	}
	updated := upd.Apply(*proj)
	s.notify(&updated)
	return &updated, nil
}

func (s *Service) notify(proj *Project) {
	if s.notifier != nil {
		s.notifier.Notify(proj.Participants()...)
	}
}

func (s *Service) record(ctx context.Context, projectID string, actor account.Identity, typ activity.Type, summary string) {
	if s.activity == nil {
		return
	}
	err := s.activity.Log(ctx, &activity.Entry{
		ProjectID: projectID,
		AccountID: actor.ID,
		Type:      typ,
		Summary:   summary,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("activity log failed", "project_id", projectID, "type", typ, "error", err)
	}
}
