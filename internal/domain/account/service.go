package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mraff116/vugru/internal/repository"
)

// Service handles account operations.
type Service struct {
	repo     Repository
	projects ProjectRemover
	tx       Transactor
	validate *validator.Validate
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTransactor makes account deletion and its project cascade one store
// transaction.
func WithTransactor(tx Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// noTx runs fn directly, for stores without transactions.
type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewService creates a new account service. projects may be nil, in which
// case deleting an account leaves its projects in place.
func NewService(repo Repository, projects ProjectRemover, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:     repo,
		projects: projects,
		tx:       noTx{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest defines account registration inputs.
type RegisterRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Role  Role   `validate:"required,oneof=client videographer"`
}

// Registration is the result of Register. APIKey is shown once and never
// stored in clear.
type Registration struct {
	Account *Account
	APIKey  string
}

// Register creates an account and issues its API key.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := "vugru_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	acct := &Account{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		APIKeyHash: HashKey(key),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account registered", "account_id", acct.ID, "role", acct.Role)
	return &Registration{Account: acct, APIKey: key}, nil
}

// Get fetches an account by ID.
func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	acct, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return acct, nil
}

// Identity loads the acting-user identity for an account. The role always
// comes from the stored account record.
func (s *Service) Identity(ctx context.Context, id string) (Identity, error) {
	acct, err := s.Get(ctx, id)
	if err != nil {
		return Identity{}, err
	}
	return acct.Identity(), nil
}

// ResolveToken maps an API key to the owning account ID.
func (s *Service) ResolveToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	acct, err := s.repo.GetByKeyHash(ctx, HashKey(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("resolving token: %w", err)
	}
	return acct.ID, nil
}

// ListVideographers returns every videographer account.
func (s *Service) ListVideographers(ctx context.Context) ([]Account, error) {
	accts, err := s.repo.ListByRole(ctx, RoleVideographer)
	if err != nil {
		return nil, fmt.Errorf("listing videographers: %w", err)
	}
	return accts, nil
}

// Delete removes the acting account together with every project it
// participates in under its role. With a Transactor both go in one
// transaction; without one, a failed account delete leaves the projects
// already removed.
func (s *Service) Delete(ctx context.Context, actor Identity) error {
	if _, err := s.Get(ctx, actor.ID); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if s.projects != nil {
			n, err := s.projects.DeleteByParticipant(ctx, actor.ID, actor.Role)
			if err != nil {
				return fmt.Errorf("deleting account projects: %w", err)
			}
			s.logger.Info("account projects deleted", "account_id", actor.ID, "count", n)
		}

		if err := s.repo.Delete(ctx, actor.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("deleting account: %w", err)
		}
		return nil
	})
}

// HashKey returns the stored form of an API key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
