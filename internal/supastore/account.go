package supastore

import (
	"context"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/repository"
)

var _ account.Repository = (*AccountRepository)(nil)

type accountRow struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Role       account.Role `json:"user_type"`
	APIKeyHash string       `json:"api_key_hash"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (row accountRow) account() account.Account {
	return account.Account{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Role:       row.Role,
		APIKeyHash: row.APIKeyHash,
		CreatedAt:  row.CreatedAt,
	}
}

// AccountRepository implements account.Repository over PostgREST.
type AccountRepository struct {
	client Client
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(client Client) *AccountRepository {
	return &AccountRepository{client: client}
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	row := accountRow{
		ID:         acct.ID,
		Name:       acct.Name,
		Email:      acct.Email,
		Role:       acct.Role,
		APIKeyHash: acct.APIKeyHash,
		CreatedAt:  acct.CreatedAt,
	}
	_, _, err := r.client.From(accountsTable).
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil {
		return mapError("create account", err)
	}
	return nil
}

// Get retrieves an account by ID
func (r *AccountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	return r.getOne(ctx, "id", id)
}

// GetByKeyHash retrieves the account owning an API key hash
func (r *AccountRepository) GetByKeyHash(ctx context.Context, keyHash string) (*account.Account, error) {
	return r.getOne(ctx, "api_key_hash", keyHash)
}

func (r *AccountRepository) getOne(ctx context.Context, column, value string) (*account.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	var rows []accountRow
	_, err := r.client.From(accountsTable).
		Select("*", "", false).
		Eq(column, value).
		ExecuteTo(&rows)
	if err != nil {
		return nil, mapError("get account", err)
	}
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	acct := rows[0].account()
	return &acct, nil
}

// ListByRole returns every account with the given role, oldest first
func (r *AccountRepository) ListByRole(ctx context.Context, role account.Role) ([]account.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	var rows []accountRow
	_, err := r.client.From(accountsTable).
		Select("*", "", false).
		Eq("user_type", string(role)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, mapError("list accounts", err)
	}
	accounts := make([]account.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.account())
	}
	return accounts, nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	var rows []accountRow
	_, err := r.client.From(accountsTable).
		Delete("representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return mapError("delete account", err)
	}
	if len(rows) == 0 {
		return repository.ErrNotFound
	}
	return nil
}
