package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/repository"
)

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository for SQLite
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, user_type, api_key_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		acct.ID,
		acct.Name,
		acct.Email,
		acct.Role,
		acct.APIKeyHash,
		acct.CreatedAt,
	)
	if err != nil {
		return mapWriteError("create account", err)
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
	query := `
		SELECT id, name, email, user_type, api_key_hash, created_at
		FROM accounts
		WHERE ` + column + ` = ?
	`

	var acct account.Account
	err := r.db.conn(ctx).QueryRowContext(ctx, query, value).Scan(
		&acct.ID,
		&acct.Name,
		&acct.Email,
		&acct.Role,
		&acct.APIKeyHash,
		&acct.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acct, nil
}

// ListByRole returns every account with the given role, oldest first
func (r *AccountRepository) ListByRole(ctx context.Context, role account.Role) ([]account.Account, error) {
	query := `
		SELECT id, name, email, user_type, api_key_hash, created_at
		FROM accounts
		WHERE user_type = ?
		ORDER BY created_at ASC, name ASC
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []account.Account{}
	for rows.Next() {
		var acct account.Account
		if err := rows.Scan(
			&acct.ID,
			&acct.Name,
			&acct.Email,
			&acct.Role,
			&acct.APIKeyHash,
			&acct.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

// Delete removes an account. Projects referencing it must be removed first.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return mapWriteError("delete account", err)
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
