package account

import "context"

// Repository provides persistence for accounts.
type Repository interface {
	Create(ctx context.Context, acct *Account) error
	Get(ctx context.Context, id string) (*Account, error)
	GetByKeyHash(ctx context.Context, keyHash string) (*Account, error)
	ListByRole(ctx context.Context, role Role) ([]Account, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRemover deletes the projects an account participates in. It runs as
// part of account deletion.
type ProjectRemover interface {
	DeleteByParticipant(ctx context.Context, accountID string, role Role) (int, error)
}

// Transactor runs fn atomically against the store. Repository calls made
// with the context handed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
