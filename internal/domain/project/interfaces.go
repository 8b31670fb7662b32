package project

import (
	"context"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	// Update applies every field of upd in one atomic write and stamps
	// the project's updated-at marker.
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
	ListByParticipant(ctx context.Context, accountID string, role account.Role) ([]Project, error)
	DeleteByParticipant(ctx context.Context, accountID string, role account.Role) ([]string, error)
}

// AccountLookup resolves accounts referenced by a quote request.
type AccountLookup interface {
	Get(ctx context.Context, id string) (*account.Account, error)
}

// Notifier is told which accounts saw their project list change.
type Notifier interface {
	Notify(accountIDs ...string)
}

// ActivityLogger records workflow events.
type ActivityLogger interface {
	Log(ctx context.Context, entry *activity.Entry) error
}
