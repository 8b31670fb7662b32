package account

import "time"

// Role identifies which side of a project an account plays.
type Role string

const (
	RoleClient       Role = "client"
	RoleVideographer Role = "videographer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleVideographer:
		return true
	}
	return false
}

// Other returns the counterpart role. Unknown roles have no counterpart and
// yield the empty role.
func (r Role) Other() Role {
	switch r {
	case RoleClient:
		return RoleVideographer
	case RoleVideographer:
		return RoleClient
	}
	return ""
}

// Account is a registered client or videographer.
type Account struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"user_type"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Identity is the acting user passed into every workflow call.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"user_type"`
	Name string `json:"name"`
}

// Identity returns the acting-user view of the account.
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Role: a.Role, Name: a.Name}
}
