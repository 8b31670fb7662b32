package project

import (
	"slices"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
)

// Status is the workflow stage of a project.
type Status string

const (
	StatusPending      Status = "pending"
	StatusQuoted       Status = "quoted"
	StatusAccepted     Status = "accepted"
	StatusDeclined     Status = "declined"
	StatusAwaitingInfo Status = "awaiting_info"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusQuoted, StatusAccepted, StatusDeclined, StatusAwaitingInfo:
		return true
	}
	return false
}

// ResponseType is the videographer's answer to a quote request.
type ResponseType string

const (
	ResponseAccept      ResponseType = "accept"
	ResponseDecline     ResponseType = "decline"
	ResponseRequestInfo ResponseType = "request_info"
)

// Project is a single client/videographer quote engagement.
type Project struct {
	ID                string     `json:"id"`
	ClientID          string     `json:"client_id"`
	VideographerID    string     `json:"videographer_id"`
	ClientName        string     `json:"client_name"`
	Name              string     `json:"project_name"`
	Description       string     `json:"description"`
	Date              *time.Time `json:"date,omitempty"`
	Location          string     `json:"location,omitempty"`
	Deliverables      []string   `json:"deliverables,omitempty"`
	Status            Status     `json:"status"`
	QuotedPrice       *string    `json:"quoted_price,omitempty"`
	EstimatedDuration *string    `json:"estimated_duration,omitempty"`
	IncludedServices  []string   `json:"included_services,omitempty"`
	LastMessage       *string    `json:"last_message,omitempty"`
	LastUpdate        *time.Time `json:"last_update,omitempty"`
	Comments          []Comment  `json:"comments"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Comment is a message attached to a project with per-reader read tracking.
type Comment struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Author     string       `json:"author"`
	AuthorID   string       `json:"author_id"`
	AuthorType account.Role `json:"author_type"`
	CreatedAt  time.Time    `json:"created_at"`
	ReadBy     []string     `json:"read_by"`
}

// IsReadBy reports whether the account has seen the comment.
func (c Comment) IsReadBy(accountID string) bool {
	return slices.Contains(c.ReadBy, accountID)
}

// ParticipantRole returns the role the account plays in the project, or the
// empty role when it is not a participant.
func (p *Project) ParticipantRole(accountID string) account.Role {
	switch accountID {
	case "":
		return ""
	case p.ClientID:
		return account.RoleClient
	case p.VideographerID:
		return account.RoleVideographer
	}
	return ""
}

// Participants returns the client and videographer IDs.
func (p *Project) Participants() []string {
	return []string{p.ClientID, p.VideographerID}
}

// Update is a set of field changes committed as one unit. Nil fields are
// left untouched.
type Update struct {
	Status            *Status
	QuotedPrice       *string
	EstimatedDuration *string
	IncludedServices  []string
	LastMessage       *string
	LastUpdate        *time.Time
	Comments          []Comment
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Status == nil &&
		u.QuotedPrice == nil &&
		u.EstimatedDuration == nil &&
		u.IncludedServices == nil &&
		u.LastMessage == nil &&
		u.LastUpdate == nil &&
		u.Comments == nil
}

// Apply returns a copy of p with the update applied.
func (u Update) Apply(p Project) Project {
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.QuotedPrice != nil {
		p.QuotedPrice = u.QuotedPrice
	}
	if u.EstimatedDuration != nil {
		p.EstimatedDuration = u.EstimatedDuration
	}
	if u.IncludedServices != nil {
		p.IncludedServices = slices.Clone(u.IncludedServices)
	}
	if u.LastMessage != nil {
		p.LastMessage = u.LastMessage
	}
	if u.LastUpdate != nil {
		p.LastUpdate = u.LastUpdate
	}
	if u.Comments != nil {
		p.Comments = cloneComments(u.Comments)
	}
	return p
}

func cloneComments(comments []Comment) []Comment {
	out := make([]Comment, len(comments))
	for i, c := range comments {
		c.ReadBy = slices.Clone(c.ReadBy)
		out[i] = c
	}
	return out
}
