package activity

import "time"

// Type represents the kind of workflow event
type Type string

const (
	TypeQuoteRequested Type = "quote_requested"
	TypeQuoteResponded Type = "quote_responded"
	TypeCommentAdded   Type = "comment_added"
	TypeMessagesRead   Type = "messages_read"
	TypeReminderSent   Type = "reminder_sent"
	TypeProjectDeleted Type = "project_deleted"
)

// Entry represents an event in the activity log
type Entry struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	AccountID string    `json:"account_id"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
