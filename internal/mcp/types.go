package mcp

import (
	"time"

	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
)

type RequestQuoteParams struct {
	VideographerID string   `json:"videographer_id"`
	ProjectName    string   `json:"project_name"`
	Description    string   `json:"description"`
	Date           string   `json:"date,omitempty"`
	Location       string   `json:"location,omitempty"`
	Deliverables   []string `json:"deliverables,omitempty"`
}

type ListProjectsParams struct {
	Status project.Status `json:"status,omitempty"`
}

type ProjectIDParams struct {
	ProjectID string `json:"project_id"`
}

type SubmitQuoteResponseParams struct {
	ProjectID         string               `json:"project_id"`
	Response          project.ResponseType `json:"response"`
	Message           string               `json:"message,omitempty"`
	QuotedPrice       string               `json:"quoted_price,omitempty"`
	EstimatedDuration string               `json:"estimated_duration,omitempty"`
	IncludedServices  []string             `json:"included_services,omitempty"`
}

type AddCommentParams struct {
	ProjectID string `json:"project_id"`
	Text      string `json:"text"`
}

type SendReminderParams struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message,omitempty"`
}

type WatchProjectsParams struct {
	AfterSeq       *uint64 `json:"after_seq,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`
}

type GetActivityParams struct {
	ProjectID string `json:"project_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type DeleteAccountParams struct {
	Confirm bool `json:"confirm"`
}

type ProjectListResponse struct {
	Projects    []project.View `json:"projects"`
	UnreadTotal int            `json:"unread_total"`
}

type WatchProjectsResponse struct {
	Seq      uint64         `json:"seq"`
	Changed  bool           `json:"changed"`
	Projects []project.View `json:"projects"`
}

type DeleteProjectResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type DeleteAccountResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type VideographerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type VideographerListResponse struct {
	Videographers []VideographerResponse `json:"videographers"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      activity.Type `json:"type"`
	ProjectID string        `json:"project_id"`
	AccountID string        `json:"account_id"`
	Summary   string        `json:"summary"`
}

type ActivityListResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
}
