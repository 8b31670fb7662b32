package project

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
)

// QuoteResponse is a videographer's reply to a pending quote request.
type QuoteResponse struct {
	Type              ResponseType `json:"type" validate:"required,oneof=accept decline request_info"`
	Message           string       `json:"message"`
	QuotedPrice       string       `json:"quoted_price,omitempty"`
	EstimatedDuration string       `json:"estimated_duration,omitempty"`
	IncludedServices  []string     `json:"included_services,omitempty"`
}

// transitions lists the status each response moves a pending project to.
var transitions = map[ResponseType]Status{
	ResponseAccept:      StatusQuoted,
	ResponseDecline:     StatusDeclined,
	ResponseRequestInfo: StatusAwaitingInfo,
}

// NextStatus returns the status a response leads to from the given status.
func NextStatus(from Status, resp ResponseType) (Status, error) {
	to, ok := transitions[resp]
	if !ok {
		return "", fmt.Errorf("%w: unknown response type %q", ErrValidation, resp)
	}
	if from != StatusPending {
		return "", fmt.Errorf("%w: cannot respond to a %s project", ErrInvalidState, from)
	}
	return to, nil
}

// RespondToQuote computes the update for a videographer's response. Only
// the project's videographer may respond, and only while it is pending.
func RespondToQuote(p *Project, actor account.Identity, resp QuoteResponse, now time.Time) (Update, error) {
	if actor.ID == "" || actor.ID != p.VideographerID || actor.Role != account.RoleVideographer {
		return Update{}, ErrUnauthorized
	}
	to, err := NextStatus(p.Status, resp.Type)
	if err != nil {
		return Update{}, err
	}

	msg := resp.Message
	upd := Update{
		Status:      &to,
		LastMessage: &msg,
		LastUpdate:  &now,
	}
	if resp.Type == ResponseAccept {
		price := resp.QuotedPrice
		duration := resp.EstimatedDuration
		upd.QuotedPrice = &price
		upd.EstimatedDuration = &duration
		upd.IncludedServices = slices.Clone(resp.IncludedServices)
		if upd.IncludedServices == nil {
			upd.IncludedServices = []string{}
		}
	}
	return upd, nil
}

// NewComment builds a comment authored by actor. The author is the only
// initial reader.
func NewComment(id string, actor account.Identity, text string, now time.Time) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, fmt.Errorf("%w: comment text is empty", ErrValidation)
	}
	return Comment{
		ID:         id,
		Text:       text,
		Author:     actor.Name,
		AuthorID:   actor.ID,
		AuthorType: actor.Role,
		CreatedAt:  now,
		ReadBy:     []string{actor.ID},
	}, nil
}

// AppendComment computes the update adding a comment to the project. Only
// participants may comment, and the actor's role must match the role they
// hold in the project.
func AppendComment(p *Project, actor account.Identity, c Comment) (Update, error) {
	if err := checkParticipant(p, actor); err != nil {
		return Update{}, err
	}
	comments := make([]Comment, 0, len(p.Comments)+1)
	comments = append(comments, cloneComments(p.Comments)...)
	comments = append(comments, c)
	now := c.CreatedAt
	return Update{Comments: comments, LastUpdate: &now}, nil
}

// MarkRead computes the update adding the actor to every comment's readers.
// The update is empty when every comment was already read by the actor.
func MarkRead(p *Project, actor account.Identity) (Update, error) {
	if err := checkParticipant(p, actor); err != nil {
		return Update{}, err
	}
	changed := false
	comments := cloneComments(p.Comments)
	for i := range comments {
		if !comments[i].IsReadBy(actor.ID) {
			comments[i].ReadBy = append(comments[i].ReadBy, actor.ID)
			changed = true
		}
	}
	if !changed {
		return Update{}, nil
	}
	return Update{Comments: comments}, nil
}

// ReminderMessage returns the default reminder text for a project.
func ReminderMessage(p *Project) string {
	if p.Status == StatusQuoted {
		return fmt.Sprintf("Hi, I noticed you haven't responded to the quote for %q yet. Would you like to review it and let me know if you'd like to proceed?", p.Name)
	}
	return fmt.Sprintf("Hi, I'm following up on the project %q. Could you please provide the requested information so we can move forward?", p.Name)
}

// CheckReminder verifies a reminder may be sent: the videographer nudges the
// client on a quoted project or one awaiting information.
func CheckReminder(p *Project, actor account.Identity) error {
	if actor.ID == "" || actor.ID != p.VideographerID || actor.Role != account.RoleVideographer {
		return ErrUnauthorized
	}
	if p.Status != StatusQuoted && p.Status != StatusAwaitingInfo {
		return fmt.Errorf("%w: no reminder for a %s project", ErrInvalidState, p.Status)
	}
	return nil
}

func checkParticipant(p *Project, actor account.Identity) error {
	role := p.ParticipantRole(actor.ID)
	if role == "" || role != actor.Role {
		return ErrUnauthorized
	}
	return nil
}
