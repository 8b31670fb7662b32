package project

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
)

// UnreadCount counts comments from the viewer's counterpart role that the
// viewer has not read. The viewer's own comments never count.
func UnreadCount(p *Project, viewer account.Identity) int {
	other := viewer.Role.Other()
	if other == "" {
		return 0
	}
	n := 0
	for _, c := range p.Comments {
		if c.AuthorID == viewer.ID || c.AuthorType != other {
			continue
		}
		if !c.IsReadBy(viewer.ID) {
			n++
		}
	}
	return n
}

// EntryKind identifies where a timeline entry came from.
type EntryKind string

const (
	EntryEvent   EntryKind = "event"
	EntryMessage EntryKind = "message"
	EntryComment EntryKind = "comment"
)

// TimelineEntry is one line of a project's message history.
type TimelineEntry struct {
	Kind    EntryKind `json:"type"`
	Content string    `json:"content"`
	Author  string    `json:"author,omitempty"`
	Date    time.Time `json:"date"`
}

// Timeline returns the project's history newest first. Entries with equal
// dates keep their relative order: creation, then the last message, then
// comments in append order.
func Timeline(p *Project) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(p.Comments)+2)
	entries = append(entries, TimelineEntry{
		Kind:    EntryEvent,
		Content: "Project created",
		Date:    p.CreatedAt,
	})
	if p.LastMessage != nil && *p.LastMessage != "" {
		date := p.CreatedAt
		if p.LastUpdate != nil {
			date = *p.LastUpdate
		}
		entries = append(entries, TimelineEntry{
			Kind:    EntryMessage,
			Content: *p.LastMessage,
			Date:    date,
		})
	}
	for _, c := range p.Comments {
		entries = append(entries, TimelineEntry{
			Kind:    EntryComment,
			Content: c.Text,
			Author:  c.Author,
			Date:    c.CreatedAt,
		})
	}
	slices.SortStableFunc(entries, func(a, b TimelineEntry) int {
		return b.Date.Compare(a.Date)
	})
	return entries
}

// Preview returns the content of the newest timeline entry.
func Preview(p *Project) string {
	return Timeline(p)[0].Content
}

// StatusLabel returns the display text for a status.
func StatusLabel(s Status) string {
	switch s {
	case StatusAwaitingInfo:
		return "Awaiting Response"
	case StatusQuoted:
		return "Quote Sent"
	case "":
		return ""
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

// BadgeLabel renders an unread count for a notification badge.
func BadgeLabel(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > 99:
		return "99+"
	}
	return strconv.Itoa(count)
}

// DaysSince returns whole days elapsed between t and now.
func DaysSince(t, now time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}

// FormatLastUpdate describes how long ago a project was last touched.
func FormatLastUpdate(lastUpdate *time.Time, now time.Time) string {
	if lastUpdate == nil || lastUpdate.IsZero() {
		return "No updates"
	}
	switch days := DaysSince(*lastUpdate, now); days {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return strconv.Itoa(days) + " days ago"
	}
}

// Action names something the viewer can do next on a project.
type Action string

const (
	ActionPrepareQuote Action = "prepare_quote"
	ActionSendReminder Action = "send_reminder"
	ActionViewQuote    Action = "view_quote"
	ActionRespond      Action = "respond"
	ActionAddComment   Action = "add_comment"
)

// AvailableActions lists the actions open to the viewer. Non-participants
// get none.
func AvailableActions(p *Project, viewer account.Identity) []Action {
	role := p.ParticipantRole(viewer.ID)
	if role == "" || role != viewer.Role {
		return nil
	}
	var actions []Action
	switch role {
	case account.RoleVideographer:
		switch p.Status {
		case StatusPending:
			actions = append(actions, ActionPrepareQuote)
		case StatusQuoted, StatusAwaitingInfo:
			actions = append(actions, ActionSendReminder)
		}
	case account.RoleClient:
		switch p.Status {
		case StatusQuoted:
			actions = append(actions, ActionViewQuote)
		case StatusAwaitingInfo:
			actions = append(actions, ActionRespond)
		}
	}
	return append(actions, ActionAddComment)
}

// View is a project as seen by one viewer, with every derived value
// recomputed from the current record.
type View struct {
	Project
	UnreadCount     int             `json:"unread_count"`
	Badge           string          `json:"badge,omitempty"`
	StatusLabel     string          `json:"status_label"`
	Preview         string          `json:"preview"`
	LastUpdateLabel string          `json:"last_update_label"`
	Actions         []Action        `json:"actions"`
	Timeline        []TimelineEntry `json:"timeline,omitempty"`
}

// NewView builds the viewer's projection of p. The timeline is included
// only when withTimeline is set.
func NewView(p *Project, viewer account.Identity, now time.Time, withTimeline bool) View {
	unread := UnreadCount(p, viewer)
	v := View{
		Project:         *p,
		UnreadCount:     unread,
		Badge:           BadgeLabel(unread),
		StatusLabel:     StatusLabel(p.Status),
		Preview:         Preview(p),
		LastUpdateLabel: FormatLastUpdate(p.LastUpdate, now),
		Actions:         AvailableActions(p, viewer),
	}
	if withTimeline {
		v.Timeline = Timeline(p)
	}
	return v
}
