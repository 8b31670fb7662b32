package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/feed"
)

const (
	defaultWatchTimeout = 25 * time.Second
	maxWatchTimeout     = 5 * time.Minute
)

// Handler dispatches MCP tool calls to the domain services.
type Handler struct {
	projects     ProjectService
	accounts     AccountService
	activity     ActivityService
	feed         Feed
	now          func() time.Time
	watchTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithWatchTimeout sets how long watch_projects waits when the caller gives
// no timeout. Zero keeps the default.
func WithWatchTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.watchTimeout = d
		}
	}
}

// WithHandlerClock overrides the time used for derived labels.
func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a new MCP handler.
func NewHandler(svcs Services, opts ...HandlerOption) *Handler {
	h := &Handler{
		projects:     svcs.Projects,
		accounts:     svcs.Accounts,
		activity:     svcs.Activity,
		feed:         svcs.Feed,
		now:          func() time.Time { return time.Now().UTC() },
		watchTimeout: defaultWatchTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs one tool call on behalf of accountID. The acting identity is
// loaded from the account record, never taken from the arguments.
func (h *Handler) Handle(ctx context.Context, accountID, method string, params json.RawMessage) (any, error) {
	if accountID == "" {
		return nil, mapError(errNoAccount)
	}
	actor, err := h.accounts.Identity(ctx, accountID)
	if err != nil {
		return nil, mapError(err)
	}

	switch method {
	case "whoami":
		return actor, nil
	case "list_videographers":
		accts, err := h.accounts.ListVideographers(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		resp := VideographerListResponse{Videographers: make([]VideographerResponse, 0, len(accts))}
		for _, a := range accts {
			resp.Videographers = append(resp.Videographers, VideographerResponse{ID: a.ID, Name: a.Name, Email: a.Email})
		}
		return resp, nil
	case "request_quote":
		var req RequestQuoteParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		date, err := parseDate(req.Date)
		if err != nil {
			return nil, mapError(err)
		}
		proj, err := h.projects.RequestQuote(ctx, actor, project.CreateRequest{
			VideographerID: req.VideographerID,
			Name:           req.ProjectName,
			Description:    req.Description,
			Date:           date,
			Location:       req.Location,
			Deliverables:   req.Deliverables,
		})
		return h.view(proj, actor, true, err)
	case "list_projects":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projects, err := h.projects.List(ctx, actor)
		if err != nil {
			return nil, mapError(err)
		}
		resp := ProjectListResponse{Projects: make([]project.View, 0, len(projects))}
		now := h.now()
		for i := range projects {
			if req.Status != "" && projects[i].Status != req.Status {
				continue
			}
			v := project.NewView(&projects[i], actor, now, false)
			resp.UnreadTotal += v.UnreadCount
			resp.Projects = append(resp.Projects, v)
		}
		return resp, nil
	case "get_project":
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Get(ctx, actor, req.ProjectID)
		return h.view(proj, actor, true, err)
	case "submit_quote_response":
		var req SubmitQuoteResponseParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.SubmitQuoteResponse(ctx, actor, req.ProjectID, project.QuoteResponse{
			Type:              req.Response,
			Message:           req.Message,
			QuotedPrice:       req.QuotedPrice,
			EstimatedDuration: req.EstimatedDuration,
			IncludedServices:  req.IncludedServices,
		})
		return h.view(proj, actor, true, err)
	case "add_comment":
		var req AddCommentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.AddComment(ctx, actor, req.ProjectID, req.Text)
		return h.view(proj, actor, true, err)
	case "mark_messages_read":
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.MarkMessagesRead(ctx, actor, req.ProjectID)
		return h.view(proj, actor, true, err)
	case "send_reminder":
		var req SendReminderParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.SendReminder(ctx, actor, req.ProjectID, req.Message)
		return h.view(proj, actor, true, err)
	case "delete_project":
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.projects.Delete(ctx, actor, req.ProjectID); err != nil {
			return nil, mapError(err)
		}
		return DeleteProjectResponse{ID: req.ProjectID, Deleted: true}, nil
	case "watch_projects":
		var req WatchProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.watch(ctx, actor, req)
	case "get_activity":
		var req GetActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListOptions{Limit: req.Limit, Offset: req.Offset}
		if req.ProjectID != "" {
			if _, err := h.projects.Get(ctx, actor, req.ProjectID); err != nil {
				return nil, mapError(err)
			}
			opts.ProjectID = req.ProjectID
		} else {
			opts.AccountID = actor.ID
		}
		entries, err := h.activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := ActivityListResponse{Entries: make([]ActivityEntryResponse, 0, len(entries))}
		for _, entry := range entries {
			resp.Entries = append(resp.Entries, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.Type,
				ProjectID: entry.ProjectID,
				AccountID: entry.AccountID,
				Summary:   entry.Summary,
			})
		}
		return resp, nil
	case "delete_account":
		var req DeleteAccountParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if !req.Confirm {
			return nil, mapError(fmt.Errorf("%w: confirm must be true", account.ErrInvalidInput))
		}
		if err := h.accounts.Delete(ctx, actor); err != nil {
			return nil, mapError(err)
		}
		return DeleteAccountResponse{ID: actor.ID, Deleted: true}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

// watch waits for a snapshot newer than AfterSeq. Without AfterSeq the
// current snapshot is returned at once. On timeout the latest snapshot seen
// is returned with Changed unset.
func (h *Handler) watch(ctx context.Context, actor account.Identity, req WatchProjectsParams) (any, error) {
	timeout := h.watchTimeout
	if req.TimeoutSeconds > 0 {
		timeout = min(time.Duration(req.TimeoutSeconds)*time.Second, maxWatchTimeout)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snaps := make(chan feed.Snapshot, 1)
	unsubscribe, err := h.feed.Subscribe(ctx, actor.ID, actor.Role, func(s feed.Snapshot) {
		// Only this callback sends, so after draining the send never blocks.
		select {
		case <-snaps:
		default:
		}
		snaps <- s
	})
	if err != nil {
		return nil, mapError(err)
	}
	defer unsubscribe()

	var (
		latest feed.Snapshot
		seen   bool
	)
	for {
		select {
		case s := <-snaps:
			latest, seen = s, true
			if req.AfterSeq == nil || s.Seq > *req.AfterSeq {
				return h.watchResponse(latest, actor, true), nil
			}
		case <-ctx.Done():
			if !seen && req.AfterSeq != nil {
				latest.Seq = *req.AfterSeq
			}
			return h.watchResponse(latest, actor, false), nil
		}
	}
}

func (h *Handler) watchResponse(s feed.Snapshot, actor account.Identity, changed bool) WatchProjectsResponse {
	resp := WatchProjectsResponse{
		Seq:      s.Seq,
		Changed:  changed,
		Projects: make([]project.View, 0, len(s.Projects)),
	}
	now := h.now()
	for i := range s.Projects {
		resp.Projects = append(resp.Projects, project.NewView(&s.Projects[i], actor, now, false))
	}
	return resp
}

func (h *Handler) view(proj *project.Project, actor account.Identity, withTimeline bool, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return project.NewView(proj, actor, h.now(), withTimeline), nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", project.ErrValidation, s)
}
