package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `vugru connects clients who need a video shot with videographers who quote for the work.

Core concepts:
- Account: a client or a videographer. Every call acts as one account (whoami shows which).
- Project: one quote request between exactly one client and one videographer.
- Status: pending → quoted | declined | awaiting_info. Nothing returns to pending.
- Comments: the project conversation. Each comment tracks who has read it.

Typical flow:
1) Client: list_videographers, then request_quote.
2) Videographer: list_projects, get_project, then submit_quote_response (accept with a price, decline, or request_info).
3) Either side: add_comment, and mark_messages_read after reading get_project.
4) Videographer: send_reminder when the client has not replied to a quote or an information request.
5) Stay current: call watch_projects with the seq from the previous result to wait for changes.

Docs:
- vugru://docs/index
- vugru://docs/workflow
- vugru://docs/messages
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "vugru://docs/index",
		Name:        "docs_index",
		Title:       "vugru docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read.",
		Content: `# vugru: Agent Docs Index

## Quick start

1. ` + "`whoami`" + ` to see whether you act as a client or a videographer.
2. ` + "`list_projects`" + ` to see your projects, unread counts and next actions.
3. ` + "`get_project`" + ` for the full conversation timeline.

## Docs (read on demand)

- ` + "`vugru://docs/workflow`" + `: statuses, who may do what, and error codes.
- ` + "`vugru://docs/messages`" + `: comments, read tracking and unread counts.
`,
	},
	{
		URI:         "vugru://docs/workflow",
		Name:        "docs_workflow",
		Title:       "Quote workflow",
		Description: "Project statuses, allowed responses and the errors returned when a step is not allowed.",
		Content: `# Quote workflow

## Statuses

| status | label | reached by |
|---|---|---|
| pending | Pending | request_quote |
| quoted | Quote Sent | submit_quote_response accept |
| declined | Declined | submit_quote_response decline |
| awaiting_info | Awaiting Response | submit_quote_response request_info |
| accepted | Accepted | (reserved) |

Only the project's videographer may respond, and only while the project is pending.
An accepted response records ` + "`quoted_price`" + `, ` + "`estimated_duration`" + ` and ` + "`included_services`" + `.

## Next actions

Each project in ` + "`list_projects`" + ` carries ` + "`actions`" + `:

- videographer + pending: prepare_quote
- videographer + quoted or awaiting_info: send_reminder
- client + quoted: view_quote
- client + awaiting_info: respond
- any participant: add_comment

## Error codes

- UNAUTHORIZED: you are not the participant allowed to do this.
- INVALID_STATE: the project's status does not allow this step.
- VALIDATION_ERROR: missing or malformed input, such as empty comment text.
- PROJECT_NOT_FOUND / ACCOUNT_NOT_FOUND: unknown ID.
`,
	},
	{
		URI:         "vugru://docs/messages",
		Name:        "docs_messages",
		Title:       "Comments and read tracking",
		Description: "How comments are stored, how unread counts work and how the timeline is ordered.",
		Content: `# Comments and read tracking

- Comments are appended in order and never edited.
- A new comment counts as read by its author.
- ` + "`mark_messages_read`" + ` marks every comment as read by you. Calling it again changes nothing.
- ` + "`unread_count`" + ` counts comments from the other side that you have not read. Your own comments never count.
- ` + "`badge`" + ` is the unread count as display text, capped at "99+".

## Timeline

` + "`get_project`" + ` returns ` + "`timeline`" + `, newest first:

- event: "Project created"
- message: the latest status message from the videographer
- comment: one entry per comment

Entries with the same time keep that order.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
