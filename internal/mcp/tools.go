package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one tool in the catalog.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Annotations *sdkmcp.ToolAnnotations
}

var (
	readOnly    = &sdkmcp.ToolAnnotations{ReadOnlyHint: true}
	destructive = &sdkmcp.ToolAnnotations{DestructiveHint: boolPtr(true)}
	idempotent  = &sdkmcp.ToolAnnotations{IdempotentHint: true, DestructiveHint: boolPtr(false)}
)

func boolPtr(b bool) *bool { return &b }

func objectSchema(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

var projectIDProp = stringProp("Project ID")

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Identity
		{
			Name:        "whoami",
			Description: "Show the account this connection acts as",
			InputSchema: objectSchema(nil, map[string]any{}),
			Annotations: readOnly,
		},
		{
			Name:        "list_videographers",
			Description: "List videographers a client can request a quote from",
			InputSchema: objectSchema(nil, map[string]any{}),
			Annotations: readOnly,
		},

		// Projects
		{
			Name:        "request_quote",
			Description: "Request a quote from a videographer (clients only). Creates a pending project.",
			InputSchema: objectSchema([]string{"videographer_id", "project_name", "description"}, map[string]any{
				"videographer_id": stringProp("Videographer account ID"),
				"project_name":    stringProp("Project name"),
				"description":     stringProp("What the client needs filmed"),
				"date":            stringProp("Shoot date (YYYY-MM-DD or RFC 3339)"),
				"location":        stringProp("Shoot location"),
				"deliverables": map[string]any{
					"type":        "array",
					"description": "Requested deliverables, in order",
					"items":       map[string]any{"type": "string"},
				},
			}),
		},
		{
			Name:        "list_projects",
			Description: "List your projects with unread counts, status labels and available actions",
			InputSchema: objectSchema(nil, map[string]any{
				"status": map[string]any{
					"type":        "string",
					"description": "Only return projects in this status",
					"enum":        []string{"pending", "quoted", "accepted", "declined", "awaiting_info"},
				},
			}),
			Annotations: readOnly,
		},
		{
			Name:        "get_project",
			Description: "Get one project with its message timeline, newest first",
			InputSchema: objectSchema([]string{"project_id"}, map[string]any{
				"project_id": projectIDProp,
			}),
			Annotations: readOnly,
		},
		{
			Name:        "watch_projects",
			Description: "Wait for your project list to change. Pass the seq from the previous call as after_seq.",
			InputSchema: objectSchema(nil, map[string]any{
				"after_seq": map[string]any{
					"type":        "integer",
					"description": "Return once the list is newer than this sequence number (omit for the current list)",
					"minimum":     0,
				},
				"timeout_seconds": map[string]any{
					"type":        "integer",
					"description": "Maximum seconds to wait",
					"minimum":     1,
				},
			}),
			Annotations: readOnly,
		},

		// Workflow
		{
			Name:        "submit_quote_response",
			Description: "Respond to a pending quote request (videographer only): accept with a price, decline, or request more information",
			InputSchema: objectSchema([]string{"project_id", "response"}, map[string]any{
				"project_id": projectIDProp,
				"response": map[string]any{
					"type":        "string",
					"description": "Response type",
					"enum":        []string{"accept", "decline", "request_info"},
				},
				"message":            stringProp("Message to the client"),
				"quoted_price":       stringProp("Quoted price (accept only)"),
				"estimated_duration": stringProp("Estimated duration (accept only)"),
				"included_services": map[string]any{
					"type":        "array",
					"description": "Services included in the quote (accept only)",
					"items":       map[string]any{"type": "string"},
				},
			}),
		},
		{
			Name:        "add_comment",
			Description: "Add a comment to a project's conversation",
			InputSchema: objectSchema([]string{"project_id", "text"}, map[string]any{
				"project_id": projectIDProp,
				"text":       stringProp("Comment text"),
			}),
		},
		{
			Name:        "mark_messages_read",
			Description: "Mark every comment on a project as read by you",
			InputSchema: objectSchema([]string{"project_id"}, map[string]any{
				"project_id": projectIDProp,
			}),
			Annotations: idempotent,
		},
		{
			Name:        "send_reminder",
			Description: "Send the client a reminder on a quoted or awaiting_info project (videographer only)",
			InputSchema: objectSchema([]string{"project_id"}, map[string]any{
				"project_id": projectIDProp,
				"message":    stringProp("Reminder text (omit for the default message)"),
			}),
		},
		{
			Name:        "delete_project",
			Description: "Permanently delete a project",
			InputSchema: objectSchema([]string{"project_id"}, map[string]any{
				"project_id": projectIDProp,
			}),
			Annotations: destructive,
		},

		// History
		{
			Name:        "get_activity",
			Description: "Get recent workflow activity for a project, or for your account when project_id is omitted",
			InputSchema: objectSchema(nil, map[string]any{
				"project_id": projectIDProp,
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of entries",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Offset for pagination",
				},
			}),
			Annotations: readOnly,
		},

		// Account
		{
			Name:        "delete_account",
			Description: "Delete your account and every project you take part in",
			InputSchema: objectSchema([]string{"confirm"}, map[string]any{
				"confirm": map[string]any{
					"type":        "boolean",
					"description": "Must be true",
				},
			}),
			Annotations: destructive,
		},
	}
}

// registerTools adds every catalog tool to the server, dispatching calls
// through the handler.
func registerTools(server *sdkmcp.Server, h *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
			Annotations: def.Annotations,
		}, toolHandler(h, def.Name, logger))
	}
}

func toolHandler(h *Handler, name string, logger *slog.Logger) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		result, err := h.Handle(ctx, getAccountID(ctx), name, args)
		if err != nil {
			logger.Debug("tool call failed", "tool", name, "account_id", getAccountID(ctx), "error", err)
			return errorResult(err), nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil
	}
}

// errorResult reports a tool failure inside the result so the caller can
// see the error code.
func errorResult(err error) *sdkmcp.CallToolResult {
	text := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if data, mErr := json.Marshal(apiErr); mErr == nil {
			text = string(data)
		}
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}
