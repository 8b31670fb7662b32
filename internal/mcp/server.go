package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/feed"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines project workflow operations needed by MCP.
type ProjectService interface {
	RequestQuote(ctx context.Context, actor account.Identity, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, actor account.Identity, id string) (*project.Project, error)
	List(ctx context.Context, actor account.Identity) ([]project.Project, error)
	SubmitQuoteResponse(ctx context.Context, actor account.Identity, id string, resp project.QuoteResponse) (*project.Project, error)
	AddComment(ctx context.Context, actor account.Identity, id, text string) (*project.Project, error)
	MarkMessagesRead(ctx context.Context, actor account.Identity, id string) (*project.Project, error)
	SendReminder(ctx context.Context, actor account.Identity, id, message string) (*project.Project, error)
	Delete(ctx context.Context, actor account.Identity, id string) error
}

// AccountService defines account operations needed by MCP.
type AccountService interface {
	Identity(ctx context.Context, id string) (account.Identity, error)
	ListVideographers(ctx context.Context) ([]account.Account, error)
	Delete(ctx context.Context, actor account.Identity) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Feed delivers project snapshots for watch_projects.
type Feed interface {
	Subscribe(ctx context.Context, accountID string, role account.Role, onSnapshot func(feed.Snapshot)) (func(), error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Accounts AccountService
	Activity ActivityService
	Feed     Feed
}

// Config contains server configuration.
type Config struct {
	Services       Services
	Resolver       AccountResolver
	AuthEnabled    bool
	TransportMode  string // "stdio" or "http"
	DefaultAccount string
	WatchTimeout   time.Duration
	Logger         *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "vugru",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode always acts as the configured default account.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultAccount))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	handler := NewHandler(cfg.Services, WithWatchTimeout(cfg.WatchTimeout))
	registerTools(server, handler, cfg.Logger)

	return server
}
