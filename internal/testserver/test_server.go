// Package testserver wires the full service stack over an in-memory
// database for tests.
package testserver

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/feed"
	"github.com/mraff116/vugru/internal/mcp"
	"github.com/mraff116/vugru/internal/sqlite"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	DB       *sqlite.DB
	Accounts *account.Service
	Projects *project.Service
	Activity *activity.Service
	Hub      *feed.Hub
	Logger   *slog.Logger
}

func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	logger := slog.New(slog.DiscardHandler)
	projectRepo := sqlite.NewProjectRepository(db)
	accountRepo := sqlite.NewAccountRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	hub := feed.NewHub(projectRepo, logger)
	activitySvc := activity.NewService(activityRepo, logger)
	projectSvc := project.NewService(projectRepo, accountRepo, logger,
		project.WithNotifier(hub),
		project.WithActivity(activitySvc),
	)
	accountSvc := account.NewService(accountRepo, projectSvc, logger, account.WithTransactor(db))

	ts := &TestServer{
		DB:       db,
		Accounts: accountSvc,
		Projects: projectSvc,
		Activity: activitySvc,
		Hub:      hub,
		Logger:   logger,
	}

	t.Cleanup(func() {
		hub.Close()
		_ = db.Close()
	})

	return ts
}

// Register creates an account and returns it with its API key.
func (ts *TestServer) Register(t *testing.T, name, email string, role account.Role) *account.Registration {
	t.Helper()
	reg, err := ts.Accounts.Register(context.Background(), account.RegisterRequest{Name: name, Email: email, Role: role})
	require.NoError(t, err)
	return reg
}

func (ts *TestServer) services() mcp.Services {
	return mcp.Services{
		Projects: ts.Projects,
		Accounts: ts.Accounts,
		Activity: ts.Activity,
		Feed:     ts.Hub,
	}
}

// Connect opens an in-memory MCP session acting as accountID.
func (ts *TestServer) Connect(t *testing.T, accountID string) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(mcp.Config{
		Services:       ts.services(),
		TransportMode:  "stdio",
		DefaultAccount: accountID,
		WatchTimeout:   time.Second,
		Logger:         ts.Logger,
	})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "vugru-test", Version: "0.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

// HTTP starts the streamable HTTP transport with bearer-token auth.
func (ts *TestServer) HTTP(t *testing.T) *httptest.Server {
	t.Helper()
	server := mcp.NewServer(mcp.Config{
		Services:      ts.services(),
		Resolver:      ts.Accounts,
		AuthEnabled:   true,
		TransportMode: "http",
		WatchTimeout:  time.Second,
		Logger:        ts.Logger,
	})
	srv := httptest.NewServer(mcp.NewHTTPHandler(server, time.Minute))
	t.Cleanup(srv.Close)
	return srv
}
