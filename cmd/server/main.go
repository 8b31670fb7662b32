package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mraff116/vugru/internal/config"
	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/feed"
	"github.com/mraff116/vugru/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vugru",
		Short:        "Video production quote workflow over MCP",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAccountCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio or streamable HTTP, per config)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger, closeLog := newLogger(cfg)
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var name, email, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register an account and print its API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger, closeLog := newLogger(cfg)
			defer closeLog()

			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := account.NewService(st.accounts, nil, logger)
			reg, err := svc.Register(cmd.Context(), account.RegisterRequest{
				Name:  name,
				Email: email,
				Role:  account.Role(role),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "account id: %s\n", reg.Account.ID)
			fmt.Fprintf(out, "role:       %s\n", reg.Account.Role)
			fmt.Fprintf(out, "api key:    %s\n", reg.APIKey)
			fmt.Fprintln(out, "Store the key now; it cannot be shown again.")
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&email, "email", "", "email address")
	create.Flags().StringVar(&role, "role", string(account.RoleClient), "client or videographer")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	accountCmd.AddCommand(create)
	return accountCmd
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStores(cfg)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.DB.Backend, "error", err)
		return err
	}
	defer st.Close()

	hub := feed.NewHub(st.projects, logger)
	defer hub.Close()

	activitySvc := activity.NewService(st.activity, logger)
	projectSvc := project.NewService(st.projects, st.accounts, logger,
		project.WithNotifier(hub),
		project.WithActivity(activitySvc),
	)
	accountSvc := account.NewService(st.accounts, projectSvc, logger, account.WithTransactor(st.tx))

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: projectSvc,
			Accounts: accountSvc,
			Activity: activitySvc,
			Feed:     hub,
		},
		Resolver:       accountSvc,
		AuthEnabled:    cfg.Auth.Enabled,
		TransportMode:  cfg.Transport.Mode,
		DefaultAccount: cfg.Auth.DefaultAccount,
		WatchTimeout:   cfg.Feed.WatchTimeout,
		Logger:         logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer, cfg.Auth.DefaultAccount)
	}
	return runHTTPMode(ctx, logger, mcpServer, cfg)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, defaultAccount string) error {
	if defaultAccount == "" {
		logger.Warn("stdio transport without auth.default_account; tool calls will be rejected")
	}
	logger.Info("starting stdio transport", "account_id", defaultAccount)

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, cfg config.Config) error {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mcp.NewHTTPHandler(mcpServer, cfg.Server.SessionTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func newLogger(cfg config.Config) (*slog.Logger, func()) {
	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	closeLog := func() {}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			closeLog = func() { _ = file.Close() }
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return logger, closeLog
}
