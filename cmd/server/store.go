package main

import (
	"fmt"

	"github.com/mraff116/vugru/internal/config"
	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/sqlite"
	"github.com/mraff116/vugru/internal/supastore"
)

// stores holds the repositories for the configured backend.
type stores struct {
	projects project.Repository
	accounts account.Repository
	activity activity.Repository
	tx       account.Transactor
	close    func() error
}

func (s *stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openStores(cfg config.Config) (*stores, error) {
	switch cfg.DB.Backend {
	case "supabase":
		return openSupabase(cfg.Supabase)
	default:
		return openSQLite(cfg.DB.Path)
	}
}

func openSQLite(path string) (*stores, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &stores{
		projects: sqlite.NewProjectRepository(db),
		accounts: sqlite.NewAccountRepository(db),
		activity: sqlite.NewActivityRepository(db),
		tx:       db,
		close:    db.Close,
	}, nil
}

func openSupabase(cfg config.SupabaseConfig) (*stores, error) {
	client, err := supastore.NewClient(cfg.URL, cfg.ServiceKey)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &stores{
		projects: supastore.NewProjectRepository(client),
		accounts: supastore.NewAccountRepository(client),
		activity: supastore.NewActivityRepository(client),
	}, nil
}
