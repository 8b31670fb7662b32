// Package supastore persists projects, accounts and activity in a Supabase
// (PostgREST) backend.
package supastore

import (
	"context"
	"fmt"
	"strings"

	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/mraff116/vugru/internal/repository"
)

// Table names. The schema lives in schema.sql.
const (
	projectsTable = "projects"
	accountsTable = "accounts"
	activityTable = "activity_log"
)

// Client is the part of a PostgREST client the stores use. Both
// *postgrest.Client and the supabase-go client satisfy it.
type Client interface {
	From(table string) *postgrest.QueryBuilder
}

// NewClient builds a Supabase client for the project URL, authenticated
// with the service key. Its From method serves every repository here.
func NewClient(supabaseURL, serviceKey string) (Client, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	client, err := supa.NewClient(strings.TrimRight(supabaseURL, "/"), serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize supabase client: %w", err)
	}
	return client, nil
}

// mapError translates PostgREST error codes into repository errors. The
// client reports failures as "(code) message".
func mapError(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "(23505)"):
		return fmt.Errorf("%s: %w", op, repository.ErrConflict)
	case strings.HasPrefix(msg, "(23503)"), strings.HasPrefix(msg, "(23514)"), strings.HasPrefix(msg, "(22P02)"):
		return fmt.Errorf("%s: %w", op, repository.ErrInvalidInput)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// The client has no context support, so cancellation is only honored
// between requests.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
