package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entry1 := &activity.Entry{
		ProjectID: "p1",
		AccountID: "C1",
		Type:      activity.TypeQuoteRequested,
		Summary:   "quote requested",
		CreatedAt: base,
	}
	entry2 := &activity.Entry{
		ProjectID: "p1",
		AccountID: "V1",
		Type:      activity.TypeQuoteResponded,
		Summary:   "accept -> quoted",
		CreatedAt: base.Add(time.Minute),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.Type, entries[0].Type)
	require.Equal(t, entry1.Type, entries[1].Type)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	require.NoError(t, repo.Log(ctx, &activity.Entry{ProjectID: "p1", AccountID: "C1", Type: activity.TypeCommentAdded, Summary: "comment added"}))
	require.NoError(t, repo.Log(ctx, &activity.Entry{ProjectID: "p1", AccountID: "V1", Type: activity.TypeMessagesRead, Summary: "messages read"}))
	require.NoError(t, repo.Log(ctx, &activity.Entry{ProjectID: "p2", AccountID: "C1", Type: activity.TypeCommentAdded, Summary: "comment added"}))

	typ := activity.TypeCommentAdded
	entries, err := repo.List(ctx, activity.ListOptions{AccountID: "C1", Type: &typ})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListOptions{ProjectID: "p1", AccountID: "V1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeMessagesRead, entries[0].Type)

	entries, err = repo.List(ctx, activity.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, activity.ListOptions{ProjectID: "p9"})
	require.NoError(t, err)
	require.Empty(t, entries)
}
