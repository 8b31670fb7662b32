package feed_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/feed"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// store is a concurrency-safe fake project source.
type store struct {
	mu       sync.Mutex
	projects map[string][]project.Project
	fail     bool
	calls    atomic.Int32
}

func newStore() *store {
	return &store{projects: make(map[string][]project.Project)}
}

func (s *store) put(accountID string, projects ...project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[accountID] = projects
}

func (s *store) ListByParticipant(_ context.Context, accountID string, _ account.Role) ([]project.Project, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	return append([]project.Project(nil), s.projects[accountID]...), nil
}

// recorder collects snapshots and flags overlapping deliveries.
type recorder struct {
	mu       sync.Mutex
	snaps    []feed.Snapshot
	inflight atomic.Int32
	overlap  atomic.Bool
	delay    time.Duration
}

func (r *recorder) on(s feed.Snapshot) {
	if r.inflight.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.inflight.Add(-1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() feed.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func (r *recorder) all() []feed.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]feed.Snapshot(nil), r.snaps...)
}

const wait = 2 * time.Second

func TestHub_InitialSnapshot(t *testing.T) {
	src := newStore()
	src.put("C1", project.Project{ID: "P1"})
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)
	require.Equal(t, "P1", rec.last().Projects[0].ID)
}

func TestHub_EmptyListIsNotNil(t *testing.T) {
	hub := feed.NewHub(newStore(), nil)
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)
	require.NotNil(t, rec.last().Projects)
	require.Empty(t, rec.last().Projects)
}

func TestHub_NotifyDeliversNewerSnapshot(t *testing.T) {
	src := newStore()
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "V1", account.RoleVideographer, rec.on)
	require.NoError(t, err)
	defer unsubscribe()
	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)
	first := rec.last().Seq

	src.put("V1", project.Project{ID: "P1"})
	hub.Notify("C1", "V1")

	require.Eventually(t, func() bool { return rec.count() == 2 }, wait, 5*time.Millisecond)
	require.Greater(t, rec.last().Seq, first)
	require.Len(t, rec.last().Projects, 1)
}

func TestHub_IgnoresOtherAccounts(t *testing.T) {
	src := newStore()
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	defer unsubscribe()
	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)

	hub.Notify("C2", "V1")
	require.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestHub_SequentialAndCoalesced(t *testing.T) {
	src := newStore()
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	rec := &recorder{delay: 20 * time.Millisecond}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	defer unsubscribe()

	for range 50 {
		hub.Notify("C1")
	}
	require.Eventually(t, func() bool { return rec.count() > 0 && rec.last().Seq == 50 }, wait, 5*time.Millisecond)
	require.False(t, rec.overlap.Load())
	require.Less(t, rec.count(), 50)

	snaps := rec.all()
	for i := 1; i < len(snaps); i++ {
		require.GreaterOrEqual(t, snaps[i].Seq, snaps[i-1].Seq)
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	src := newStore()
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)

	unsubscribe()
	unsubscribe()
	hub.Notify("C1")
	require.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestHub_ContextCancelStopsDelivery(t *testing.T) {
	src := newStore()
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	_, err := hub.Subscribe(ctx, "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)

	cancel()
	hub.Notify("C1")
	require.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestHub_FailedSnapshotIsRetried(t *testing.T) {
	src := newStore()
	src.fail = true
	src.put("C1", project.Project{ID: "P1"})
	hub := feed.NewHub(src, nil, feed.WithRetryDelay(10*time.Millisecond))
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, wait, 5*time.Millisecond)
	require.Equal(t, 0, rec.count())

	// No new write arrives; the retry alone delivers the snapshot.
	src.mu.Lock()
	src.fail = false
	src.mu.Unlock()
	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)
	require.Equal(t, "P1", rec.last().Projects[0].ID)
}

func TestHub_RetryStopsOnUnsubscribe(t *testing.T) {
	src := newStore()
	src.fail = true
	hub := feed.NewHub(src, nil, feed.WithRetryDelay(time.Hour))
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, wait, 5*time.Millisecond)
	unsubscribe()
	require.Equal(t, 0, rec.count())
}

func TestHub_Close(t *testing.T) {
	hub := feed.NewHub(newStore(), nil)

	rec := &recorder{}
	_, err := hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.NoError(t, err)
	_, err = hub.Subscribe(context.Background(), "V1", account.RoleVideographer, rec.on)
	require.NoError(t, err)

	hub.Close()
	_, err = hub.Subscribe(context.Background(), "C1", account.RoleClient, rec.on)
	require.ErrorIs(t, err, feed.ErrClosed)
}

func TestHub_SubscribeValidatesInput(t *testing.T) {
	hub := feed.NewHub(newStore(), nil)
	defer hub.Close()

	_, err := hub.Subscribe(context.Background(), "", account.RoleClient, func(feed.Snapshot) {})
	require.Error(t, err)
	_, err = hub.Subscribe(context.Background(), "C1", "admin", func(feed.Snapshot) {})
	require.Error(t, err)
	_, err = hub.Subscribe(context.Background(), "C1", account.RoleClient, nil)
	require.Error(t, err)
}

func TestHub_SourceFuncReceivesRole(t *testing.T) {
	var gotRole atomic.Value
	src := feed.SourceFunc(func(_ context.Context, accountID string, role account.Role) ([]project.Project, error) {
		gotRole.Store(role)
		return []project.Project{{ID: "P-" + accountID}}, nil
	})
	hub := feed.NewHub(src, nil)
	defer hub.Close()

	rec := &recorder{}
	unsubscribe, err := hub.Subscribe(context.Background(), "V1", account.RoleVideographer, rec.on)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, wait, 5*time.Millisecond)
	require.Equal(t, "P-V1", rec.last().Projects[0].ID)
	require.Equal(t, account.RoleVideographer, gotRole.Load())
}
