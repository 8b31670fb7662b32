// Package feed pushes project snapshots to subscribed accounts.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/project"
)

// ErrClosed is returned when subscribing to a closed hub.
var ErrClosed = errors.New("feed closed")

// Source lists the projects an account participates in.
type Source interface {
	ListByParticipant(ctx context.Context, accountID string, role account.Role) ([]project.Project, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, accountID string, role account.Role) ([]project.Project, error)

func (f SourceFunc) ListByParticipant(ctx context.Context, accountID string, role account.Role) ([]project.Project, error) {
	return f(ctx, accountID, role)
}

// Snapshot is the full project list for one account. Seq grows with every
// change touching the account.
type Snapshot struct {
	Seq      uint64            `json:"seq"`
	Projects []project.Project `json:"projects"`
}

const defaultRetryDelay = 500 * time.Millisecond

// Option configures a Hub.
type Option func(*Hub)

// WithRetryDelay sets how long a subscription waits before retrying a
// snapshot the source failed to produce.
func WithRetryDelay(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.retryDelay = d
		}
	}
}

// Hub fans project changes out to subscribers. Each subscription has its
// own goroutine, so deliveries to one subscriber never overlap and a burst
// of changes collapses into a single snapshot.
type Hub struct {
	source     Source
	logger     *slog.Logger
	retryDelay time.Duration

	mu       sync.Mutex
	subs     map[uint64]*subscription
	versions map[string]uint64
	seq      uint64
	nextID   uint64
	closed   bool
}

type subscription struct {
	id        uint64
	accountID string
	role      account.Role
	fn        func(Snapshot)
	dirty     chan struct{}
	cancel    context.CancelFunc
	stopped   chan struct{}
	once      sync.Once
}

// NewHub creates a hub reading snapshots from source.
func NewHub(source Source, logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Hub{
		source:     source,
		logger:     logger,
		retryDelay: defaultRetryDelay,
		subs:       make(map[uint64]*subscription),
		versions:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe delivers the account's projects to onSnapshot once right away
// and again after every change that touches the account. Delivery stops when
// ctx is done or the returned function is called. Once unsubscribe returns,
// onSnapshot is never invoked again; it must not be called from inside
// onSnapshot.
func (h *Hub) Subscribe(ctx context.Context, accountID string, role account.Role, onSnapshot func(Snapshot)) (func(), error) {
	if accountID == "" || !role.Valid() || onSnapshot == nil {
		return nil, errors.New("feed: account, role and callback are required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		accountID: accountID,
		role:      role,
		fn:        onSnapshot,
		dirty:     make(chan struct{}, 1),
		cancel:    cancel,
		stopped:   make(chan struct{}),
	}
	sub.dirty <- struct{}{}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	h.mu.Unlock()

	go h.run(runCtx, sub)

	h.logger.Debug("feed subscribed", "account_id", accountID, "subscription", sub.id)
	return func() { h.stop(sub) }, nil
}

// Notify marks every subscription of the given accounts as stale.
func (h *Hub) Notify(accountIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(accountIDs) == 0 {
		return
	}
	h.seq++
	for _, id := range accountIDs {
		h.versions[id] = h.seq
	}
	for _, sub := range h.subs {
		if !slices.Contains(accountIDs, sub.accountID) {
			continue
		}
		select {
		case sub.dirty <- struct{}{}:
		default:
		}
	}
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.stop(sub)
	}
}

func (h *Hub) stop(sub *subscription) {
	sub.once.Do(func() {
		h.remove(sub.id)
		sub.cancel()
	})
	<-sub.stopped
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *Hub) version(accountID string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.versions[accountID]
}

func (h *Hub) run(ctx context.Context, sub *subscription) {
	defer close(sub.stopped)
	defer h.remove(sub.id)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.dirty:
		}

		seq := h.version(sub.accountID)
		projects, err := h.source.ListByParticipant(ctx, sub.accountID, sub.role)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			h.logger.Warn("feed snapshot failed", "account_id", sub.accountID, "error", err, "retry_in", h.retryDelay)
			if !h.retryLater(ctx, sub) {
				return
			}
			continue
		}
		if projects == nil {
			projects = []project.Project{}
		}
		sub.fn(Snapshot{Seq: seq, Projects: projects})
	}
}

// retryLater marks sub dirty again once the retry delay has passed. It
// reports false when ctx ends first.
func (h *Hub) retryLater(ctx context.Context, sub *subscription) bool {
	timer := time.NewTimer(h.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	select {
	case sub.dirty <- struct{}{}:
	default:
	}
	return true
}
