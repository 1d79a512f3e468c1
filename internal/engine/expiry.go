package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/efreitasn/tradesim/internal/domain"
)

type expiryEntry struct {
	ExpiresAt time.Time
	OrderID   string
	AccountID string
}

// expiryLess orders by expires_at ascending, then order_id ascending.
func expiryLess(a, b expiryEntry) bool {
	if !a.ExpiresAt.Equal(b.ExpiresAt) {
		return a.ExpiresAt.Before(b.ExpiresAt)
	}
	return a.OrderID < b.OrderID
}

// expiryIndex tracks pending orders that carry an expiry, sorted by
// expires_at, with a secondary index for O(log n) removal by order ID.
type expiryIndex struct {
	mu    sync.Mutex
	tree  *btree.BTreeG[expiryEntry]
	index map[string]expiryEntry // order_id → entry
}

func newExpiryIndex() *expiryIndex {
	const degree = 32
	return &expiryIndex{
		tree:  btree.NewG[expiryEntry](degree, expiryLess),
		index: make(map[string]expiryEntry),
	}
}

func (x *expiryIndex) add(o *domain.Order) {
	if o.ExpiresAt == nil || o.Status != domain.OrderStatusPending {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	entry := expiryEntry{ExpiresAt: *o.ExpiresAt, OrderID: o.OrderID, AccountID: o.AccountID}
	x.tree.ReplaceOrInsert(entry)
	x.index[o.OrderID] = entry
}

func (x *expiryIndex) remove(orderID string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.index[orderID]
	if !ok {
		return
	}
	delete(x.index, orderID)
	x.tree.Delete(entry)
}

// due removes and returns every entry with expires_at <= now, earliest
// first.
func (x *expiryIndex) due(now time.Time) []expiryEntry {
	x.mu.Lock()
	defer x.mu.Unlock()

	var out []expiryEntry
	for {
		first, ok := x.tree.Min()
		if !ok || first.ExpiresAt.After(now) {
			break
		}
		x.tree.DeleteMin()
		delete(x.index, first.OrderID)
		out = append(out, first)
	}
	return out
}

func (x *expiryIndex) len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.tree.Len()
}

// ExpiryManager periodically expires pending orders whose expiration time
// has passed.
type ExpiryManager struct {
	interval time.Duration
	engine   *OrderEngine
	logger   *slog.Logger
}

// NewExpiryManager creates an ExpiryManager that sweeps every interval.
func NewExpiryManager(interval time.Duration, engine *OrderEngine, logger *slog.Logger) *ExpiryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryManager{interval: interval, engine: engine, logger: logger}
}

// Start launches a background goroutine that ticks at the configured
// interval and expires orders. It stops when ctx is cancelled.
func (m *ExpiryManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				m.Sweep(ctx, t)
			}
		}
	}()
}

// Sweep expires every order due at now and returns how many it expired.
func (m *ExpiryManager) Sweep(ctx context.Context, now time.Time) int {
	n := m.engine.ProcessExpired(ctx, now)
	if n > 0 {
		m.logger.Debug("expiry sweep", "expired", n)
	}
	return n
}
