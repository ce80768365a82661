// Package docs hydrates purchase-order documents for the verification
// queue. The queue listing returns immediately; documents are fetched in
// the background, one goroutine per order, each wrapped in a timeout.
// Every row keeps its own loading/loaded/failed state, so one slow or
// broken fetch never holds up the rest of the queue.
package docs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"procurement/domain"
)

// Fetcher is the slice of the order repository the loader needs.
type Fetcher interface {
	Documents(ctx context.Context, orderID string) ([]domain.Document, error)
}

// Row states.
const (
	StateLoading = "loading"
	StateLoaded  = "loaded"
	StateFailed  = "failed"
)

// Row is the hydration state of one order's documents.
type Row struct {
	OrderID   string            `json:"order_id"`
	State     string            `json:"state"`
	Error     string            `json:"error,omitempty"`
	Documents []domain.Document `json:"documents,omitempty"`
	LoadedAt  time.Time         `json:"loaded_at,omitempty"`
}

const DefaultTimeout = 8 * time.Second

// Loader tracks per-order hydration rows.
type Loader struct {
	fetch   Fetcher
	timeout time.Duration
	log     *zap.Logger

	mu   sync.RWMutex
	rows map[string]*Row
}

func NewLoader(fetch Fetcher, timeout time.Duration, log *zap.Logger) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{
		fetch:   fetch,
		timeout: timeout,
		log:     log,
		rows:    make(map[string]*Row),
	}
}

// Hydrate kicks off background loads for every order that has no row
// yet. Orders already loading or loaded are left alone.
func (l *Loader) Hydrate(orderIDs []string) {
	for _, id := range orderIDs {
		l.start(id, false)
	}
}

// Reload forces a fresh load for one order, replacing whatever state the
// row had. This backs the per-row retry button.
func (l *Loader) Reload(orderID string) {
	l.start(orderID, true)
}

// Row returns the current hydration state of one order.
func (l *Loader) Row(orderID string) (Row, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	row, ok := l.rows[orderID]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

// Snapshot returns the rows for a page of orders. Orders the loader has
// never seen come back as loading, since Hydrate is about to pick them up.
func (l *Loader) Snapshot(orderIDs []string) map[string]Row {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]Row, len(orderIDs))
	for _, id := range orderIDs {
		if row, ok := l.rows[id]; ok {
			out[id] = *row
		} else {
			out[id] = Row{OrderID: id, State: StateLoading}
		}
	}
	return out
}

// Forget drops rows for orders that left the queue.
func (l *Loader) Forget(orderIDs ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range orderIDs {
		delete(l.rows, id)
	}
}

func (l *Loader) start(orderID string, force bool) {
	l.mu.Lock()
	if row, ok := l.rows[orderID]; ok {
		if row.State == StateLoading || (!force && row.State == StateLoaded) {
			l.mu.Unlock()
			return
		}
	}
	l.rows[orderID] = &Row{OrderID: orderID, State: StateLoading}
	l.mu.Unlock()

	// Hydration outlives the request that triggered it, so the load
	// runs on its own context, bounded only by the timeout.
	go l.load(orderID)
}

func (l *Loader) load(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	documents, err := l.fetch.Documents(ctx, orderID)

	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[orderID]
	if !ok {
		// Forgotten while in flight.
		return
	}

	if err != nil {
		l.log.Warn("document hydration failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		row.State = StateFailed
		row.Error = err.Error()
		row.Documents = nil
		return
	}

	row.State = StateLoaded
	row.Error = ""
	row.Documents = documents
	row.LoadedAt = time.Now()
}
