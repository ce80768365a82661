package docs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"procurement/domain"
)

// fakeFetcher serves canned documents or errors per order and counts
// calls.
type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string][]domain.Document
	errs  map[string]error
	block map[string]chan struct{}
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		docs:  make(map[string][]domain.Document),
		errs:  make(map[string]error),
		block: make(map[string]chan struct{}),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) Documents(ctx context.Context, orderID string) ([]domain.Document, error) {
	f.mu.Lock()
	f.calls[orderID]++
	gate := f.block[orderID]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[orderID]; err != nil {
		return nil, err
	}
	return f.docs[orderID], nil
}

func (f *fakeFetcher) callCount(orderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[orderID]
}

func waitForState(t *testing.T, l *Loader, orderID, state string) Row {
	t.Helper()
	var row Row
	require.Eventually(t, func() bool {
		r, ok := l.Row(orderID)
		if ok && r.State == state {
			row = r
			return true
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	return row
}

func TestHydrateLoadsEachRowIndependently(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.docs["ok"] = []domain.Document{{ID: "d1", OrderID: "ok", Name: "invoice.pdf", Kind: domain.DocInvoice}}
	fetcher.errs["broken"] = errors.New("object store unreachable")

	l := NewLoader(fetcher, time.Second, zaptest.NewLogger(t))
	l.Hydrate([]string{"ok", "broken"})

	loaded := waitForState(t, l, "ok", StateLoaded)
	require.Len(t, loaded.Documents, 1)
	assert.Equal(t, "invoice.pdf", loaded.Documents[0].Name)
	assert.False(t, loaded.LoadedAt.IsZero())

	failed := waitForState(t, l, "broken", StateFailed)
	assert.Contains(t, failed.Error, "object store unreachable")
	assert.Empty(t, failed.Documents)
}

func TestHydrateTimesOutSlowFetches(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.block["slow"] = make(chan struct{}) // never closed

	l := NewLoader(fetcher, 20*time.Millisecond, zaptest.NewLogger(t))
	l.Hydrate([]string{"slow"})

	failed := waitForState(t, l, "slow", StateFailed)
	assert.Contains(t, failed.Error, context.DeadlineExceeded.Error())
}

func TestHydrateSkipsRowsAlreadyLoaded(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.docs["a"] = nil

	l := NewLoader(fetcher, time.Second, zaptest.NewLogger(t))
	l.Hydrate([]string{"a"})
	waitForState(t, l, "a", StateLoaded)

	l.Hydrate([]string{"a"})
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, fetcher.callCount("a"))
}

func TestReloadRetriesFailedRow(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.errs["flaky"] = errors.New("boom")

	l := NewLoader(fetcher, time.Second, zaptest.NewLogger(t))
	l.Hydrate([]string{"flaky"})
	waitForState(t, l, "flaky", StateFailed)

	// The backend recovers; retry succeeds.
	fetcher.mu.Lock()
	delete(fetcher.errs, "flaky")
	fetcher.docs["flaky"] = []domain.Document{{ID: "d2", OrderID: "flaky"}}
	fetcher.mu.Unlock()

	l.Reload("flaky")
	loaded := waitForState(t, l, "flaky", StateLoaded)

	assert.Empty(t, loaded.Error)
	require.Len(t, loaded.Documents, 1)
	assert.GreaterOrEqual(t, fetcher.callCount("flaky"), 2)
}

func TestSnapshotReportsUnseenOrdersAsLoading(t *testing.T) {
	l := NewLoader(newFakeFetcher(), time.Second, zaptest.NewLogger(t))

	snap := l.Snapshot([]string{"unseen"})
	require.Contains(t, snap, "unseen")
	assert.Equal(t, StateLoading, snap["unseen"].State)
}

func TestForgetDropsRow(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.docs["gone"] = nil

	l := NewLoader(fetcher, time.Second, zaptest.NewLogger(t))
	l.Hydrate([]string{"gone"})
	waitForState(t, l, "gone", StateLoaded)

	l.Forget("gone")
	_, ok := l.Row("gone")
	assert.False(t, ok)
}
