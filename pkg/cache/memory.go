package cache

import (
	"context"
	"sync"
	"time"

	"procurement/domain"
)

type entry struct {
	order     domain.PurchaseOrder
	expiresAt time.Time
}

// InMemory is a TTL cache for order detail lookups. Expired entries are
// dropped lazily on access.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[string]entry),
	}
}

func (c *InMemory) Set(_ context.Context, key string, order domain.PurchaseOrder, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		order:     order,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *InMemory) Get(_ context.Context, key string) (domain.PurchaseOrder, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return domain.PurchaseOrder{}, false, nil
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return domain.PurchaseOrder{}, false, nil
	}
	return e.order, true, nil
}

func (c *InMemory) Has(ctx context.Context, key string) bool {
	_, ok, _ := c.Get(ctx, key)
	return ok
}

// Invalidate drops a key after a mutation so the next read hits the
// database.
func (c *InMemory) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
