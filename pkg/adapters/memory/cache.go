package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stepviz/pkg/domain"
)

// Cache implements ports.SequenceCache in memory.
// Safe for concurrent use. Sequences are immutable, so entries are shared
// rather than copied.
type Cache struct {
	mu       sync.RWMutex
	data     map[string]*domain.Sequence
	order    []string
	capacity int
}

// Option configures the Cache.
type Option func(*Cache)

// WithCapacity bounds the number of entries; the oldest entry is evicted first.
// Zero means unbounded.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		c.capacity = n
	}
}

// New creates a new in-memory cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		data: make(map[string]*domain.Sequence),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores the sequence.
func (c *Cache) Put(ctx context.Context, key string, seq *domain.Sequence) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		c.order = append(c.order, key)
	}
	c.data[key] = seq

	for c.capacity > 0 && len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}
	return nil
}

// Get retrieves the sequence.
func (c *Cache) Get(ctx context.Context, key string) (*domain.Sequence, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seq, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return seq, nil
}

// Delete removes the entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		return nil
	}
	delete(c.data, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns cached keys in insertion order.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys, nil
}
