package ports

import (
	"context"

	"github.com/aretw0/stepviz/pkg/domain"
)

// SequenceCache stores materialized sequences so repeated requests skip production.
type SequenceCache interface {
	// Put stores seq under key, replacing any previous entry.
	Put(ctx context.Context, key string, seq *domain.Sequence) error

	// Get returns the sequence stored under key.
	// Returns domain.ErrCacheMiss if there is none.
	Get(ctx context.Context, key string) (*domain.Sequence, error)

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently cached.
	List(ctx context.Context) ([]string, error)
}
