package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSequenceCacheContract runs a suite of tests to verify that a SequenceCache
// implementation adheres to the interface contract.
func RunSequenceCacheContract(t *testing.T, cache SequenceCache) {
	ctx := context.Background()
	key := "contract:" + time.Now().Format("20060102150405.000000")

	seq, err := domain.NewSequence([]domain.Step{
		{Kind: domain.KindTry, Operation: domain.OpSolve, Ref: &domain.Ref{Row: 0, Col: 1, Value: 1}, Arg: 4, Line: 2,
			Description: "Trying row 0, column 1."},
		{Kind: domain.KindSolution, Operation: domain.OpSolve, Arg: 4, Line: 7,
			Snapshot: &domain.Snapshot{Grid: [][]int{{0, 1}, {1, 0}}, Path: []int{1, 0}},
			Description: "Solution found."},
	})
	require.NoError(t, err)

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, seq), "Put should not return error")

		got, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, seq.Steps(), got.Steps())
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Cached Copies Are Isolated", func(t *testing.T) {
		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		steps := got.Steps()
		steps[1].Snapshot.Grid[0][0] = 9

		again, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 0, again.At(1).Snapshot.Grid[0][0])
	})

	t.Run("List", func(t *testing.T) {
		other := key + "-2"
		require.NoError(t, cache.Put(ctx, other, seq))
		defer func() { _ = cache.Delete(ctx, other) }()

		keys, err := cache.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
		assert.Contains(t, keys, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, key), "Delete should not return error")

		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")
		assert.NoError(t, cache.Delete(ctx, key), "Deleting twice is harmless")
	})
}
