package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/ports"
	"github.com/aretw0/stepviz/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoadOrCreate(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	a, err := m.LoadOrCreate(ctx, "alpha")
	require.NoError(t, err)
	again, err := m.LoadOrCreate(ctx, "alpha")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = m.LoadOrCreate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = m.Get(ctx, "beta")
	assert.ErrorIs(t, err, domain.ErrSurfaceNotFound)

	_, _ = m.LoadOrCreate(ctx, "beta")
	assert.Equal(t, []string{"alpha", "beta"}, m.List(ctx))
}

func TestManager_UpdateSerializesAccess(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(key int) {
			defer wg.Done()
			err := m.Update(ctx, "tree", func(_ context.Context, s *session.Surface) error {
				s.Tree.Insert(key)
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, err := m.Get(ctx, "tree")
	require.NoError(t, err)
	assert.Equal(t, 20, s.Tree.Len())
}

func TestManager_DeleteStopsLiveRun(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	s, err := m.LoadOrCreate(ctx, "live")
	require.NoError(t, err)
	require.NoError(t, s.Live.SetSpeed(0.001))
	require.NoError(t, s.Live.Start(ctx, "bubble", []int{3, 2, 1}, 0))
	require.True(t, s.Live.Running())

	require.NoError(t, m.Delete(ctx, "live"))
	assert.False(t, s.Live.Running())
	assert.Equal(t, domain.RunCancelled, s.Live.Frame().Outcome.Status)
	assert.ErrorIs(t, m.Delete(ctx, "live"), domain.ErrSurfaceNotFound)
}

func TestManager_DeleteWhileRunEnds(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	for i := range 50 {
		id := fmt.Sprintf("s%d", i)
		s, err := m.LoadOrCreate(ctx, id)
		require.NoError(t, err)
		require.NoError(t, s.Live.SetSpeed(1e9))
		require.NoError(t, s.Live.Start(ctx, "insertion", []int{2, 1}, 0))
		require.NoError(t, m.Delete(ctx, id), "surface %s", id)
		assert.False(t, s.Live.Running())
	}
}

func TestManager_CloseStopsEverySurface(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	finished, err := m.LoadOrCreate(ctx, "finished")
	require.NoError(t, err)
	require.NoError(t, finished.Live.SetSpeed(1e9))
	require.NoError(t, finished.Live.Start(ctx, "bubble", []int{2, 1}, 0))
	_, err = finished.Live.Wait(ctx)
	require.NoError(t, err)

	running, err := m.LoadOrCreate(ctx, "running")
	require.NoError(t, err)
	require.NoError(t, running.Live.SetSpeed(0.001))
	require.NoError(t, running.Live.Start(ctx, "bubble", []int{3, 2, 1}, 0))

	require.NoError(t, m.Close(ctx))
	assert.Empty(t, m.List(ctx))
	assert.False(t, running.Live.Running())
}

type countingLocker struct {
	mu     sync.Mutex
	locked map[string]int
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locked[key]++
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{locked: map[string]int{}}
	m := session.NewManager(session.WithLocker(locker))
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, "s1", func(context.Context, *session.Surface) error { return nil }))
	require.NoError(t, m.Delete(ctx, "s1"))
	assert.Equal(t, 2, locker.locked["s1"])
}
