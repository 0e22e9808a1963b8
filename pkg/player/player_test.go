package player_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/stepviz/pkg/backtrack"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(t *testing.T, n int) *domain.Sequence {
	t.Helper()
	steps := make([]domain.Step, n)
	for i := range steps {
		steps[i] = domain.Step{Kind: domain.KindVisit, Description: fmt.Sprintf("step %d", i)}
	}
	seq, err := domain.NewSequence(steps)
	require.NoError(t, err)
	return seq
}

var queens player.Producer = backtrack.Queens

func TestPlayer_IdleRejectsPlayback(t *testing.T) {
	p := player.New()
	assert.Equal(t, player.StateIdle, p.State())
	assert.ErrorIs(t, p.Play(), domain.ErrNoSequence)
	assert.ErrorIs(t, p.StepForward(), domain.ErrNoSequence)
	_, err := p.Current()
	assert.ErrorIs(t, err, domain.ErrNoSequence)
	assert.ErrorIs(t, p.Load(nil), domain.ErrUninitialized)
}

func TestPlayer_IndexStaysInBounds(t *testing.T) {
	p := player.New()
	require.NoError(t, p.Load(sequence(t, 3)))
	assert.Equal(t, player.StateReady, p.State())

	require.NoError(t, p.StepBackward())
	assert.Equal(t, 0, p.Index(), "stepBackward at 0 is a no-op")
	assert.Equal(t, player.StateReady, p.State())

	require.NoError(t, p.StepForward())
	require.NoError(t, p.StepForward())
	require.NoError(t, p.StepForward())
	assert.Equal(t, 2, p.Index(), "stepForward at L-1 is a no-op")
	assert.Equal(t, player.StatePaused, p.State())

	require.NoError(t, p.Jump(-5))
	assert.Equal(t, 0, p.Index())
	require.NoError(t, p.Jump(99))
	assert.Equal(t, 2, p.Index())

	st, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "step 2", st.Description)
}

func TestPlayer_PlaysEveryStepInOrder(t *testing.T) {
	p := player.New(player.WithBasePeriod(2 * time.Millisecond))
	require.NoError(t, p.Load(sequence(t, 10)))

	var mu sync.Mutex
	var seen []int
	cancel := p.Observe(func(f player.Frame) {
		mu.Lock()
		seen = append(seen, f.Index)
		mu.Unlock()
	})
	defer cancel()

	require.NoError(t, p.Play())
	assert.Eventually(t, func() bool { return p.State() == player.StatePaused }, time.Second, time.Millisecond)
	assert.Equal(t, 9, p.Index())

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		d := seen[i] - seen[i-1]
		assert.True(t, d == 0 || d == 1, "frames must not skip: %v", seen)
	}
	assert.Equal(t, 9, seen[len(seen)-1])
}

func TestPlayer_PauseKeepsIndex(t *testing.T) {
	p := player.New(player.WithBasePeriod(5 * time.Millisecond))
	require.NoError(t, p.Load(sequence(t, 1000)))
	require.NoError(t, p.Play())
	assert.Eventually(t, func() bool { return p.Index() >= 3 }, time.Second, time.Millisecond)

	require.NoError(t, p.Pause())
	idx := p.Index()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, idx, p.Index())
	assert.Equal(t, player.StatePaused, p.State())
}

func TestPlayer_PlayAtEndRestarts(t *testing.T) {
	p := player.New(player.WithBasePeriod(time.Hour))
	require.NoError(t, p.Load(sequence(t, 4)))
	require.NoError(t, p.Jump(3))

	require.NoError(t, p.Play())
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, player.StatePlaying, p.State())
	require.NoError(t, p.Pause())
}

func TestPlayer_Backward(t *testing.T) {
	p := player.New(player.WithBasePeriod(2 * time.Millisecond))
	require.NoError(t, p.Load(sequence(t, 5)))
	require.NoError(t, p.SetDirection(player.Backward))

	require.NoError(t, p.Play())
	assert.Eventually(t, func() bool { return p.State() == player.StatePaused }, time.Second, time.Millisecond)
	assert.Equal(t, 0, p.Index())
}

func TestPlayer_SetSpeedValidates(t *testing.T) {
	p := player.New()
	assert.ErrorIs(t, p.SetSpeed(0), domain.ErrInvalidParams)
	assert.ErrorIs(t, p.SetSpeed(-1), domain.ErrInvalidParams)
	require.NoError(t, p.SetSpeed(4))
	assert.Equal(t, 4.0, p.Frame().Speed)
	assert.ErrorIs(t, p.SetDirection(player.Direction(3)), domain.ErrInvalidParams)
}

func TestPlayer_ResizeRestartsAtZero(t *testing.T) {
	p := player.New(player.WithProducer(queens), player.WithBasePeriod(time.Millisecond))
	require.NoError(t, p.Resize(4))
	small := p.Len()
	require.NoError(t, p.Play())
	assert.Eventually(t, func() bool { return p.Index() > 5 }, time.Second, time.Millisecond)

	require.NoError(t, p.Resize(5))
	assert.Equal(t, player.StateReady, p.State())
	assert.Equal(t, 0, p.Index())
	assert.NotEqual(t, small, p.Len())
	assert.Equal(t, 5, p.Frame().Size)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, p.Index(), "old ticker must not advance the new sequence")
}

func TestPlayer_FailedResizeKeepsState(t *testing.T) {
	p := player.New(player.WithProducer(queens))
	require.NoError(t, p.Resize(4))
	require.NoError(t, p.Jump(7))
	n := p.Len()

	assert.ErrorIs(t, p.Resize(0), domain.ErrInvalidParams)
	assert.Equal(t, 7, p.Index())
	assert.Equal(t, n, p.Len())
	assert.Equal(t, player.StatePaused, p.State())

	assert.ErrorIs(t, player.New().Resize(4), domain.ErrUninitialized)
}

func TestPlayer_ResetAndRewind(t *testing.T) {
	p := player.New()
	require.NoError(t, p.Load(sequence(t, 5)))
	require.NoError(t, p.Jump(3))

	require.NoError(t, p.Rewind())
	assert.Equal(t, player.StateReady, p.State())
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, 5, p.Len())

	p.Reset()
	assert.Equal(t, player.StateIdle, p.State())
	assert.Equal(t, 0, p.Len())
	assert.ErrorIs(t, p.Rewind(), domain.ErrNoSequence)
}

func TestPlayer_StateHooks(t *testing.T) {
	var mu sync.Mutex
	var transitions []string
	p := player.New(player.WithLifecycleHooks(domain.LifecycleHooks{
		OnPlayerState: func(_ context.Context, e *domain.PlayerEvent) {
			mu.Lock()
			transitions = append(transitions, e.From+">"+e.To)
			mu.Unlock()
		},
	}), player.WithBasePeriod(time.Hour))

	require.NoError(t, p.Load(sequence(t, 3)))
	require.NoError(t, p.Play())
	require.NoError(t, p.Pause())
	p.Reset()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"idle>ready", "ready>playing", "playing>paused", "paused>idle"}, transitions)
}

func TestPlayer_Subscribe(t *testing.T) {
	p := player.New()
	ctx, cancel := context.WithCancel(context.Background())
	frames := p.Subscribe(ctx)

	first := <-frames
	assert.Equal(t, player.StateIdle, first.State)

	require.NoError(t, p.Load(sequence(t, 2)))
	f := <-frames
	assert.Equal(t, player.StateReady, f.State)
	require.NotNil(t, f.Step)
	assert.Equal(t, "step 0", f.Step.Description)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-frames:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestParseDirection(t *testing.T) {
	d, err := player.ParseDirection("backward")
	require.NoError(t, err)
	assert.Equal(t, player.Backward, d)
	_, err = player.ParseDirection("sideways")
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}
