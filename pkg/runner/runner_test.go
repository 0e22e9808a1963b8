package runner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
	"github.com/aretw0/stepviz/pkg/runner"
)

// syncBuffer guards a bytes.Buffer shared with handler goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func messages(t *testing.T, out string) []runner.Message {
	t.Helper()
	var msgs []runner.Message
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var m runner.Message
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		msgs = append(msgs, m)
	}
	return msgs
}

func loadedPlayer(t *testing.T, n int, period time.Duration) *player.Player {
	t.Helper()
	steps := make([]domain.Step, n)
	for i := range steps {
		steps[i] = domain.Step{Kind: domain.KindCompare, Description: fmt.Sprintf("step %d", i)}
	}
	seq, err := domain.NewSequence(steps)
	require.NoError(t, err)
	p := player.New(player.WithBasePeriod(period))
	require.NoError(t, p.Load(seq))
	return p
}

func TestRunner_PlayPresentsEveryFrameInOrder(t *testing.T) {
	p := loadedPlayer(t, 5, time.Millisecond)
	var out syncBuffer
	r := runner.New(runner.WithHandler(runner.NewJSONHandler(&out)))

	require.NoError(t, r.Play(context.Background(), p))

	msgs := messages(t, out.String())
	require.NotEmpty(t, msgs)
	var indices []int
	for _, m := range msgs {
		require.Equal(t, "frame", m.Type)
		indices = append(indices, m.Frame.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices)
	assert.Equal(t, player.StatePlaying, msgs[0].Frame.State)
	last := msgs[len(msgs)-1].Frame
	assert.Equal(t, player.StatePaused, last.State)
	assert.Equal(t, player.StatePaused, p.State())
}

func TestRunner_PlayWithoutSequence(t *testing.T) {
	r := runner.New(runner.WithHandler(runner.NewJSONHandler(&bytes.Buffer{})))
	assert.ErrorIs(t, r.Play(context.Background(), player.New()), domain.ErrNoSequence)
}

func TestRunner_PlayInterrupt(t *testing.T) {
	p := loadedPlayer(t, 5, time.Hour)
	interrupt := make(chan struct{})
	var out syncBuffer
	r := runner.New(
		runner.WithHandler(runner.NewTextHandler(&out)),
		runner.WithInterruptSource(interrupt),
	)

	go func() {
		assert.Eventually(t, func() bool { return p.State() == player.StatePlaying }, time.Second, time.Millisecond)
		close(interrupt)
	}()

	require.NoError(t, r.Play(context.Background(), p))
	assert.Equal(t, player.StatePaused, p.State())
	assert.Equal(t, 0, p.Index())
	assert.Contains(t, out.String(), "[interrupted]")
}

func TestRunner_PlayContextCancel(t *testing.T) {
	p := loadedPlayer(t, 5, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	r := runner.New(runner.WithHandler(runner.NewJSONHandler(&syncBuffer{})))

	go func() {
		assert.Eventually(t, func() bool { return p.State() == player.StatePlaying }, time.Second, time.Millisecond)
		cancel()
	}()

	assert.ErrorIs(t, r.Play(ctx, p), context.Canceled)
	assert.Equal(t, player.StatePaused, p.State())
}

func TestRunner_PlayControls(t *testing.T) {
	p := loadedPlayer(t, 5, time.Hour)
	var out syncBuffer
	r := runner.New(
		runner.WithHandler(runner.NewJSONHandler(&out)),
		runner.WithControls(strings.NewReader("ll+q"), nil),
	)

	require.NoError(t, r.Play(context.Background(), p))
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, player.StatePaused, p.State())
	assert.Equal(t, 2.0, p.Frame().Speed)
}

func TestRunner_Live(t *testing.T) {
	live := player.NewLive(nil, player.WithDelay(0))
	var out syncBuffer
	r := runner.New(runner.WithHandler(runner.NewJSONHandler(&out)))

	outcome, err := r.Live(context.Background(), live, "bubble-sort", []int{3, 1, 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, outcome.Status)
	assert.Equal(t, []int{1, 2, 3}, outcome.Values)

	msgs := messages(t, out.String())
	require.NotEmpty(t, msgs)
	terminal := 0
	for _, m := range msgs {
		require.Equal(t, "live", m.Type)
		if !m.Live.Running && m.Live.Outcome != nil {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
	last := msgs[len(msgs)-1].Live
	require.NotNil(t, last.Outcome)
	assert.Equal(t, domain.RunCompleted, last.Outcome.Status)
}

// slowLiveHandler records live frames and takes its time over each one.
type slowLiveHandler struct {
	delay  time.Duration
	mu     sync.Mutex
	frames []player.LiveFrame
}

func (h *slowLiveHandler) Frame(context.Context, player.Frame) error { return nil }

func (h *slowLiveHandler) Live(_ context.Context, f player.LiveFrame) error {
	time.Sleep(h.delay)
	h.mu.Lock()
	h.frames = append(h.frames, f)
	h.mu.Unlock()
	return nil
}

func (h *slowLiveHandler) SystemOutput(context.Context, string) error { return nil }

func TestRunner_LivePresentsEveryMutationToSlowHandler(t *testing.T) {
	values := make([]int, 40)
	for i := range values {
		values[i] = len(values) - i
	}
	var mutations atomic.Int64
	live := player.NewLive(nil,
		player.WithDelay(0),
		player.WithObserver(domain.ObserverFuncs{
			Array:  func([]int) { mutations.Add(1) },
			Status: func([]domain.ElementStatus) { mutations.Add(1) },
		}),
	)
	h := &slowLiveHandler{delay: 50 * time.Microsecond}
	r := runner.New(runner.WithHandler(h))

	outcome, err := r.Live(context.Background(), live, "bubble-sort", values, 0)
	require.NoError(t, err)
	require.Equal(t, domain.RunCompleted, outcome.Status)

	h.mu.Lock()
	frames := h.frames
	h.mu.Unlock()

	// One frame per mutation, plus the initial and the terminal frame.
	require.Equal(t, int(mutations.Load())+2, len(frames))
	assert.Equal(t, values, frames[0].State.Values)
	assert.True(t, frames[0].Running)

	work := 0
	for i, f := range frames[:len(frames)-1] {
		require.True(t, f.Running, "frame %d", i)
		next := f.State.Stats.Comparisons + f.State.Stats.Swaps
		require.GreaterOrEqual(t, next, work, "frame %d went back in time", i)
		work = next
	}
	last := frames[len(frames)-1]
	assert.False(t, last.Running)
	require.NotNil(t, last.Outcome)
	assert.Equal(t, outcome.Values, last.State.Values)
}

func TestRunner_LiveInterrupt(t *testing.T) {
	live := player.NewLive(nil, player.WithDelay(time.Hour))
	interrupt := make(chan struct{})
	var out syncBuffer
	r := runner.New(
		runner.WithHandler(runner.NewJSONHandler(&out)),
		runner.WithInterruptSource(interrupt),
	)

	go func() {
		assert.Eventually(t, live.Running, time.Second, time.Millisecond)
		close(interrupt)
	}()

	outcome, err := r.Live(context.Background(), live, "bubble-sort", []int{3, 1, 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCancelled, outcome.Status)
	assert.False(t, live.Running())
	assert.Contains(t, out.String(), `"message":"interrupted"`)
}

func TestRunner_LiveRejectsUnknownAlgorithm(t *testing.T) {
	r := runner.New(runner.WithHandler(runner.NewJSONHandler(&bytes.Buffer{})))
	_, err := r.Live(context.Background(), player.NewLive(nil), "bogo-sort", []int{1}, 0)
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
}
