package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/executor"
)

// LiveFrame is the read-only view of a live run.
type LiveFrame struct {
	Running   bool                `json:"running"`
	Algorithm string              `json:"algorithm,omitempty"`
	Speed     float64             `json:"speed"`
	State     *domain.RunSnapshot `json:"state,omitempty"`
	Outcome   *domain.RunOutcome  `json:"outcome,omitempty"`
}

// LivePlayer controls live executor runs against one surface.
// At most one run is active at a time.
type LivePlayer struct {
	exec      *executor.Executor
	delay     time.Duration
	logger    *slog.Logger
	observers []domain.Observer

	mu        sync.Mutex
	speed     float64
	algorithm string
	state     *domain.RunState
	token     *domain.CancelToken
	done      chan struct{}
	started   time.Time
	outcome   *domain.RunOutcome

	// obsMu serializes publication so observers and subscribers see frames
	// in commit order.
	obsMu     sync.Mutex
	watchers  map[int]func(LiveFrame)
	nextWatch int
	subs      map[chan LiveFrame]struct{}
}

// NewLive creates a LivePlayer driving exec.
func NewLive(exec *executor.Executor, opts ...Option) *LivePlayer {
	c := newConfig(opts)
	if exec == nil {
		exec = executor.New(executor.WithLogger(c.logger), executor.WithLifecycleHooks(c.hooks))
	}
	return &LivePlayer{
		exec:      exec,
		delay:     c.delay,
		logger:    c.logger,
		observers: c.observers,
		speed:     c.speed,
		watchers:  make(map[int]func(LiveFrame)),
		subs:      make(map[chan LiveFrame]struct{}),
	}
}

// Start validates the request and begins a run with a fresh RunState and
// CancelToken. It fails with domain.ErrAlreadyRunning while a run is active.
// The run lives until it completes or Stop is called; ctx only bounds it.
// Observers receive the initial frame before any mutation of the run.
func (l *LivePlayer) Start(ctx context.Context, algorithm string, values []int, target int) error {
	alg, err := executor.Lookup(algorithm)
	if err != nil {
		return err
	}
	if err := executor.Validate(alg, values, target); err != nil {
		return err
	}

	l.mu.Lock()
	if l.runningLocked() {
		l.mu.Unlock()
		return domain.ErrAlreadyRunning
	}

	state := domain.NewRunState(values)
	for _, o := range l.observers {
		state.Subscribe(o)
	}
	state.Subscribe(domain.ObserverFuncs{
		Array:  func([]int) { l.publish() },
		Status: func([]domain.ElementStatus) { l.publish() },
	})

	token := domain.NewCancelToken()
	done := make(chan struct{})
	l.algorithm = alg.Name
	l.state = state
	l.token = token
	l.done = done
	l.outcome = nil
	l.started = time.Now()
	l.mu.Unlock()

	l.publish()
	go func() {
		out, err := l.exec.Run(ctx, alg, state, token, executor.RunOptions{
			Target: target,
			Pace:   l.pace,
		})
		if err != nil {
			out = domain.RunOutcome{Algorithm: alg.Name, Status: domain.RunFailed, Err: err, Error: err.Error(), Found: -1}
		}

		l.mu.Lock()
		out.Stats.Elapsed = time.Since(l.started)
		l.outcome = &out
		l.mu.Unlock()
		close(done)

		l.logger.Debug("live run ended", "algorithm", alg.Name, "status", out.Status)
		l.publish()
	}()

	l.logger.Debug("live run started", "algorithm", alg.Name, "size", len(values))
	return nil
}

// Stop requests cancellation and waits until the executor acknowledges it.
func (l *LivePlayer) Stop(ctx context.Context) (domain.RunOutcome, error) {
	l.mu.Lock()
	if !l.runningLocked() {
		l.mu.Unlock()
		return domain.RunOutcome{}, domain.ErrNotRunning
	}
	l.token.Cancel()
	l.mu.Unlock()
	return l.Wait(ctx)
}

// Wait blocks until the current or last run has terminated and returns its outcome.
func (l *LivePlayer) Wait(ctx context.Context) (domain.RunOutcome, error) {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return domain.RunOutcome{}, domain.ErrNotRunning
	}

	select {
	case <-done:
	case <-ctx.Done():
		return domain.RunOutcome{}, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.outcome, nil
}

// Running reports whether a run is active.
func (l *LivePlayer) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runningLocked()
}

// SetSpeed scales the pacing delay of the current and future runs.
func (l *LivePlayer) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %v", domain.ErrInvalidParams, speed)
	}
	l.mu.Lock()
	l.speed = speed
	l.mu.Unlock()
	return nil
}

// Frame returns a consistent view of the current or last run.
func (l *LivePlayer) Frame() LiveFrame {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := LiveFrame{
		Running:   l.runningLocked(),
		Algorithm: l.algorithm,
		Speed:     l.speed,
	}
	if l.state != nil {
		snap := l.state.Snapshot()
		if l.outcome != nil {
			snap.Stats.Elapsed = l.outcome.Stats.Elapsed
		} else {
			snap.Stats.Elapsed = time.Since(l.started)
		}
		f.State = &snap
	}
	if l.outcome != nil {
		out := *l.outcome
		f.Outcome = &out
	}
	return f
}

// Observe registers fn to receive every frame of every run, one per committed
// mutation of the working array or status overlay plus the initial and
// terminal frames, in commit order. fn runs synchronously on the executor's
// goroutine and must not call back into the LivePlayer. The returned function
// unregisters it.
func (l *LivePlayer) Observe(fn func(LiveFrame)) func() {
	l.obsMu.Lock()
	id := l.nextWatch
	l.nextWatch++
	l.watchers[id] = fn
	l.obsMu.Unlock()
	return func() {
		l.obsMu.Lock()
		delete(l.watchers, id)
		l.obsMu.Unlock()
	}
}

// Subscribe streams live frames until ctx is done, then closes the channel.
// Frames are dropped for slow consumers; use Observe when every frame matters.
func (l *LivePlayer) Subscribe(ctx context.Context) <-chan LiveFrame {
	ch := make(chan LiveFrame, 256)
	l.obsMu.Lock()
	ch <- l.Frame()
	l.subs[ch] = struct{}{}
	l.obsMu.Unlock()

	go func() {
		<-ctx.Done()
		l.obsMu.Lock()
		delete(l.subs, ch)
		close(ch)
		l.obsMu.Unlock()
	}()
	return ch
}

func (l *LivePlayer) publish() {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	if len(l.watchers) == 0 && len(l.subs) == 0 {
		return
	}
	f := l.Frame()
	for _, fn := range l.watchers {
		fn(f)
	}
	for ch := range l.subs {
		select {
		case ch <- f:
		default:
			l.logger.Warn("dropping live frame for slow subscriber")
		}
	}
}

func (l *LivePlayer) pace() time.Duration {
	l.mu.Lock()
	speed := l.speed
	l.mu.Unlock()
	if l.delay == 0 {
		return 0
	}
	return scaled(l.delay, speed)
}

func (l *LivePlayer) runningLocked() bool {
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}
