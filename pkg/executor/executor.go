package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/google/uuid"
)

// errCancelled unwinds an algorithm body once a checkpoint observes cancellation.
var errCancelled = errors.New("run cancelled")

// Executor runs live algorithms.
type Executor struct {
	delay  time.Duration
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithDelay sets the default pacing delay between observable operations.
func WithDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.delay = d
	}
}

// WithLifecycleHooks registers run start/finish hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions carries per-run inputs that are not part of the array.
type RunOptions struct {
	// Target is the value searched for by search algorithms.
	Target int
	// Delay overrides the executor's default pacing when positive.
	Delay time.Duration
	// Pace, when set, is consulted before every suspension and wins over Delay.
	// Players use it to change speed mid-run.
	Pace func() time.Duration
	// ID names the run. A random one is generated when empty.
	ID string
}

// Validate checks alg's preconditions against values without starting anything.
func Validate(alg Algorithm, values []int, target int) error {
	if alg.Body == nil {
		return fmt.Errorf("%w: algorithm %q has no body", domain.ErrUninitialized, alg.Name)
	}
	if alg.Validate != nil {
		return alg.Validate(values, target)
	}
	return nil
}

// Run executes alg against state until it completes, fails or is cancelled.
//
// Validation errors are returned before the state is touched. Every other
// termination, including cancellation, is reported through the outcome; the
// state is frozen before Run returns.
func (e *Executor) Run(ctx context.Context, alg Algorithm, state *domain.RunState, token *domain.CancelToken, opts RunOptions) (domain.RunOutcome, error) {
	if state == nil || token == nil {
		return domain.RunOutcome{}, fmt.Errorf("%w: run needs a state and a token", domain.ErrUninitialized)
	}
	if err := Validate(alg, state.Values(), opts.Target); err != nil {
		return domain.RunOutcome{}, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	r := &Run{
		ID:     id,
		ctx:    ctx,
		state:  state,
		token:  token,
		target: opts.Target,
		pace:   e.pacer(opts),
		found:  -1,
	}
	logger := e.logger.With("run_id", id, "algorithm", alg.Name)

	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunStart},
			RunID:     id,
			Algorithm: alg.Name,
			Stats:     state.Stats(),
		})
	}
	logger.Debug("run started", "size", state.Len())

	err := invoke(alg, r)
	if err == nil {
		err = r.finish(alg.Kind)
	}
	state.Freeze()

	out := domain.RunOutcome{
		ID:        id,
		Algorithm: alg.Name,
		Status:    domain.RunCompleted,
		Found:     r.found,
	}
	switch {
	case err == nil:
	case errors.Is(err, errCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Status = domain.RunCancelled
	default:
		out.Status = domain.RunFailed
		out.Err = err
		out.Error = err.Error()
	}
	snap := state.Snapshot()
	out.Values, out.Overlay, out.Stats = snap.Values, snap.Overlay, snap.Stats

	logger.Debug("run finished", "status", out.Status,
		"comparisons", out.Stats.Comparisons, "swaps", out.Stats.Swaps)
	if out.Status == domain.RunFailed {
		logger.Warn("run failed", "err", out.Err)
	}
	if e.hooks.OnRunFinish != nil {
		e.hooks.OnRunFinish(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunFinish},
			RunID:     id,
			Algorithm: alg.Name,
			Status:    out.Status,
			Stats:     out.Stats,
		})
	}
	return out, nil
}

// RunLive is the callback-style entry point: it builds a RunState from values,
// subscribes obs, and runs alg with a fixed delay.
func (e *Executor) RunLive(ctx context.Context, alg Algorithm, values []int, delay time.Duration, token *domain.CancelToken, obs domain.Observer) (domain.RunOutcome, error) {
	state := domain.NewRunState(values)
	if obs != nil {
		state.Subscribe(obs)
	}
	return e.Run(ctx, alg, state, token, RunOptions{Delay: delay})
}

func (e *Executor) pacer(opts RunOptions) func() time.Duration {
	if opts.Pace != nil {
		return opts.Pace
	}
	d := e.delay
	if opts.Delay > 0 {
		d = opts.Delay
	}
	return func() time.Duration { return d }
}

// invoke runs the body, turning a panic into a failure so the state still freezes.
func invoke(alg Algorithm, r *Run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("algorithm %s panicked: %v", alg.Name, rec)
		}
	}()
	return alg.Body(r)
}
