package stepviz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/backtrack"
	"github.com/aretw0/stepviz/pkg/bst"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/executor"
	"github.com/aretw0/stepviz/pkg/player"
	"github.com/aretw0/stepviz/pkg/ports"
	"github.com/aretw0/stepviz/pkg/session"
)

// ErrNoAlgorithm is returned when a request names no algorithm at all.
var ErrNoAlgorithm = fmt.Errorf("%w: no algorithm given", domain.ErrInvalidParams)

// Engine is the high-level entry point for the stepviz library.
// It produces step sequences, narrates tree operations and hands out players
// wired to the same hooks, cache and logger.
type Engine struct {
	producer ports.SequenceProducer
	cache    ports.SequenceCache
	exec     *executor.Executor
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	delay    time.Duration
	period   time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCache stores produced sequences by their parameter key.
func WithCache(cache ports.SequenceCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithProducer replaces the built-in backtracking producers.
func WithProducer(p ports.SequenceProducer) Option {
	return func(e *Engine) {
		e.producer = p
	}
}

// WithDelay sets the live pacing delay at speed 1.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithBasePeriod sets the player tick period at speed 1.
func WithBasePeriod(d time.Duration) Option {
	return func(e *Engine) {
		e.period = d
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		producer: ports.ProducerFunc(backtrack.Produce),
		logger:   logging.NewNop(),
		delay:    player.DefaultDelay,
		period:   player.DefaultPeriod,
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.exec = executor.New(
		executor.WithDelay(eng.delay),
		executor.WithLifecycleHooks(eng.hooks),
		executor.WithLogger(eng.logger),
	)
	return eng
}

// Produce materializes the sequence for params. Cache failures are logged and
// never fail the call.
func (e *Engine) Produce(ctx context.Context, params domain.Params) (*domain.Sequence, error) {
	params.Algorithm = backtrack.Canonical(params.Algorithm)
	if params.Algorithm == "" {
		return nil, ErrNoAlgorithm
	}
	key := params.Key()

	if e.cache != nil {
		seq, err := e.cache.Get(ctx, key)
		switch {
		case err == nil:
			e.emitSequence(ctx, params.Algorithm, seq, true)
			return seq, nil
		case !errors.Is(err, domain.ErrCacheMiss):
			e.logger.Warn("sequence cache read failed", "key", key, "err", err)
		}
	}

	seq, err := e.producer.Produce(params)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, seq); err != nil {
			e.logger.Warn("sequence cache write failed", "key", key, "err", err)
		}
	}
	e.emitSequence(ctx, params.Algorithm, seq, false)
	return seq, nil
}

// TreeSteps narrates op on t without mutating it.
func (e *Engine) TreeSteps(ctx context.Context, op string, t *bst.Tree, arg string) (*domain.Sequence, error) {
	seq, err := bst.Steps(domain.Operation(strings.ToLower(op)), t, arg)
	if err != nil {
		return nil, err
	}
	e.emitSequence(ctx, "bst-"+strings.ToLower(op), seq, false)
	return seq, nil
}

// ApplyTree narrates op on t and then performs its mutation, if any.
func (e *Engine) ApplyTree(ctx context.Context, op string, t *bst.Tree, arg string) (*domain.Sequence, error) {
	seq, err := bst.Apply(domain.Operation(strings.ToLower(op)), t, arg)
	if err != nil {
		return nil, err
	}
	e.emitSequence(ctx, "bst-"+strings.ToLower(op), seq, false)
	return seq, nil
}

// NewPlayer returns an idle Player whose Resize re-produces params at the
// requested size.
func (e *Engine) NewPlayer(params domain.Params, opts ...player.Option) *player.Player {
	base := []player.Option{
		player.WithLogger(e.logger),
		player.WithLifecycleHooks(e.hooks),
		player.WithBasePeriod(e.period),
		player.WithProducer(func(size int) (*domain.Sequence, error) {
			p := params
			p.Size = size
			return e.Produce(context.Background(), p)
		}),
	}
	if params.Speed > 0 {
		base = append(base, player.WithSpeed(params.Speed))
	}
	return player.New(append(base, opts...)...)
}

// NewLivePlayer returns a LivePlayer driving the engine's executor.
func (e *Engine) NewLivePlayer(opts ...player.Option) *player.LivePlayer {
	base := []player.Option{
		player.WithLogger(e.logger),
		player.WithDelay(e.delay),
	}
	return player.NewLive(e.exec, append(base, opts...)...)
}

// SurfaceFactory builds session surfaces whose controllers share the
// engine's hooks and pacing. A surface Player resizes by re-producing the
// surface's current Params, so Resize must run under the surface lock.
func (e *Engine) SurfaceFactory() session.Factory {
	return func(id string) *session.Surface {
		l := e.logger.With("surface", id)
		s := &session.Surface{
			ID:      id,
			Tree:    bst.New(),
			Created: time.Now(),
		}
		s.Player = player.New(
			player.WithLogger(l),
			player.WithLifecycleHooks(e.hooks),
			player.WithBasePeriod(e.period),
			player.WithProducer(func(size int) (*domain.Sequence, error) {
				p := s.Params
				p.Size = size
				return e.Produce(context.Background(), p)
			}),
		)
		s.Live = e.NewLivePlayer(player.WithLogger(l))
		return s
	}
}

// Executor exposes the live executor.
func (e *Engine) Executor() *executor.Executor {
	return e.exec
}

// Algorithms lists every materialized producer and live algorithm by kind.
func Algorithms() map[string][]string {
	return map[string][]string{
		"backtracking": backtrack.Names(),
		"tree":         {"insert", "search", "delete", "inorder", "preorder", "postorder"},
		"sort":         executor.Names(executor.KindSort),
		"search":       executor.Names(executor.KindSearch),
	}
}

func (e *Engine) emitSequence(ctx context.Context, algorithm string, seq *domain.Sequence, cached bool) {
	e.logger.Debug("sequence produced", "algorithm", algorithm, "steps", seq.Len(), "cached", cached)
	if e.hooks.OnSequence == nil {
		return
	}
	e.hooks.OnSequence(ctx, &domain.SequenceEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSequenceProduced},
		Algorithm: algorithm,
		Steps:     seq.Len(),
		Cached:    cached,
	})
}
