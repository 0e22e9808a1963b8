package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
)

// Runner plays sequences and live runs through a FrameHandler.
type Runner struct {
	// Handler presents frames. Defaults to a TextHandler on Stdout.
	Handler FrameHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Signals enables OS interrupt handling while a run is active.
	Signals bool

	// InterruptSource interrupts the current run when it fires.
	InterruptSource <-chan struct{}

	// Controls, when set, is read for key presses; see KeyMap.
	Controls io.Reader
	Keys     KeyMap
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil)
	}
	return r
}

// Play starts p and presents every frame it publishes, in commit order.
//
// Without controls Play returns once playback leaves the playing state. With
// controls it returns on CmdQuit, or once playback ends after the control
// input is exhausted. An interrupt pauses p and returns nil; cancellation of
// ctx pauses p and returns ctx.Err().
func (r *Runner) Play(ctx context.Context, p *player.Player) error {
	if p.Len() == 0 {
		return domain.ErrNoSequence
	}
	watch, interrupted, stop := r.watch(ctx)
	defer stop()

	q := newFrameQueue[player.Frame]()
	unobserve := p.Observe(q.push)
	defer unobserve()

	var cmds <-chan Command
	if r.Controls != nil {
		cmds = ReadCommands(watch, r.Controls, r.Keys)
	}

	if err := p.Play(); err != nil {
		return err
	}
	r.Logger.Debug("playback started", "steps", p.Len())

	for {
		select {
		case <-q.ready:
			for _, f := range q.drain() {
				if err := r.Handler.Frame(ctx, f); err != nil {
					_ = p.Pause()
					return fmt.Errorf("output error: %w", err)
				}
				if cmds == nil && f.State != player.StatePlaying {
					return nil
				}
			}
		case cmd, ok := <-cmds:
			if !ok {
				cmds = nil
				if p.State() != player.StatePlaying {
					return nil
				}
				continue
			}
			if cmd == CmdQuit {
				_ = p.Pause()
				return r.flush(ctx, q)
			}
			if err := Apply(p, cmd); err != nil {
				r.Logger.Warn("control command failed", "command", cmd, "err", err)
			}
		case <-watch.Done():
			_ = p.Pause()
			if err := r.flush(ctx, q); err != nil {
				return err
			}
			if interrupted() {
				r.Logger.Debug("playback interrupted", "index", p.Index())
				return r.Handler.SystemOutput(ctx, "interrupted")
			}
			return ctx.Err()
		}
	}
}

// Live starts a run of algorithm on l and presents its frames until the run
// terminates. Every committed mutation is presented, in commit order, however
// slow the handler is. An interrupt or cancellation of ctx stops the run; the
// outcome is still returned.
func (r *Runner) Live(ctx context.Context, l *player.LivePlayer, algorithm string, values []int, target int) (domain.RunOutcome, error) {
	q := newFrameQueue[player.LiveFrame]()
	unobserve := l.Observe(q.push)
	defer unobserve()

	if err := l.Start(context.Background(), algorithm, values, target); err != nil {
		return domain.RunOutcome{}, err
	}
	watch, interrupted, stop := r.watch(ctx)
	defer stop()

	type result struct {
		out domain.RunOutcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := l.Wait(context.Background())
		done <- result{out, err}
	}()

	var cmds <-chan Command
	if r.Controls != nil {
		cmds = ReadCommands(watch, r.Controls, r.Keys)
	}

	stopped := watch.Done()
	terminal := false
	present := func(f player.LiveFrame) error {
		if terminal {
			return nil
		}
		terminal = !f.Running && f.Outcome != nil
		return r.Handler.Live(ctx, f)
	}
	presentAll := func() error {
		for _, f := range q.drain() {
			if err := present(f); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
		return nil
	}
	cancel := func(reason string) {
		go func() {
			if _, err := l.Stop(context.Background()); err != nil {
				r.Logger.Debug("stop after run ended", "err", err)
			}
		}()
		_ = r.Handler.SystemOutput(ctx, reason)
	}

	for {
		select {
		case <-q.ready:
			if err := presentAll(); err != nil {
				cancel("output failed")
				return domain.RunOutcome{}, err
			}
			if terminal {
				return l.Wait(context.Background())
			}
		case cmd, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			if cmd == CmdQuit {
				cancel("stopped")
				continue
			}
			if err := ApplyLive(l, cmd); err != nil {
				r.Logger.Warn("control command failed", "command", cmd, "err", err)
			}
		case <-stopped:
			reason := "cancelled"
			if interrupted() {
				reason = "interrupted"
			}
			cancel(reason)
			stopped = nil
		case res := <-done:
			// The terminal frame is published after Wait returns, so it may
			// not be queued yet.
			if err := presentAll(); err != nil {
				return res.out, err
			}
			if err := present(l.Frame()); err != nil {
				return res.out, fmt.Errorf("output error: %w", err)
			}
			return res.out, res.err
		}
	}
}

// watch derives a context that also ends on an OS signal, when enabled, or
// on the interrupt source. interrupted reports whether one of those ended it.
func (r *Runner) watch(ctx context.Context) (watch context.Context, interrupted func() bool, stop func()) {
	base := ctx
	var sm *SignalManager
	if r.Signals {
		sm = NewSignalManager(ctx)
		base = sm.Context()
	}
	watch, cancel := context.WithCancel(base)

	var mu sync.Mutex
	fired := false
	if r.InterruptSource != nil {
		go func() {
			select {
			case <-r.InterruptSource:
				mu.Lock()
				fired = true
				mu.Unlock()
				cancel()
			case <-watch.Done():
			}
		}()
	}

	interrupted = func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired || (sm != nil && sm.Interrupted())
	}
	stop = func() {
		cancel()
		if sm != nil {
			sm.Stop()
		}
	}
	return watch, interrupted, stop
}

func (r *Runner) flush(ctx context.Context, q *frameQueue[player.Frame]) error {
	for _, f := range q.drain() {
		if err := r.Handler.Frame(ctx, f); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}

// frameQueue buffers frames pushed by an observer without bounding them, so no
// frame is lost however slow the handler is.
type frameQueue[F any] struct {
	mu     sync.Mutex
	frames []F
	ready  chan struct{}
}

func newFrameQueue[F any]() *frameQueue[F] {
	return &frameQueue[F]{ready: make(chan struct{}, 1)}
}

func (q *frameQueue[F]) push(f F) {
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *frameQueue[F]) drain() []F {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.frames
	q.frames = nil
	return out
}
