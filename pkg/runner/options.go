package runner

import (
	"io"
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHandler configures how frames are presented.
func WithHandler(handler FrameHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSignals enables SIGINT and SIGTERM handling while a run is active.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.Signals = enabled
	}
}

// WithInterruptSource sets a channel that interrupts the current run.
func WithInterruptSource(ch <-chan struct{}) Option {
	return func(r *Runner) {
		r.InterruptSource = ch
	}
}

// WithControls reads key presses from in and applies them with keys.
// A nil keys uses DefaultKeyMap.
func WithControls(in io.Reader, keys KeyMap) Option {
	return func(r *Runner) {
		r.Controls = in
		if keys == nil {
			keys = DefaultKeyMap
		}
		r.Keys = keys
	}
}
