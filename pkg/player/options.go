package player

import (
	"log/slog"
	"time"

	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/domain"
)

// DefaultPeriod is the tick period at speed 1.
const DefaultPeriod = 500 * time.Millisecond

// DefaultDelay is the live pacing delay at speed 1.
const DefaultDelay = 100 * time.Millisecond

// Producer materializes the sequence for a problem size.
type Producer func(size int) (*domain.Sequence, error)

type config struct {
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	period    time.Duration
	delay     time.Duration
	speed     float64
	producer  Producer
	observers []domain.Observer
}

func newConfig(opts []Option) config {
	c := config{
		logger: logging.NewNop(),
		period: DefaultPeriod,
		delay:  DefaultDelay,
		speed:  1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Player or a LivePlayer.
type Option func(*config)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers hooks fired on state transitions.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithBasePeriod sets the tick period used at speed 1.
func WithBasePeriod(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.period = d
		}
	}
}

// WithDelay sets the live pacing delay used at speed 1. Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithSpeed sets the initial playback multiplier. Non-positive values are ignored.
func WithSpeed(speed float64) Option {
	return func(c *config) {
		if speed > 0 {
			c.speed = speed
		}
	}
}

// WithProducer enables Resize by telling the Player how to build a sequence.
func WithProducer(p Producer) Option {
	return func(c *config) {
		c.producer = p
	}
}

// WithObserver subscribes o to the RunState of every live run.
func WithObserver(o domain.Observer) Option {
	return func(c *config) {
		c.observers = append(c.observers, o)
	}
}

func scaled(base time.Duration, speed float64) time.Duration {
	d := time.Duration(float64(base) / speed)
	if d < time.Millisecond && base > 0 {
		return time.Millisecond
	}
	return d
}
