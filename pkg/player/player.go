package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
)

// State is a materialized player state.
type State string

const (
	StateIdle    State = "idle"
	StateReady   State = "ready"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Direction is the index delta applied on every tick.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// ParseDirection accepts "forward" and "backward".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "fwd", "+1", "1":
		return Forward, nil
	case "backward", "back", "-1":
		return Backward, nil
	}
	return 0, fmt.Errorf("%w: direction %q", domain.ErrInvalidParams, s)
}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Frame is what a renderer reads on every animation frame.
type Frame struct {
	State     State        `json:"state"`
	Index     int          `json:"index"`
	Length    int          `json:"length"`
	Size      int          `json:"size,omitempty"`
	Speed     float64      `json:"speed"`
	Direction string       `json:"direction"`
	Step      *domain.Step `json:"step,omitempty"`
}

// Player animates a materialized sequence.
//
// All methods are safe for concurrent use. Observers registered with Observe
// run synchronously while the Player is locked, in commit order, and must not
// call back into the Player.
type Player struct {
	mu    sync.Mutex
	state State
	seq   *domain.Sequence
	index int
	size  int
	speed float64
	dir   Direction

	// stop is non-nil exactly while a ticker goroutine is armed.
	stop chan struct{}
	gen  uint64

	period   time.Duration
	producer Producer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	observers map[int]func(Frame)
	nextObs   int
	subs      map[chan Frame]struct{}

	tickers atomic.Int32
}

// New creates an idle Player.
func New(opts ...Option) *Player {
	c := newConfig(opts)
	return &Player{
		state:     StateIdle,
		speed:     c.speed,
		dir:       Forward,
		period:    c.period,
		producer:  c.producer,
		hooks:     c.hooks,
		logger:    c.logger,
		observers: make(map[int]func(Frame)),
		subs:      make(map[chan Frame]struct{}),
	}
}

// Load replaces the sequence and enters Ready at index 0.
func (p *Player) Load(seq *domain.Sequence) error {
	if seq == nil || seq.Len() == 0 {
		return fmt.Errorf("%w: player needs a non-empty sequence", domain.ErrUninitialized)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked(seq, 0)
	return nil
}

// Resize produces a new sequence for size and loads it. On error the Player
// keeps its current sequence, index and state.
func (p *Player) Resize(size int) error {
	if p.producer == nil {
		return fmt.Errorf("%w: player has no producer", domain.ErrUninitialized)
	}
	seq, err := p.producer(size)
	if err != nil {
		return err
	}
	if seq == nil || seq.Len() == 0 {
		return fmt.Errorf("%w: producer returned no steps", domain.ErrUninitialized)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked(seq, size)
	return nil
}

func (p *Player) loadLocked(seq *domain.Sequence, size int) {
	p.stopTickerLocked()
	p.seq = seq
	p.index = 0
	p.size = size
	p.transitionLocked(StateReady)
	p.publishLocked()
}

// Play starts auto-advancing. From the last index in the current direction it
// restarts from the first.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		return domain.ErrNoSequence
	}
	if p.state == StatePlaying {
		return nil
	}
	if p.atEndLocked() {
		p.index = p.startLocked()
	}
	p.transitionLocked(StatePlaying)
	p.publishLocked()
	if !p.atEndLocked() {
		p.startTickerLocked()
	} else {
		// Single-step sequence: nothing to advance.
		p.transitionLocked(StatePaused)
		p.publishLocked()
	}
	return nil
}

// Pause halts auto-advance and keeps the index.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		return domain.ErrNoSequence
	}
	if p.state != StatePlaying {
		return nil
	}
	p.stopTickerLocked()
	p.transitionLocked(StatePaused)
	p.publishLocked()
	return nil
}

// Toggle pauses a playing Player and plays any other.
func (p *Player) Toggle() error {
	if p.State() == StatePlaying {
		return p.Pause()
	}
	return p.Play()
}

// StepForward moves one step towards the end. It is a no-op on the last step.
func (p *Player) StepForward() error {
	return p.move(1)
}

// StepBackward moves one step towards the start. It is a no-op on the first step.
func (p *Player) StepBackward() error {
	return p.move(-1)
}

func (p *Player) move(delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		return domain.ErrNoSequence
	}
	p.seekLocked(p.index + delta)
	return nil
}

// Jump moves to index, clamped to the sequence bounds.
func (p *Player) Jump(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		return domain.ErrNoSequence
	}
	p.seekLocked(index)
	return nil
}

// seekLocked applies a manual move. A Ready player becomes Paused; a Playing
// one keeps its ticker.
func (p *Player) seekLocked(index int) {
	index = p.clampLocked(index)
	if index == p.index {
		return
	}
	p.index = index
	if p.state == StateReady {
		p.transitionLocked(StatePaused)
	}
	p.publishLocked()
}

// SetSpeed changes the playback multiplier. A playing ticker is re-armed with
// the new period.
func (p *Player) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %v", domain.ErrInvalidParams, speed)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed
	if p.state == StatePlaying {
		p.stopTickerLocked()
		p.startTickerLocked()
	}
	p.publishLocked()
	return nil
}

// SetDirection changes the direction of auto-advance.
func (p *Player) SetDirection(d Direction) error {
	if d != Forward && d != Backward {
		return fmt.Errorf("%w: direction %d", domain.ErrInvalidParams, d)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dir = d
	p.publishLocked()
	return nil
}

// Reset stops playback and discards the sequence.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
	p.seq = nil
	p.index = 0
	p.size = 0
	p.transitionLocked(StateIdle)
	p.publishLocked()
}

// Rewind stops playback and returns to Ready at index 0, keeping the sequence.
func (p *Player) Rewind() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		return domain.ErrNoSequence
	}
	p.stopTickerLocked()
	p.index = 0
	p.transitionLocked(StateReady)
	p.publishLocked()
	return nil
}

// Current returns the step at the current index.
func (p *Player) Current() (domain.Step, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		return domain.Step{}, domain.ErrNoSequence
	}
	return p.seq.At(p.index), nil
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Index returns the current index.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Len returns the length of the loaded sequence, or 0.
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq.Len()
}

// Frame returns a read-only view of the player.
func (p *Player) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked()
}

// Observe registers fn to receive every frame change. The returned function
// unregisters it.
func (p *Player) Observe(fn func(Frame)) func() {
	p.mu.Lock()
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

// Subscribe streams frames until ctx is done, then closes the channel.
// Slow consumers lose frames rather than blocking playback.
func (p *Player) Subscribe(ctx context.Context) <-chan Frame {
	ch := make(chan Frame, 256)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	ch <- p.frameLocked()
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.subs, ch)
		close(ch)
		p.mu.Unlock()
	}()
	return ch
}

func (p *Player) frameLocked() Frame {
	f := Frame{
		State:     p.state,
		Index:     p.index,
		Length:    p.seq.Len(),
		Size:      p.size,
		Speed:     p.speed,
		Direction: p.dir.String(),
	}
	if p.seq != nil {
		st := p.seq.At(p.index)
		f.Step = &st
	}
	return f
}

func (p *Player) publishLocked() {
	if len(p.observers) == 0 && len(p.subs) == 0 {
		return
	}
	f := p.frameLocked()
	for _, fn := range p.observers {
		fn(f)
	}
	for ch := range p.subs {
		select {
		case ch <- f:
		default:
			p.logger.Warn("dropping frame for slow subscriber", "index", f.Index)
		}
	}
}

func (p *Player) transitionLocked(to State) {
	from := p.state
	if from == to {
		return
	}
	p.state = to
	p.logger.Debug("player state changed", "from", from, "to", to, "index", p.index)
	if p.hooks.OnPlayerState != nil {
		p.hooks.OnPlayerState(context.Background(), &domain.PlayerEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPlayerState},
			From:      string(from),
			To:        string(to),
			Index:     p.index,
		})
	}
}

func (p *Player) clampLocked(i int) int {
	last := p.seq.Len() - 1
	switch {
	case i < 0:
		return 0
	case i > last:
		return last
	}
	return i
}

func (p *Player) startLocked() int {
	if p.dir == Backward {
		return p.seq.Len() - 1
	}
	return 0
}

func (p *Player) atEndLocked() bool {
	if p.dir == Backward {
		return p.index == 0
	}
	return p.index == p.seq.Len()-1
}

func (p *Player) startTickerLocked() {
	if p.stop != nil {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	p.gen++
	go p.tick(stop, p.gen, scaled(p.period, p.speed))
}

func (p *Player) stopTickerLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

func (p *Player) tick(stop <-chan struct{}, gen uint64, period time.Duration) {
	p.tickers.Add(1)
	defer p.tickers.Add(-1)

	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !p.advance(gen) {
				return
			}
		}
	}
}

// advance applies one tick. It reports false once this ticker is obsolete or
// playback completed.
func (p *Player) advance(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.state != StatePlaying || p.stop == nil {
		return false
	}
	p.index = p.clampLocked(p.index + int(p.dir))
	if p.atEndLocked() {
		p.stopTickerLocked()
		p.transitionLocked(StatePaused)
		p.publishLocked()
		return false
	}
	p.publishLocked()
	return true
}
