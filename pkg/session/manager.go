package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/bst"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
	"github.com/aretw0/stepviz/pkg/ports"
)

// Surface is one visualization target with its controllers.
// Tree and Params must only be touched inside Manager.WithLock.
type Surface struct {
	ID      string
	Player  *player.Player
	Live    *player.LivePlayer
	Tree    *bst.Tree
	Params  domain.Params
	Created time.Time
}

// Factory builds the controllers of a new surface.
type Factory func(id string) *Surface

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns surfaces and serializes access to each of them.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	mu       sync.Mutex
	surfaces map[string]*Surface
	locks    map[string]*lockEntry

	factory Factory
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithFactory replaces the default surface constructor.
func WithFactory(f Factory) Option {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager with no surfaces.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		surfaces: make(map[string]*Surface),
		locks:    make(map[string]*lockEntry),
		lockTTL:  30 * time.Second,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.factory == nil {
		m.factory = DefaultFactory(m.logger)
	}
	return m
}

// DefaultFactory builds surfaces with default players and an empty tree.
func DefaultFactory(logger *slog.Logger) Factory {
	return func(id string) *Surface {
		l := logger.With("surface", id)
		return &Surface{
			ID:      id,
			Player:  player.New(player.WithLogger(l)),
			Live:    player.NewLive(nil, player.WithLogger(l)),
			Tree:    bst.New(),
			Created: time.Now(),
		}
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// LoadOrCreate returns the surface for id, creating it if needed.
func (m *Manager) LoadOrCreate(ctx context.Context, id string) (*Surface, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty surface id", domain.ErrInvalidParams)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.surfaces[id]; ok {
		return s, nil
	}
	s := m.factory(id)
	m.surfaces[id] = s
	m.logger.Debug("surface created", "surface", id)
	return s, nil
}

// Get returns an existing surface.
func (m *Manager) Get(ctx context.Context, id string) (*Surface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSurfaceNotFound, id)
	}
	return s, nil
}

// Delete stops any live run of the surface, resets its player and forgets it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		s, ok := m.surfaces[id]
		delete(m.surfaces, id)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSurfaceNotFound, id)
		}

		// The run may end between the check and Stop; that is not a failure.
		if s.Live.Running() {
			if _, err := s.Live.Stop(ctx); err != nil && !errors.Is(err, domain.ErrNotRunning) {
				return fmt.Errorf("failed to stop live run: %w", err)
			}
		}
		s.Player.Reset()
		m.logger.Debug("surface deleted", "surface", id)
		return nil
	})
}

// List returns the IDs of all surfaces in lexical order.
func (m *Manager) List(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.surfaces))
	for id := range m.surfaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithLock executes fn while holding the lock for the surface.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"surface", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Update loads or creates the surface and runs fn on it under the surface lock.
func (m *Manager) Update(ctx context.Context, id string, fn func(context.Context, *Surface) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.LoadOrCreate(ctx, id)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// Close stops every live run and forgets all surfaces.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error
	for _, id := range m.List(ctx) {
		if err := m.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSurfaceNotFound) {
			errs = append(errs, fmt.Errorf("surface %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
