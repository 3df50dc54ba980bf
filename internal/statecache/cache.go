// Package statecache owns the mutable per-user state while a session is
// live. It is the only component allowed to transition a state's dirty flag
// to clean, and the only place load deduplication happens.
package statecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okimc/toolperks/internal/concurrency"
	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/metrics"
	"github.com/okimc/toolperks/internal/repository"
	"github.com/okimc/toolperks/internal/worker"
)

// Catalog is the read-only definition lookup the cache resolves
// assignments against.
type Catalog interface {
	DefinitionFor(perkKey string) *domain.PerkDefinition
}

// Cache holds one mutable UserState per loaded user.
//
// The cache map is guarded internally, but the UserState objects are not:
// callers must wrap every read-decide-mutate-save sequence in WithUserLock.
// Concurrent Load calls for the same id are coalesced into a single fetch;
// every waiter receives the same state pointer or the same error.
type Cache struct {
	users   repository.User
	perks   repository.Perk
	catalog Catalog
	pool    *worker.Pool

	defaultAnimations bool

	mu     sync.RWMutex
	states map[string]*domain.UserState

	flight singleflight.Group
	locks  *concurrency.LockManager
}

// New creates a state cache. The worker pool is used for asynchronous
// saves; it must already be started.
func New(users repository.User, perks repository.Perk, catalog Catalog, pool *worker.Pool, defaultAnimations bool) *Cache {
	return &Cache{
		users:             users,
		perks:             perks,
		catalog:           catalog,
		pool:              pool,
		defaultAnimations: defaultAnimations,
		states:            make(map[string]*domain.UserState),
		locks:             concurrency.NewLockManager(),
	}
}

// WithUserLock runs fn inside the user's critical section. All mutation
// entry points (rolls, admin edits, session lifecycle) must go through
// this so flows targeting the same user are sequenced, never interleaved.
func (c *Cache) WithUserLock(userID string, fn func() error) error {
	return c.locks.WithLock(userID, fn)
}

// Get returns the cached state, or nil when not loaded. Never blocks and
// never triggers a fetch.
func (c *Cache) Get(userID string) *domain.UserState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[userID]
}

// Load returns the cached state, fetching it when absent. Concurrent calls
// for an id already being fetched attach to the in-flight fetch instead of
// issuing a second one. On fetch failure nothing is cached and every
// waiter receives the error.
func (c *Cache) Load(ctx context.Context, userID string) (*domain.UserState, error) {
	if state := c.Get(userID); state != nil {
		metrics.StateLoadsTotal.WithLabelValues(metrics.OutcomeHit).Inc()
		return state, nil
	}

	v, err, _ := c.flight.Do(userID, func() (interface{}, error) {
		// A racing Load may have completed while we queued.
		if state := c.Get(userID); state != nil {
			return state, nil
		}
		return c.fetch(ctx, userID)
	})
	if err != nil {
		metrics.StateLoadsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	return v.(*domain.UserState), nil
}

// fetch pulls the base record and perk rows, resolves definitions and
// publishes the state as clean.
func (c *Cache) fetch(ctx context.Context, userID string) (*domain.UserState, error) {
	base, err := c.users.LoadOrCreate(ctx, userID, c.defaultAnimations)
	if err != nil {
		return nil, fmt.Errorf("%w: load base record for %s: %v", domain.ErrPersistence, userID, err)
	}

	rows, err := c.perks.LoadAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load perks for %s: %v", domain.ErrPersistence, userID, err)
	}

	state := domain.NewUserState(base.UserID, base.RollBalance, base.PityCount, base.AnimationsEnabled)
	for _, row := range rows {
		assignment := domain.NewPerkAssignment(row.PerkKey, row.ToolType, row.Level)
		assignment.LinkDefinition(c.catalog.DefinitionFor(row.PerkKey))
		state.SetPerk(assignment)
	}
	state.MarkClean()

	c.mu.Lock()
	c.states[userID] = state
	size := len(c.states)
	c.mu.Unlock()

	metrics.StateLoadsTotal.WithLabelValues(metrics.OutcomeMiss).Inc()
	metrics.CachedUsers.Set(float64(size))

	logger.FromContext(ctx).Debug("Loaded user state",
		"user_id", userID, "rolls", state.RollBalance(), "perks", state.PerkCount())
	return state, nil
}

// Save persists the base record and replaces all perk rows. On success the
// state is marked clean; on failure the dirty flag stays set and the
// in-memory mutations are kept as the durable-intent source of truth.
// Callers must hold the user lock.
func (c *Cache) Save(ctx context.Context, state *domain.UserState) error {
	base := &repository.BaseRecord{
		UserID:            state.ID,
		RollBalance:       state.RollBalance(),
		PityCount:         state.PityCount(),
		AnimationsEnabled: state.AnimationsEnabled(),
	}
	if err := c.users.Save(ctx, base); err != nil {
		metrics.StateSavesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("%w: save base record for %s: %v", domain.ErrPersistence, state.ID, err)
	}

	assignments := make([]*domain.PerkAssignment, 0, state.PerkCount())
	for _, p := range state.Perks() {
		assignments = append(assignments, p)
	}
	if err := c.perks.SaveAll(ctx, state.ID, assignments); err != nil {
		metrics.StateSavesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("%w: save perks for %s: %v", domain.ErrPersistence, state.ID, err)
	}

	state.MarkClean()
	metrics.StateSavesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return nil
}

// saveJob persists one user's state on the worker pool.
type saveJob struct {
	cache  *Cache
	userID string
}

// Process re-reads the live state and saves it under the user lock, so a
// queued job always writes the latest mutations rather than a stale
// snapshot.
func (j saveJob) Process(ctx context.Context) error {
	return j.cache.WithUserLock(j.userID, func() error {
		state := j.cache.Get(j.userID)
		if state == nil || !state.IsDirty() {
			return nil
		}
		return j.cache.Save(ctx, state)
	})
}

// SaveAsync queues a save for the user's state on the worker pool. When the
// queue is full the save runs on its own goroutine instead of blocking the
// caller.
func (c *Cache) SaveAsync(userID string) {
	job := saveJob{cache: c, userID: userID}
	if !c.pool.TryEnqueue(job) {
		go func() {
			if err := job.Process(context.Background()); err != nil {
				logger.FromContext(context.Background()).Error("Async save failed", "user_id", userID, "error", err)
			}
		}()
	}
}

// Unload removes the user from the cache, performing a final save when the
// state is dirty. Used on disconnection.
func (c *Cache) Unload(ctx context.Context, userID string) error {
	var state *domain.UserState

	err := c.WithUserLock(userID, func() error {
		c.mu.Lock()
		state = c.states[userID]
		delete(c.states, userID)
		size := len(c.states)
		c.mu.Unlock()
		metrics.CachedUsers.Set(float64(size))

		if state == nil || !state.IsDirty() {
			return nil
		}
		return c.Save(ctx, state)
	})
	if err != nil {
		logger.FromContext(ctx).Error("Failed to save state on unload", "user_id", userID, "error", err)
	}
	return err
}

// LoadedUsers returns a snapshot of the cached user ids.
func (c *Cache) LoadedUsers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.states))
	for id := range c.states {
		ids = append(ids, id)
	}
	return ids
}

// Size returns the number of cached states.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

// SaveAllDirty persists every dirty state, continuing past individual
// failures. Returns the first error encountered, if any.
func (c *Cache) SaveAllDirty(ctx context.Context) error {
	var firstErr error
	for _, userID := range c.LoadedUsers() {
		if ctx.Err() != nil {
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			break
		}
		err := c.WithUserLock(userID, func() error {
			state := c.Get(userID)
			if state == nil || !state.IsDirty() {
				return nil
			}
			return c.Save(ctx, state)
		})
		if err != nil {
			logger.FromContext(ctx).Error("Failed to save dirty state", "user_id", userID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Shutdown drains queued saves and persists everything dirty, bounded by
// the timeout. Mutations unsaved past the deadline are lost; this is an
// accepted data-loss boundary, not an error.
func (c *Cache) Shutdown(ctx context.Context, timeout time.Duration) error {
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.pool.StopWait(deadline); err != nil {
		logger.FromContext(ctx).Warn("Save queue not drained before deadline", "error", err)
	}

	err := c.SaveAllDirty(deadline)

	c.mu.Lock()
	c.states = make(map[string]*domain.UserState)
	c.mu.Unlock()
	metrics.CachedUsers.Set(0)

	return err
}

// Relink re-resolves every cached assignment's definition. Called after a
// catalog reload, when old definition pointers may refer to retired data.
func (c *Cache) Relink() {
	for _, userID := range c.LoadedUsers() {
		_ = c.WithUserLock(userID, func() error {
			state := c.Get(userID)
			if state == nil {
				return nil
			}
			for _, assignment := range state.Perks() {
				assignment.UnlinkDefinition()
				assignment.LinkDefinition(c.catalog.DefinitionFor(assignment.PerkKey))
			}
			return nil
		})
	}
}
