// Package perks is the orchestrator: it sequences the state cache, the
// roll engine, persistence and the booster ledger into the operations the
// API exposes.
package perks

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okimc/toolperks/internal/concurrency"
	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/gacha"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/repository"
	"github.com/okimc/toolperks/internal/statecache"
)

// Catalog is the definition lookup surface the service needs.
type Catalog interface {
	DefinitionFor(perkKey string) *domain.PerkDefinition
	AllForTool(toolType string) []*domain.PerkDefinition
	ToolTypes() []string
}

// Boosters reconciles external bonus registrations with assignments.
// Satisfied by booster.Ledger.
type Boosters interface {
	Apply(ctx context.Context, userID string, assignment *domain.PerkAssignment)
	RemoveForTool(ctx context.Context, userID, toolType string)
	RemoveAll(ctx context.Context, userID string)
	Summary(userID string) map[string]float64
}

// Service defines the perks operations
type Service interface {
	// Session lifecycle
	Connect(ctx context.Context, userID string) error
	Disconnect(ctx context.Context, userID string) error

	// Rolling
	Roll(ctx context.Context, userID, toolType string) (*domain.RollOutcome, error)
	RollBatch(ctx context.Context, userID, toolType string, count int) ([]*domain.RollOutcome, error)

	// Admin perk management
	Assign(ctx context.Context, userID, toolType, perkKey string, level int) (*domain.PerkAssignment, error)
	RemovePerk(ctx context.Context, userID, toolType string) (*domain.PerkAssignment, error)
	UpgradePerk(ctx context.Context, userID, toolType string) (*domain.PerkAssignment, error)

	// Roll currency and toggles
	AddRolls(ctx context.Context, userID string, amount int) (int, error)
	SetRolls(ctx context.Context, userID string, amount int) (int, error)
	RemoveRolls(ctx context.Context, userID string, amount int) (int, error)
	ResetPity(ctx context.Context, userID string) error
	ToggleAnimations(ctx context.Context, userID string) (bool, error)

	// Read surfaces
	GetState(userID string) (*StateSnapshot, error)
	Profile(ctx context.Context, userID string) (*StateSnapshot, error)
	PerkChance(perkKey string) (float64, error)

	// Maintenance
	ReapplyAllBoosters(ctx context.Context)
	Shutdown(ctx context.Context) error
}

type service struct {
	cache    *statecache.Cache
	engine   *gacha.Engine
	catalog  Catalog
	boosters Boosters
	users    repository.User
	perks    repository.Perk

	// boosterLocks sequences booster reconciliation per user. Remote
	// booster calls run outside the state lock, so without this two
	// concurrent flows could interleave their remove/apply pairs.
	boosterLocks *concurrency.LockManager

	batchDelay        time.Duration
	shutdownTimeout   time.Duration
	defaultAnimations bool

	// profiles caches snapshots of users that are not loaded, so read
	// surfaces do not pull a full session into the cache.
	profiles *expirable.LRU[string, *StateSnapshot]
}

// Options bundles the service's tuning knobs.
type Options struct {
	BatchRollDelay      time.Duration
	ShutdownSaveTimeout time.Duration
	ProfileCacheSize    int
	ProfileCacheTTL     time.Duration

	// DefaultAnimations seeds the preference for users first created
	// through an offline fast path.
	DefaultAnimations bool
}

// NewService creates a perks service
func NewService(cache *statecache.Cache, engine *gacha.Engine, cat Catalog, boosters Boosters,
	users repository.User, perkRepo repository.Perk, opts Options) Service {
	if opts.ProfileCacheSize < 1 {
		opts.ProfileCacheSize = 1
	}
	return &service{
		cache:             cache,
		engine:            engine,
		catalog:           cat,
		boosters:          boosters,
		users:             users,
		perks:             perkRepo,
		boosterLocks:      concurrency.NewLockManager(),
		batchDelay:        opts.BatchRollDelay,
		shutdownTimeout:   opts.ShutdownSaveTimeout,
		defaultAnimations: opts.DefaultAnimations,
		profiles:          expirable.NewLRU[string, *StateSnapshot](opts.ProfileCacheSize, nil, opts.ProfileCacheTTL),
	}
}

// Connect loads the user's state and registers boosters for every active
// perk. Idempotent: reconnecting re-reconciles boosters against the same
// cached state.
func (s *service) Connect(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}

	state, err := s.cache.Load(ctx, userID)
	if err != nil {
		return err
	}

	// A cached profile snapshot is stale the moment the session is live.
	s.profiles.Remove(userID)

	for _, toolType := range s.assignedTools(userID) {
		s.reconcileTool(ctx, userID, toolType)
	}

	logger.FromContext(ctx).Info(LogMsgUserConnected, "user_id", userID, "perks", state.PerkCount())
	return nil
}

// Disconnect removes the user's boosters and unloads their state with a
// final save.
func (s *service) Disconnect(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}

	s.boosters.RemoveAll(ctx, userID)
	s.profiles.Remove(userID)

	err := s.cache.Unload(ctx, userID)
	logger.FromContext(ctx).Info(LogMsgUserDisconnected, "user_id", userID)
	return err
}

// assignedTools lists the tool types with an active assignment, read under
// the user lock.
func (s *service) assignedTools(userID string) []string {
	var tools []string
	_ = s.cache.WithUserLock(userID, func() error {
		if state := s.cache.Get(userID); state != nil {
			for tool := range state.Perks() {
				tools = append(tools, tool)
			}
		}
		return nil
	})
	return tools
}

// reconcileTool re-synchronizes the remote booster registrations for one
// tool with the assignment currently in the cache. Reconciles are serialized
// per user and each one reads the live assignment, so concurrent flows
// cannot interleave their remove/apply pairs and the last reconcile settles
// the remote side on the final state. Holds the booster lock before the
// state lock, never the reverse.
func (s *service) reconcileTool(ctx context.Context, userID, toolType string) {
	_ = s.boosterLocks.WithLock(userID, func() error {
		var assignment *domain.PerkAssignment
		_ = s.cache.WithUserLock(userID, func() error {
			if state := s.cache.Get(userID); state != nil {
				assignment = state.Perk(toolType).Copy()
			}
			return nil
		})

		s.boosters.RemoveForTool(ctx, userID, toolType)
		if assignment != nil {
			s.boosters.Apply(ctx, userID, assignment)
		}
		return nil
	})
}

// ReapplyAllBoosters re-reconciles boosters for every loaded user. Called
// after a catalog reload so changed boost values take effect without a
// reconnect.
func (s *service) ReapplyAllBoosters(ctx context.Context) {
	reapplied := 0
	for _, userID := range s.cache.LoadedUsers() {
		for _, toolType := range s.assignedTools(userID) {
			s.reconcileTool(ctx, userID, toolType)
			reapplied++
		}
	}
	logger.FromContext(ctx).Info(LogMsgBoostersReapplied, "assignments", reapplied)
}

// Shutdown flushes all dirty state within the configured timeout.
func (s *service) Shutdown(ctx context.Context) error {
	return s.cache.Shutdown(ctx, s.shutdownTimeout)
}
