package statecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/repository"
	"github.com/okimc/toolperks/internal/worker"
)

// fakeUserRepo is an in-memory repository.User with injectable failures
// and call counting.
type fakeUserRepo struct {
	mu        sync.Mutex
	records   map[string]*repository.BaseRecord
	loadCalls int32
	saveCalls int32
	loadDelay time.Duration
	loadErr   error
	saveErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{records: map[string]*repository.BaseRecord{}}
}

func (f *fakeUserRepo) LoadOrCreate(_ context.Context, userID string, defaultAnimations bool) (*repository.BaseRecord, error) {
	atomic.AddInt32(&f.loadCalls, 1)
	if f.loadDelay > 0 {
		time.Sleep(f.loadDelay)
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[userID]
	if !ok {
		rec = &repository.BaseRecord{UserID: userID, AnimationsEnabled: defaultAnimations}
		f.records[userID] = rec
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeUserRepo) Load(_ context.Context, userID string) (*repository.BaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeUserRepo) Save(_ context.Context, rec *repository.BaseRecord) error {
	atomic.AddInt32(&f.saveCalls, 1)
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records[rec.UserID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, userID)
	return nil
}

func (f *fakeUserRepo) Exists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[userID]
	return ok, nil
}

func (f *fakeUserRepo) UpdateRollBalance(_ context.Context, userID string, balance int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[userID]; ok {
		rec.RollBalance = balance
	}
	return nil
}

func (f *fakeUserRepo) UpdatePityCount(_ context.Context, userID string, pityCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[userID]; ok {
		rec.PityCount = pityCount
	}
	return nil
}

func (f *fakeUserRepo) UpdateAnimationsEnabled(_ context.Context, userID string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[userID]; ok {
		rec.AnimationsEnabled = enabled
	}
	return nil
}

// fakePerkRepo is an in-memory repository.Perk.
type fakePerkRepo struct {
	mu      sync.Mutex
	rows    map[string]map[string]repository.PerkRow
	saveErr error
}

func newFakePerkRepo() *fakePerkRepo {
	return &fakePerkRepo{rows: map[string]map[string]repository.PerkRow{}}
}

func (f *fakePerkRepo) LoadAll(_ context.Context, userID string) (map[string]repository.PerkRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]repository.PerkRow, len(f.rows[userID]))
	for k, v := range f.rows[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakePerkRepo) SaveAll(_ context.Context, userID string, perks []*domain.PerkAssignment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make(map[string]repository.PerkRow, len(perks))
	for _, p := range perks {
		rows[p.ToolType] = repository.PerkRow{
			UserID: userID, ToolType: p.ToolType, PerkKey: p.PerkKey, Level: p.Level,
		}
	}
	f.rows[userID] = rows
	return nil
}

func (f *fakePerkRepo) Save(_ context.Context, userID string, perk *domain.PerkAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[userID] == nil {
		f.rows[userID] = map[string]repository.PerkRow{}
	}
	f.rows[userID][perk.ToolType] = repository.PerkRow{
		UserID: userID, ToolType: perk.ToolType, PerkKey: perk.PerkKey, Level: perk.Level,
	}
	return nil
}

func (f *fakePerkRepo) Delete(_ context.Context, userID, toolType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows[userID], toolType)
	return nil
}

func (f *fakePerkRepo) DeleteAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, userID)
	return nil
}

// fakeCatalog resolves a fixed definition set.
type fakeCatalog struct {
	defs map[string]*domain.PerkDefinition
}

func (f *fakeCatalog) DefinitionFor(perkKey string) *domain.PerkDefinition {
	return f.defs[perkKey]
}

func testDefinition(key, tool, category string) *domain.PerkDefinition {
	return &domain.PerkDefinition{
		Key:         key,
		DisplayName: key,
		Tool:        tool,
		Category:    category,
		Weight:      10,
		Levels: map[int]domain.PerkLevel{
			1: {BoostTypes: []string{"sell-multiplier"}, BoostAmounts: []float64{10}},
			2: {BoostTypes: []string{"sell-multiplier"}, BoostAmounts: []float64{20}},
		},
	}
}

func newTestCache(t *testing.T, users *fakeUserRepo, perks *fakePerkRepo) *Cache {
	t.Helper()
	pool := worker.NewPool(1, 8)
	pool.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.StopWait(ctx)
	})
	cat := &fakeCatalog{defs: map[string]*domain.PerkDefinition{
		"haste": testDefinition("haste", "pickaxe", "common"),
	}}
	return New(users, perks, cat, pool, true)
}

func TestLoad_FirstTimeUserGetsDefaults(t *testing.T) {
	users := newFakeUserRepo()
	cache := newTestCache(t, users, newFakePerkRepo())

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.Equal(t, "user-1", state.ID)
	assert.Equal(t, 0, state.RollBalance())
	assert.Equal(t, 0, state.PityCount())
	assert.True(t, state.AnimationsEnabled())
	assert.False(t, state.IsDirty(), "freshly loaded state must be clean")
	assert.Equal(t, 1, cache.Size())
}

func TestLoad_ResolvesPerkDefinitions(t *testing.T) {
	users := newFakeUserRepo()
	perks := newFakePerkRepo()
	perks.rows["user-1"] = map[string]repository.PerkRow{
		"pickaxe": {UserID: "user-1", ToolType: "pickaxe", PerkKey: "haste", Level: 2},
		"axe":     {UserID: "user-1", ToolType: "axe", PerkKey: "retired-perk", Level: 1},
	}
	cache := newTestCache(t, users, perks)

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)

	linked := state.Perk("pickaxe")
	require.NotNil(t, linked)
	require.NotNil(t, linked.Definition())
	assert.Equal(t, "common", linked.Category())

	orphan := state.Perk("axe")
	require.NotNil(t, orphan)
	assert.Nil(t, orphan.Definition(), "unknown key stays unresolved")
	assert.Equal(t, "unknown", orphan.Category())
}

func TestLoad_ConcurrentCallsShareOneFetch(t *testing.T) {
	users := newFakeUserRepo()
	users.loadDelay = 50 * time.Millisecond
	cache := newTestCache(t, users, newFakePerkRepo())

	const callers = 16
	results := make([]*domain.UserState, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state, err := cache.Load(context.Background(), "user-1")
			require.NoError(t, err)
			results[i] = state
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&users.loadCalls), "concurrent loads must coalesce into one fetch")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i], "all callers receive the same state reference")
	}
}

func TestLoad_FetchErrorCachesNothing(t *testing.T) {
	users := newFakeUserRepo()
	users.loadErr = errors.New("db down")
	cache := newTestCache(t, users, newFakePerkRepo())

	_, err := cache.Load(context.Background(), "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Nil(t, cache.Get("user-1"))

	// Retry succeeds after the backend recovers.
	users.loadErr = nil
	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, state)
}

func TestSave_MarksCleanOnSuccessOnly(t *testing.T) {
	users := newFakeUserRepo()
	perks := newFakePerkRepo()
	cache := newTestCache(t, users, perks)

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)

	state.AddRolls(5)
	state.SetPerk(domain.NewPerkAssignment("haste", "pickaxe", 1))
	require.True(t, state.IsDirty())

	perks.saveErr = errors.New("write failed")
	err = cache.Save(context.Background(), state)
	require.Error(t, err)
	assert.True(t, state.IsDirty(), "failed save must keep the dirty flag")

	perks.saveErr = nil
	require.NoError(t, cache.Save(context.Background(), state))
	assert.False(t, state.IsDirty())
	assert.Equal(t, 5, users.records["user-1"].RollBalance)
	assert.Equal(t, "haste", perks.rows["user-1"]["pickaxe"].PerkKey)
}

func TestUnload_SavesDirtyStateAndEvicts(t *testing.T) {
	users := newFakeUserRepo()
	cache := newTestCache(t, users, newFakePerkRepo())

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)
	state.AddRolls(3)

	require.NoError(t, cache.Unload(context.Background(), "user-1"))
	assert.Nil(t, cache.Get("user-1"))
	assert.Equal(t, 3, users.records["user-1"].RollBalance)
}

func TestUnload_CleanStateSkipsSave(t *testing.T) {
	users := newFakeUserRepo()
	cache := newTestCache(t, users, newFakePerkRepo())

	_, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)

	require.NoError(t, cache.Unload(context.Background(), "user-1"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&users.saveCalls))
}

func TestSaveAllDirty_PersistsOnlyDirtyStates(t *testing.T) {
	users := newFakeUserRepo()
	cache := newTestCache(t, users, newFakePerkRepo())

	dirty, err := cache.Load(context.Background(), "dirty-user")
	require.NoError(t, err)
	dirty.AddRolls(1)

	_, err = cache.Load(context.Background(), "clean-user")
	require.NoError(t, err)

	require.NoError(t, cache.SaveAllDirty(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&users.saveCalls))
	assert.False(t, dirty.IsDirty())
}

func TestSaveAsync_PersistsViaWorkerPool(t *testing.T) {
	users := newFakeUserRepo()
	cache := newTestCache(t, users, newFakePerkRepo())

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)
	state.AddRolls(7)

	cache.SaveAsync("user-1")

	require.Eventually(t, func() bool {
		users.mu.Lock()
		defer users.mu.Unlock()
		rec, ok := users.records["user-1"]
		return ok && rec.RollBalance == 7
	}, time.Second, 10*time.Millisecond)
}

func TestShutdown_FlushesAndClears(t *testing.T) {
	users := newFakeUserRepo()
	cache := newTestCache(t, users, newFakePerkRepo())

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)
	state.AddRolls(2)

	require.NoError(t, cache.Shutdown(context.Background(), time.Second))
	assert.Equal(t, 0, cache.Size())
	assert.Equal(t, 2, users.records["user-1"].RollBalance)
}

func TestRelink_ReresolvesAfterCatalogChange(t *testing.T) {
	users := newFakeUserRepo()
	perks := newFakePerkRepo()
	perks.rows["user-1"] = map[string]repository.PerkRow{
		"pickaxe": {UserID: "user-1", ToolType: "pickaxe", PerkKey: "haste", Level: 1},
	}

	pool := worker.NewPool(1, 8)
	pool.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.StopWait(ctx)
	})

	cat := &fakeCatalog{defs: map[string]*domain.PerkDefinition{
		"haste": testDefinition("haste", "pickaxe", "common"),
	}}
	cache := New(users, perks, cat, pool, true)

	state, err := cache.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "common", state.Perk("pickaxe").Category())

	// Simulate a reload that retires the perk entirely.
	cat.defs = map[string]*domain.PerkDefinition{}
	cache.Relink()
	assert.Nil(t, state.Perk("pickaxe").Definition())

	// And one that brings it back with a new category.
	cat.defs = map[string]*domain.PerkDefinition{
		"haste": testDefinition("haste", "pickaxe", "legendary"),
	}
	cache.Relink()
	assert.Equal(t, "legendary", state.Perk("pickaxe").Category())
}
