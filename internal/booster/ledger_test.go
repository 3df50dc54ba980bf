package booster

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okimc/toolperks/internal/domain"
)

// fakeAPI is an in-memory booster service.
type fakeAPI struct {
	mu          sync.Mutex
	registered  map[string]map[string]float64 // userID -> boosterID -> multiplier
	registerErr error
	existsErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{registered: map[string]map[string]float64{}}
}

func (f *fakeAPI) Register(_ context.Context, userID, boosterID, _ string, multiplier float64) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registered[userID] == nil {
		f.registered[userID] = map[string]float64{}
	}
	f.registered[userID][boosterID] = multiplier
	return nil
}

func (f *fakeAPI) Exists(_ context.Context, userID, boosterID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.registered[userID][boosterID]
	return ok, nil
}

func (f *fakeAPI) Deregister(_ context.Context, userID, boosterID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registered[userID], boosterID)
	return nil
}

func (f *fakeAPI) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registered[userID])
}

func assignment(key, tool string, boosts map[string]float64) *domain.PerkAssignment {
	types := make([]string, 0, len(boosts))
	amounts := make([]float64, 0, len(boosts))
	for t, a := range boosts {
		types = append(types, t)
		amounts = append(amounts, a)
	}
	a := domain.NewPerkAssignment(key, tool, 1)
	a.LinkDefinition(&domain.PerkDefinition{
		Key: key, DisplayName: key, Tool: tool, Category: "common", Weight: 1,
		Levels: map[int]domain.PerkLevel{1: {BoostTypes: types, BoostAmounts: amounts}},
	})
	return a
}

func TestBoosterID(t *testing.T) {
	id := BoosterID("u-1", "Pickaxe", "Coins")
	assert.Equal(t, "toolperks-u-1-pickaxe-coins", id)
}

func TestApply_RegistersEveryBonus(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{
		"coins": 10,
		"xp":    25,
	}))

	require.Equal(t, 2, api.count("u-1"))
	assert.InDelta(t, 0.10, api.registered["u-1"]["toolperks-u-1-pickaxe-coins"], 1e-9)
	assert.InDelta(t, 0.25, api.registered["u-1"]["toolperks-u-1-pickaxe-xp"], 1e-9)
	assert.Equal(t, 2, ledger.Count("u-1"))
}

func TestApply_RemoveApply_OneActiveRegistrationPerType(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)
	perk := assignment("haste", "pickaxe", map[string]float64{"coins": 10})

	ledger.Apply(context.Background(), "u-1", perk)
	ledger.RemoveForTool(context.Background(), "u-1", "pickaxe")
	ledger.Apply(context.Background(), "u-1", perk)

	assert.Equal(t, 1, api.count("u-1"))
	assert.Equal(t, 1, ledger.Count("u-1"))
}

func TestApply_PreClearsStaleRemoteRegistration(t *testing.T) {
	api := newFakeAPI()
	// Leftover from a crashed session, unknown to the ledger.
	api.registered["u-1"] = map[string]float64{
		"toolperks-u-1-pickaxe-coins": 0.99,
	}
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10}))

	assert.Equal(t, 1, api.count("u-1"))
	assert.InDelta(t, 0.10, api.registered["u-1"]["toolperks-u-1-pickaxe-coins"], 1e-9)
}

func TestApply_PartialFailureStillAppliesRest(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	api.registerErr = errors.New("remote down")
	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10}))
	assert.Equal(t, 0, ledger.Count("u-1"))

	api.registerErr = nil
	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10}))
	assert.Equal(t, 1, ledger.Count("u-1"))
}

func TestApply_UnresolvedAssignmentIsNoOp(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", domain.NewPerkAssignment("ghost", "pickaxe", 1))
	assert.Equal(t, 0, api.count("u-1"))
}

func TestRemoveForTool_CleansOrphans(t *testing.T) {
	api := newFakeAPI()
	// Orphan with a well-known boost type, never tracked locally.
	api.registered["u-1"] = map[string]float64{
		"toolperks-u-1-pickaxe-coins": 0.10,
	}
	ledger := NewLedger(api)

	ledger.RemoveForTool(context.Background(), "u-1", "pickaxe")
	assert.Equal(t, 0, api.count("u-1"))
}

func TestRemoveForTool_LeavesOtherToolsAlone(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10}))
	ledger.Apply(context.Background(), "u-1", assignment("harvest", "hoe", map[string]float64{"coins": 20}))

	ledger.RemoveForTool(context.Background(), "u-1", "pickaxe")

	assert.Equal(t, 1, api.count("u-1"))
	assert.InDelta(t, 0.20, api.registered["u-1"]["toolperks-u-1-hoe-coins"], 1e-9)
	assert.Equal(t, 1, ledger.Count("u-1"))
}

func TestRemoveAll(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10}))
	ledger.Apply(context.Background(), "u-1", assignment("harvest", "hoe", map[string]float64{"xp": 15}))

	ledger.RemoveAll(context.Background(), "u-1")

	assert.Equal(t, 0, api.count("u-1"))
	assert.Equal(t, 0, ledger.Count("u-1"))
}

func TestTotalMultiplier_AdditiveStacking(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10}))
	ledger.Apply(context.Background(), "u-1", assignment("harvest", "hoe", map[string]float64{"coins": 15}))

	assert.InDelta(t, 1.25, ledger.TotalMultiplier("u-1", "coins"), 1e-9)
	assert.InDelta(t, 1.0, ledger.TotalMultiplier("u-1", "xp"), 1e-9)
	assert.InDelta(t, 1.0, ledger.TotalMultiplier("u-2", "coins"), 1e-9)
}

func TestSummary(t *testing.T) {
	api := newFakeAPI()
	ledger := NewLedger(api)

	ledger.Apply(context.Background(), "u-1", assignment("haste", "pickaxe", map[string]float64{"coins": 10, "xp": 5}))
	ledger.Apply(context.Background(), "u-1", assignment("harvest", "hoe", map[string]float64{"coins": 20}))

	summary := ledger.Summary("u-1")
	assert.InDelta(t, 30.0, summary["coins"], 1e-9)
	assert.InDelta(t, 5.0, summary["xp"], 1e-9)
}
