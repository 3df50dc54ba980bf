package perks

import (
	"context"

	"github.com/okimc/toolperks/internal/domain"
)

// PerkSnapshot is a read-only view of one assignment.
type PerkSnapshot struct {
	ToolType    string             `json:"tool_type"`
	PerkKey     string             `json:"perk_key"`
	DisplayName string             `json:"display_name"`
	Category    string             `json:"category"`
	Level       int                `json:"level"`
	MaxLevel    int                `json:"max_level"`
	Boosts      map[string]float64 `json:"boosts"`
}

// StateSnapshot is a read-only view of a user's perk state, safe to hand
// out past the lock boundary.
type StateSnapshot struct {
	UserID            string             `json:"user_id"`
	RollBalance       int                `json:"roll_balance"`
	PityCount         int                `json:"pity_count"`
	AnimationsEnabled bool               `json:"animations_enabled"`
	Loaded            bool               `json:"loaded"`
	Perks             []PerkSnapshot     `json:"perks"`
	BoostSummary      map[string]float64 `json:"boost_summary,omitempty"`
}

func snapshotPerk(a *domain.PerkAssignment) PerkSnapshot {
	snap := PerkSnapshot{
		ToolType:    a.ToolType,
		PerkKey:     a.PerkKey,
		DisplayName: a.DisplayName(),
		Category:    a.Category(),
		Level:       a.Level,
		MaxLevel:    1,
		Boosts:      a.BoostMap(),
	}
	if def := a.Definition(); def != nil {
		snap.MaxLevel = def.MaxLevel()
	}
	return snap
}

// GetState snapshots a loaded user's state. Returns ErrDataNotLoaded for
// users without a live session; use Profile for those.
func (s *service) GetState(userID string) (*StateSnapshot, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	var snap *StateSnapshot
	err := s.cache.WithUserLock(userID, func() error {
		state := s.cache.Get(userID)
		if state == nil {
			return domain.ErrDataNotLoaded
		}
		snap = s.snapshotLocked(state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *service) snapshotLocked(state *domain.UserState) *StateSnapshot {
	snap := &StateSnapshot{
		UserID:            state.ID,
		RollBalance:       state.RollBalance(),
		PityCount:         state.PityCount(),
		AnimationsEnabled: state.AnimationsEnabled(),
		Loaded:            true,
		Perks:             make([]PerkSnapshot, 0, state.PerkCount()),
		BoostSummary:      s.boosters.Summary(state.ID),
	}
	for _, a := range state.Perks() {
		snap.Perks = append(snap.Perks, snapshotPerk(a))
	}
	return snap
}

// Profile returns a state view for any user. Loaded users are snapshotted
// live; others are read through an expiring cache without pulling a
// session into the state cache.
func (s *service) Profile(ctx context.Context, userID string) (*StateSnapshot, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	if snap, err := s.GetState(userID); err == nil {
		return snap, nil
	}

	if snap, ok := s.profiles.Get(userID); ok {
		return snap, nil
	}

	base, err := s.users.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.perks.LoadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &StateSnapshot{
		UserID:            base.UserID,
		RollBalance:       base.RollBalance,
		PityCount:         base.PityCount,
		AnimationsEnabled: base.AnimationsEnabled,
		Loaded:            false,
		Perks:             make([]PerkSnapshot, 0, len(rows)),
	}
	for _, row := range rows {
		a := domain.NewPerkAssignment(row.PerkKey, row.ToolType, row.Level)
		a.LinkDefinition(s.catalog.DefinitionFor(row.PerkKey))
		snap.Perks = append(snap.Perks, snapshotPerk(a))
	}

	s.profiles.Add(userID, snap)
	return snap, nil
}

// PerkChance returns the probability of rolling a perk on a non-pity roll
// for its tool.
func (s *service) PerkChance(perkKey string) (float64, error) {
	def := s.catalog.DefinitionFor(perkKey)
	if def == nil {
		return 0, domain.ErrPerkNotFound
	}
	return s.engine.Chance(def), nil
}
