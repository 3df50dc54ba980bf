package domain

import "strings"

// UserState is the in-memory record for one user while their session is
// loaded. It is owned by the state cache; it carries no internal locking,
// so every read-decide-mutate-save sequence must run inside the per-user
// critical section (see concurrency.LockManager).
//
// Invariants: RollBalance >= 0, PityCount >= 0, at most one assignment per
// tool type.
type UserState struct {
	ID string

	rollBalance       int
	pityCount         int
	animationsEnabled bool

	perks map[string]*PerkAssignment

	// dirty is transitioned to false only by the cache/save boundary.
	dirty bool
}

// NewUserState creates a state record with the given starting values.
func NewUserState(id string, rollBalance, pityCount int, animationsEnabled bool) *UserState {
	if rollBalance < 0 {
		rollBalance = 0
	}
	if pityCount < 0 {
		pityCount = 0
	}
	return &UserState{
		ID:                id,
		rollBalance:       rollBalance,
		pityCount:         pityCount,
		animationsEnabled: animationsEnabled,
		perks:             make(map[string]*PerkAssignment),
	}
}

// RollBalance returns the consumable roll currency.
func (s *UserState) RollBalance() int { return s.rollBalance }

// SetRollBalance replaces the balance, clamped to zero.
func (s *UserState) SetRollBalance(n int) {
	if n < 0 {
		n = 0
	}
	s.rollBalance = n
	s.dirty = true
}

// AddRolls adjusts the balance by delta, clamped to zero.
func (s *UserState) AddRolls(delta int) {
	s.SetRollBalance(s.rollBalance + delta)
}

// HasRolls reports whether the balance covers n rolls.
func (s *UserState) HasRolls(n int) bool { return s.rollBalance >= n }

// ConsumeRoll decrements the balance by one.
// Returns false without mutating when the balance is empty.
func (s *UserState) ConsumeRoll() bool {
	if s.rollBalance < 1 {
		return false
	}
	s.rollBalance--
	s.dirty = true
	return true
}

// PityCount returns rolls performed since the last guaranteed-category hit.
func (s *UserState) PityCount() int { return s.pityCount }

// SetPityCount replaces the pity counter, clamped to zero.
func (s *UserState) SetPityCount(n int) {
	if n < 0 {
		n = 0
	}
	s.pityCount = n
	s.dirty = true
}

// IncrementPity bumps the pity counter by one.
func (s *UserState) IncrementPity() {
	s.pityCount++
	s.dirty = true
}

// ResetPity zeroes the pity counter.
func (s *UserState) ResetPity() {
	s.pityCount = 0
	s.dirty = true
}

// AnimationsEnabled returns the user's animation preference.
func (s *UserState) AnimationsEnabled() bool { return s.animationsEnabled }

// ToggleAnimations flips the preference and returns the new value.
func (s *UserState) ToggleAnimations() bool {
	s.animationsEnabled = !s.animationsEnabled
	s.dirty = true
	return s.animationsEnabled
}

// Perk returns the assignment for a tool type, or nil.
func (s *UserState) Perk(toolType string) *PerkAssignment {
	return s.perks[strings.ToLower(toolType)]
}

// HasPerk reports whether a tool type has an assignment.
func (s *UserState) HasPerk(toolType string) bool {
	_, ok := s.perks[strings.ToLower(toolType)]
	return ok
}

// SetPerk installs an assignment, replacing and returning the previous one
// for the same tool type if any.
func (s *UserState) SetPerk(p *PerkAssignment) *PerkAssignment {
	if p == nil {
		return nil
	}
	prev := s.perks[p.ToolType]
	s.perks[p.ToolType] = p
	s.dirty = true
	return prev
}

// RemovePerk deletes and returns the assignment for a tool type, or nil.
func (s *UserState) RemovePerk(toolType string) *PerkAssignment {
	key := strings.ToLower(toolType)
	prev, ok := s.perks[key]
	if !ok {
		return nil
	}
	delete(s.perks, key)
	s.dirty = true
	return prev
}

// Perks returns the live assignment map. Callers must hold the user lock
// and must not retain the map across lock boundaries.
func (s *UserState) Perks() map[string]*PerkAssignment { return s.perks }

// PerkCount returns the number of active assignments.
func (s *UserState) PerkCount() int { return len(s.perks) }

// IsDirty reports whether in-memory mutations have not been persisted.
func (s *UserState) IsDirty() bool { return s.dirty }

// MarkClean is called by the cache after a successful save.
func (s *UserState) MarkClean() { s.dirty = false }

// MarkDirty flags unsaved mutations. Prefer the typed mutators; this exists
// for bulk operations like relinking after a catalog reload.
func (s *UserState) MarkDirty() { s.dirty = true }
