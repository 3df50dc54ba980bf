package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserState_ClampsNegativeValues(t *testing.T) {
	s := NewUserState("u1", -5, -3, true)

	assert.Equal(t, 0, s.RollBalance())
	assert.Equal(t, 0, s.PityCount())
	assert.False(t, s.IsDirty())
}

func TestConsumeRoll(t *testing.T) {
	s := NewUserState("u1", 2, 0, true)

	assert.True(t, s.ConsumeRoll())
	assert.True(t, s.ConsumeRoll())
	assert.Equal(t, 0, s.RollBalance())
	assert.True(t, s.IsDirty())

	// Empty balance: no mutation, no dirty transition.
	s.MarkClean()
	assert.False(t, s.ConsumeRoll())
	assert.Equal(t, 0, s.RollBalance())
	assert.False(t, s.IsDirty())
}

func TestAddRolls_ClampsAtZero(t *testing.T) {
	s := NewUserState("u1", 3, 0, true)

	s.AddRolls(-10)
	assert.Equal(t, 0, s.RollBalance())

	s.AddRolls(5)
	assert.Equal(t, 5, s.RollBalance())
	assert.True(t, s.HasRolls(5))
	assert.False(t, s.HasRolls(6))
}

func TestPityCounter(t *testing.T) {
	s := NewUserState("u1", 0, 0, true)

	s.IncrementPity()
	s.IncrementPity()
	assert.Equal(t, 2, s.PityCount())

	s.ResetPity()
	assert.Equal(t, 0, s.PityCount())

	s.SetPityCount(-1)
	assert.Equal(t, 0, s.PityCount())
}

func TestToggleAnimations(t *testing.T) {
	s := NewUserState("u1", 0, 0, true)

	assert.False(t, s.ToggleAnimations())
	assert.True(t, s.ToggleAnimations())
	assert.True(t, s.AnimationsEnabled())
}

func TestSetPerk_ReplacesPerToolType(t *testing.T) {
	s := NewUserState("u1", 0, 0, true)

	first := NewPerkAssignment("haste", "pickaxe", 1)
	require.Nil(t, s.SetPerk(first))

	second := NewPerkAssignment("midas-touch", "pickaxe", 1)
	prev := s.SetPerk(second)
	assert.Same(t, first, prev)
	assert.Equal(t, 1, s.PerkCount())
	assert.Same(t, second, s.Perk("pickaxe"))

	// Different tool type is an independent slot.
	s.SetPerk(NewPerkAssignment("green-thumb", "hoe", 1))
	assert.Equal(t, 2, s.PerkCount())
}

func TestPerkLookup_CaseInsensitive(t *testing.T) {
	s := NewUserState("u1", 0, 0, true)
	s.SetPerk(NewPerkAssignment("haste", "Pickaxe", 1))

	assert.True(t, s.HasPerk("PICKAXE"))
	assert.NotNil(t, s.Perk("pickaxe"))
}

func TestRemovePerk(t *testing.T) {
	s := NewUserState("u1", 0, 0, true)
	a := NewPerkAssignment("haste", "pickaxe", 1)
	s.SetPerk(a)
	s.MarkClean()

	removed := s.RemovePerk("pickaxe")
	assert.Same(t, a, removed)
	assert.True(t, s.IsDirty())

	s.MarkClean()
	assert.Nil(t, s.RemovePerk("pickaxe"))
	assert.False(t, s.IsDirty())
}

func TestDirtyTracking(t *testing.T) {
	s := NewUserState("u1", 1, 0, true)
	require.False(t, s.IsDirty())

	s.SetRollBalance(5)
	assert.True(t, s.IsDirty())

	s.MarkClean()
	assert.False(t, s.IsDirty())

	s.MarkDirty()
	assert.True(t, s.IsDirty())
}
