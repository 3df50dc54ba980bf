package perks

import (
	"context"
	"strings"

	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
)

// Assign sets a perk directly, bypassing the roll flow. The level is
// clamped to [1, MaxLevel]. Used by admin tooling and migrations.
func (s *service) Assign(ctx context.Context, userID, toolType, perkKey string, level int) (*domain.PerkAssignment, error) {
	if userID == "" || toolType == "" || perkKey == "" {
		return nil, domain.ErrInvalidInput
	}

	def := s.catalog.DefinitionFor(perkKey)
	if def == nil {
		return nil, domain.ErrPerkNotFound
	}
	if level < 1 {
		level = 1
	}
	if max := def.MaxLevel(); level > max {
		level = max
	}

	assignment := domain.NewPerkAssignment(def.Key, toolType, level)
	assignment.LinkDefinition(def)

	err := s.cache.WithUserLock(userID, func() error {
		state := s.cache.Get(userID)
		if state == nil {
			return domain.ErrDataNotLoaded
		}
		state.SetPerk(assignment)
		return s.cache.Save(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	s.reconcileTool(ctx, userID, assignment.ToolType)

	logger.FromContext(ctx).Info(LogMsgPerkAssigned,
		"user_id", userID, "tool", assignment.ToolType, "perk", def.Key, "level", level)
	return assignment, nil
}

// RemovePerk removes a tool's assignment and its boosters.
func (s *service) RemovePerk(ctx context.Context, userID, toolType string) (*domain.PerkAssignment, error) {
	if userID == "" || toolType == "" {
		return nil, domain.ErrInvalidInput
	}
	toolType = strings.ToLower(toolType)

	var removed *domain.PerkAssignment
	err := s.cache.WithUserLock(userID, func() error {
		state := s.cache.Get(userID)
		if state == nil {
			return domain.ErrDataNotLoaded
		}
		removed = state.RemovePerk(toolType)
		if removed == nil {
			return domain.ErrPerkNotFound
		}
		return s.cache.Save(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	s.reconcileTool(ctx, userID, toolType)

	logger.FromContext(ctx).Info(LogMsgPerkRemoved,
		"user_id", userID, "tool", toolType, "perk", removed.PerkKey)
	return removed, nil
}

// UpgradePerk raises a tool's assignment by one level, bounded by the
// definition's max level.
func (s *service) UpgradePerk(ctx context.Context, userID, toolType string) (*domain.PerkAssignment, error) {
	if userID == "" || toolType == "" {
		return nil, domain.ErrInvalidInput
	}
	toolType = strings.ToLower(toolType)

	var upgraded *domain.PerkAssignment
	err := s.cache.WithUserLock(userID, func() error {
		state := s.cache.Get(userID)
		if state == nil {
			return domain.ErrDataNotLoaded
		}
		assignment := state.Perk(toolType)
		if assignment == nil {
			return domain.ErrPerkNotFound
		}
		if !assignment.CanUpgrade() {
			return domain.ErrMaxLevel
		}
		assignment.Level++
		state.MarkDirty()
		upgraded = assignment.Copy()
		return s.cache.Save(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	s.reconcileTool(ctx, userID, toolType)

	logger.FromContext(ctx).Info(LogMsgPerkUpgraded,
		"user_id", userID, "tool", toolType, "perk", upgraded.PerkKey, "level", upgraded.Level)
	return upgraded, nil
}

// AddRolls credits rolls. Loaded users mutate in memory with an async
// save; offline users go through the repository fast path.
func (s *service) AddRolls(ctx context.Context, userID string, amount int) (int, error) {
	if userID == "" || amount < 1 {
		return 0, domain.ErrInvalidInput
	}
	return s.adjustRolls(ctx, userID, func(current int) int { return current + amount })
}

// SetRolls replaces the balance outright.
func (s *service) SetRolls(ctx context.Context, userID string, amount int) (int, error) {
	if userID == "" || amount < 0 {
		return 0, domain.ErrInvalidInput
	}
	return s.adjustRolls(ctx, userID, func(int) int { return amount })
}

// RemoveRolls debits rolls, clamped at zero.
func (s *service) RemoveRolls(ctx context.Context, userID string, amount int) (int, error) {
	if userID == "" || amount < 1 {
		return 0, domain.ErrInvalidInput
	}
	return s.adjustRolls(ctx, userID, func(current int) int { return current - amount })
}

func (s *service) adjustRolls(ctx context.Context, userID string, apply func(current int) int) (int, error) {
	var balance int
	err := s.cache.WithUserLock(userID, func() error {
		if state := s.cache.Get(userID); state != nil {
			state.SetRollBalance(apply(state.RollBalance()))
			balance = state.RollBalance()
			return nil
		}

		// Offline: read-modify-write through the narrow column update.
		base, err := s.users.LoadOrCreate(ctx, userID, s.defaultAnimations)
		if err != nil {
			return err
		}
		balance = apply(base.RollBalance)
		if balance < 0 {
			balance = 0
		}
		return s.users.UpdateRollBalance(ctx, userID, balance)
	})
	if err != nil {
		return 0, err
	}

	if s.cache.Get(userID) != nil {
		s.cache.SaveAsync(userID)
	}
	s.profiles.Remove(userID)
	return balance, nil
}

// ResetPity zeroes the pity counter.
func (s *service) ResetPity(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}
	err := s.cache.WithUserLock(userID, func() error {
		if state := s.cache.Get(userID); state != nil {
			state.ResetPity()
			return nil
		}
		return s.users.UpdatePityCount(ctx, userID, 0)
	})
	if err != nil {
		return err
	}

	if s.cache.Get(userID) != nil {
		s.cache.SaveAsync(userID)
	}
	s.profiles.Remove(userID)
	return nil
}

// ToggleAnimations flips the animation preference and returns the new
// value.
func (s *service) ToggleAnimations(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrInvalidInput
	}

	var enabled bool
	err := s.cache.WithUserLock(userID, func() error {
		if state := s.cache.Get(userID); state != nil {
			enabled = state.ToggleAnimations()
			return nil
		}

		base, err := s.users.LoadOrCreate(ctx, userID, s.defaultAnimations)
		if err != nil {
			return err
		}
		enabled = !base.AnimationsEnabled
		return s.users.UpdateAnimationsEnabled(ctx, userID, enabled)
	})
	if err != nil {
		return false, err
	}

	if s.cache.Get(userID) != nil {
		s.cache.SaveAsync(userID)
	}
	s.profiles.Remove(userID)
	return enabled, nil
}
