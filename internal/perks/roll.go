package perks

import (
	"context"
	"strings"
	"time"

	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/metrics"
)

// Roll performs one perk roll for a tool. Failures are reported on the
// outcome rather than as errors; the error return is reserved for invalid
// input.
//
// Order matters: the balance is checked first, then the candidate pool,
// and only then is a roll consumed, so a tool with no perks never costs
// currency and an empty balance always reports as such. A persistence failure
// after the in-memory mutation is reported as a database failure but the
// mutation is kept; the dirty flag carries it to the next save.
func (s *service) Roll(ctx context.Context, userID, toolType string) (*domain.RollOutcome, error) {
	if userID == "" || toolType == "" {
		return nil, domain.ErrInvalidInput
	}
	toolType = strings.ToLower(toolType)

	var outcome *domain.RollOutcome
	err := s.cache.WithUserLock(userID, func() error {
		outcome = s.rollLocked(ctx, userID, toolType)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Success {
		// Booster traffic stays outside the user lock; a slow remote call
		// must not stall the user's other operations.
		s.reconcileTool(ctx, userID, toolType)
	}
	return outcome, nil
}

func (s *service) rollLocked(ctx context.Context, userID, toolType string) *domain.RollOutcome {
	log := logger.FromContext(ctx)

	state := s.cache.Get(userID)
	if state == nil {
		metrics.RollFailuresTotal.WithLabelValues(string(domain.FailureDataNotLoaded)).Inc()
		return domain.RollFailed(domain.FailureDataNotLoaded)
	}

	if !state.HasRolls(1) {
		metrics.RollFailuresTotal.WithLabelValues(string(domain.FailureNoRolls)).Inc()
		return domain.RollFailed(domain.FailureNoRolls)
	}

	if !s.engine.HasPerksFor(toolType) {
		metrics.RollFailuresTotal.WithLabelValues(string(domain.FailureNoPerksAvailable)).Inc()
		log.Warn(LogMsgRollFailed, "user_id", userID, "tool", toolType, "reason", domain.FailureNoPerksAvailable)
		return domain.RollFailed(domain.FailureNoPerksAvailable)
	}

	if !state.ConsumeRoll() {
		metrics.RollFailuresTotal.WithLabelValues(string(domain.FailureNoRolls)).Inc()
		return domain.RollFailed(domain.FailureNoRolls)
	}

	state.IncrementPity()

	sel, err := s.engine.Select(toolType, state.PityCount())
	if err != nil {
		// Pool emptiness was checked above; reaching this means the catalog
		// was swapped mid-roll. The consumed roll is already spent.
		metrics.RollFailuresTotal.WithLabelValues(string(domain.FailureNoPerksAvailable)).Inc()
		return domain.RollFailed(domain.FailureNoPerksAvailable)
	}

	assignment := domain.NewPerkAssignment(sel.Definition.Key, toolType, sel.Level)
	assignment.LinkDefinition(sel.Definition)
	previous := state.SetPerk(assignment)

	// The pity floor is a guarantee, not a distinct reward path: ordinary
	// luck landing in the guaranteed category also resets the counter.
	if strings.EqualFold(sel.Definition.Category, s.engine.GuaranteedCategory()) {
		state.ResetPity()
	}

	outcome := &domain.RollOutcome{
		Success:       true,
		Assignment:    assignment,
		Previous:      previous,
		PityTriggered: sel.PityFired,
		PityExhausted: sel.PityExhausted,
	}

	if err := s.cache.Save(ctx, state); err != nil {
		log.Error(LogMsgRollFailed, "user_id", userID, "tool", toolType,
			"reason", domain.FailureDatabaseError, "error", err)
		metrics.RollFailuresTotal.WithLabelValues(string(domain.FailureDatabaseError)).Inc()
		return domain.RollFailed(domain.FailureDatabaseError)
	}

	metrics.RollsTotal.WithLabelValues(toolType, sel.Definition.Category).Inc()
	if sel.PityFired {
		metrics.PityTriggered.Inc()
	}
	if sel.PityExhausted {
		metrics.PityExhausted.Inc()
	}

	log.Info(LogMsgRollResolved,
		"user_id", userID,
		"tool", toolType,
		"perk", sel.Definition.Key,
		"level", sel.Level,
		"category", sel.Definition.Category,
		"pity_triggered", sel.PityFired,
		"rolls_left", state.RollBalance())
	return outcome
}

// RollBatch performs up to count rolls with a pacing delay between them,
// stopping at the first failure. Outcomes resolved so far are returned
// either way.
func (s *service) RollBatch(ctx context.Context, userID, toolType string, count int) ([]*domain.RollOutcome, error) {
	if count < 1 {
		return nil, domain.ErrInvalidInput
	}

	outcomes := make([]*domain.RollOutcome, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 && s.batchDelay > 0 {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				return outcomes, ctx.Err()
			}
		}

		outcome, err := s.Roll(ctx, userID, toolType)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
		if !outcome.Success {
			break
		}
	}
	return outcomes, nil
}
