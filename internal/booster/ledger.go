package booster

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/metrics"
)

// record is one registration the ledger has made. Ledger-local, never
// persisted: the durable source of truth is the perk assignment, and the
// ledger is rebuilt by re-applying on load.
type record struct {
	boostType  string
	multiplier float64
}

// Ledger tracks booster registrations per user and keeps the remote side
// consistent with perk assignments. Remote failures are logged and
// swallowed: a missing booster is a degraded bonus, not a broken roll.
type Ledger struct {
	api API

	mu     sync.Mutex
	active map[string]map[string]record // userID -> boosterID -> record
}

// NewLedger creates a ledger over the given API.
func NewLedger(api API) *Ledger {
	return &Ledger{
		api:    api,
		active: make(map[string]map[string]record),
	}
}

// BoosterID builds the deterministic registration id for one bonus.
func BoosterID(userID, toolType, boostType string) string {
	return fmt.Sprintf("%s-%s-%s-%s",
		boosterIDPrefix, userID, strings.ToLower(toolType), strings.ToLower(boostType))
}

// Apply registers every bonus of the assignment. Each registration is
// pre-cleared remotely first, which heals duplicates left by a crashed
// session. A failed bonus is skipped; the rest are still applied.
func (l *Ledger) Apply(ctx context.Context, userID string, assignment *domain.PerkAssignment) {
	if assignment == nil {
		return
	}
	log := logger.FromContext(ctx)

	for boostType, percent := range assignment.BoostMap() {
		boosterID := BoosterID(userID, assignment.ToolType, boostType)
		multiplier := percent / 100.0

		l.preClear(ctx, userID, boosterID)

		if err := l.api.Register(ctx, userID, boosterID, boostType, multiplier); err != nil {
			metrics.BoosterErrors.WithLabelValues("register").Inc()
			log.Warn(LogMsgBoosterApplyFailed, "booster_id", boosterID, "error", err)
			continue
		}

		l.mu.Lock()
		if l.active[userID] == nil {
			l.active[userID] = make(map[string]record)
		}
		l.active[userID][boosterID] = record{boostType: boostType, multiplier: multiplier}
		l.mu.Unlock()

		metrics.BoostersApplied.Inc()
		log.Debug(LogMsgBoosterRegistered, "booster_id", boosterID, "boost_type", boostType, "multiplier", multiplier)
	}
}

// preClear removes a remote registration that local tracking never saw.
func (l *Ledger) preClear(ctx context.Context, userID, boosterID string) {
	exists, err := l.api.Exists(ctx, userID, boosterID)
	if err != nil || !exists {
		return
	}
	if err := l.api.Deregister(ctx, userID, boosterID); err == nil {
		logger.FromContext(ctx).Debug(LogMsgPreCleared, "booster_id", boosterID)
	}
}

// RemoveForTool deregisters every booster for one tool: tracked entries
// first, then a speculative probe over the well-known boost types for
// orphans left by earlier sessions.
func (l *Ledger) RemoveForTool(ctx context.Context, userID, toolType string) {
	prefix := fmt.Sprintf("%s-%s-%s-", boosterIDPrefix, userID, strings.ToLower(toolType))

	l.mu.Lock()
	var tracked []string
	for boosterID := range l.active[userID] {
		if strings.HasPrefix(boosterID, prefix) {
			tracked = append(tracked, boosterID)
		}
	}
	for _, boosterID := range tracked {
		delete(l.active[userID], boosterID)
	}
	if len(l.active[userID]) == 0 {
		delete(l.active, userID)
	}
	l.mu.Unlock()

	log := logger.FromContext(ctx)
	removed := make(map[string]bool, len(tracked))
	for _, boosterID := range tracked {
		removed[boosterID] = true
		if err := l.api.Deregister(ctx, userID, boosterID); err != nil {
			metrics.BoosterErrors.WithLabelValues("deregister").Inc()
			log.Warn(LogMsgBoosterRemoveFailed, "booster_id", boosterID, "error", err)
			continue
		}
		metrics.BoostersRemoved.Inc()
		log.Debug(LogMsgBoosterRemoved, "booster_id", boosterID)
	}

	// Orphan cleanup. No-op safe when nothing matches.
	for _, boostType := range wellKnownBoostTypes {
		boosterID := prefix + boostType
		if removed[boosterID] {
			continue
		}
		exists, err := l.api.Exists(ctx, userID, boosterID)
		if err != nil || !exists {
			continue
		}
		if err := l.api.Deregister(ctx, userID, boosterID); err != nil {
			metrics.BoosterErrors.WithLabelValues("deregister").Inc()
			continue
		}
		metrics.BoostersRemoved.Inc()
		log.Debug(LogMsgOrphanCleaned, "booster_id", boosterID)
	}
}

// RemoveAll deregisters every tracked booster for a user. Used on
// disconnection.
func (l *Ledger) RemoveAll(ctx context.Context, userID string) {
	l.mu.Lock()
	boosters := l.active[userID]
	delete(l.active, userID)
	l.mu.Unlock()

	log := logger.FromContext(ctx)
	for boosterID := range boosters {
		if err := l.api.Deregister(ctx, userID, boosterID); err != nil {
			metrics.BoosterErrors.WithLabelValues("deregister").Inc()
			log.Warn(LogMsgBoosterRemoveFailed, "booster_id", boosterID, "error", err)
			continue
		}
		metrics.BoostersRemoved.Inc()
	}
}

// TotalMultiplier returns the combined multiplier for a boost type,
// additive stacking across a user's active boosters. 1.0 means no boost.
func (l *Ledger) TotalMultiplier(userID, boostType string) float64 {
	target := strings.ToLower(boostType)

	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0.0
	for _, rec := range l.active[userID] {
		if strings.EqualFold(rec.boostType, target) {
			total += rec.multiplier
		}
	}
	return 1.0 + total
}

// Summary returns boost type -> combined percentage for a user's active
// boosters, for display surfaces.
func (l *Ledger) Summary(userID string) map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := make(map[string]float64)
	for _, rec := range l.active[userID] {
		summary[rec.boostType] += rec.multiplier * 100
	}
	return summary
}

// Count returns the number of active boosters tracked for a user.
func (l *Ledger) Count(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active[userID])
}
