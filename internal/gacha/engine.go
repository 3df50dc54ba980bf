// Package gacha implements weighted perk selection with a pity floor.
// The engine is pure: it reads the catalog and its injected randomness and
// never touches user state.
package gacha

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/okimc/toolperks/internal/domain"
)

// Source provides the candidate pools the engine selects from.
type Source interface {
	AllForTool(toolType string) []*domain.PerkDefinition
}

// Selection is the result of one draw.
type Selection struct {
	Definition *domain.PerkDefinition
	Level      int

	// PityFired is true when the guaranteed-category restriction was applied.
	PityFired bool

	// PityExhausted is true when pity was due but the tool's pool had no
	// perk in the guaranteed category, so the full pool was used instead.
	PityExhausted bool
}

// Engine selects perk definitions by weight. Randomness is injected so
// tests can drive exact outcomes.
type Engine struct {
	source             Source
	pityThreshold      int
	guaranteedCategory string

	mu        sync.Mutex
	randFloat func() float64 // uniform [0,1)
	randInt   func(n int) int
}

// NewEngine creates an engine seeded from the wall clock.
func NewEngine(source Source, pityThreshold int, guaranteedCategory string) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Engine{
		source:             source,
		pityThreshold:      pityThreshold,
		guaranteedCategory: strings.ToLower(guaranteedCategory),
		randFloat:          rng.Float64,
		randInt:            rng.Intn,
	}
}

// NewEngineWithRand creates an engine with caller-provided randomness.
func NewEngineWithRand(source Source, pityThreshold int, guaranteedCategory string, randFloat func() float64, randInt func(n int) int) *Engine {
	return &Engine{
		source:             source,
		pityThreshold:      pityThreshold,
		guaranteedCategory: strings.ToLower(guaranteedCategory),
		randFloat:          randFloat,
		randInt:            randInt,
	}
}

// PityThreshold returns the configured pity floor.
func (e *Engine) PityThreshold() int { return e.pityThreshold }

// GuaranteedCategory returns the category the pity floor guarantees.
func (e *Engine) GuaranteedCategory() string { return e.guaranteedCategory }

// HasPerksFor reports whether the tool has a non-empty candidate pool.
func (e *Engine) HasPerksFor(toolType string) bool {
	return len(e.source.AllForTool(toolType)) > 0
}

// Select draws one perk for the tool. pityCount is the counter value after
// this roll's increment; when it has reached the threshold the pool is
// restricted to the guaranteed category. A tool with no perks at all yields
// ErrNoPerksAvailable; a pity restriction that matches nothing falls back
// to the full pool and is reported via PityExhausted.
func (e *Engine) Select(toolType string, pityCount int) (*Selection, error) {
	pool := e.source.AllForTool(toolType)
	if len(pool) == 0 {
		return nil, domain.ErrNoPerksAvailable
	}

	sel := &Selection{}
	candidates := pool
	if pityCount >= e.pityThreshold {
		guaranteed := filterByCategory(pool, e.guaranteedCategory)
		if len(guaranteed) > 0 {
			candidates = guaranteed
			sel.PityFired = true
		} else {
			sel.PityExhausted = true
		}
	}

	sel.Definition = e.weighted(candidates)
	sel.Level = e.rollLevel(sel.Definition)
	return sel, nil
}

// weighted draws one definition proportionally to Weight. Floating point
// drift can leave the cursor past every bucket; the last candidate absorbs
// the remainder.
func (e *Engine) weighted(candidates []*domain.PerkDefinition) *domain.PerkDefinition {
	total := 0.0
	for _, def := range candidates {
		total += def.Weight
	}

	e.mu.Lock()
	r := e.randFloat() * total
	e.mu.Unlock()

	cumulative := 0.0
	for _, def := range candidates {
		cumulative += def.Weight
		if r < cumulative {
			return def
		}
	}
	return candidates[len(candidates)-1]
}

// rollLevel draws a level uniformly in [1, MaxLevel].
func (e *Engine) rollLevel(def *domain.PerkDefinition) int {
	max := def.MaxLevel()
	if max <= 1 {
		return 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.randInt(max) + 1
}

// Chance returns the probability of drawing the given perk on a non-pity
// roll for its tool, in [0,1]. Returns 0 when the perk is not in the pool.
func (e *Engine) Chance(def *domain.PerkDefinition) float64 {
	if def == nil {
		return 0
	}
	pool := e.source.AllForTool(def.Tool)
	total := 0.0
	found := false
	for _, d := range pool {
		total += d.Weight
		if d.Key == def.Key {
			found = true
		}
	}
	if !found || total <= 0 {
		return 0
	}
	return def.Weight / total
}

func filterByCategory(pool []*domain.PerkDefinition, category string) []*domain.PerkDefinition {
	var out []*domain.PerkDefinition
	for _, def := range pool {
		if strings.EqualFold(def.Category, category) {
			out = append(out, def)
		}
	}
	return out
}
