package domain

import "strings"

// PerkLevel holds the boost table for a single perk level.
// BoostTypes and BoostAmounts are parallel; amounts are percentages
// (10.0 means +10%).
type PerkLevel struct {
	BoostTypes   []string  `yaml:"boost-types" validate:"required,min=1,dive,required"`
	BoostAmounts []float64 `yaml:"boost-amounts" validate:"required,min=1"`
}

// BoostMap returns boost type -> percentage for this level.
// When the amounts list is shorter than the types list the last amount
// is repeated, matching the catalog file's shorthand.
func (l PerkLevel) BoostMap() map[string]float64 {
	if len(l.BoostTypes) == 0 {
		return map[string]float64{}
	}
	m := make(map[string]float64, len(l.BoostTypes))
	for i, t := range l.BoostTypes {
		amount := 0.0
		switch {
		case i < len(l.BoostAmounts):
			amount = l.BoostAmounts[i]
		case len(l.BoostAmounts) > 0:
			amount = l.BoostAmounts[len(l.BoostAmounts)-1]
		}
		m[strings.ToLower(strings.TrimSpace(t))] = amount
	}
	return m
}

// PerkDefinition is a read-only perk entry from the catalog.
type PerkDefinition struct {
	Key         string            `yaml:"-"`
	DisplayName string            `yaml:"display-name" validate:"required"`
	Description string            `yaml:"description"`
	Tool        string            `yaml:"tool" validate:"required"`
	Category    string            `yaml:"category" validate:"required"`
	Weight      float64           `yaml:"weight" validate:"gt=0"`
	Levels      map[int]PerkLevel `yaml:"levels" validate:"required,min=1"`
}

// MaxLevel returns the highest defined level, or 1 if none are defined.
func (d *PerkDefinition) MaxLevel() int {
	max := 0
	for lvl := range d.Levels {
		if lvl > max {
			max = lvl
		}
	}
	if max < 1 {
		return 1
	}
	return max
}

// Level returns the boost table for a level.
func (d *PerkDefinition) Level(level int) (PerkLevel, bool) {
	l, ok := d.Levels[level]
	return l, ok
}

// PerkAssignment is one rolled or admin-assigned perk on a tool type.
// At most one assignment exists per user per tool type; a new roll replaces
// the whole assignment rather than mutating it.
//
// The definition is resolved lazily by key and may be absent (catalog edits
// can orphan stored keys). An unresolved assignment degrades to a zero-bonus
// display but never corrupts state. Callers mutate assignments only while
// holding the owning user's lock.
type PerkAssignment struct {
	PerkKey  string
	ToolType string
	Level    int

	def *PerkDefinition
}

// NewPerkAssignment builds an assignment, normalizing keys and clamping the
// level to at least 1.
func NewPerkAssignment(perkKey, toolType string, level int) *PerkAssignment {
	if level < 1 {
		level = 1
	}
	return &PerkAssignment{
		PerkKey:  strings.ToLower(perkKey),
		ToolType: strings.ToLower(toolType),
		Level:    level,
	}
}

// LinkDefinition attaches the resolved catalog definition. A definition with
// a mismatched key is ignored.
func (a *PerkAssignment) LinkDefinition(def *PerkDefinition) {
	if def != nil && strings.EqualFold(def.Key, a.PerkKey) {
		a.def = def
	}
}

// UnlinkDefinition drops the resolved definition, forcing re-resolution.
func (a *PerkAssignment) UnlinkDefinition() {
	a.def = nil
}

// Definition returns the resolved catalog definition, or nil.
func (a *PerkAssignment) Definition() *PerkDefinition {
	return a.def
}

// DisplayName returns the definition's display name, falling back to the key.
func (a *PerkAssignment) DisplayName() string {
	if a.def != nil {
		return a.def.DisplayName
	}
	return a.PerkKey
}

// Category returns the definition's category, or "unknown" when unresolved.
func (a *PerkAssignment) Category() string {
	if a.def != nil {
		return a.def.Category
	}
	return "unknown"
}

// CanUpgrade reports whether the assignment is below its max level.
// Unresolved assignments cannot be upgraded.
func (a *PerkAssignment) CanUpgrade() bool {
	return a.def != nil && a.Level < a.def.MaxLevel()
}

// BoostMap returns boost type -> percentage for the current level.
// Unresolved definitions and undefined levels yield an empty map.
func (a *PerkAssignment) BoostMap() map[string]float64 {
	if a.def == nil {
		return map[string]float64{}
	}
	lvl, ok := a.def.Level(a.Level)
	if !ok {
		return map[string]float64{}
	}
	return lvl.BoostMap()
}

// Copy returns an independent copy sharing the resolved definition.
func (a *PerkAssignment) Copy() *PerkAssignment {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
