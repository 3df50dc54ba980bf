// Package catalog loads and indexes the perk definitions that drive roll
// selection. The catalog is read-only for callers and can be swapped
// wholesale by Reload; assignments hold definitions by key and re-resolve
// after a reload.
package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/okimc/toolperks/internal/domain"
)

// Catalog indexes perk definitions by key, tool type and category.
type Catalog struct {
	path string

	mu         sync.RWMutex
	byKey      map[string]*domain.PerkDefinition
	byTool     map[string][]*domain.PerkDefinition
	byCategory map[string][]*domain.PerkDefinition
}

// New creates a catalog bound to a definitions file and performs the
// initial load.
func New(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the definitions file and atomically replaces all indexes.
// On failure the previous definitions stay in place.
func (c *Catalog) Reload() error {
	defs, err := loadDefinitions(c.path)
	if err != nil {
		return fmt.Errorf("failed to load perk catalog: %w", err)
	}

	byKey := make(map[string]*domain.PerkDefinition, len(defs))
	byTool := make(map[string][]*domain.PerkDefinition)
	byCategory := make(map[string][]*domain.PerkDefinition)

	for _, def := range defs {
		byKey[def.Key] = def
		byTool[def.Tool] = append(byTool[def.Tool], def)
		byCategory[def.Category] = append(byCategory[def.Category], def)
	}

	c.mu.Lock()
	c.byKey = byKey
	c.byTool = byTool
	c.byCategory = byCategory
	c.mu.Unlock()

	slog.Default().Info("Perk catalog loaded", "path", c.path, "perks", len(byKey), "tools", len(byTool))
	return nil
}

// DefinitionFor returns the definition for a perk key, or nil.
func (c *Catalog) DefinitionFor(perkKey string) *domain.PerkDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byKey[strings.ToLower(perkKey)]
}

// AllForTool returns the candidate pool for a tool type. The returned slice
// must not be mutated.
func (c *Catalog) AllForTool(toolType string) []*domain.PerkDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byTool[strings.ToLower(toolType)]
}

// AllInCategory returns every definition in a category.
func (c *Catalog) AllInCategory(category string) []*domain.PerkDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byCategory[strings.ToLower(category)]
}

// TotalWeightForTool sums the weights of a tool's candidate pool.
func (c *Catalog) TotalWeightForTool(toolType string) float64 {
	total := 0.0
	for _, def := range c.AllForTool(toolType) {
		total += def.Weight
	}
	return total
}

// ToolTypes returns every tool type that has at least one perk.
func (c *Catalog) ToolTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tools := make([]string, 0, len(c.byTool))
	for tool := range c.byTool {
		tools = append(tools, tool)
	}
	return tools
}

// Size returns the number of loaded definitions.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
