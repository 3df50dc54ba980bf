package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okimc/toolperks/internal/domain"
)

// catalogFile mirrors the on-disk YAML layout:
//
//	perks:
//	  golden-harvest:
//	    display-name: Golden Harvest
//	    tool: hoe
//	    category: legendary
//	    weight: 10
//	    levels:
//	      1: { boost-types: [coins], boost-amounts: [5] }
type catalogFile struct {
	Perks map[string]*domain.PerkDefinition `yaml:"perks"`
}

var validate = validator.New()

// loadDefinitions parses and validates the definitions file. Invalid
// entries are skipped with a warning so one bad perk does not take down
// the whole catalog.
func loadDefinitions(path string) ([]*domain.PerkDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(file.Perks) == 0 {
		return nil, fmt.Errorf("no perks defined in %s", path)
	}

	log := slog.Default()
	defs := make([]*domain.PerkDefinition, 0, len(file.Perks))
	for key, def := range file.Perks {
		if def == nil {
			log.Warn("Skipping empty perk entry", "perk", key)
			continue
		}
		def.Key = strings.ToLower(key)
		def.Tool = strings.ToLower(def.Tool)
		def.Category = strings.ToLower(def.Category)

		if err := validate.Struct(def); err != nil {
			log.Warn("Skipping invalid perk definition", "perk", key, "error", err)
			continue
		}
		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("no valid perks in %s", path)
	}
	return defs, nil
}
