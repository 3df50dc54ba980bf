package repository

import (
	"context"

	"github.com/okimc/toolperks/internal/domain"
)

// PerkRow is one persisted perk assignment row.
type PerkRow struct {
	UserID   string
	ToolType string
	PerkKey  string
	Level    int
}

// Perk defines the interface for perk assignment persistence
type Perk interface {
	// LoadAll returns every assignment row for a user keyed by tool type.
	LoadAll(ctx context.Context, userID string) (map[string]PerkRow, error)

	// SaveAll replaces all of a user's perk rows with the given
	// assignments in one transaction.
	SaveAll(ctx context.Context, userID string, perks []*domain.PerkAssignment) error

	// Save upserts a single assignment row.
	Save(ctx context.Context, userID string, perk *domain.PerkAssignment) error

	Delete(ctx context.Context, userID, toolType string) error
	DeleteAll(ctx context.Context, userID string) error
}
