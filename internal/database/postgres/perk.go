package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okimc/toolperks/internal/database"
	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/repository"
)

// PerkRepository implements the perk assignment repository for PostgreSQL
type PerkRepository struct {
	db *pgxpool.Pool
}

// NewPerkRepository creates a new PerkRepository
func NewPerkRepository(db *pgxpool.Pool) *PerkRepository {
	return &PerkRepository{db: db}
}

// LoadAll returns every perk row for a user keyed by tool type.
func (r *PerkRepository) LoadAll(ctx context.Context, userID string) (map[string]repository.PerkRow, error) {
	query := `
		SELECT user_id, tool_type, perk_key, level
		FROM user_perks
		WHERE user_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load perks for user %s: %w", userID, err)
	}
	defer rows.Close()

	perks := make(map[string]repository.PerkRow)
	for rows.Next() {
		var row repository.PerkRow
		if err := rows.Scan(&row.UserID, &row.ToolType, &row.PerkKey, &row.Level); err != nil {
			return nil, fmt.Errorf("failed to scan perk row for user %s: %w", userID, err)
		}
		perks[row.ToolType] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read perk rows for user %s: %w", userID, err)
	}
	return perks, nil
}

// SaveAll replaces all of a user's perk rows in one transaction.
func (r *PerkRepository) SaveAll(ctx context.Context, userID string, perks []*domain.PerkAssignment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM user_perks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear perks for user %s: %w", userID, err)
	}

	query := `
		INSERT INTO user_perks (user_id, tool_type, perk_key, level)
		VALUES ($1, $2, $3, $4)
	`
	for _, perk := range perks {
		if _, err := tx.Exec(ctx, query, userID, perk.ToolType, perk.PerkKey, perk.Level); err != nil {
			return fmt.Errorf("failed to insert perk %s for user %s: %w", perk.PerkKey, userID, err)
		}
	}

	return tx.Commit(ctx)
}

// Save upserts a single perk row.
func (r *PerkRepository) Save(ctx context.Context, userID string, perk *domain.PerkAssignment) error {
	query := `
		INSERT INTO user_perks (user_id, tool_type, perk_key, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, tool_type) DO UPDATE
		SET perk_key = EXCLUDED.perk_key, level = EXCLUDED.level
	`
	if _, err := r.db.Exec(ctx, query, userID, perk.ToolType, perk.PerkKey, perk.Level); err != nil {
		return fmt.Errorf("failed to save perk %s for user %s: %w", perk.PerkKey, userID, err)
	}
	return nil
}

// Delete removes the perk row for one tool type.
func (r *PerkRepository) Delete(ctx context.Context, userID, toolType string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_perks WHERE user_id = $1 AND tool_type = $2`, userID, toolType); err != nil {
		return fmt.Errorf("failed to delete perk for user %s tool %s: %w", userID, toolType, err)
	}
	return nil
}

// DeleteAll removes every perk row for a user.
func (r *PerkRepository) DeleteAll(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_perks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete perks for user %s: %w", userID, err)
	}
	return nil
}
