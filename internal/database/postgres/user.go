package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okimc/toolperks/internal/repository"
)

// UserRepository implements the user base-record repository for PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// LoadOrCreate fetches a user's base record, inserting a default row for
// first-time users.
func (r *UserRepository) LoadOrCreate(ctx context.Context, userID string, defaultAnimations bool) (*repository.BaseRecord, error) {
	rec, err := r.Load(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	query := `
		INSERT INTO perk_users (user_id, roll_balance, pity_count, animations_enabled)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID, defaultAnimations); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
	}

	return r.Load(ctx, userID)
}

// Load fetches a user's base record. Returns pgx.ErrNoRows when absent.
func (r *UserRepository) Load(ctx context.Context, userID string) (*repository.BaseRecord, error) {
	query := `
		SELECT user_id, roll_balance, pity_count, animations_enabled, created_at, updated_at
		FROM perk_users
		WHERE user_id = $1
	`
	rec := &repository.BaseRecord{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.RollBalance,
		&rec.PityCount,
		&rec.AnimationsEnabled,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return rec, nil
}

// Save upserts a user's base record.
func (r *UserRepository) Save(ctx context.Context, rec *repository.BaseRecord) error {
	query := `
		INSERT INTO perk_users (user_id, roll_balance, pity_count, animations_enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET roll_balance = EXCLUDED.roll_balance,
		    pity_count = EXCLUDED.pity_count,
		    animations_enabled = EXCLUDED.animations_enabled,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, rec.UserID, rec.RollBalance, rec.PityCount, rec.AnimationsEnabled); err != nil {
		return fmt.Errorf("failed to save user %s: %w", rec.UserID, err)
	}
	return nil
}

// Delete removes a user's base record; perk rows cascade.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM perk_users WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

// Exists reports whether the user has a base record.
func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM perk_users WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", userID, err)
	}
	return exists, nil
}

// UpdateRollBalance sets the roll balance without touching other columns.
func (r *UserRepository) UpdateRollBalance(ctx context.Context, userID string, balance int) error {
	return r.updateColumn(ctx, userID, "roll_balance", balance)
}

// UpdatePityCount sets the pity counter without touching other columns.
func (r *UserRepository) UpdatePityCount(ctx context.Context, userID string, pityCount int) error {
	return r.updateColumn(ctx, userID, "pity_count", pityCount)
}

// UpdateAnimationsEnabled sets the animation preference.
func (r *UserRepository) UpdateAnimationsEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.updateColumn(ctx, userID, "animations_enabled", enabled)
}

func (r *UserRepository) updateColumn(ctx context.Context, userID, column string, value any) error {
	// column comes from a fixed call site, never from input
	query := fmt.Sprintf(`UPDATE perk_users SET %s = $1, updated_at = NOW() WHERE user_id = $2`, column)
	tag, err := r.db.Exec(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("failed to update %s for user %s: %w", column, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no such user %s", userID)
	}
	return nil
}
