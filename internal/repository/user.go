package repository

import (
	"context"
	"time"
)

// BaseRecord is a user's persisted base row, independent of perk rows.
type BaseRecord struct {
	UserID            string
	RollBalance       int
	PityCount         int
	AnimationsEnabled bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// User defines the interface for user base-record persistence
type User interface {
	// LoadOrCreate fetches the base record, inserting a default row for
	// first-time users.
	LoadOrCreate(ctx context.Context, userID string, defaultAnimations bool) (*BaseRecord, error)
	Load(ctx context.Context, userID string) (*BaseRecord, error)
	Save(ctx context.Context, rec *BaseRecord) error
	Delete(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID string) (bool, error)

	// Narrow fast-path mutators for single-field updates
	UpdateRollBalance(ctx context.Context, userID string, balance int) error
	UpdatePityCount(ctx context.Context, userID string, pityCount int) error
	UpdateAnimationsEnabled(ctx context.Context, userID string, enabled bool) error
}
