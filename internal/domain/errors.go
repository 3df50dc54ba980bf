package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Roll errors
	ErrMsgDataNotLoaded     = "user data not loaded"
	ErrMsgInsufficientRolls = "insufficient rolls"
	ErrMsgNoPerksAvailable  = "no perks available for tool"

	// Perk errors
	ErrMsgPerkNotFound = "perk not found"
	ErrMsgMaxLevel     = "perk is already at max level"

	// Database/System errors
	ErrMsgPersistence = "persistence failure"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Expected roll outcomes - reported to callers, never logged as errors
	ErrDataNotLoaded     = errors.New(ErrMsgDataNotLoaded)
	ErrInsufficientRolls = errors.New(ErrMsgInsufficientRolls)
	ErrNoPerksAvailable  = errors.New(ErrMsgNoPerksAvailable)

	// Perk errors
	ErrPerkNotFound = errors.New(ErrMsgPerkNotFound)
	ErrMaxLevel     = errors.New(ErrMsgMaxLevel)

	// Persistence errors - logged at error severity and surfaced
	ErrPersistence = errors.New(ErrMsgPersistence)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
