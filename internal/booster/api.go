// Package booster bridges perk assignments to the external booster
// service. The ledger tracks what this process has registered; the API
// client speaks to the remote side. All remote failures are non-fatal to
// gameplay.
package booster

import "context"

// API is the external booster service surface the ledger drives.
type API interface {
	// Register creates or replaces a booster registration.
	Register(ctx context.Context, userID, boosterID, boostType string, multiplier float64) error

	// Exists reports whether a registration is present remotely.
	Exists(ctx context.Context, userID, boosterID string) (bool, error)

	// Deregister removes a registration. Removing an absent id is not an
	// error.
	Deregister(ctx context.Context, userID, boosterID string) error
}

// NoopAPI satisfies API without a remote service. Used when no booster
// service is configured; the ledger still tracks multipliers locally.
type NoopAPI struct{}

func (NoopAPI) Register(context.Context, string, string, string, float64) error { return nil }
func (NoopAPI) Exists(context.Context, string, string) (bool, error)           { return false, nil }
func (NoopAPI) Deregister(context.Context, string, string) error               { return nil }
