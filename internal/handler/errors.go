package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	ErrMsgMissingQueryParam = "Missing %s query parameter"

	// Roll error messages
	ErrMsgRollFailed        = "Failed to process roll"
	ErrMsgInvalidRollCount  = "Roll count must be between 1 and 100"
	ErrMsgDataNotLoadedHTTP = "User data is not loaded. Connect the session first."
	ErrMsgNoRollsHTTP       = "No rolls available"
	ErrMsgNoPerksHTTP       = "No perks available for that tool"

	// Perk management error messages
	ErrMsgPerkNotFoundHTTP = "Perk not found"
	ErrMsgMaxLevelHTTP     = "Perk is already at max level"
	ErrMsgAssignFailed     = "Failed to assign perk"
	ErrMsgRemoveFailed     = "Failed to remove perk"
	ErrMsgUpgradeFailed    = "Failed to upgrade perk"

	// Roll currency error messages
	ErrMsgAdjustRollsFailed = "Failed to adjust rolls"
	ErrMsgInvalidAmount     = "Amount must be positive"

	// Session error messages
	ErrMsgConnectFailed    = "Failed to load user session"
	ErrMsgDisconnectFailed = "Failed to unload user session"

	// Read surface error messages
	ErrMsgGetStateFailed   = "Failed to get user state"
	ErrMsgGetProfileFailed = "Failed to get user profile"
	ErrMsgUserNotFoundHTTP = "User not found"

	// Catalog error messages
	ErrMsgReloadCatalogFailed = "Failed to reload perk catalog"

	// Generic
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
)

// Success messages for API responses
const (
	MsgPerkRemovedSuccess    = "Perk removed"
	MsgPityResetSuccess      = "Pity counter reset"
	MsgSessionLoadedSuccess  = "Session loaded"
	MsgSessionClosedSuccess  = "Session closed"
	MsgCatalogReloadedFormat = "Perk catalog reloaded (%d perks)"
)
