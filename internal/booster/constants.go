package booster

// boosterIDPrefix namespaces every booster this service registers, so
// cleanup can recognize its own entries on the external side.
const boosterIDPrefix = "toolperks"

// wellKnownBoostTypes are the boost types probed during orphan cleanup.
// A crashed session can leave registrations behind that local tracking
// never saw; probing these ids and deregistering matches is a no-op when
// nothing is orphaned.
var wellKnownBoostTypes = []string{
	"coins",
	"tokens",
	"essence",
	"xp",
	"sell-multiplier",
	"enchants",
}

// API paths
const (
	pathRegister   = "/api/v1/boosters"
	pathBoosterFmt = "/api/v1/boosters/%s/%s" // userID, boosterID
)

// HTTP headers
const (
	headerAPIKey      = "X-API-Key"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Log Messages
const (
	LogMsgBoosterRegistered   = "Booster registered"
	LogMsgBoosterRemoved      = "Booster removed"
	LogMsgBoosterApplyFailed  = "Failed to apply booster"
	LogMsgBoosterRemoveFailed = "Failed to remove booster"
	LogMsgOrphanCleaned       = "Cleaned up orphan booster"
	LogMsgPreCleared          = "Pre-cleared existing booster"
)
