package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Roll metric names
const (
	MetricNameRollsTotal        = "perk_rolls_total"
	MetricNameRollFailuresTotal = "perk_roll_failures_total"
	MetricNamePityTriggered     = "perk_pity_triggered_total"
	MetricNamePityExhausted     = "perk_pity_exhausted_total"
)

// State cache metric names
const (
	MetricNameStateLoadsTotal = "user_state_loads_total"
	MetricNameStateSavesTotal = "user_state_saves_total"
	MetricNameCachedUsers     = "user_state_cached_users"
)

// Booster metric names
const (
	MetricNameBoostersApplied = "boosters_applied_total"
	MetricNameBoostersRemoved = "boosters_removed_total"
	MetricNameBoosterErrors   = "booster_errors_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

const (
	HelpTextRollsTotal        = "Total number of perk rolls resolved"
	HelpTextRollFailuresTotal = "Total number of perk rolls that failed, by reason"
	HelpTextPityTriggered     = "Total number of rolls where the pity guarantee fired"
	HelpTextPityExhausted     = "Total number of rolls where pity had no eligible target"
)

const (
	HelpTextStateLoadsTotal = "Total number of user state loads, by outcome"
	HelpTextStateSavesTotal = "Total number of user state saves, by outcome"
	HelpTextCachedUsers     = "Current number of user states held in the cache"
)

const (
	HelpTextBoostersApplied = "Total number of boosters registered with the external service"
	HelpTextBoostersRemoved = "Total number of boosters deregistered from the external service"
	HelpTextBoosterErrors   = "Total number of failed external booster operations, by operation"
)

// ============================================================================
// Metric Label Names
// ============================================================================

const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelTool     = "tool"
	LabelCategory = "category"
	LabelReason   = "reason"
	LabelOutcome  = "outcome"
	LabelOp       = "op"
)

// Label values for outcomes
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeError   = "error"
	OutcomeSuccess = "success"
)

// HTTPLatencyBuckets covers the expected latency range of the API
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
