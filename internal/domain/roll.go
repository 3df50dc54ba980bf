package domain

// RollFailure classifies why a roll did not produce an assignment.
type RollFailure string

const (
	FailureNone             RollFailure = ""
	FailureNoRolls          RollFailure = "no_rolls"
	FailureNoPerksAvailable RollFailure = "no_perks_available"
	FailureDataNotLoaded    RollFailure = "data_not_loaded"
	FailureDatabaseError    RollFailure = "database_error"
)

// RollOutcome is the ephemeral result of one roll. It is returned to the
// caller and never stored.
type RollOutcome struct {
	Success    bool
	Assignment *PerkAssignment
	Previous   *PerkAssignment

	// PityTriggered is true when the guaranteed-category floor fired, i.e.
	// the pity counter had reached the threshold before this roll resolved
	// to the guaranteed category.
	PityTriggered bool

	// PityExhausted is true when the threshold was reached but the tool's
	// pool held no guaranteed-category perk, so selection fell back to the
	// full weighted pool. Kept observable rather than silent.
	PityExhausted bool

	Failure RollFailure
}

// HadPrevious reports whether the roll replaced an existing assignment.
func (o *RollOutcome) HadPrevious() bool { return o.Previous != nil }

// RollFailed builds a failure outcome.
func RollFailed(reason RollFailure) *RollOutcome {
	return &RollOutcome{Failure: reason}
}
