package reflection

import (
	"time"

	"daybook-hq/daybook/pkg/store"
)

// Status classifies a coordinator run's terminal state.
type Status string

const (
	// StatusCached means a reflection for the week already existed, either
	// before the run started or because a concurrent run won the insert race.
	StatusCached Status = "cached"

	// StatusExecuted means this run made the generation call and persisted a
	// fresh reflection.
	StatusExecuted Status = "executed"

	// StatusDenied means the coordinator refused to run; Reason says why.
	StatusDenied Status = "denied"

	// StatusFailed means the run was attempted but did not complete; Reason
	// distinguishes upstream from storage failures.
	StatusFailed Status = "failed"
)

// Reason qualifies denied and failed outcomes.
type Reason string

const (
	ReasonCooldown Reason = "cooldown"
	ReasonBudget   Reason = "budget"
	ReasonNoData   Reason = "no_data"
	ReasonUpstream Reason = "upstream"
	ReasonStorage  Reason = "storage"
)

// Outcome is the result of one coordinator run. Every terminal state is
// surfaced explicitly; the coordinator never retries on its own.
type Outcome struct {
	Status Status

	// Reason is set for denied and failed outcomes.
	Reason Reason

	// RetryAfter is set on cooldown denials: how long until the cooldown
	// clears.
	RetryAfter time.Duration

	// Reflection is set on cached and executed outcomes.
	Reflection *store.Reflection

	// Err carries the underlying error for failed outcomes.
	Err error
}
