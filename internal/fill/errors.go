package fill

import "errors"

// Sentinel errors for the job-level failure taxonomy. Field-level failures
// travel inside interact.Outcome instead, with the label and attempted value
// attached; raw stack traces never reach the caller.
var (
	ErrDiscoveryEmpty    = errors.New("no interactive fields found")
	ErrSubmitNotFound    = errors.New("submit button not found")
	ErrSubmitUnconfirmed = errors.New("submission not confirmed")
	ErrNavigationTimeout = errors.New("page did not reach ready state")
)

// State is the one-directional job progression. FAILED jobs may be re-queued
// as fresh QUEUED attempts by the external queue layer; the engine itself
// never moves backwards.
type State string

const (
	StateQueued     State = "QUEUED"
	StateInspecting State = "INSPECTING"
	StateFilling    State = "FILLING"
	StateSubmitting State = "SUBMITTING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Policy names the required-field failure behavior. Strict fails the job when
// a required, mapped field's interaction errors out; lenient logs and keeps
// going. Required fields that simply found no data key are warnings under
// both policies.
type Policy string

const (
	PolicyStrict  Policy = "strict"
	PolicyLenient Policy = "lenient"
)
