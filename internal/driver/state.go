package driver

import "fmt"

// State is the execution state of one build target, managed atomically by
// its driver.
type State int32

const (
	// StatePending is the initial state of every expanded target.
	StatePending State = iota
	// StateDepsInstalled: build-time tooling is present.
	StateDepsInstalled
	// StateBuilt: the builder produced exactly one artifact.
	StateBuilt
	// StateIsolated: the working-tree source is out of resolution scope.
	StateIsolated
	// StateInstalled: the artifact installed from local files only.
	StateInstalled
	// StateOptionalDepsInstalled: optional runtime packages are present.
	StateOptionalDepsInstalled
	// StateTested: the verification suite passed within its timeout.
	StateTested
	// StatePublished: the publish gate staged the artifact. Terminal.
	StatePublished
	// StateFailed: some step failed; the rest of the chain was skipped.
	// Terminal.
	StateFailed
)

// String returns the canonical name of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateDepsInstalled:
		return "DepsInstalled"
	case StateBuilt:
		return "Built"
	case StateIsolated:
		return "Isolated"
	case StateInstalled:
		return "Installed"
	case StateOptionalDepsInstalled:
		return "OptionalDepsInstalled"
	case StateTested:
		return "Tested"
	case StatePublished:
		return "Published"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether the state ends a target's life.
func (s State) Terminal() bool {
	return s == StatePublished || s == StateFailed
}
