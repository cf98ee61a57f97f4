package pipeline

// State represents the state of an event pipeline.
type State uint8

const (
	// StateIdle indicates that the pipeline holds no subscriptions, either
	// because it hasn't been started or because the effective watch set is
	// empty.
	StateIdle State = iota
	// StateActive indicates that subscriptions are live and notifications
	// are being consumed.
	StateActive
	// StateReloading indicates that the pipeline is tearing down and
	// rebuilding its subscriptions after a rule change.
	StateReloading
	// StateFaulted indicates that the notification channel failed and could
	// not be reopened. Recovery requires an explicit restart.
	StateFaulted
)

// String provides a human-readable representation of a pipeline state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateReloading:
		return "reloading"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
