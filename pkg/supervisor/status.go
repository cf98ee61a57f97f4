package supervisor

// Status represents the externally visible run state of the watching engine.
// It is always derived from the pipeline's actual state, never from a cached
// desired state, so callers can distinguish a crash from an intentional stop.
type Status uint8

const (
	// StatusStopped indicates that no pipeline is running.
	StatusStopped Status = iota
	// StatusStarting indicates that a pipeline is being brought up.
	StatusStarting
	// StatusRunning indicates that a pipeline is running.
	StatusRunning
	// StatusStopping indicates that a pipeline is being torn down.
	StatusStopping
	// StatusCrashed indicates that the pipeline faulted or terminated
	// unexpectedly. Recovery requires an explicit restart.
	StatusCrashed
)

// String provides a human-readable representation of a status.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}
