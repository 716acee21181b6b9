package vo

// JobStatus is the conversion job lifecycle state.
type JobStatus string

const (
	// StatusPending the job is accepted and queued, no work started.
	StatusPending JobStatus = "pending"
	// StatusProbing the duration resolver is inspecting the source.
	StatusProbing JobStatus = "probing"
	// StatusRunning the engine process is executing the plan.
	StatusRunning JobStatus = "running"
	// StatusCancelling a cancel request was issued; waiting for the engine to exit.
	StatusCancelling JobStatus = "cancelling"
	// StatusCompleted the engine reported success.
	StatusCompleted JobStatus = "completed"
	// StatusFailed the engine reported a non-success status while not cancelled.
	StatusFailed JobStatus = "failed"
	// StatusCancelled the job was cancelled by the caller.
	StatusCancelled JobStatus = "cancelled"
)

// IsValid checks the status is a known lifecycle state.
func (s JobStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProbing, StatusRunning, StatusCancelling,
		StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is final. Terminal statuses never
// transition again; the session is not reusable once one is reached.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo encodes the session state machine.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusProbing || target == StatusRunning || target == StatusFailed || target == StatusCancelled
	case StatusProbing:
		return target == StatusRunning || target == StatusFailed || target == StatusCancelled
	case StatusRunning:
		return target == StatusCancelling || target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	case StatusCancelling:
		return target == StatusCancelled
	default:
		return false
	}
}
