package entity

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"convert-service/ddd/domain/vo"
)

// ConversionJobEntity is the mutable, single-owner session state for one
// conversion. It owns the lifecycle state machine, the cancellation flag and
// the progress-normalization state. Terminal transitions go through a single
// guarded compare-and-set so a cancel request and an engine completion can
// never both win.
type ConversionJobEntity struct {
	mu sync.Mutex

	jobID   string
	userID  string
	request *vo.ConversionRequest

	status          vo.JobStatus
	cancelRequested bool
	progress        float64
	diagnostic      string
	outputKey       string

	createdAt   time.Time
	updatedAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
}

// NewConversionJob creates a pending job for a validated request.
func NewConversionJob(userID string, request *vo.ConversionRequest) *ConversionJobEntity {
	now := time.Now()
	return &ConversionJobEntity{
		jobID:     uuid.New().String(),
		userID:    userID,
		request:   request,
		status:    vo.StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

// RehydrateConversionJob rebuilds an entity from persisted state.
func RehydrateConversionJob(
	jobID, userID string,
	request *vo.ConversionRequest,
	status vo.JobStatus,
	progress float64,
	diagnostic, outputKey string,
	createdAt, updatedAt time.Time,
) *ConversionJobEntity {
	return &ConversionJobEntity{
		jobID:      jobID,
		userID:     userID,
		request:    request,
		status:     status,
		progress:   progress,
		diagnostic: diagnostic,
		outputKey:  outputKey,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (j *ConversionJobEntity) JobID() string                  { return j.jobID }
func (j *ConversionJobEntity) UserID() string                 { return j.userID }
func (j *ConversionJobEntity) Request() *vo.ConversionRequest { return j.request }
func (j *ConversionJobEntity) CreatedAt() time.Time           { return j.createdAt }

func (j *ConversionJobEntity) Status() vo.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *ConversionJobEntity) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

func (j *ConversionJobEntity) Diagnostic() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.diagnostic
}

func (j *ConversionJobEntity) OutputKey() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputKey
}

func (j *ConversionJobEntity) UpdatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.updatedAt
}

// CancelRequested reports whether a cancel request was recorded.
func (j *ConversionJobEntity) CancelRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelRequested
}

// IsTerminal reports whether the job reached a final status.
func (j *ConversionJobEntity) IsTerminal() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status.IsTerminal()
}

// BeginProbing transitions into the duration-resolution phase.
func (j *ConversionJobEntity) BeginProbing() bool {
	return j.transition(vo.StatusProbing)
}

// BeginRunning transitions into the engine-execution phase. Also valid straight
// from pending: clip jobs skip the probing phase entirely.
func (j *ConversionJobEntity) BeginRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.CanTransitionTo(vo.StatusRunning) {
		return false
	}
	now := time.Now()
	j.status = vo.StatusRunning
	j.startedAt = &now
	j.updatedAt = now
	return true
}

// RequestCancel records the cancellation flag and, when the engine is running,
// moves the session into the transient cancelling state. It returns false when
// the job is already terminal.
func (j *ConversionJobEntity) RequestCancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return false
	}
	j.cancelRequested = true
	if j.status == vo.StatusRunning {
		j.status = vo.StatusCancelling
	}
	j.updatedAt = time.Now()
	return true
}

// AdvanceProgress applies the monotonicity guard: the value is clamped to
// [0, 1] and recorded only when strictly greater than the last recorded value.
// Returns whether the caller should emit it.
func (j *ConversionJobEntity) AdvanceProgress(p float64) bool {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() || p <= j.progress {
		return false
	}
	j.progress = p
	j.updatedAt = time.Now()
	return true
}

// Finish attempts the terminal compare-and-set. The first caller wins; any
// later attempt is discarded. On success the progress is forced to 1.0.
func (j *ConversionJobEntity) Finish(status vo.JobStatus, diagnostic string) bool {
	if !status.IsTerminal() {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return false
	}
	now := time.Now()
	j.status = status
	j.diagnostic = diagnostic
	j.completedAt = &now
	j.updatedAt = now
	if status == vo.StatusCompleted {
		j.progress = 1.0
		j.diagnostic = ""
	}
	return true
}

// FinishSession resolves the terminal compare-and-set for an engine result.
// The whole decision happens in one critical section so a concurrent cancel
// request can never split the recorded status from the classification: a
// recorded cancel wins over the engine status, a clean engine exit wins
// completed, anything else fails with the diagnostic. Returns the terminal
// status that won the CAS (the already-recorded one when a prior Finish won).
func (j *ConversionJobEntity) FinishSession(engineSucceeded bool, diagnostic string) vo.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return j.status
	}
	now := time.Now()
	j.completedAt = &now
	j.updatedAt = now
	switch {
	case j.cancelRequested:
		j.status = vo.StatusCancelled
		j.diagnostic = ""
	case engineSucceeded:
		j.status = vo.StatusCompleted
		j.diagnostic = ""
		j.progress = 1.0
	default:
		j.status = vo.StatusFailed
		j.diagnostic = diagnostic
	}
	return j.status
}

// SetOutputKey records the stored artifact location after a successful upload.
func (j *ConversionJobEntity) SetOutputKey(key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outputKey = key
	j.updatedAt = time.Now()
}

func (j *ConversionJobEntity) transition(target vo.JobStatus) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.CanTransitionTo(target) {
		return false
	}
	j.status = target
	j.updatedAt = time.Now()
	return true
}
