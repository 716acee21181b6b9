package entity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-service/ddd/domain/vo"
)

func newTestJob(t *testing.T) *ConversionJobEntity {
	t.Helper()
	req, err := vo.NewConversionRequest("in.mp4", "out.mp3", "mp3", "medium", nil)
	require.NoError(t, err)
	return NewConversionJob("user-1", req)
}

func TestNewConversionJob(t *testing.T) {
	job := newTestJob(t)
	assert.NotEmpty(t, job.JobID())
	assert.Equal(t, "user-1", job.UserID())
	assert.Equal(t, vo.StatusPending, job.Status())
	assert.Zero(t, job.Progress())
	assert.False(t, job.CancelRequested())
}

func TestLifecycleTransitions(t *testing.T) {
	job := newTestJob(t)
	assert.True(t, job.BeginProbing())
	assert.Equal(t, vo.StatusProbing, job.Status())
	assert.True(t, job.BeginRunning())
	assert.Equal(t, vo.StatusRunning, job.Status())

	// Clip jobs go straight from pending to running.
	clipJob := newTestJob(t)
	assert.True(t, clipJob.BeginRunning())
	assert.Equal(t, vo.StatusRunning, clipJob.Status())
}

func TestAdvanceProgressMonotonic(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()

	assert.True(t, job.AdvanceProgress(0.1))
	assert.True(t, job.AdvanceProgress(0.5))

	// Equal and lower values are swallowed.
	assert.False(t, job.AdvanceProgress(0.5))
	assert.False(t, job.AdvanceProgress(0.3))
	assert.InDelta(t, 0.5, job.Progress(), 1e-9)

	assert.True(t, job.AdvanceProgress(0.9))
	assert.InDelta(t, 0.9, job.Progress(), 1e-9)
}

func TestAdvanceProgressClamps(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()

	// Overshoot clamps to 1.0 and still emits once.
	assert.True(t, job.AdvanceProgress(1.7))
	assert.InDelta(t, 1.0, job.Progress(), 1e-9)
	assert.False(t, job.AdvanceProgress(2.0))

	job2 := newTestJob(t)
	job2.BeginRunning()
	assert.False(t, job2.AdvanceProgress(-0.5))
	assert.Zero(t, job2.Progress())
}

func TestAdvanceProgressAfterTerminal(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()
	job.Finish(vo.StatusFailed, "boom")
	assert.False(t, job.AdvanceProgress(0.8))
}

func TestFinishFirstCallerWins(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()

	assert.True(t, job.Finish(vo.StatusCancelled, ""))
	// The losing completion attempt is discarded entirely.
	assert.False(t, job.Finish(vo.StatusCompleted, ""))
	assert.Equal(t, vo.StatusCancelled, job.Status())
}

func TestFinishCompletedForcesProgress(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()
	job.AdvanceProgress(0.42)

	assert.True(t, job.Finish(vo.StatusCompleted, ""))
	assert.InDelta(t, 1.0, job.Progress(), 1e-9)
	assert.Empty(t, job.Diagnostic())
}

func TestFinishRejectsNonTerminal(t *testing.T) {
	job := newTestJob(t)
	assert.False(t, job.Finish(vo.StatusRunning, ""))
	assert.Equal(t, vo.StatusPending, job.Status())
}

func TestRequestCancel(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()

	assert.True(t, job.RequestCancel())
	assert.True(t, job.CancelRequested())
	assert.Equal(t, vo.StatusCancelling, job.Status())

	// Repeat cancel on a non-terminal job is still accepted.
	assert.True(t, job.RequestCancel())

	job.Finish(vo.StatusCancelled, "")
	assert.False(t, job.RequestCancel())
}

func TestRequestCancelWhileQueued(t *testing.T) {
	job := newTestJob(t)
	assert.True(t, job.RequestCancel())
	// A queued job keeps its pending status; only the flag is recorded.
	assert.Equal(t, vo.StatusPending, job.Status())
	assert.True(t, job.CancelRequested())
}

func TestFinishSessionEngineResult(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()
	job.AdvanceProgress(0.3)

	assert.Equal(t, vo.StatusCompleted, job.FinishSession(true, ""))
	assert.InDelta(t, 1.0, job.Progress(), 1e-9)

	failed := newTestJob(t)
	failed.BeginRunning()
	assert.Equal(t, vo.StatusFailed, failed.FinishSession(false, "decode error"))
	assert.Equal(t, "decode error", failed.Diagnostic())
}

func TestFinishSessionCancelWinsOverCleanExit(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()
	job.RequestCancel()

	// The engine exiting cleanly after the cancel flag is recorded must not
	// produce a completed status.
	assert.Equal(t, vo.StatusCancelled, job.FinishSession(true, ""))
	assert.Equal(t, vo.StatusCancelled, job.Status())
	assert.Empty(t, job.Diagnostic())
}

func TestFinishSessionRespectsPriorTerminal(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()
	require.True(t, job.Finish(vo.StatusFailed, "boom"))

	// A terminal state already won; the session resolution reports it unchanged.
	assert.Equal(t, vo.StatusFailed, job.FinishSession(true, ""))
	assert.Equal(t, "boom", job.Diagnostic())
}

func TestConcurrentFinishExactlyOneWinner(t *testing.T) {
	job := newTestJob(t)
	job.BeginRunning()

	var wg sync.WaitGroup
	results := make([]bool, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = job.Finish(vo.StatusCompleted, "")
	}()
	go func() {
		defer wg.Done()
		results[1] = job.Finish(vo.StatusCancelled, "")
	}()
	wg.Wait()

	assert.NotEqual(t, results[0], results[1], "exactly one terminal transition must win")
	assert.True(t, job.IsTerminal())
}
