package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/plan"
	"convert-service/ddd/domain/port"
	"convert-service/ddd/domain/vo"
	"convert-service/pkg/errno"
)

type fakeProcess struct {
	telemetry  chan time.Duration
	done       chan error
	terminated chan struct{}
	tail       string
	termOnce   sync.Once
}

func newFakeProcess(tail string) *fakeProcess {
	return &fakeProcess{
		telemetry:  make(chan time.Duration),
		done:       make(chan error, 1),
		terminated: make(chan struct{}),
		tail:       tail,
	}
}

func (p *fakeProcess) Telemetry() <-chan time.Duration { return p.telemetry }
func (p *fakeProcess) Done() <-chan error              { return p.done }
func (p *fakeProcess) DiagnosticTail() string          { return p.tail }

func (p *fakeProcess) Terminate() error {
	p.termOnce.Do(func() { close(p.terminated) })
	return nil
}

// feed delivers samples in order, then the terminal error, mimicking a real
// engine where telemetry always precedes exit.
func (p *fakeProcess) feed(samples []time.Duration, terminal error) {
	go func() {
		for _, s := range samples {
			p.telemetry <- s
		}
		close(p.telemetry)
		p.done <- terminal
	}()
}

type fakeEngine struct {
	proc       *fakeProcess
	execErr    error
	metadata   port.MediaMetadata
	probeErr   error
	execCalls  int
	probeCalls int
}

func (e *fakeEngine) Execute(ctx context.Context, encodePlan plan.EncodePlan) (port.EngineProcess, error) {
	e.execCalls++
	if e.execErr != nil {
		return nil, e.execErr
	}
	return e.proc, nil
}

func (e *fakeEngine) Probe(ctx context.Context, inputPath string) (port.MediaMetadata, error) {
	e.probeCalls++
	return e.metadata, e.probeErr
}

func newJob(t *testing.T, format string, clip *vo.ClipWindow) *entity.ConversionJobEntity {
	t.Helper()
	req, err := vo.NewConversionRequest("in.mp4", "out."+format, format, "medium", clip)
	require.NoError(t, err)
	return entity.NewConversionJob("user-1", req)
}

func TestExecuteConversionSuccess(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{
		proc:     proc,
		metadata: port.MediaMetadata{Duration: 4 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{})

	proc.feed([]time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, nil)

	var emitted []float64
	job := newJob(t, "mp3", nil)
	outcome, err := svc.ExecuteConversion(context.Background(), job, func(p float64) {
		emitted = append(emitted, p)
	})

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, vo.StatusCompleted, job.Status())
	assert.Equal(t, 1, engine.probeCalls)

	// Strictly increasing, final emission forced to 1.0.
	require.NotEmpty(t, emitted)
	assert.InDelta(t, 1.0, emitted[len(emitted)-1], 1e-9)
	for i := 1; i < len(emitted); i++ {
		assert.Greater(t, emitted[i], emitted[i-1])
	}
	assert.InDelta(t, 1.0, job.Progress(), 1e-9)
}

func TestExecuteConversionDropsStaleSamples(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{
		proc:     proc,
		metadata: port.MediaMetadata{Duration: 10 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{})

	// The second sample goes backwards; it must not be emitted.
	proc.feed([]time.Duration{5 * time.Second, 4 * time.Second, 6 * time.Second}, nil)

	var emitted []float64
	job := newJob(t, "mp3", nil)
	outcome, err := svc.ExecuteConversion(context.Background(), job, func(p float64) {
		emitted = append(emitted, p)
	})

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, []float64{0.5, 0.6, 1.0}, emitted)
}

func TestExecuteConversionClipSkipsProbe(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{proc: proc}
	svc := NewConvertService(engine, Options{})

	clip := &vo.ClipWindow{Start: 2 * time.Second, End: 6 * time.Second}
	proc.feed([]time.Duration{2 * time.Second}, nil)

	var emitted []float64
	job := newJob(t, "mp4", clip)
	outcome, err := svc.ExecuteConversion(context.Background(), job, func(p float64) {
		emitted = append(emitted, p)
	})

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	// Clip length is the denominator; no probe happens at all.
	assert.Zero(t, engine.probeCalls)
	assert.Equal(t, []float64{0.5, 1.0}, emitted)
}

func TestExecuteConversionProbeFailureDegradesProgress(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{proc: proc, probeErr: errors.New("probe: no such file")}
	svc := NewConvertService(engine, Options{})

	proc.feed([]time.Duration{time.Second, 2 * time.Second}, nil)

	var emitted []float64
	job := newJob(t, "mp3", nil)
	outcome, err := svc.ExecuteConversion(context.Background(), job, func(p float64) {
		emitted = append(emitted, p)
	})

	// Probe failure is non-fatal: the job still completes, with only the
	// forced final emission.
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, []float64{1.0}, emitted)
}

func TestExecuteConversionPlanningFailsFast(t *testing.T) {
	engine := &fakeEngine{}
	svc := NewConvertService(engine, Options{})

	req, err := vo.NewConversionRequest("track.mp3", "out.mp4", "mp4", "medium", nil)
	require.NoError(t, err)
	job := entity.NewConversionJob("user-1", req)

	_, err = svc.ExecuteConversion(context.Background(), job, nil)
	assert.ErrorIs(t, err, errno.ErrUnsupportedConversion)
	// No probe, no spawn.
	assert.Zero(t, engine.probeCalls)
	assert.Zero(t, engine.execCalls)
}

func TestExecuteConversionEngineFailure(t *testing.T) {
	proc := newFakeProcess("Error while decoding stream #0:0")
	engine := &fakeEngine{
		proc:     proc,
		metadata: port.MediaMetadata{Duration: 4 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{})

	proc.feed([]time.Duration{time.Second}, errors.New("exit status 1"))

	job := newJob(t, "mp3", nil)
	outcome, err := svc.ExecuteConversion(context.Background(), job, nil)

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, "Error while decoding stream #0:0", outcome.Diagnostic)
	assert.Equal(t, vo.StatusFailed, job.Status())
	assert.Equal(t, "Error while decoding stream #0:0", job.Diagnostic())
}

func TestExecuteConversionSpawnFailure(t *testing.T) {
	engine := &fakeEngine{
		execErr:  errors.New("executable file not found"),
		metadata: port.MediaMetadata{Duration: 4 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{})

	job := newJob(t, "mp3", nil)
	outcome, err := svc.ExecuteConversion(context.Background(), job, nil)

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Contains(t, outcome.Diagnostic, "engine start failed")
	assert.Equal(t, vo.StatusFailed, job.Status())
}

func TestCancelRunningJob(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{
		proc:     proc,
		metadata: port.MediaMetadata{Duration: 10 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{CancelGracePeriod: time.Second})

	// The engine exits with a signal error only after Terminate is delivered.
	go func() {
		<-proc.terminated
		proc.done <- errors.New("signal: terminated")
	}()

	job := newJob(t, "mp3", nil)
	type result struct {
		outcome vo.Outcome
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		out, err := svc.ExecuteConversion(context.Background(), job, nil)
		resCh <- result{out, err}
	}()

	// The session registers before the engine spawns; retry until visible.
	require.Eventually(t, func() bool {
		return svc.Cancel(job.JobID()) == nil
	}, time.Second, 5*time.Millisecond)

	res := <-resCh
	require.NoError(t, res.err)
	assert.False(t, res.outcome.Succeeded)
	assert.Equal(t, "cancelled by caller", res.outcome.Diagnostic)
	assert.Equal(t, vo.StatusCancelled, job.Status())
}

func TestCancelThenCleanEngineExitStillCancelled(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{
		proc:     proc,
		metadata: port.MediaMetadata{Duration: 10 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{CancelGracePeriod: time.Second})

	// The engine flushes its output and exits with a success status after the
	// terminate signal; the cancel request still pre-empts that status.
	go func() {
		<-proc.terminated
		proc.done <- nil
	}()

	job := newJob(t, "mp3", nil)
	type result struct {
		outcome vo.Outcome
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		out, err := svc.ExecuteConversion(context.Background(), job, nil)
		resCh <- result{out, err}
	}()

	require.Eventually(t, func() bool {
		return svc.Cancel(job.JobID()) == nil
	}, time.Second, 5*time.Millisecond)

	res := <-resCh
	require.NoError(t, res.err)
	assert.False(t, res.outcome.Succeeded)
	assert.Equal(t, "cancelled by caller", res.outcome.Diagnostic)
	assert.Equal(t, vo.StatusCancelled, job.Status())
}

func TestOutcomeNeverDivergesFromTerminalStatus(t *testing.T) {
	// A cancel racing an immediately-succeeding engine must land on exactly one
	// of two consistent pairs: cancelled/not-succeeded or completed/succeeded.
	for i := 0; i < 200; i++ {
		proc := newFakeProcess("")
		engine := &fakeEngine{
			proc:     proc,
			metadata: port.MediaMetadata{Duration: time.Second, DurationKnown: true},
		}
		svc := NewConvertService(engine, Options{CancelGracePeriod: time.Second})
		proc.feed(nil, nil)

		job := newJob(t, "mp3", nil)
		go func() { _ = svc.Cancel(job.JobID()) }()

		outcome, err := svc.ExecuteConversion(context.Background(), job, nil)
		require.NoError(t, err)
		switch job.Status() {
		case vo.StatusCancelled:
			assert.False(t, outcome.Succeeded)
		case vo.StatusCompleted:
			assert.True(t, outcome.Succeeded)
		default:
			t.Fatalf("unexpected terminal status %s", job.Status())
		}
	}
}

func TestCancelUnresponsiveEngineStillCancels(t *testing.T) {
	proc := newFakeProcess("")
	engine := &fakeEngine{
		proc:     proc,
		metadata: port.MediaMetadata{Duration: 10 * time.Second, DurationKnown: true},
	}
	svc := NewConvertService(engine, Options{CancelGracePeriod: 20 * time.Millisecond})

	// The engine ignores the terminate signal entirely.
	job := newJob(t, "mp3", nil)
	resCh := make(chan vo.Outcome, 1)
	go func() {
		out, _ := svc.ExecuteConversion(context.Background(), job, nil)
		resCh <- out
	}()

	require.Eventually(t, func() bool {
		return svc.Cancel(job.JobID()) == nil
	}, time.Second, 5*time.Millisecond)

	select {
	case out := <-resCh:
		assert.False(t, out.Succeeded)
		assert.Equal(t, vo.StatusCancelled, job.Status())
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not resolve within the grace period")
	}
	// Unblock the background reaper.
	proc.done <- errors.New("signal: killed")
}

func TestCancelUnknownJob(t *testing.T) {
	svc := NewConvertService(&fakeEngine{}, Options{})
	err := svc.Cancel("no-such-job")
	assert.ErrorIs(t, err, errno.ErrJobNotFound)
}
