package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/plan"
	"convert-service/ddd/domain/port"
	"convert-service/ddd/domain/vo"
	"convert-service/pkg/errno"
	"convert-service/pkg/logger"
)

// errEngineUnresponsive marks a cancel whose engine never confirmed termination
// within the grace period. The session is classified cancelled regardless.
var errEngineUnresponsive = errors.New("engine did not exit within cancel grace period")

// ConvertService drives one conversion job end to end: it plans the engine
// invocation, resolves the progress denominator, runs the engine session with
// normalized progress reporting and classifies the terminal outcome.
type ConvertService interface {
	// ExecuteConversion runs the job to a terminal outcome. Planning-level
	// rejections (unsupported format or conversion, invalid clip) return an
	// error before any process is spawned; every failure after spawn is
	// represented in the returned outcome instead.
	ExecuteConversion(ctx context.Context, job *entity.ConversionJobEntity, onProgress port.ProgressFunc) (vo.Outcome, error)

	// ExecuteConversionAt runs the job against materialized local paths. Used
	// when the request paths are object keys that a gateway staged to disk.
	ExecuteConversionAt(ctx context.Context, job *entity.ConversionJobEntity, localInput, localOutput string, onProgress port.ProgressFunc) (vo.Outcome, error)

	// Cancel requests best-effort cooperative cancellation of an in-flight job.
	Cancel(jobID string) error
}

// Options tunes session behaviour.
type Options struct {
	// VideoPreset and Threads are forwarded into the encode plan.
	VideoPreset string
	Threads     int
	// CancelGracePeriod bounds the wait for engine termination after a cancel
	// request; zero selects a default.
	CancelGracePeriod time.Duration
}

type convertServiceImpl struct {
	engine      port.EncodeEngine
	opts        Options
	cancelGrace time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	job        *entity.ConversionJobEntity
	cancelOnce sync.Once
	cancelCh   chan struct{}
}

// NewConvertService builds the job controller around an encoding engine.
func NewConvertService(engine port.EncodeEngine, opts Options) ConvertService {
	grace := opts.CancelGracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &convertServiceImpl{
		engine:      engine,
		opts:        opts,
		cancelGrace: grace,
		sessions:    make(map[string]*session),
	}
}

func (s *convertServiceImpl) ExecuteConversion(ctx context.Context, job *entity.ConversionJobEntity, onProgress port.ProgressFunc) (vo.Outcome, error) {
	req := job.Request()
	return s.run(ctx, job, req, onProgress)
}

func (s *convertServiceImpl) ExecuteConversionAt(ctx context.Context, job *entity.ConversionJobEntity, localInput, localOutput string, onProgress port.ProgressFunc) (vo.Outcome, error) {
	req := *job.Request()
	req.InputPath = localInput
	req.OutputPath = localOutput
	return s.run(ctx, job, &req, onProgress)
}

func (s *convertServiceImpl) run(ctx context.Context, job *entity.ConversionJobEntity, req *vo.ConversionRequest, onProgress port.ProgressFunc) (vo.Outcome, error) {
	// Fail fast: both planning rejections happen before any process exists.
	encodePlan, err := plan.Build(req, plan.Options{
		VideoPreset: s.opts.VideoPreset,
		Threads:     s.opts.Threads,
	})
	if err != nil {
		return vo.Outcome{}, err
	}

	denominator := s.resolveDenominator(ctx, job, req)

	sess := &session{job: job, cancelCh: make(chan struct{})}
	s.register(sess)
	defer s.unregister(job.JobID())

	// The caller may have cancelled while the job sat in the queue.
	if job.CancelRequested() {
		job.Finish(vo.StatusCancelled, "")
		return vo.ClassifyOutcome(nil, true, ""), nil
	}

	proc, err := s.engine.Execute(ctx, encodePlan)
	if err != nil {
		diag := "engine start failed: " + err.Error()
		job.Finish(vo.StatusFailed, diag)
		return vo.Outcome{Succeeded: false, Diagnostic: diag}, nil
	}

	job.BeginRunning()
	logger.Infof("conversion running job_id=%s format=%s denominator_ms=%d",
		job.JobID(), req.Format, denominator.Milliseconds())

	terminalErr := s.superviseSession(sess, proc, denominator, onProgress)

	// The terminal CAS inside the entity makes the whole decision: the outcome
	// is derived from whichever status won, never from a separate read of the
	// cancel flag that could race the transition.
	final := job.FinishSession(terminalErr == nil, failureDiagnostic(terminalErr, proc))
	outcome := vo.ClassifyOutcome(terminalErr, final == vo.StatusCancelled, proc.DiagnosticTail())
	if final == vo.StatusCompleted && onProgress != nil {
		// Final emission on success is always forced to 1.0 regardless of the
		// last telemetry sample.
		onProgress(1.0)
	}

	return outcome, nil
}

func failureDiagnostic(terminalErr error, proc port.EngineProcess) string {
	if terminalErr == nil {
		return ""
	}
	if tail := proc.DiagnosticTail(); tail != "" {
		return tail
	}
	return terminalErr.Error()
}

// resolveDenominator obtains the progress denominator: the explicit clip length
// for clip requests, or the probed source duration otherwise. Probe failure is
// non-fatal and only degrades progress reporting to a no-op.
func (s *convertServiceImpl) resolveDenominator(ctx context.Context, job *entity.ConversionJobEntity, req *vo.ConversionRequest) time.Duration {
	if req.IsClip() {
		return req.Clip.Length()
	}

	job.BeginProbing()
	md, err := s.engine.Probe(ctx, req.InputPath)
	if err != nil {
		logger.Warnf("probe failed, continuing without progress job_id=%s error=%s", job.JobID(), err.Error())
		return 0
	}
	if !md.DurationKnown {
		logger.Warnf("probe returned no duration, continuing without progress job_id=%s", job.JobID())
		return 0
	}
	return md.Duration
}

// superviseSession pumps telemetry into normalized progress emissions and waits
// for either the terminal status or a cancel request. It returns the terminal
// process error (nil means the engine reported success).
func (s *convertServiceImpl) superviseSession(sess *session, proc port.EngineProcess, denominator time.Duration, onProgress port.ProgressFunc) error {
	job := sess.job
	telemetry := proc.Telemetry()
	done := proc.Done()

	for {
		select {
		case sample, ok := <-telemetry:
			if !ok {
				telemetry = nil
				continue
			}
			if denominator <= 0 {
				continue
			}
			ratio := float64(sample) / float64(denominator)
			if job.AdvanceProgress(ratio) && onProgress != nil {
				onProgress(job.Progress())
			}

		case err := <-done:
			return err

		case <-sess.cancelCh:
			if err := proc.Terminate(); err != nil {
				logger.Warnf("terminate signal failed job_id=%s error=%s", job.JobID(), err.Error())
			}
			select {
			case err := <-done:
				if err == nil {
					// Cancelled but the engine still exited cleanly; the
					// cancellation flag pre-empts the status either way.
					return nil
				}
				return err
			case <-time.After(s.cancelGrace):
				// Do not block the caller on a non-responsive engine; the
				// handle is still reaped in the background.
				go func() { <-done }()
				return errEngineUnresponsive
			}
		}
	}
}

// Cancel flags the session and signals the engine process. Jobs without a live
// session (already finished, or still queued) are not found here.
func (s *convertServiceImpl) Cancel(jobID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[jobID]
	s.mu.Unlock()
	if !ok {
		return errno.ErrJobNotFound
	}
	if !sess.job.RequestCancel() {
		return errno.ErrJobNotCancellable
	}
	sess.cancelOnce.Do(func() { close(sess.cancelCh) })
	logger.Infof("cancel requested job_id=%s", jobID)
	return nil
}

func (s *convertServiceImpl) register(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.job.JobID()] = sess
}

func (s *convertServiceImpl) unregister(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, jobID)
}
