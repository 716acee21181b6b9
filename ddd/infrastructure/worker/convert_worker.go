package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/gateway"
	"convert-service/ddd/domain/port"
	"convert-service/ddd/domain/repo"
	"convert-service/ddd/domain/service"
	"convert-service/ddd/domain/vo"
	"convert-service/ddd/infrastructure/queue"
	"convert-service/ddd/infrastructure/storage"
	"convert-service/pkg/config"
	"convert-service/pkg/logger"
)

// ConvertWorker pulls jobs from the queue and drives them through the
// conversion pipeline: stage input, execute, upload artifact, report outcome.
type ConvertWorker interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetStats() WorkerStats
}

// WorkerStats is a snapshot of worker activity.
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CancelledJobs    uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

type convertWorkerImpl struct {
	id          string
	jobQueue    queue.JobQueue
	convertSvc  service.ConvertService
	jobRepo     repo.ConversionJobRepository
	storage     gateway.StorageGateway
	reporter    gateway.OutcomeReporter
	sinks       []port.ProgressSink
	cfg         *config.Config
	workerCount int

	running bool
	cancel  context.CancelFunc
	stats   WorkerStats
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// NewConvertWorker creates a worker pool over the shared job queue.
func NewConvertWorker(
	id string,
	jobQueue queue.JobQueue,
	convertSvc service.ConvertService,
	jobRepo repo.ConversionJobRepository,
	storageGateway gateway.StorageGateway,
	reporter gateway.OutcomeReporter,
	sinks []port.ProgressSink,
	cfg *config.Config,
	workerCount int,
) ConvertWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &convertWorkerImpl{
		id:          id,
		jobQueue:    jobQueue,
		convertSvc:  convertSvc,
		jobRepo:     jobRepo,
		storage:     storageGateway,
		reporter:    reporter,
		sinks:       sinks,
		cfg:         cfg,
		workerCount: workerCount,
		stats:       WorkerStats{StartTime: time.Now()},
	}
}

func (w *convertWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("convert worker starting id=%s goroutines=%d", w.id, w.workerCount)
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}
	return nil
}

func (w *convertWorkerImpl) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.running = false
	logger.Infof("convert worker stopped id=%s", w.id)
	return nil
}

func (w *convertWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *convertWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *convertWorkerImpl) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.jobQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				if w.jobQueue.IsClosed() {
					return
				}
				logger.Warnf("worker %s-%d dequeue failed error=%s", w.id, workerID, err.Error())
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				continue
			}
			w.processJob(ctx, job, workerID)
		}
	}
}

func (w *convertWorkerImpl) processJob(ctx context.Context, job *entity.ConversionJobEntity, workerID int) {
	logger.Infof("worker %s-%d processing job_id=%s", w.id, workerID, job.JobID())

	if job.IsTerminal() {
		logger.Infof("worker %s-%d skip terminal job_id=%s status=%s", w.id, workerID, job.JobID(), job.Status())
		return
	}

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})
	defer w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning--
		stats.ProcessedJobs++
	})

	outcome := w.runPipeline(ctx, job)

	w.updateStats(func(stats *WorkerStats) {
		switch {
		case outcome.Succeeded:
			stats.SuccessfulJobs++
		case job.Status() == vo.StatusCancelled:
			stats.CancelledJobs++
		default:
			stats.FailedJobs++
		}
	})

	w.persistTerminalState(ctx, job)
	w.releaseProgressState(job.JobID())

	if w.reporter != nil {
		if err := w.reporter.ReportOutcome(ctx, job.JobID(), outcome, job.OutputKey()); err != nil {
			logger.Warnf("worker %s-%d outcome report failed job_id=%s error=%s", w.id, workerID, job.JobID(), err.Error())
		}
	}
}

// runPipeline stages the source object, executes the conversion, and uploads
// the artifact. The returned outcome is always terminal.
func (w *convertWorkerImpl) runPipeline(ctx context.Context, job *entity.ConversionJobEntity) vo.Outcome {
	req := job.Request()
	tempDir := os.TempDir()
	timeout := time.Hour
	if w.cfg != nil {
		if strings.TrimSpace(w.cfg.Convert.FFmpeg.TempDir) != "" {
			tempDir = w.cfg.Convert.FFmpeg.TempDir
		}
		if w.cfg.Convert.FFmpeg.Timeout > 0 {
			timeout = w.cfg.Convert.FFmpeg.Timeout
		}
	}

	localInput := filepath.Join(tempDir, "inputs", fmt.Sprintf("input_%s_%s", job.JobID(), filepath.Base(req.InputPath)))
	localOutput := filepath.Join(tempDir, "outputs", job.JobID(), filepath.Base(req.OutputPath))
	if err := os.MkdirAll(filepath.Dir(localOutput), 0o755); err != nil {
		diag := fmt.Sprintf("create output dir: %v", err)
		job.Finish(vo.StatusFailed, diag)
		return vo.Outcome{Succeeded: false, Diagnostic: diag}
	}

	if w.storage != nil {
		if err := w.storage.DownloadFile(ctx, req.InputPath, localInput); err != nil {
			diag := fmt.Sprintf("download input: %v", err)
			job.Finish(vo.StatusFailed, diag)
			return vo.Outcome{Succeeded: false, Diagnostic: diag}
		}
		defer func() { _ = os.Remove(localInput) }()
	} else {
		localInput = req.InputPath
		localOutput = req.OutputPath
	}

	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	onProgress := w.progressFunc(job)
	outcome, err := w.convertSvc.ExecuteConversionAt(jobCtx, job, localInput, localOutput, onProgress)
	if err != nil {
		// Planning rejection: the job never reached the engine.
		job.Finish(vo.StatusFailed, err.Error())
		return vo.Outcome{Succeeded: false, Diagnostic: err.Error()}
	}
	if !outcome.Succeeded {
		if w.storage != nil {
			_ = os.Remove(localOutput)
		}
		return outcome
	}

	if w.storage != nil {
		objectKey := strings.TrimPrefix(req.OutputPath, "/")
		contentType := storage.ContentTypeFor(objectKey)
		uploadedKey, err := w.storage.UploadArtifact(ctx, localOutput, objectKey, contentType)
		_ = os.Remove(localOutput)
		if err != nil {
			// The encode itself succeeded; surface the delivery failure.
			diag := fmt.Sprintf("upload artifact: %v", err)
			logger.Errorf("artifact upload failed job_id=%s error=%s", job.JobID(), err.Error())
			return vo.Outcome{Succeeded: false, Diagnostic: diag}
		}
		job.SetOutputKey(uploadedKey)
	} else {
		job.SetOutputKey(req.OutputPath)
	}

	return outcome
}

// progressFunc fans each emission out to the configured sinks; sink failures
// are logged and skipped so they never stall the session.
func (w *convertWorkerImpl) progressFunc(job *entity.ConversionJobEntity) port.ProgressFunc {
	return func(p float64) {
		for _, sink := range w.sinks {
			if err := sink.SaveProgress(context.Background(), job.JobID(), p); err != nil {
				logger.Warnf("progress write failed job_id=%s error=%s", job.JobID(), err.Error())
			}
		}
	}
}

// progressForgetter is implemented by sinks that keep per-job state which must
// be released once the job is terminal.
type progressForgetter interface {
	Forget(jobID string)
}

// releaseProgressState tells every stateful sink the job is finished.
func (w *convertWorkerImpl) releaseProgressState(jobID string) {
	for _, sink := range w.sinks {
		if f, ok := sink.(progressForgetter); ok {
			f.Forget(jobID)
		}
	}
}

func (w *convertWorkerImpl) persistTerminalState(ctx context.Context, job *entity.ConversionJobEntity) {
	if w.jobRepo == nil {
		return
	}
	err := w.jobRepo.UpdateJobStatus(ctx, job.JobID(), job.Status(), job.Diagnostic(), job.OutputKey(), job.Progress())
	if err != nil {
		logger.Errorf("terminal state write failed job_id=%s status=%s error=%s", job.JobID(), job.Status(), err.Error())
	}
}

func (w *convertWorkerImpl) updateStats(updateFunc func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	updateFunc(&w.stats)
}
