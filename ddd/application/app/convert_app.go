package app

import (
	"context"
	"errors"
	"sync"

	"convert-service/ddd/application/cqe"
	"convert-service/ddd/application/dto"
	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/repo"
	"convert-service/ddd/domain/service"
	"convert-service/ddd/domain/vo"
	"convert-service/ddd/infrastructure/queue"
	"convert-service/ddd/infrastructure/worker"
	"convert-service/pkg/errno"
	"convert-service/pkg/logger"
)

var (
	singleConvertApp ConvertApp
	onceConvertApp   sync.Once
)

// ProgressCache reads live progress without touching the database.
type ProgressCache interface {
	LoadProgress(ctx context.Context, jobID string) (float64, bool, error)
}

// ConvertApp is the application facade over the conversion domain.
type ConvertApp interface {
	// CreateConversion validates, persists and enqueues a new job.
	CreateConversion(ctx context.Context, req *cqe.CreateConversionReq) (*dto.ConversionJobDto, error)
	// GetConversion returns the stored view of one job.
	GetConversion(ctx context.Context, jobUUID string) (*dto.ConversionJobDto, error)
	// GetConversionProgress returns the live progress, preferring the cache.
	GetConversionProgress(ctx context.Context, jobUUID string) (*dto.ConversionProgressDto, error)
	// CancelConversion requests cancellation of a queued or running job.
	CancelConversion(ctx context.Context, jobUUID string) error
	// ListConversions returns jobs filtered by user and status.
	ListConversions(ctx context.Context, req *cqe.ListConversionsReq) ([]*dto.ConversionJobDto, error)
}

type convertAppImpl struct {
	jobRepo       repo.ConversionJobRepository
	jobQueue      queue.JobQueue
	convertSvc    service.ConvertService
	progressCache ProgressCache
}

// DefaultConvertApp assembles the facade over the shared worker component.
func DefaultConvertApp() ConvertApp {
	onceConvertApp.Do(func() {
		component := worker.DefaultComponent()
		singleConvertApp = NewConvertAppWith(component.JobRepo, component.Queue, component.ConvertSvc, component.ProgressCache)
	})
	return singleConvertApp
}

func NewConvertAppWith(r repo.ConversionJobRepository, q queue.JobQueue, svc service.ConvertService, cache ProgressCache) ConvertApp {
	return &convertAppImpl{
		jobRepo:       r,
		jobQueue:      q,
		convertSvc:    svc,
		progressCache: cache,
	}
}

func (a *convertAppImpl) CreateConversion(ctx context.Context, req *cqe.CreateConversionReq) (*dto.ConversionJobDto, error) {
	request, err := req.ToRequest()
	if err != nil {
		return nil, err
	}

	job := entity.NewConversionJob(req.UserUUID, request)
	if err := a.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}

	if err := a.jobQueue.Enqueue(ctx, job); err != nil {
		logger.Errorf("enqueue failed job_id=%s error=%v", job.JobID(), err)
		job.Finish(vo.StatusFailed, "enqueue failed: "+err.Error())
		_ = a.jobRepo.UpdateJobStatus(ctx, job.JobID(), vo.StatusFailed, job.Diagnostic(), "", job.Progress())
		return nil, errno.ErrQueueFull
	}

	logger.Infof("conversion accepted job_id=%s format=%s clip=%t", job.JobID(), request.Format, request.IsClip())
	return dto.NewConversionJobDto(job), nil
}

func (a *convertAppImpl) GetConversion(ctx context.Context, jobUUID string) (*dto.ConversionJobDto, error) {
	job, err := a.getJob(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewConversionJobDto(job), nil
}

func (a *convertAppImpl) GetConversionProgress(ctx context.Context, jobUUID string) (*dto.ConversionProgressDto, error) {
	job, err := a.getJob(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	d := dto.NewConversionProgressDto(job)

	// Prefer the cache for non-terminal jobs; the database lags behind it.
	if a.progressCache != nil && !job.IsTerminal() {
		if p, ok, err := a.progressCache.LoadProgress(ctx, jobUUID); err == nil && ok && p > d.Progress {
			d.Progress = p
		}
	}
	return d, nil
}

func (a *convertAppImpl) CancelConversion(ctx context.Context, jobUUID string) error {
	if jobUUID == "" {
		return errno.ErrJobNotFound
	}

	// A live session owns the cancel; the controller handles signal and grace.
	err := a.convertSvc.Cancel(jobUUID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errno.ErrJobNotFound) {
		return err
	}

	// No live session: the job is either still queued or already terminal.
	job, err := a.getJob(ctx, jobUUID)
	if err != nil {
		return err
	}
	if !job.RequestCancel() {
		return errno.ErrJobNotCancellable
	}
	job.Finish(vo.StatusCancelled, "")
	return a.jobRepo.UpdateJobStatus(ctx, jobUUID, vo.StatusCancelled, "", job.OutputKey(), job.Progress())
}

func (a *convertAppImpl) ListConversions(ctx context.Context, req *cqe.ListConversionsReq) ([]*dto.ConversionJobDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	statuses := []vo.JobStatus{
		vo.StatusPending, vo.StatusProbing, vo.StatusRunning, vo.StatusCancelling,
		vo.StatusCompleted, vo.StatusFailed, vo.StatusCancelled,
	}
	if req.Status != "" {
		statuses = []vo.JobStatus{vo.JobStatus(req.Status)}
	}

	dtos := make([]*dto.ConversionJobDto, 0, req.Limit)
	for _, st := range statuses {
		jobs, err := a.jobRepo.ListJobsByStatus(ctx, st, req.Limit)
		if err != nil {
			continue
		}
		for _, job := range jobs {
			if job == nil {
				continue
			}
			if req.UserUUID != "" && job.UserID() != req.UserUUID {
				continue
			}
			dtos = append(dtos, dto.NewConversionJobDto(job))
			if len(dtos) >= req.Limit {
				return dtos, nil
			}
		}
	}
	return dtos, nil
}

func (a *convertAppImpl) getJob(ctx context.Context, jobUUID string) (*entity.ConversionJobEntity, error) {
	if jobUUID == "" {
		return nil, errno.ErrJobNotFound
	}
	job, err := a.jobRepo.GetJob(ctx, jobUUID)
	if err != nil {
		if errors.Is(err, errno.ErrJobNotFound) {
			return nil, errno.ErrJobNotFound
		}
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return nil, errno.ErrJobNotFound
	}
	return job, nil
}
