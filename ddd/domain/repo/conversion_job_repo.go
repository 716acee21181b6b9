package repo

import (
	"context"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/vo"
)

// ConversionJobRepository persists conversion jobs and their lifecycle state.
type ConversionJobRepository interface {
	CreateJob(ctx context.Context, job *entity.ConversionJobEntity) error
	GetJob(ctx context.Context, jobID string) (*entity.ConversionJobEntity, error)
	UpdateJobStatus(ctx context.Context, jobID string, status vo.JobStatus, diagnostic, outputKey string, progress float64) error
	UpdateJobProgress(ctx context.Context, jobID string, progress float64) error
	ListJobsByStatus(ctx context.Context, status vo.JobStatus, limit int) ([]*entity.ConversionJobEntity, error)
}
