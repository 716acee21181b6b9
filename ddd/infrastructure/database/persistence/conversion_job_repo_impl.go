package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/repo"
	"convert-service/ddd/domain/vo"
	"convert-service/ddd/infrastructure/database/convertor"
	"convert-service/ddd/infrastructure/database/dao"
	"convert-service/pkg/errno"
)

type conversionJobRepoImpl struct {
	dao *dao.ConversionJobDAO
}

func NewConversionJobRepository(d *dao.ConversionJobDAO) repo.ConversionJobRepository {
	if d == nil {
		d = dao.NewConversionJobDAO()
	}
	return &conversionJobRepoImpl{dao: d}
}

func (r *conversionJobRepoImpl) CreateJob(ctx context.Context, job *entity.ConversionJobEntity) error {
	return r.dao.Create(ctx, convertor.ToConversionJobPO(job))
}

func (r *conversionJobRepoImpl) GetJob(ctx context.Context, jobID string) (*entity.ConversionJobEntity, error) {
	p, err := r.dao.FindByJobUUID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrJobNotFound
		}
		return nil, err
	}
	return convertor.ToConversionJobEntity(p), nil
}

func (r *conversionJobRepoImpl) UpdateJobStatus(ctx context.Context, jobID string, status vo.JobStatus, diagnostic, outputKey string, progress float64) error {
	return r.dao.UpdateStatus(ctx, jobID, status.String(), diagnostic, outputKey, progress)
}

func (r *conversionJobRepoImpl) UpdateJobProgress(ctx context.Context, jobID string, progress float64) error {
	return r.dao.UpdateProgress(ctx, jobID, progress)
}

func (r *conversionJobRepoImpl) ListJobsByStatus(ctx context.Context, status vo.JobStatus, limit int) ([]*entity.ConversionJobEntity, error) {
	pos, err := r.dao.QueryByStatus(ctx, status.String(), limit)
	if err != nil {
		return nil, err
	}
	jobs := make([]*entity.ConversionJobEntity, 0, len(pos))
	for _, p := range pos {
		jobs = append(jobs, convertor.ToConversionJobEntity(p))
	}
	return jobs, nil
}
