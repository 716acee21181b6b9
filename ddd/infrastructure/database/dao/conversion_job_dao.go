package dao

import (
	"context"

	"gorm.io/gorm"

	"convert-service/ddd/infrastructure/database/po"
	"convert-service/internal/resource"
)

type ConversionJobDAO struct {
	db *gorm.DB
}

func NewConversionJobDAO() *ConversionJobDAO {
	return &ConversionJobDAO{db: resource.DefaultMysqlResource().MainDB()}
}

func NewConversionJobDAOWithDB(db *gorm.DB) *ConversionJobDAO {
	return &ConversionJobDAO{db: db}
}

func (d *ConversionJobDAO) Create(ctx context.Context, job *po.ConversionJob) error {
	return d.db.WithContext(ctx).Model(&po.ConversionJob{}).Create(job).Error
}

func (d *ConversionJobDAO) FindByJobUUID(ctx context.Context, jobUUID string) (*po.ConversionJob, error) {
	var job po.ConversionJob
	if err := d.db.WithContext(ctx).Where("job_uuid = ?", jobUUID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (d *ConversionJobDAO) UpdateProgress(ctx context.Context, jobUUID string, progress float64) error {
	return d.db.WithContext(ctx).Model(&po.ConversionJob{}).
		Where("job_uuid = ?", jobUUID).
		Update("progress", progress).Error
}

func (d *ConversionJobDAO) UpdateStatus(ctx context.Context, jobUUID, status, diagnostic, outputKey string, progress float64) error {
	update := map[string]interface{}{
		"status":     status,
		"diagnostic": diagnostic,
		"progress":   progress,
	}
	if outputKey != "" {
		update["output_key"] = outputKey
	}
	return d.db.WithContext(ctx).Model(&po.ConversionJob{}).
		Where("job_uuid = ?", jobUUID).
		Updates(update).Error
}

func (d *ConversionJobDAO) QueryByStatus(ctx context.Context, status string, limit int) ([]*po.ConversionJob, error) {
	var jobs []*po.ConversionJob
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
