package convertor

import (
	"time"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/vo"
	"convert-service/ddd/infrastructure/database/po"
)

// ToConversionJobPO maps a domain entity into its persisted form.
func ToConversionJobPO(job *entity.ConversionJobEntity) *po.ConversionJob {
	if job == nil {
		return nil
	}
	req := job.Request()

	p := &po.ConversionJob{
		JobUUID:      job.JobID(),
		UserUUID:     job.UserID(),
		InputPath:    req.InputPath,
		OutputPath:   req.OutputPath,
		TargetFormat: string(req.Format),
		QualityTier:  string(req.Tier),
		Status:       job.Status().String(),
		Progress:     job.Progress(),
		Diagnostic:   job.Diagnostic(),
		OutputKey:    job.OutputKey(),
	}
	if req.Clip != nil {
		start := req.Clip.Start.Milliseconds()
		end := req.Clip.End.Milliseconds()
		p.ClipStartMs = &start
		p.ClipEndMs = &end
	}
	return p
}

// ToConversionJobEntity rehydrates a domain entity from its persisted form.
func ToConversionJobEntity(p *po.ConversionJob) *entity.ConversionJobEntity {
	if p == nil {
		return nil
	}

	var clip *vo.ClipWindow
	if p.ClipStartMs != nil && p.ClipEndMs != nil {
		clip = &vo.ClipWindow{
			Start: time.Duration(*p.ClipStartMs) * time.Millisecond,
			End:   time.Duration(*p.ClipEndMs) * time.Millisecond,
		}
	}

	format, _ := vo.ParseTargetFormat(p.TargetFormat)
	req := &vo.ConversionRequest{
		InputPath:  p.InputPath,
		OutputPath: p.OutputPath,
		Format:     format,
		Tier:       vo.ParseQualityTier(p.QualityTier),
		Clip:       clip,
	}

	return entity.RehydrateConversionJob(
		p.JobUUID,
		p.UserUUID,
		req,
		vo.JobStatus(p.Status),
		p.Progress,
		p.Diagnostic,
		p.OutputKey,
		p.CreatedAt,
		p.UpdatedAt,
	)
}
