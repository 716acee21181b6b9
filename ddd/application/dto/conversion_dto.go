package dto

import (
	"time"

	"convert-service/ddd/domain/entity"
)

// ConversionJobDto is the external view of one conversion job.
type ConversionJobDto struct {
	JobUUID      string     `json:"job_uuid"`
	UserUUID     string     `json:"user_uuid,omitempty"`
	InputPath    string     `json:"input_path"`
	OutputPath   string     `json:"output_path"`
	TargetFormat string     `json:"target_format"`
	QualityTier  string     `json:"quality_tier"`
	ClipStartMs  *int64     `json:"clip_start_ms,omitempty"`
	ClipEndMs    *int64     `json:"clip_end_ms,omitempty"`
	Status       string     `json:"status"`
	Progress     float64    `json:"progress"`
	Diagnostic   string     `json:"diagnostic,omitempty"`
	OutputKey    string     `json:"output_key,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ConversionProgressDto is the lightweight polling view.
type ConversionProgressDto struct {
	JobUUID    string  `json:"job_uuid"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Diagnostic string  `json:"diagnostic,omitempty"`
}

// NewConversionJobDto maps an entity to its DTO.
func NewConversionJobDto(job *entity.ConversionJobEntity) *ConversionJobDto {
	if job == nil {
		return nil
	}
	req := job.Request()
	d := &ConversionJobDto{
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
		CreatedAt:    job.CreatedAt(),
		UpdatedAt:    job.UpdatedAt(),
	}
	if req.Clip != nil {
		start := req.Clip.Start.Milliseconds()
		end := req.Clip.End.Milliseconds()
		d.ClipStartMs = &start
		d.ClipEndMs = &end
	}
	return d
}

// NewConversionProgressDto maps an entity to its polling view.
func NewConversionProgressDto(job *entity.ConversionJobEntity) *ConversionProgressDto {
	if job == nil {
		return nil
	}
	return &ConversionProgressDto{
		JobUUID:    job.JobID(),
		Status:     job.Status().String(),
		Progress:   job.Progress(),
		Diagnostic: job.Diagnostic(),
	}
}
