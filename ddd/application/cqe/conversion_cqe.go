package cqe

import (
	"time"

	"convert-service/ddd/domain/vo"
	"convert-service/pkg/errno"
)

// CreateConversionReq is the submit-job request body.
type CreateConversionReq struct {
	UserUUID    string `json:"user_uuid"`
	InputPath   string `json:"input_path" binding:"required"`
	OutputPath  string `json:"output_path" binding:"required"`
	Format      string `json:"format" binding:"required"`
	QualityTier string `json:"quality_tier"`
	// Optional extraction window, both bounds in milliseconds.
	ClipStartMs *int64 `json:"clip_start_ms,omitempty"`
	ClipEndMs   *int64 `json:"clip_end_ms,omitempty"`
}

// ToRequest validates the payload and builds the domain request.
func (r *CreateConversionReq) ToRequest() (*vo.ConversionRequest, error) {
	var clip *vo.ClipWindow
	if r.ClipStartMs != nil || r.ClipEndMs != nil {
		if r.ClipStartMs == nil || r.ClipEndMs == nil {
			return nil, errno.ErrInvalidClipWindow
		}
		clip = &vo.ClipWindow{
			Start: time.Duration(*r.ClipStartMs) * time.Millisecond,
			End:   time.Duration(*r.ClipEndMs) * time.Millisecond,
		}
	}
	return vo.NewConversionRequest(r.InputPath, r.OutputPath, r.Format, r.QualityTier, clip)
}

// QueryConversionReq addresses one job.
type QueryConversionReq struct {
	JobUUID string `uri:"job_uuid" binding:"required"`
}

func (r *QueryConversionReq) Validate() error {
	if r.JobUUID == "" {
		return errno.ErrJobNotFound
	}
	return nil
}

// ListConversionsReq filters the job list.
type ListConversionsReq struct {
	UserUUID string `form:"user_uuid"`
	Status   string `form:"status"`
	Limit    int    `form:"limit"`
}

func (r *ListConversionsReq) Validate() error {
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Status != "" && !vo.JobStatus(r.Status).IsValid() {
		return errno.ErrInvalidParam
	}
	return nil
}
