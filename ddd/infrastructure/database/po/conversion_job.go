package po

import "time"

// ConversionJob is the persisted form of one conversion job.
type ConversionJob struct {
	BaseModel
	JobUUID      string     `gorm:"column:job_uuid;type:varchar(36);uniqueIndex" json:"job_uuid"`
	UserUUID     string     `gorm:"column:user_uuid;type:varchar(36);index" json:"user_uuid"`
	InputPath    string     `gorm:"column:input_path;type:varchar(512)" json:"input_path"`
	OutputPath   string     `gorm:"column:output_path;type:varchar(512)" json:"output_path"`
	TargetFormat string     `gorm:"column:target_format;type:varchar(10)" json:"target_format"`
	QualityTier  string     `gorm:"column:quality_tier;type:varchar(10)" json:"quality_tier"`
	ClipStartMs  *int64     `gorm:"column:clip_start_ms;type:bigint" json:"clip_start_ms,omitempty"`
	ClipEndMs    *int64     `gorm:"column:clip_end_ms;type:bigint" json:"clip_end_ms,omitempty"`
	Status       string     `gorm:"column:status;type:varchar(20);index" json:"status"`
	Progress     float64    `gorm:"column:progress;type:double" json:"progress"`
	Diagnostic   string     `gorm:"column:diagnostic;type:varchar(2048)" json:"diagnostic"`
	OutputKey    string     `gorm:"column:output_key;type:varchar(512)" json:"output_key"`
	StartedAt    *time.Time `gorm:"column:started_at;type:timestamp" json:"started_at,omitempty"`
	CompletedAt  *time.Time `gorm:"column:completed_at;type:timestamp" json:"completed_at,omitempty"`
}

func (ConversionJob) TableName() string {
	return "conversion_jobs"
}
