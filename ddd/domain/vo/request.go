package vo

import (
	"strings"
	"time"

	"convert-service/pkg/errno"
)

// ClipWindow is an optional half-open extraction range within the source media.
type ClipWindow struct {
	Start time.Duration
	End   time.Duration
}

// Length returns the clip duration. It is also the progress denominator for
// clip requests, so no probe is needed.
func (w ClipWindow) Length() time.Duration {
	return w.End - w.Start
}

// Validate rejects windows with negative bounds or end <= start.
func (w ClipWindow) Validate() error {
	if w.Start < 0 || w.End < 0 || w.End <= w.Start {
		return errno.ErrInvalidClipWindow
	}
	return nil
}

// ConversionRequest describes one transcode or clip operation. Immutable once
// submitted.
type ConversionRequest struct {
	InputPath  string
	OutputPath string
	Format     TargetFormat
	Tier       QualityTier
	Clip       *ClipWindow
}

// NewConversionRequest validates and normalizes the request fields. The quality
// tier is normalized leniently (unknown falls back to medium); everything else
// is rejected up front, before any planning or process spawn.
func NewConversionRequest(inputPath, outputPath, format, tier string, clip *ClipWindow) (*ConversionRequest, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, errno.ErrInputPathRequired
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, errno.ErrOutputPathRequired
	}
	f, ok := ParseTargetFormat(format)
	if !ok {
		return nil, errno.ErrUnsupportedFormat
	}
	if clip != nil {
		if err := clip.Validate(); err != nil {
			return nil, err
		}
	}
	return &ConversionRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     f,
		Tier:       ParseQualityTier(tier),
		Clip:       clip,
	}, nil
}

// IsClip reports whether the request carries an extraction window.
func (r *ConversionRequest) IsClip() bool {
	return r.Clip != nil
}

// InputKind classifies the source media from its locator extension.
func (r *ConversionRequest) InputKind() MediaKind {
	return ClassifyInputKind(r.InputPath)
}
