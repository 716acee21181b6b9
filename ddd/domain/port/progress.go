package port

import "context"

// ProgressFunc receives normalized progress in [0, 1]. Values are delivered in
// strictly increasing order; the final emission of a successful job is 1.0.
type ProgressFunc func(progress float64)

// ProgressSink persists or forwards job progress updates.
type ProgressSink interface {
	SaveProgress(ctx context.Context, jobID string, progress float64) error
}
