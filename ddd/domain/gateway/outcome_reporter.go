package gateway

import (
	"context"

	"convert-service/ddd/domain/vo"
)

// OutcomeReporter publishes the terminal result of a job to interested parties.
// Exactly one report is delivered per job, strictly after the last progress
// signal.
type OutcomeReporter interface {
	ReportOutcome(ctx context.Context, jobID string, outcome vo.Outcome, outputKey string) error
}
