package progress

import (
	"context"
	"sync"

	"convert-service/ddd/domain/port"
	"convert-service/ddd/domain/repo"
)

// minWriteDelta keeps the database out of the hot path: a row is touched only
// when progress moved by at least this much, or reached 1.0.
const minWriteDelta = 0.01

// DBSink persists progress through the job repository.
type DBSink struct {
	repo repo.ConversionJobRepository

	mu   sync.Mutex
	last map[string]float64
}

func NewDBSink(r repo.ConversionJobRepository) port.ProgressSink {
	return &DBSink{repo: r, last: make(map[string]float64)}
}

func (s *DBSink) SaveProgress(ctx context.Context, jobID string, progress float64) error {
	if s.repo == nil {
		return nil
	}

	s.mu.Lock()
	prev, seen := s.last[jobID]
	if seen && progress < 1.0 && progress-prev < minWriteDelta {
		s.mu.Unlock()
		return nil
	}
	if progress >= 1.0 {
		delete(s.last, jobID)
	} else {
		s.last[jobID] = progress
	}
	s.mu.Unlock()

	return s.repo.UpdateJobProgress(ctx, jobID, progress)
}

// Forget drops the throttle state for a job that reached a terminal status.
// Without it, jobs that fail or are cancelled mid-flight would keep their
// entry forever.
func (s *DBSink) Forget(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, jobID)
}
