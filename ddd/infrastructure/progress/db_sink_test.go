package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/vo"
)

type recordingRepo struct {
	writes []float64
}

func (r *recordingRepo) CreateJob(ctx context.Context, job *entity.ConversionJobEntity) error {
	return nil
}

func (r *recordingRepo) GetJob(ctx context.Context, jobID string) (*entity.ConversionJobEntity, error) {
	return nil, nil
}

func (r *recordingRepo) UpdateJobStatus(ctx context.Context, jobID string, status vo.JobStatus, diagnostic, outputKey string, progress float64) error {
	return nil
}

func (r *recordingRepo) UpdateJobProgress(ctx context.Context, jobID string, progress float64) error {
	r.writes = append(r.writes, progress)
	return nil
}

func (r *recordingRepo) ListJobsByStatus(ctx context.Context, status vo.JobStatus, limit int) ([]*entity.ConversionJobEntity, error) {
	return nil, nil
}

func TestDBSinkThrottlesSmallDeltas(t *testing.T) {
	repo := &recordingRepo{}
	sink := NewDBSink(repo).(*DBSink)
	ctx := context.Background()

	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.10))
	// Under the write delta: swallowed.
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.105))
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.109))
	// At the delta: written.
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.12))
	// 1.0 is always written.
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 1.0))

	assert.Equal(t, []float64{0.10, 0.12, 1.0}, repo.writes)
}

func TestDBSinkFinalWriteEvicts(t *testing.T) {
	repo := &recordingRepo{}
	sink := NewDBSink(repo).(*DBSink)
	ctx := context.Background()

	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.5))
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 1.0))

	sink.mu.Lock()
	_, tracked := sink.last["job-1"]
	sink.mu.Unlock()
	assert.False(t, tracked)
}

func TestDBSinkForgetEvictsMidFlightJobs(t *testing.T) {
	repo := &recordingRepo{}
	sink := NewDBSink(repo).(*DBSink)
	ctx := context.Background()

	// A job cancelled mid-flight never reaches 1.0; Forget must release it.
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.4))
	sink.Forget("job-1")

	sink.mu.Lock()
	tracked := len(sink.last)
	sink.mu.Unlock()
	assert.Zero(t, tracked)

	// After eviction the next write is treated as fresh.
	require.NoError(t, sink.SaveProgress(ctx, "job-1", 0.2))
	assert.Equal(t, []float64{0.4, 0.2}, repo.writes)
}
