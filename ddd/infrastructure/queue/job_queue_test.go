package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-service/ddd/domain/entity"
	"convert-service/ddd/domain/vo"
	"convert-service/pkg/errno"
)

func newQueuedJob(t *testing.T) *entity.ConversionJobEntity {
	t.Helper()
	req, err := vo.NewConversionRequest("in.mp4", "out.mp3", "mp3", "medium", nil)
	require.NoError(t, err)
	return entity.NewConversionJob("user-1", req)
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := NewMemoryJobQueue(10)
	defer q.Close()

	first := newQueuedJob(t)
	second := newQueuedJob(t)
	require.NoError(t, q.Enqueue(context.Background(), first))
	require.NoError(t, q.Enqueue(context.Background(), second))
	assert.Equal(t, 2, q.Size())

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.JobID(), got.JobID())

	got, err = q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.JobID(), got.JobID())
	assert.Zero(t, q.Size())
}

func TestEnqueueFullQueueRejected(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), newQueuedJob(t)))
	err := q.Enqueue(context.Background(), newQueuedJob(t))
	assert.ErrorIs(t, err, errno.ErrQueueFull)
}

func TestEnqueueNilJobRejected(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	err := q.Enqueue(context.Background(), nil)
	assert.ErrorIs(t, err, errno.ErrInvalidParam)
}

func TestClosedQueue(t *testing.T) {
	q := NewMemoryJobQueue(1)
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	err := q.Enqueue(context.Background(), newQueuedJob(t))
	assert.ErrorIs(t, err, errno.ErrQueueClosed)

	_, err = q.Dequeue(context.Background())
	assert.ErrorIs(t, err, errno.ErrQueueClosed)

	// Closing twice is a no-op.
	assert.NoError(t, q.Close())
}

func TestDequeueDrainsAfterClose(t *testing.T) {
	q := NewMemoryJobQueue(2)
	job := newQueuedJob(t)
	require.NoError(t, q.Enqueue(context.Background(), job))

	// Dequeue start races Close here; take the job first, then close.
	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.JobID(), got.JobID())
	require.NoError(t, q.Close())
}

func TestDequeueRespectsContext(t *testing.T) {
	q := NewMemoryJobQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDefaultCapacity(t *testing.T) {
	q := NewMemoryJobQueue(0)
	defer q.Close()
	assert.Equal(t, 100, cap(q.queue))
}
