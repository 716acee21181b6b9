package queue

import (
	"context"
	"sync"

	"convert-service/ddd/domain/entity"
	"convert-service/pkg/errno"
)

// JobQueue hands accepted conversion jobs to the worker pool.
type JobQueue interface {
	// Enqueue adds a job without blocking; a full queue is rejected.
	Enqueue(ctx context.Context, job *entity.ConversionJobEntity) error

	// Dequeue blocks until a job is available or the context ends.
	Dequeue(ctx context.Context) (*entity.ConversionJobEntity, error)

	Size() int
	Close() error
	IsClosed() bool
}

// MemoryJobQueue is a bounded channel-backed queue.
type MemoryJobQueue struct {
	queue  chan *entity.ConversionJobEntity
	closed bool
	mu     sync.RWMutex
}

func NewMemoryJobQueue(capacity int) *MemoryJobQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryJobQueue{
		queue: make(chan *entity.ConversionJobEntity, capacity),
	}
}

func (q *MemoryJobQueue) Enqueue(ctx context.Context, job *entity.ConversionJobEntity) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return errno.ErrQueueClosed
	}
	if job == nil {
		return errno.ErrInvalidParam
	}

	select {
	case q.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errno.ErrQueueFull
	}
}

func (q *MemoryJobQueue) Dequeue(ctx context.Context) (*entity.ConversionJobEntity, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, errno.ErrQueueClosed
	}
	ch := q.queue
	q.mu.RUnlock()

	select {
	case job, ok := <-ch:
		if !ok {
			return nil, errno.ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryJobQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return 0
	}
	return len(q.queue)
}

func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

func (q *MemoryJobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
