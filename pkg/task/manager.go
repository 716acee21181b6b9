package task

import (
	"context"
	"sync"
)

// BackgroundTask represents a long-running background process (consumer, worker pool,
// registry keep-alive).
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

type manager struct {
	tasks  []BackgroundTask
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

var defaultManager = &manager{}

// Register adds a background task; called during assembly, before StartAll.
func Register(t BackgroundTask) {
	if t == nil {
		return
	}
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.tasks = append(defaultManager.tasks, t)
}

// StartAll starts all registered tasks once; subsequent calls are no-ops.
func StartAll(ctx context.Context) error {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		return nil
	}
	defaultManager.ctx, defaultManager.cancel = context.WithCancel(ctx)
	for _, t := range defaultManager.tasks {
		if err := t.Start(defaultManager.ctx); err != nil {
			return err
		}
	}
	return nil
}

// StopAll cancels the shared context and stops tasks in reverse registration order.
func StopAll() {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		defaultManager.cancel()
	}
	for i := len(defaultManager.tasks) - 1; i >= 0; i-- {
		_ = defaultManager.tasks[i].Stop()
	}
	defaultManager.cancel = nil
}

// Func adapts a pair of start/stop functions to the BackgroundTask interface.
type Func struct {
	TaskName  string
	StartFunc func(ctx context.Context) error
	StopFunc  func() error
}

func (f *Func) Name() string { return f.TaskName }

func (f *Func) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f *Func) Stop() error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc()
}
