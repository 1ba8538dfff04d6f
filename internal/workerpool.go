package internal

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrPoolStopped is returned by futures of tasks submitted after Stop
var ErrPoolStopped = errors.New("worker pool stopped")

// ============================================================================
// WORKER POOL
// Fixed set of goroutines executing short independent tasks. Callers submit
// one task per chunk or segment and block on the returned futures.
// ============================================================================

// DefaultWorkers returns NumCPU clamped to [2, 16]
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	if workers > 16 {
		workers = 16
	}
	return workers
}

// Future is the handle of a submitted task
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Wait blocks until the task has finished and returns its error
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// WaitAll waits for every future and returns the first error in submission
// order, not completion order
func WaitAll(futures []*Future) error {
	var first error
	for _, f := range futures {
		if err := f.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type task struct {
	fn     func() error
	future *Future
}

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	tasks     chan task
	workers   int
	wg        sync.WaitGroup
	stopOnce  sync.Once
	stopMu    sync.RWMutex // Held for reading while a task is enqueued
	stopChan  chan struct{}
	stopped   atomic.Bool
	taskCount int32      // Tracks the number of pending tasks
	doneCond  *sync.Cond // Signalled when taskCount drops to zero
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > MaxPoolWorkers {
		workers = MaxPoolWorkers
	}

	wp := &WorkerPool{
		tasks:    make(chan task, workers*2),
		workers:  workers,
		stopChan: make(chan struct{}),
		doneCond: sync.NewCond(&sync.Mutex{}),
	}

	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case t := <-wp.tasks:
			wp.run(t)
		case <-wp.stopChan:
			return
		}
	}
}

func (wp *WorkerPool) run(t task) {
	t.future.complete(runTask(t.fn))
	if atomic.AddInt32(&wp.taskCount, -1) == 0 {
		wp.doneCond.L.Lock()
		wp.doneCond.Broadcast()
		wp.doneCond.L.Unlock()
	}
}

// runTask converts a panic inside fn into an error
func runTask(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn()
}

// Submit schedules fn and returns its future. When the queue is full the
// task runs on the calling goroutine.
func (wp *WorkerPool) Submit(fn func() error) *Future {
	f := newFuture()
	wp.stopMu.RLock()
	defer wp.stopMu.RUnlock()
	if wp.stopped.Load() {
		f.complete(ErrPoolStopped)
		return f
	}

	atomic.AddInt32(&wp.taskCount, 1)
	t := task{fn: fn, future: f}

	select {
	case wp.tasks <- t:
	default:
		wp.run(t)
	}
	return f
}

// Wait waits for all submitted tasks to complete
func (wp *WorkerPool) Wait() {
	if atomic.LoadInt32(&wp.taskCount) <= 0 {
		return
	}

	wp.doneCond.L.Lock()
	for atomic.LoadInt32(&wp.taskCount) > 0 {
		wp.doneCond.Wait()
	}
	wp.doneCond.L.Unlock()
}

// Stop drains queued tasks and stops the workers. It is safe to call twice.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.stopMu.Lock()
		wp.stopped.Store(true)
		wp.stopMu.Unlock()
		wp.Wait()
		close(wp.stopChan)
		wp.wg.Wait()
	})
}
