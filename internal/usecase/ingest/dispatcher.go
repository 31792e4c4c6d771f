package ingest

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Task is a unit of deferred work run by the dispatcher.
type Task func(ctx context.Context)

// Dispatcher is a bounded worker pool for the gateway's fire-and-forget work.
// Tasks run on a detached context so losing the webhook response cannot
// cancel work that was already durably accepted.
type Dispatcher struct {
	tasks    chan Task
	wg       sync.WaitGroup
	logger   *zap.Logger
	dropped  atomic.Int64
	stopOnce sync.Once
}

// NewDispatcher starts a dispatcher with the given worker count and queue size
func NewDispatcher(workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	d := &Dispatcher{
		tasks:  make(chan Task, queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		task(context.Background())
	}
}

// Submit enqueues a task without blocking. A saturated queue drops the task,
// logs it, and returns false; the record is already persisted, so the
// scheduler picks it up later.
func (d *Dispatcher) Submit(task Task) bool {
	select {
	case d.tasks <- task:
		return true
	default:
		dropped := d.dropped.Add(1)
		if d.logger != nil {
			d.logger.Warn("⚠️ Dispatch queue saturated, task dropped",
				zap.Int64("total_dropped", dropped))
		}
		return false
	}
}

// Dropped returns the number of tasks rejected due to queue saturation
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Stop closes the queue and waits for in-flight tasks to finish
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.tasks)
	})
	d.wg.Wait()
}
