package palette

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// WorkerPool runs submitted jobs on a fixed set of goroutines.
type WorkerPool struct {
	workers   int
	jobQueue  chan func()
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	activeWorkers atomic.Int64
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	Workers       int   `json:"workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	ActiveWorkers int64 `json:"active_workers"`
}

// NewWorkerPool creates a pool; workers <= 0 means runtime.NumCPU().
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.run(job)
	}
}

func (wp *WorkerPool) run(job func()) {
	wp.activeWorkers.Add(1)
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Worker job panicked")
		}
		wp.activeWorkers.Add(-1)
		wp.completedJobs.Add(1)
		wp.wg.Done()
	}()
	job()
}

// Submit queues a job. It returns false once the pool is closed.
func (wp *WorkerPool) Submit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.wg.Add(1)
	wp.totalJobs.Add(1)
	wp.jobQueue <- job
	return true
}

// Wait blocks until every submitted job has finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Workers returns the number of goroutines in the pool.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// GetStats returns the current counters.
func (wp *WorkerPool) GetStats() PoolStats {
	return PoolStats{
		Workers:       wp.workers,
		TotalJobs:     wp.totalJobs.Load(),
		CompletedJobs: wp.completedJobs.Load(),
		ActiveWorkers: wp.activeWorkers.Load(),
	}
}

// Close stops accepting jobs; queued jobs still run.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.jobQueue)
		wp.mu.Unlock()
	})
}
