package utils

import (
	"runtime"
	"sync"
)

// WorkerPool fans submitted jobs out over a fixed set of goroutines. Jobs
// must coordinate their own result storage (e.g. writing to distinct slice
// indices); the pool only bounds parallelism and joins completion.
type WorkerPool struct {
	jobCh chan func()
	wg    sync.WaitGroup
}

// NewWorkerPool starts maxWorkers workers. A non-positive count defaults to
// the number of CPUs.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	wp := &WorkerPool{
		jobCh: make(chan func(), maxWorkers*2),
	}
	for i := 0; i < maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobCh {
		job()
	}
}

// Submit queues a job. Blocks when all workers are busy and the buffer is
// full, which keeps submission from outrunning execution unboundedly.
func (wp *WorkerPool) Submit(job func()) {
	wp.jobCh <- job
}

// Close stops accepting jobs and waits for the queue to drain.
func (wp *WorkerPool) Close() {
	close(wp.jobCh)
	wp.wg.Wait()
}
