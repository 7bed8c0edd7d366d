package batch

import (
	"context"
	"runtime"
	"sync"
)

// maxWorkers caps the default pool size.
var maxWorkers = runtime.NumCPU()

// WorkerPool distributes jobs across a fixed set of goroutines and
// collects their results.
type WorkerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// NewWorkerPool creates a pool with numWorkers goroutines. A value of 0
// or less means maxWorkers. The pool never has more workers than jobs,
// and both channels are buffered for numJobs so neither Submit nor the
// workers block when the job count is known up front.
func NewWorkerPool[Job any, Result any](numWorkers, numJobs int) *WorkerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = maxWorkers
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}
	return &WorkerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// Workers returns the number of goroutines the pool runs.
func (p *WorkerPool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start launches the workers. Jobs still queued once ctx is done are
// drained without calling workerFn.
func (p *WorkerPool[Job, Result]) Start(ctx context.Context, workerFn func(context.Context, Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				if ctx.Err() != nil {
					continue
				}
				p.results <- workerFn(ctx, job)
			}
		}()
	}
}

// Submit queues a job, giving up when ctx is done.
func (p *WorkerPool[Job, Result]) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs. Results is closed once every worker has
// finished.
func (p *WorkerPool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the results channel.
func (p *WorkerPool[Job, Result]) Results() <-chan Result {
	return p.results
}
