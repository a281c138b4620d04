// Package pool provides the generic worker pool used for batch row
// processing.
package pool

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool distributes jobs across a fixed number of workers and collects
// their results. Result order is not preserved.
type WorkerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// New creates a worker pool. If numWorkers is 0 or negative it defaults to
// runtime.NumCPU(). If numJobs is less than numWorkers, the pool is sized to
// match numJobs.
func New[Job any, Result any](numWorkers, numJobs int) *WorkerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}

	return &WorkerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, max(numJobs, 0)),
		results:    make(chan Result, max(numJobs, 0)),
	}
}

// Workers returns the number of workers the pool starts.
func (p *WorkerPool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start launches the workers. Once ctx is done, workers drain the remaining
// jobs without calling workerFn.
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

// Submit queues a job. It returns false if ctx is done first.
func (p *WorkerPool[Job, Result]) Submit(ctx context.Context, job Job) bool {
	select {
	case p.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close closes the job channel. The results channel is closed once every
// worker has returned.
func (p *WorkerPool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the channel of worker outputs.
func (p *WorkerPool[Job, Result]) Results() <-chan Result {
	return p.results
}
