package worker

import (
	"context"
)

// Func adapts a function into a Job
type Func func(ctx context.Context) Result

// Execute runs the function
func (f Func) Execute(ctx context.Context) Result {
	return f(ctx)
}

// BatchProcessor runs a known set of jobs with bounded or unbounded concurrency
type BatchProcessor struct {
	concurrency int
	stopOnError bool
}

// NewBatchProcessor creates a processor. concurrency <= 0 runs every job at once.
func NewBatchProcessor(concurrency int, stopOnError bool) *BatchProcessor {
	return &BatchProcessor{
		concurrency: concurrency,
		stopOnError: stopOnError,
	}
}

// Process runs all jobs and returns their results in completion order, plus
// the reason the batch stopped early (see Pool.Cause). Fewer results than
// jobs is only possible with a non-nil cause.
func (b *BatchProcessor) Process(ctx context.Context, jobs []Job) ([]Result, error) {
	if len(jobs) == 0 {
		return []Result{}, nil
	}

	workers := b.concurrency
	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}

	var opts []Option
	if b.stopOnError {
		opts = append(opts, WithStopOnError())
	}
	pool := NewPool(ctx, workers, opts...)
	pool.Start()

	for _, job := range jobs {
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()
	return results, pool.Cause()
}
