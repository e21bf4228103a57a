package worker

import (
	"context"
	"errors"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces
type Result interface {
	GetError() error
}

// errFinished marks a pool whose queue drained normally
var errFinished = errors.New("worker: pool finished")

// Option configures a Pool
type Option func(*Pool)

// WithStopOnError makes the first failed job cancel every other job.
// Cause reports that failure afterwards.
func WithStopOnError() Option {
	return func(p *Pool) { p.stopOnError = true }
}

// Pool runs jobs on a fixed number of goroutines and gathers their results
type Pool struct {
	size        int
	queue       chan Job
	collector   *ResultCollector
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelCauseFunc
	stopOnError bool
	closeOnce   sync.Once
}

// NewPool creates a pool of size workers bound to ctx. size <= 0 means 1.
func NewPool(ctx context.Context, size int, opts ...Option) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancelCause(ctx)

	p := &Pool{
		size:      size,
		queue:     make(chan Job, size),
		collector: NewResultCollector(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers
func (p *Pool) Start() {
	for range p.size {
		p.wg.Go(p.run)
	}
}

func (p *Pool) run() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			p.collector.Add(result)
			if err := result.GetError(); err != nil && p.stopOnError {
				p.cancel(err)
			}
		}
	}
}

// Submit queues a job. It reports false once the pool is cancelled;
// the job will never run.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- job:
		return true
	}
}

// Wait closes the queue, waits for the workers and returns every result
// in completion order
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.cancel(errFinished)
	return p.collector.Results()
}

// Cause returns why the pool stopped early: the first failed job's error under
// WithStopOnError, or the parent context's error. It is nil for a pool that ran
// to completion or has not stopped.
func (p *Pool) Cause() error {
	if p.ctx.Err() == nil {
		return nil
	}
	if cause := context.Cause(p.ctx); !errors.Is(cause, errFinished) {
		return cause
	}
	return nil
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() { close(p.queue) })
}

// ResultCollector gathers results from concurrent workers
type ResultCollector struct {
	mu      sync.Mutex
	results []Result
}

func NewResultCollector() *ResultCollector {
	return &ResultCollector{}
}

// Add is safe for concurrent use
func (c *ResultCollector) Add(result Result) {
	c.mu.Lock()
	c.results = append(c.results, result)
	c.mu.Unlock()
}

// Results returns a snapshot; later Adds do not affect it
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}
