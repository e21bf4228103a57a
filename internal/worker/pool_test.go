package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errJob = errors.New("job error")

type mockResult struct {
	page int
	err  error
}

func (r *mockResult) GetError() error { return r.err }

type mockJob struct {
	page     int
	duration time.Duration
	fail     bool
	executed *atomic.Int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		j.executed.Add(1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{page: j.page, err: ctx.Err()}
		}
	}
	if j.fail {
		return &mockResult{page: j.page, err: errJob}
	}
	return &mockResult{page: j.page}
}

func TestNewPool_Size(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{0, 1},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := NewPool(context.Background(), tt.in).size; got != tt.want {
			t.Errorf("NewPool(%d).size = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed atomic.Int32
	const pages = 50 // far more than the queue holds
	for i := range pages {
		if !pool.Submit(&mockJob{page: i, executed: &executed}) {
			t.Fatalf("submit %d rejected", i)
		}
	}

	results := pool.Wait()
	if len(results) != pages {
		t.Errorf("expected %d results, got %d", pages, len(results))
	}
	if executed.Load() != pages {
		t.Errorf("expected %d executions, got %d", pages, executed.Load())
	}
	if err := pool.Cause(); err != nil {
		t.Errorf("expected no cause after a clean run, got %v", err)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 4
	pool := NewPool(context.Background(), size)
	pool.Start()

	var inFlight, peak atomic.Int32
	for range 20 {
		pool.Submit(Func(func(ctx context.Context) Result {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return &mockResult{}
		}))
	}
	pool.Wait()

	if peak.Load() > size {
		t.Errorf("peak concurrency %d exceeded pool size %d", peak.Load(), size)
	}
}

func TestPool_StopOnError(t *testing.T) {
	pool := NewPool(context.Background(), 3, WithStopOnError())
	pool.Start()

	pool.Submit(&mockJob{page: 1, fail: true})
	pool.Submit(&mockJob{page: 2, duration: 5 * time.Second})
	pool.Submit(&mockJob{page: 3, duration: 5 * time.Second})

	start := time.Now()
	results := pool.Wait()
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("expected slow jobs to be cancelled, waited %v", elapsed)
	}

	if !errors.Is(pool.Cause(), errJob) {
		t.Errorf("expected cause to be the failing job's error, got %v", pool.Cause())
	}

	for _, r := range results {
		res := r.(*mockResult)
		if res.page != 1 && !errors.Is(res.err, context.Canceled) {
			t.Errorf("page %d: expected cancellation, got %v", res.page, res.err)
		}
	}

	if pool.Submit(&mockJob{}) {
		t.Error("expected submit to be rejected after the pool stopped")
	}
}

func TestPool_ErrorsWithoutStopOnError(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{page: 1, fail: true})
	pool.Submit(&mockJob{page: 2, duration: 20 * time.Millisecond})

	failures := 0
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected only the failing job to error, got %d failures", failures)
	}
	if pool.Cause() != nil {
		t.Errorf("expected no cause, got %v", pool.Cause())
	}
}

func TestPool_ParentDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	pool := NewPool(ctx, 1)
	pool.Start()
	pool.Submit(&mockJob{duration: 5 * time.Second})

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after the parent deadline")
	}
	if !errors.Is(pool.Cause(), context.DeadlineExceeded) {
		t.Errorf("expected deadline cause, got %v", pool.Cause())
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1, WithStopOnError())
	pool.Start()
	pool.Submit(&mockJob{duration: 5 * time.Second})

	cancel()
	pool.Wait()

	if !errors.Is(pool.Cause(), context.Canceled) {
		t.Errorf("expected parent cancellation as cause, got %v", pool.Cause())
	}
	if pool.Submit(&mockJob{}) {
		t.Error("expected submit to be rejected after cancellation")
	}
}

func TestResultCollector_Snapshot(t *testing.T) {
	c := NewResultCollector()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() { c.Add(&mockResult{page: i}) })
	}
	wg.Wait()

	snapshot := c.Results()
	if len(snapshot) != 10 {
		t.Fatalf("expected 10 results, got %d", len(snapshot))
	}

	snapshot[0] = nil
	if c.Results()[0] == nil {
		t.Error("Results should return a copy")
	}
}
