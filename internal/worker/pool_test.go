package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func sleepJob(d time.Duration, err error) Job[error] {
	return func(ctx context.Context) error {
		select {
		case <-time.After(d):
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain closes the queue and collects every result
func drain[R any](p *Pool[R]) []R {
	p.Close()
	var results []R
	for r := range p.Results() {
		results = append(results, r)
	}
	return results
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		if p := NewPool[int](context.Background(), tt.in); p.workers != tt.want {
			t.Errorf("NewPool(%d) workers = %d, want %d", tt.in, p.workers, tt.want)
		}
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	var executed atomic.Int32
	count := 4
	for i := 0; i < count; i++ {
		pool.Submit(func(ctx context.Context) int {
			executed.Add(1)
			return i * i
		})
	}

	results := drain(pool)
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	if executed.Load() != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed.Load())
	}

	sum := 0
	for _, r := range results {
		sum += r
	}
	if sum != 0+1+4+9 {
		t.Errorf("unexpected result sum %d", sum)
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	workers := 4
	pool := NewPool[struct{}](context.Background(), workers)
	pool.Start()

	var current, peak, completed atomic.Int32
	totalJobs := 40

	go func() {
		defer pool.Close()
		for i := 0; i < totalJobs; i++ {
			pool.Submit(func(ctx context.Context) struct{} {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				completed.Add(1)
				return struct{}{}
			})
		}
	}()

	for range pool.Results() {
	}

	if completed.Load() != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed.Load())
	}
	if peak.Load() > int32(workers) {
		t.Errorf("peak concurrency %d exceeded %d workers", peak.Load(), workers)
	}
	if peak.Load() <= 1 {
		t.Logf("peak concurrency was %d, expected > 1", peak.Load())
	}
}

func TestPool_ErrorResults(t *testing.T) {
	pool := NewPool[error](context.Background(), 2)
	pool.Start()

	pool.Submit(sleepJob(0, errors.New("job error")))
	pool.Submit(sleepJob(0, nil))

	failures := 0
	for _, err := range drain(pool) {
		if err != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
}

func TestPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[error](ctx, 2)
	pool.Start()
	cancel()
	defer drain(pool)

	done := make(chan bool)
	go func() {
		done <- pool.Submit(sleepJob(0, nil))
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Log("job was queued before cancellation was observed")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after cancel blocked")
	}
}

func TestPool_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[error](ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Close()
		for range pool.Results() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after parent cancellation")
	}
}
