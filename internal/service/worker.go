package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a batch of jobs on a fixed number of goroutines and returns the results
// in submission order. The first job error cancels the batch: jobs that have not started
// are skipped and no partial results are returned.
type WorkerPool[J, R any] struct {
	workers int
	fn      func(ctx context.Context, index int, job J) (R, error)
	onDone  func(completed, total int)
}

func NewWorkerPool[J, R any](workers int, fn func(ctx context.Context, index int, job J) (R, error)) *WorkerPool[J, R] {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool[J, R]{workers: workers, fn: fn}
}

// OnDone registers a callback invoked after each successful job. Calls are serialized
// and completed is strictly increasing.
func (p *WorkerPool[J, R]) OnDone(fn func(completed, total int)) *WorkerPool[J, R] {
	p.onDone = fn
	return p
}

func (p *WorkerPool[J, R]) Workers() int {
	return p.workers
}

func (p *WorkerPool[J, R]) Run(ctx context.Context, jobs []J) ([]R, error) {
	results := make([]R, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	indexes := make(chan int)

	g.Go(func() error {
		defer close(indexes)
		for i := range jobs {
			select {
			case indexes <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var (
		mu        sync.Mutex
		completed int
	)
	for range min(p.workers, len(jobs)) {
		g.Go(func() error {
			for i := range indexes {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r, err := p.fn(gctx, i, jobs[i])
				if err != nil {
					return err
				}
				// each slot is written by exactly one goroutine
				results[i] = r

				if p.onDone != nil {
					mu.Lock()
					completed++
					p.onDone(completed, len(jobs))
					mu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
