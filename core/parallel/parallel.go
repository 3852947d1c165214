// Package parallel provides chunked work distribution for training loops.
package parallel

import (
	"runtime"
	"sync"
)

// Pool distributes loop iterations over a fixed number of workers.
//
// A nil *Pool is valid and runs everything on the calling goroutine, which
// keeps sequential and parallel call sites identical. Trainers accept a
// *Pool and pass it through to their base learners so one pool bounds the
// concurrency of a whole ensemble training run.
type Pool struct {
	workers int
}

// NewPool returns a pool with the given number of workers.
// workers < 1 selects runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers reports the worker count. A nil pool reports 0, meaning all
// work runs on the caller goroutine.
func (p *Pool) Workers() int {
	if p == nil {
		return 0
	}
	return p.workers
}

// Run divides the specified total number (items) across the pool's workers
// and executes the specified function (fn) for each range (start, end).
// With a nil receiver or a single worker the whole range runs inline.
func (p *Pool) Run(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	if p == nil || p.workers == 1 {
		fn(0, items)
		return
	}

	numWorkers := p.workers
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		// Skip if there's no range to handle
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	// Wait for all workers to finish processing
	wg.Wait()
}

// RunWithThreshold performs parallelization only when the number of items
// exceeds the threshold. If below threshold, normal sequential processing
// is performed.
func (p *Pool) RunWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	p.Run(items, fn)
}
