// Copyright 2025 go-sparse Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the bounded fork-join pool the sparse kernels
// run their per-column loops on.
//
// A Pool is created once and reused across many kernel calls. Every
// parallel loop returns only after all of its bodies finished, which is the
// join point kernels rely on as a barrier between phases.
//
// Usage:
//
//	pool := workerpool.New(sparse.DefaultThreads())
//	defer pool.Close()
//
//	scratch := make([][]int, pool.NumWorkers())
//	pool.ParallelForWorkers(numCols, 16, func(worker, start, end int) {
//	    buf := scratch[worker] // private to this task
//	    for j := start; j < end; j++ {
//	        processColumn(j, buf)
//	    }
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation
// and reused until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with numWorkers persistent goroutines.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool. A nil pool has one.
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.numWorkers
}

// Close shuts down the pool. Pending work completes; later loops run
// sequentially on the caller's goroutine. Calling Close multiple times is
// safe.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// sequential reports whether a loop over n items should run inline.
func (p *Pool) sequential(n int) bool {
	return p == nil || p.closed.Load() || min(p.numWorkers, n) == 1
}

// run submits one task per slot and waits for all of them.
func (p *Pool) run(slots int, task func(slot int)) {
	var wg sync.WaitGroup
	wg.Add(slots)
	for s := range slots {
		p.workC <- workItem{
			fn:      func() { task(s) },
			barrier: &wg,
		}
	}
	wg.Wait()
}

// ParallelFor executes fn over [0, n) split into one contiguous range per
// worker and blocks until all ranges are done.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p.sequential(n) {
		fn(0, n)
		return
	}

	workers := min(p.numWorkers, n)
	chunkSize := (n + workers - 1) / workers
	chunks := (n + chunkSize - 1) / chunkSize
	p.run(chunks, func(c int) {
		start := c * chunkSize
		fn(start, min(start+chunkSize, n))
	})
}

// ParallelForAtomic executes fn for each index in [0, n), handing indices
// out through an atomic counter so uneven items balance across workers.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p.sequential(n) {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	p.run(min(p.numWorkers, n), func(int) {
		for {
			i := int(next.Add(1)) - 1
			if i >= n {
				return
			}
			fn(i)
		}
	})
}

// ParallelForWorkers executes fn over batches of [0, n) with atomic work
// stealing, passing the id of the task running the batch.
//
// Ids lie in [0, NumWorkers()). Batches with the same id never run
// concurrently, so callers can index per-worker scratch space by id without
// locking. batchSize <= 0 means 1.
func (p *Pool) ParallelForWorkers(n, batchSize int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	numBatches := (n + batchSize - 1) / batchSize
	if p.sequential(numBatches) {
		fn(0, 0, n)
		return
	}

	var next atomic.Int64
	p.run(min(p.numWorkers, numBatches), func(worker int) {
		for {
			start := (int(next.Add(1)) - 1) * batchSize
			if start >= n {
				return
			}
			fn(worker, start, min(start+batchSize, n))
		}
	})
}
