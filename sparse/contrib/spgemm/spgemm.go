// Copyright 2025 go-sparse Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spgemm

import (
	"context"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/algo"
	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

// Multiply computes C = A*B under the semiring sr and returns C as triples.
//
// Within each output column the triples are in strictly ascending row order
// and no (row, col) position appears twice. Columns appear in the order of
// B's nonempty columns. For a fixed input the output is identical for any
// number of workers.
//
// If A or B holds no entries the result is the structurally zero
// A.Rows() x B.Cols() matrix and no estimation or merge takes place.
//
// ctx only carries the logger (see WithLogger); the call is not cancellable.
func Multiply[NT1, NT2, NTO any](ctx context.Context, a sparse.Columns[NT1], b sparse.Columns[NT2],
	sr Semiring[NT1, NT2, NTO], opts ...Option) (*sparse.Tuples[NTO], error) {
	began := time.Now()

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if sparse.IsNil(a) || sparse.IsNil(b) {
		return nil, ErrNilOperand
	}
	if sr.Multiply == nil || sr.Add == nil {
		return nil, ErrNilSemiring
	}
	if a.Cols() != b.Rows() {
		return nil, fmt.Errorf("%w: A is %dx%d, B is %dx%d", ErrDimensionMismatch,
			a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}

	l := cfg.logger
	if l == nil {
		l = ctxzap.Extract(ctx)
	}
	mp := cfg.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	mdim, ndim := a.Rows(), b.Cols()
	if sparse.IsZero(a) || sparse.IsZero(b) {
		release(a, b, &cfg)
		stats := Stats{Threads: 1, Elapsed: time.Since(began)}
		report(ctx, l, mp, &cfg, &stats)
		return sparse.Zero[NTO](mdim, ndim), nil
	}

	pool := cfg.pool
	if pool == nil {
		threads := cfg.threads
		if threads <= 0 {
			threads = sparse.DefaultThreads()
		}
		pool = workerpool.New(threads)
		defer pool.Close()
	}
	workers := pool.NumWorkers()

	o := newOperands(a, b)
	base := newArenas(workers, a.NNZ(), b.NNZ())

	flop := estimateFLOP(pool, o, base)
	var nnz []int
	switch cfg.estimator {
	case EstimatorHeap:
		nnz = estimateNNZHeap(pool, o, base)
	default:
		nnz = estimateNNZHash(pool, o, base, flop)
	}

	flopPrefix := algo.PrefixSum(pool, flop)
	nnzPrefix := algo.PrefixSum(pool, nnz)
	nzc := o.nzc()
	totalFLOP, totalNNZ := flopPrefix[nzc], nnzPrefix[nzc]

	// Every column window is fixed from here on; the merge may start.
	out := make([]sparse.Triple[NTO], totalNNZ)
	written := make([]int, nzc)
	arenas := make([]mergeArena[NTO], workers)
	for w := range arenas {
		arenas[w].arena = base[w]
	}

	pool.ParallelForWorkers(nzc, columnBatch(nzc, workers), func(worker, start, end int) {
		ar := &arenas[worker]
		for i := start; i < end; i++ {
			lo, hi := nnzPrefix[i], nnzPrefix[i+1]
			if lo == hi {
				continue
			}
			ranges := o.resolve(i, &ar.arena)
			window := out[lo:hi]
			if useHeap(cfg.strategy, flopPrefix[i+1]-flopPrefix[i], hi-lo) {
				written[i] = mergeHeap(o, sr, i, ranges, ar, window)
				ar.heapColumns++
			} else {
				written[i] = mergeHash(o, sr, i, ranges, hi-lo, ar, window)
				ar.hashColumns++
			}
		}
	})

	release(a, b, &cfg)
	out = compact(out, nnzPrefix, written)

	stats := Stats{
		Threads: workers,
		FLOP:    int64(totalFLOP),
		NNZ:     int64(totalNNZ),
		Written: int64(len(out)),
	}
	if totalNNZ > 0 {
		stats.CompressionRatio = float64(totalFLOP) / float64(totalNNZ)
	}
	for w := range arenas {
		stats.HeapColumns += arenas[w].heapColumns
		stats.HashColumns += arenas[w].hashColumns
		stats.Annihilated += arenas[w].annihilated
	}
	stats.Elapsed = time.Since(began)
	report(ctx, l, mp, &cfg, &stats)

	return sparse.NewTuples(mdim, ndim, out), nil
}

// useHeap picks the merge strategy of a column from its compression ratio.
func useHeap(s strategy, flop, nnz int) bool {
	switch s {
	case strategyHeap:
		return true
	case strategyHash:
		return false
	default:
		return float64(flop)/float64(nnz) < CompressionThreshold
	}
}

// compact closes the gaps annihilated products leave at the end of column
// windows, shifting windows left in column order. out is returned unchanged
// when every window is full.
func compact[T any](out []sparse.Triple[T], prefix, written []int) []sparse.Triple[T] {
	w := 0
	for i, n := range written {
		lo := prefix[i]
		if w != lo {
			copy(out[w:w+n], out[lo:lo+n])
		}
		w += n
	}
	if w == len(out) {
		return out
	}
	clear(out[w:])
	return out[:w:w]
}

func release[NT1, NT2 any](a sparse.Columns[NT1], b sparse.Columns[NT2], cfg *config) {
	if cfg.releaseA {
		sparse.Release(a)
	}
	if cfg.releaseB {
		sparse.Release(b)
	}
}

func report(ctx context.Context, l *zap.Logger, mp metric.MeterProvider, cfg *config, stats *Stats) {
	if cfg.stats != nil {
		*cfg.stats = *stats
	}
	l.Debug("localspgemminfo",
		zap.Int("threads", stats.Threads),
		zap.Int64("flop", stats.FLOP),
		zap.Int64("nnz", stats.NNZ),
		zap.Int64("written", stats.Written),
		zap.Float64("compression_ratio", stats.CompressionRatio),
		zap.Int("heap_columns", stats.HeapColumns),
		zap.Int("hash_columns", stats.HashColumns),
		zap.Duration("elapsed", stats.Elapsed),
	)
	newRecorder(mp).record(ctx, stats)
}
