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

// Package mcl clusters graphs with the Markov Cluster algorithm.
//
// Every iteration expands the column stochastic flow matrix with sparse
// matrix products, inflates each column elementwise and prunes small
// entries. The matrix converges to a set of attractor rows whose columns
// form the clusters.
package mcl

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/algo"
	"github.com/go-sparse/spgemm/sparse/contrib/spgemm"
	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

// ErrNotSquare is returned for graphs whose matrix is not square.
var ErrNotSquare = errors.New("mcl: adjacency matrix is not square")

// Params controls a clustering run. Zero fields take the defaults of
// DefaultParams, except MaxPerColumn where zero disables the limit.
type Params struct {
	// Expansion is the matrix power taken per iteration.
	Expansion int
	// Inflation is the elementwise power applied to every column.
	Inflation float64
	// PruneThreshold drops entries below it after inflation. The largest
	// entry of a column is always kept.
	PruneThreshold float64
	// MaxPerColumn keeps at most this many entries per column; 0 means no
	// limit.
	MaxPerColumn int
	// ChaosEpsilon stops the iteration once the chaos falls below it.
	ChaosEpsilon float64
	// MaxIterations bounds the number of iterations.
	MaxIterations int

	// Pool runs the products and column passes. When nil a pool with
	// Threads workers is created for the run.
	Pool    *workerpool.Pool
	Threads int
}

// DefaultParams returns the usual MCL settings.
func DefaultParams() Params {
	return Params{
		Expansion:      2,
		Inflation:      2,
		PruneThreshold: 1e-4,
		MaxPerColumn:   1100,
		ChaosEpsilon:   1e-3,
		MaxIterations:  100,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Expansion <= 0 {
		p.Expansion = d.Expansion
	}
	if p.Inflation <= 0 {
		p.Inflation = d.Inflation
	}
	if p.PruneThreshold <= 0 {
		p.PruneThreshold = d.PruneThreshold
	}
	if p.MaxPerColumn < 0 {
		p.MaxPerColumn = 0
	}
	if p.ChaosEpsilon <= 0 {
		p.ChaosEpsilon = d.ChaosEpsilon
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = d.MaxIterations
	}
	return p
}

// Result is the outcome of Run.
type Result struct {
	// Clusters holds the cluster id of every vertex. Ids are dense, in the
	// order of the first vertex of each cluster.
	Clusters    []int
	NumClusters int
	Iterations  int
	Chaos       float64
	Converged   bool
	// Flow is the final flow matrix.
	Flow *sparse.Dcsc[float64]
}

// Run clusters the weighted graph g, where entry (i, j) is the weight of the
// edge from j to i. g is not modified.
func Run(ctx context.Context, g *sparse.Dcsc[float64], p Params) (*Result, error) {
	if g.Rows() != g.Cols() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, g.Rows(), g.Cols())
	}
	p = p.withDefaults()
	l := ctxzap.Extract(ctx)

	pool := p.Pool
	if pool == nil {
		threads := p.Threads
		if threads <= 0 {
			threads = sparse.DefaultThreads()
		}
		pool = workerpool.New(threads)
		defer pool.Close()
	}

	m := withLoops(g)
	normalize(m)

	res := &Result{}
	for res.Iterations < p.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		expanded, err := expand(ctx, pool, m, p.Expansion)
		if err != nil {
			return nil, err
		}
		m, res.Chaos = inflatePrune(pool, expanded, p)
		res.Iterations++

		l.Debug("mcl iteration",
			zap.Int("iteration", res.Iterations),
			zap.Float64("chaos", res.Chaos),
			zap.Int("nnz", m.NNZ()),
		)
		if res.Chaos < p.ChaosEpsilon {
			res.Converged = true
			break
		}
	}

	res.Flow = m
	res.Clusters, res.NumClusters = Clusters(m)
	l.Info("mcl finished",
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Int("clusters", res.NumClusters),
	)
	return res, nil
}

// withLoops returns a copy of g whose diagonal holds the largest weight of
// each column, or 1 for isolated vertices.
func withLoops(g *sparse.Dcsc[float64]) *sparse.Dcsc[float64] {
	n := g.Cols()
	loops := make([]float64, n)
	for j := range loops {
		loops[j] = 1
	}
	entries := make([]sparse.Triple[float64], 0, g.NNZ()+n)
	for i := range g.NonemptyCols() {
		col, rows, vals := g.Column(i)
		best := math.Inf(-1)
		for k, r := range rows {
			if r == col {
				continue
			}
			entries = append(entries, sparse.Triple[float64]{Row: r, Col: col, Val: vals[k]})
			best = max(best, vals[k])
		}
		if !math.IsInf(best, -1) {
			loops[col] = best
		}
	}
	for j, w := range loops {
		entries = append(entries, sparse.Triple[float64]{Row: j, Col: j, Val: w})
	}
	return sparse.NewDcsc(n, n, entries, nil)
}

// normalize scales every column of m to sum 1 in place.
func normalize(m *sparse.Dcsc[float64]) {
	for i := range m.NonemptyCols() {
		_, _, vals := m.Column(i)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		if sum == 0 {
			continue
		}
		for k := range vals {
			vals[k] /= sum
		}
	}
}

// expand returns m^power. m is released once it is no longer needed, as is
// every intermediate power.
func expand(ctx context.Context, pool *workerpool.Pool, m *sparse.Dcsc[float64], power int) (*sparse.Dcsc[float64], error) {
	cur := m
	for e := 1; e < power; e++ {
		opts := []spgemm.Option{spgemm.WithPool(pool)}
		if cur != m {
			opts = append(opts, spgemm.WithReleaseA())
		}
		if e == power-1 {
			opts = append(opts, spgemm.WithReleaseB())
		}
		prod, err := spgemm.Multiply(ctx, cur, m, spgemm.PlusTimes[float64](), opts...)
		if err != nil {
			return nil, fmt.Errorf("mcl: expansion: %w", err)
		}
		cur = prod.ToDcsc(nil)
	}
	return cur, nil
}

// inflatePrune inflates, prunes and renormalizes every column of m and
// returns the new flow matrix with its chaos, the largest difference
// between the maximum and the sum of squares of any column.
func inflatePrune(pool *workerpool.Pool, m *sparse.Dcsc[float64], p Params) (*sparse.Dcsc[float64], float64) {
	nzc := m.NonemptyCols()
	kept := make([]int, nzc)
	chaos := make([]float64, nzc)
	scratch := make([][]float64, pool.NumWorkers())

	pool.ParallelForWorkers(nzc, 16, func(worker, start, end int) {
		for i := start; i < end; i++ {
			_, rows, vals := m.Column(i)
			kept[i], chaos[i] = pruneColumn(rows, vals, p, &scratch[worker])
		}
	})

	// Pruned columns were compacted to the front of their ranges; gather
	// them into fresh arrays.
	cp := algo.PrefixSum(pool, kept)
	ir := make([]int, cp[nzc])
	num := make([]float64, cp[nzc])
	src := m.ColPtr()
	pool.ParallelFor(nzc, func(start, end int) {
		for i := start; i < end; i++ {
			copy(ir[cp[i]:cp[i+1]], m.RowIdx()[src[i]:src[i]+kept[i]])
			copy(num[cp[i]:cp[i+1]], m.Values()[src[i]:src[i]+kept[i]])
		}
	})

	out, err := sparse.NewDcscFromArrays(m.Rows(), m.Cols(), slices.Clone(m.ColIDs()), cp, ir, num)
	if err != nil {
		// Pruning keeps row order and at least one entry per column.
		panic(err)
	}
	m.Release()

	var worst float64
	for _, c := range chaos {
		worst = max(worst, c)
	}
	return out, worst
}

// pruneColumn works on one column in place and returns how many leading
// entries remain, along with the column's chaos.
func pruneColumn(rows []int, vals []float64, p Params, scratch *[]float64) (int, float64) {
	var sum float64
	for k, v := range vals {
		vals[k] = math.Pow(v, p.Inflation)
		sum += vals[k]
	}
	if sum == 0 {
		return len(vals), 0
	}
	best := 0
	for k := range vals {
		vals[k] /= sum
		if vals[k] > vals[best] {
			best = k
		}
	}

	cutoff := p.PruneThreshold
	if p.MaxPerColumn > 0 && len(vals) > p.MaxPerColumn {
		s := append((*scratch)[:0], vals...)
		slices.SortFunc(s, cmpDesc)
		cutoff = max(cutoff, s[p.MaxPerColumn-1])
		*scratch = s
	}

	limit := len(vals)
	if p.MaxPerColumn > 0 {
		limit = p.MaxPerColumn
	}
	ties := limit
	for _, v := range vals {
		if v > cutoff {
			ties--
		}
	}
	n := 0
	for k := range vals {
		switch {
		case vals[k] > cutoff:
		case vals[k] == cutoff && ties > 0:
			ties--
		case k == best:
		default:
			continue
		}
		rows[n], vals[n] = rows[k], vals[k]
		n++
	}

	sum = 0
	for _, v := range vals[:n] {
		sum += v
	}
	var top, sumsq float64
	for k := range vals[:n] {
		vals[k] /= sum
		top = max(top, vals[k])
		sumsq += vals[k] * vals[k]
	}
	return n, top - sumsq
}

func cmpDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
