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
	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/algo"
	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

// EstimateFLOP returns, for every nonempty column j of B, the number of
// products a merge without deduplication forms: the sum over the rows r of
// B's column of nnz(A[:, r]). It bounds both the work and the number of
// output entries of the column.
//
// Returns nil if A or B holds no entries. A.Cols() must equal B.Rows().
func EstimateFLOP[NT1, NT2 any](pool *workerpool.Pool, a sparse.Columns[NT1], b sparse.Columns[NT2]) []int {
	if sparse.IsZero(a) || sparse.IsZero(b) {
		return nil
	}
	o := newOperands(a, b)
	return estimateFLOP(pool, o, newArenas(pool.NumWorkers(), a.NNZ(), b.NNZ()))
}

// EstimateNNZ returns, for every nonempty column j of B, the number of
// distinct rows of column j of A*B. flop must come from EstimateFLOP; it
// sizes the hash table of each column.
//
// Returns nil if A or B holds no entries.
func EstimateNNZ[NT1, NT2 any](pool *workerpool.Pool, a sparse.Columns[NT1], b sparse.Columns[NT2], flop []int) []int {
	if sparse.IsZero(a) || sparse.IsZero(b) {
		return nil
	}
	o := newOperands(a, b)
	return estimateNNZHash(pool, o, newArenas(pool.NumWorkers(), a.NNZ(), b.NNZ()), flop)
}

// EstimateNNZHeap computes the same counts as EstimateNNZ by merging the
// contributing row lists with a heap and counting row changes.
//
// Returns nil if A or B holds no entries.
func EstimateNNZHeap[NT1, NT2 any](pool *workerpool.Pool, a sparse.Columns[NT1], b sparse.Columns[NT2]) []int {
	if sparse.IsZero(a) || sparse.IsZero(b) {
		return nil
	}
	o := newOperands(a, b)
	return estimateNNZHeap(pool, o, newArenas(pool.NumWorkers(), a.NNZ(), b.NNZ()))
}

// columnBatch is the number of columns a worker grabs at a time: small
// enough to balance skewed columns, large enough to keep the atomic counter
// cold.
func columnBatch(nzc, workers int) int {
	return max(1, min(64, nzc/(workers*8)))
}

func estimateFLOP[NT1, NT2 any](pool *workerpool.Pool, o *operands[NT1, NT2], arenas []arena) []int {
	flop := make([]int, o.nzc())
	pool.ParallelForWorkers(o.nzc(), columnBatch(o.nzc(), len(arenas)), func(worker, start, end int) {
		ar := &arenas[worker]
		for i := start; i < end; i++ {
			f := 0
			for _, r := range o.resolve(i, ar) {
				f += r.Len()
			}
			flop[i] = f
		}
	})
	return flop
}

func estimateNNZHash[NT1, NT2 any](pool *workerpool.Pool, o *operands[NT1, NT2], arenas []arena, flop []int) []int {
	nnz := make([]int, o.nzc())
	pool.ParallelForWorkers(o.nzc(), columnBatch(o.nzc(), len(arenas)), func(worker, start, end int) {
		ar := &arenas[worker]
		for i := start; i < end; i++ {
			if flop[i] == 0 {
				continue
			}
			ranges := o.resolve(i, ar)
			size := algo.NextPow2(flop[i], minHashTableSize)
			mask := size - 1
			keys := grow(ar.keys, size)
			ar.keys = keys
			for s := range keys {
				keys[s] = emptyKey
			}

			count := 0
			for _, r := range ranges {
				for k := r.First; k < r.End; k++ {
					key := o.air[k]
					h := (key * hashScale) & mask
					for {
						if keys[h] == key {
							break
						}
						if keys[h] == emptyKey {
							keys[h] = key
							count++
							break
						}
						h = (h + 1) & mask
					}
				}
			}
			nnz[i] = count
		}
	})
	return nnz
}

func estimateNNZHeap[NT1, NT2 any](pool *workerpool.Pool, o *operands[NT1, NT2], arenas []arena) []int {
	nnz := make([]int, o.nzc())
	pool.ParallelForWorkers(o.nzc(), columnBatch(o.nzc(), len(arenas)), func(worker, start, end int) {
		ar := &arenas[worker]
		for i := start; i < end; i++ {
			ranges := o.resolve(i, ar)
			ar.heap = grow(ar.heap, len(ranges))
			h := initFrontiers(ar.heap, ranges, o.air)

			count, prev := 0, emptyKey
			for len(h) > 0 {
				if h[0].key != prev {
					prev = h[0].key
					count++
				}
				h = advance(h, ranges, o.air)
			}
			nnz[i] = count
		}
	})
	return nnz
}
