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
)

const (
	// hashScale is the multiplier of the row-key hash (key*107) & (size-1).
	hashScale = 107

	// minHashTableSize is the smallest open addressing table, a power of two.
	minHashTableSize = 16

	// emptyKey marks a free hash slot. Row keys are never negative.
	emptyKey = -1

	// CompressionThreshold is the flop/nnz ratio from which a column is
	// merged by hash accumulation instead of the heap.
	CompressionThreshold = 2.0
)

// operands caches the arrays of A and B read by every column task.
type operands[NT1, NT2 any] struct {
	a    sparse.Columns[NT1]
	aux  sparse.Aux
	air  []int
	anum []NT1

	bjc  []int
	bcp  []int
	bir  []int
	bnum []NT2
}

func newOperands[NT1, NT2 any](a sparse.Columns[NT1], b sparse.Columns[NT2]) *operands[NT1, NT2] {
	return &operands[NT1, NT2]{
		a:    a,
		aux:  a.ConstructAux(),
		air:  a.RowIdx(),
		anum: a.Values(),
		bjc:  b.ColIDs(),
		bcp:  b.ColPtr(),
		bir:  b.RowIdx(),
		bnum: b.Values(),
	}
}

// nzc returns the number of nonempty columns of B, i.e. of output columns.
func (o *operands[NT1, NT2]) nzc() int {
	return len(o.bjc)
}

// resolve fills ar.ranges with the A ranges matching the rows of B's i-th
// nonempty column and returns them.
func (o *operands[NT1, NT2]) resolve(i int, ar *arena) []sparse.Range {
	lo, hi := o.bcp[i], o.bcp[i+1]
	ar.ranges = grow(ar.ranges, hi-lo)
	o.a.FillColInds(o.bir[lo:hi], ar.ranges, o.aux)
	return ar.ranges
}

// arena is the scratch space of one worker. Buffers only ever grow, so a
// worker stops allocating once it has seen its largest column.
type arena struct {
	ranges []sparse.Range
	heap   []frontier
	keys   []int

	heapColumns int
	hashColumns int
	annihilated int64
}

// newArenas returns one arena per worker, with the range buffer presized to
// min(nnz(A)/workers, nnz(B)).
func newArenas(workers, nnzA, nnzB int) []arena {
	arenas := make([]arena, workers)
	presize := min(nnzA/max(workers, 1), nnzB)
	for w := range arenas {
		arenas[w].ranges = make([]sparse.Range, presize)
	}
	return arenas
}

// grow returns s resized to n, reallocating only when its capacity is short.
func grow[S ~[]E, E any](s S, n int) S {
	if cap(s) >= n {
		return s[:n]
	}
	return make(S, n, max(n, 2*cap(s)))
}

// hashSlot is one entry of the accumulation table of the hash merge.
type hashSlot[V any] struct {
	key int
	val V
}
