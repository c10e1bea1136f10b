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
	"slices"

	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/algo"
)

// mergeArena extends a worker's arena with the accumulation table of the
// hash merge, whose slot type depends on the output value type.
type mergeArena[V any] struct {
	arena
	slots []hashSlot[V]
}

// mergeHeap merges column i of the product into out with a k-way heap
// merge over ranges and returns the number of entries written.
//
// Products leave the heap in ascending row order, so a product either
// accumulates into the entry written just before it or starts a new one.
func mergeHeap[NT1, NT2, NTO any](o *operands[NT1, NT2], sr Semiring[NT1, NT2, NTO], i int,
	ranges []sparse.Range, ar *mergeArena[NTO], out []sparse.Triple[NTO]) int {
	col, bOff := o.bjc[i], o.bcp[i]

	ar.heap = grow(ar.heap, len(ranges))
	h := initFrontiers(ar.heap, ranges, o.air)

	n := 0
	for len(h) > 0 {
		key, pos := h[0].key, h[0].pos
		prod, annihilated := sr.Multiply(o.anum[ranges[pos].First], o.bnum[bOff+pos])
		switch {
		case annihilated:
			ar.annihilated++
		case n > 0 && out[n-1].Row == key:
			out[n-1].Val = sr.Add(out[n-1].Val, prod)
		default:
			out[n] = sparse.Triple[NTO]{Row: key, Col: col, Val: prod}
			n++
		}
		h = advance(h, ranges, o.air)
	}
	return n
}

// mergeHash merges column i of the product into out by accumulating the
// products in an open addressing table sized from nnz, then writing the
// live slots sorted by row. It returns the number of entries written.
func mergeHash[NT1, NT2, NTO any](o *operands[NT1, NT2], sr Semiring[NT1, NT2, NTO], i int,
	ranges []sparse.Range, nnz int, ar *mergeArena[NTO], out []sparse.Triple[NTO]) int {
	col, bOff := o.bjc[i], o.bcp[i]

	size := algo.NextPow2(nnz, minHashTableSize)
	mask := size - 1
	slots := grow(ar.slots, size)
	ar.slots = slots
	for s := range slots {
		slots[s].key = emptyKey
	}

	for j, r := range ranges {
		bval := o.bnum[bOff+j]
		for k := r.First; k < r.End; k++ {
			prod, annihilated := sr.Multiply(o.anum[k], bval)
			if annihilated {
				ar.annihilated++
				continue
			}
			key := o.air[k]
			h := (key * hashScale) & mask
			for {
				if slots[h].key == key {
					slots[h].val = sr.Add(slots[h].val, prod)
					break
				}
				if slots[h].key == emptyKey {
					slots[h] = hashSlot[NTO]{key: key, val: prod}
					break
				}
				h = (h + 1) & mask
			}
		}
	}

	n := 0
	for s := range slots {
		if slots[s].key != emptyKey {
			slots[n] = slots[s]
			n++
		}
	}
	live := slots[:n]
	slices.SortFunc(live, func(x, y hashSlot[NTO]) int { return x.key - y.key })

	for s, slot := range live {
		out[s] = sparse.Triple[NTO]{Row: slot.key, Col: col, Val: slot.val}
	}
	return n
}
