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

import "github.com/go-sparse/spgemm/sparse"

// frontier is the next unconsumed entry of one contributing column of A.
// key is the entry's row; pos is the index of the range (and of the matching
// entry in B's column) the entry belongs to.
type frontier struct {
	key int
	pos int
}

// less orders by row, then by position in B's column, so equal rows are
// always accumulated in the same order.
func (f frontier) less(g frontier) bool {
	return f.key < g.key || (f.key == g.key && f.pos < g.pos)
}

// initFrontiers builds a min-heap over the first entry of every nonempty
// range, reusing the capacity of h.
func initFrontiers(h []frontier, ranges []sparse.Range, air []int) []frontier {
	h = h[:0]
	for j, r := range ranges {
		if !r.Empty() {
			h = append(h, frontier{key: air[r.First], pos: j})
		}
	}
	for i := len(h)/2 - 1; i >= 0; i-- {
		siftDown(h, i)
	}
	return h
}

// advance consumes the minimum frontier: its range moves one entry forward
// and it either re-enters the heap with the next row or leaves it.
func advance(h []frontier, ranges []sparse.Range, air []int) []frontier {
	pos := h[0].pos
	ranges[pos].First++
	if ranges[pos].First < ranges[pos].End {
		h[0].key = air[ranges[pos].First]
	} else {
		last := len(h) - 1
		h[0] = h[last]
		h = h[:last]
	}
	if len(h) > 1 {
		siftDown(h, 0)
	}
	return h
}

func siftDown(h []frontier, i int) {
	n := len(h)
	for {
		child := 2*i + 1
		if child >= n {
			return
		}
		if r := child + 1; r < n && h[r].less(h[child]) {
			child = r
		}
		if !h[child].less(h[i]) {
			return
		}
		h[i], h[child] = h[child], h[i]
		i = child
	}
}
