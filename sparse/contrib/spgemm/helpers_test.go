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
	"math/rand"
	"testing"

	"github.com/go-sparse/spgemm/sparse"
)

// randomMatrix returns a rows x cols matrix with roughly density*rows*cols
// entries in [1, maxVal], together with its dense form.
func randomMatrix(rng *rand.Rand, rows, cols int, density float64, maxVal int64) (*sparse.Dcsc[int64], [][]int64) {
	dense := make([][]int64, rows)
	for i := range dense {
		dense[i] = make([]int64, cols)
	}
	var entries []sparse.Triple[int64]
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() < density {
				v := 1 + rng.Int63n(maxVal)
				dense[i][j] = v
				entries = append(entries, sparse.Triple[int64]{Row: i, Col: j, Val: v})
			}
		}
	}
	return sparse.NewDcsc(rows, cols, entries, nil), dense
}

// matmulReference computes the dense product of a (m x k) and b (k x n).
func matmulReference(a, b [][]int64, m, n, k int) [][]int64 {
	c := make([][]int64, m)
	for i := range m {
		c[i] = make([]int64, n)
		for j := range n {
			var sum int64
			for p := range k {
				sum += a[i][p] * b[p][j]
			}
			c[i][j] = sum
		}
	}
	return c
}

// checkLayout verifies that triples are grouped by column in ascending
// column order, rows strictly ascend within a column, and no position
// repeats.
func checkLayout[T any](t *testing.T, c *sparse.Tuples[T]) {
	t.Helper()
	entries := c.Entries()
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Col < prev.Col {
			t.Fatalf("entry %d: column %d after column %d", i, cur.Col, prev.Col)
		}
		if cur.Col == prev.Col && cur.Row <= prev.Row {
			t.Fatalf("entry %d: row %d after row %d in column %d", i, cur.Row, prev.Row, cur.Col)
		}
	}
	for _, e := range entries {
		if e.Row < 0 || e.Row >= c.Rows() || e.Col < 0 || e.Col >= c.Cols() {
			t.Fatalf("entry (%d, %d) outside %dx%d", e.Row, e.Col, c.Rows(), c.Cols())
		}
	}
}

// exampleOperands returns A = [[1,0,2],[0,3,0]] and B = [[0,4],[1,0],[0,5]].
func exampleOperands() (*sparse.Dcsc[int64], *sparse.Dcsc[int64]) {
	nonzero := func(v int64) bool { return v != 0 }
	a := sparse.FromDense([][]int64{{1, 0, 2}, {0, 3, 0}}, nonzero).ToDcsc(nil)
	b := sparse.FromDense([][]int64{{0, 4}, {1, 0}, {0, 5}}, nonzero).ToDcsc(nil)
	return a, b
}
