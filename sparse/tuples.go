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

package sparse

import (
	"fmt"
	"slices"
)

// Tuples is a rows x cols matrix stored as a flat list of triples.
// It is the output format of the multiplication kernels.
type Tuples[T any] struct {
	rows, cols int
	entries    []Triple[T]
}

// NewTuples wraps entries without copying them.
func NewTuples[T any](rows, cols int, entries []Triple[T]) *Tuples[T] {
	return &Tuples[T]{rows: rows, cols: cols, entries: entries}
}

// Zero returns a structurally zero rows x cols matrix.
func Zero[T any](rows, cols int) *Tuples[T] {
	return &Tuples[T]{rows: rows, cols: cols}
}

func (t *Tuples[T]) Rows() int { return t.rows }
func (t *Tuples[T]) Cols() int { return t.cols }
func (t *Tuples[T]) NNZ() int  { return len(t.entries) }

// Entries returns the underlying triples. The slice is owned by t.
func (t *Tuples[T]) Entries() []Triple[T] { return t.entries }

// SortColumnMajor orders the triples by (col, row).
func (t *Tuples[T]) SortColumnMajor() {
	slices.SortFunc(t.entries, compareColumnMajor[T])
}

// SortRowMajor orders the triples by (row, col).
func (t *Tuples[T]) SortRowMajor() {
	slices.SortFunc(t.entries, func(a, b Triple[T]) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
}

// ToDcsc builds a column store from the triples. See NewDcsc for add.
func (t *Tuples[T]) ToDcsc(add func(x, y T) T) *Dcsc[T] {
	return NewDcsc(t.rows, t.cols, t.entries, add)
}

// Dense expands the matrix into a row-major rows x cols slice. Positions
// without an entry hold the zero value of T. Meant for tests and small demos.
func (t *Tuples[T]) Dense() [][]T {
	d := make([][]T, t.rows)
	for i := range d {
		d[i] = make([]T, t.cols)
	}
	for _, e := range t.entries {
		d[e.Row][e.Col] = e.Val
	}
	return d
}

// String returns a short description such as "Tuples[5x7, nnz=12]".
func (t *Tuples[T]) String() string {
	return fmt.Sprintf("Tuples[%dx%d, nnz=%d]", t.rows, t.cols, len(t.entries))
}

// FromDense builds column-major triples from a row-major dense matrix,
// skipping every value for which keep returns false.
func FromDense[T any](d [][]T, keep func(T) bool) *Tuples[T] {
	rows := len(d)
	cols := 0
	if rows > 0 {
		cols = len(d[0])
	}
	var entries []Triple[T]
	for j := range cols {
		for i := range rows {
			if keep(d[i][j]) {
				entries = append(entries, Triple[T]{Row: i, Col: j, Val: d[i][j]})
			}
		}
	}
	return NewTuples(rows, cols, entries)
}
