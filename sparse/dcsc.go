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
	"math"
	"slices"
)

// ScanThreshold selects the column lookup in FillColInds: when the store has
// fewer than ScanThreshold nonempty columns per queried key, a merge-style
// scan over all column ids is cheaper than chunked lookups.
const ScanThreshold = 4

// Dcsc is an in-memory doubly compressed sparse column matrix.
type Dcsc[T any] struct {
	rows, cols int

	jc  []int // ids of nonempty columns
	cp  []int // len(jc)+1 offsets into ir/num
	ir  []int // row indices
	num []T   // values
}

var _ Columns[float64] = (*Dcsc[float64])(nil)

// NewDcsc builds a rows x cols store from entries given in any order.
//
// Entries sharing a (row, col) position are combined with add in input
// order; when add is nil the last one wins. Panics if an entry lies outside
// the matrix.
func NewDcsc[T any](rows, cols int, entries []Triple[T], add func(x, y T) T) *Dcsc[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("sparse: negative dimensions %dx%d", rows, cols))
	}
	sorted := slices.Clone(entries)
	for _, e := range sorted {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			panic(fmt.Sprintf("sparse: entry (%d, %d) outside %dx%d matrix", e.Row, e.Col, rows, cols))
		}
	}
	slices.SortStableFunc(sorted, compareColumnMajor[T])

	m := &Dcsc[T]{
		rows: rows,
		cols: cols,
		ir:   make([]int, 0, len(sorted)),
		num:  make([]T, 0, len(sorted)),
	}
	for i, e := range sorted {
		if i > 0 && sorted[i-1].Row == e.Row && sorted[i-1].Col == e.Col {
			last := len(m.num) - 1
			if add != nil {
				m.num[last] = add(m.num[last], e.Val)
			} else {
				m.num[last] = e.Val
			}
			continue
		}
		if len(m.jc) == 0 || m.jc[len(m.jc)-1] != e.Col {
			m.jc = append(m.jc, e.Col)
			m.cp = append(m.cp, len(m.ir))
		}
		m.ir = append(m.ir, e.Row)
		m.num = append(m.num, e.Val)
	}
	m.cp = append(m.cp, len(m.ir))
	return m
}

// NewDcscFromArrays wraps already compressed arrays without copying them.
// jc must be ascending, cp must have len(jc)+1 nondecreasing offsets starting
// at 0, and rows must be ascending within each column.
func NewDcscFromArrays[T any](rows, cols int, jc, cp, ir []int, num []T) (*Dcsc[T], error) {
	if len(cp) != len(jc)+1 {
		return nil, fmt.Errorf("sparse: len(cp)=%d, want len(jc)+1=%d", len(cp), len(jc)+1)
	}
	if len(ir) != len(num) || cp[0] != 0 || cp[len(jc)] != len(ir) {
		return nil, fmt.Errorf("sparse: inconsistent entry arrays (cp[last]=%d, len(ir)=%d, len(num)=%d)",
			cp[len(jc)], len(ir), len(num))
	}
	for i, c := range jc {
		if c < 0 || c >= cols || (i > 0 && jc[i-1] >= c) {
			return nil, fmt.Errorf("sparse: column ids not ascending within [0, %d) at %d", cols, i)
		}
		if cp[i] >= cp[i+1] {
			return nil, fmt.Errorf("sparse: nonempty column %d has no entries", c)
		}
		for k := cp[i]; k < cp[i+1]; k++ {
			if ir[k] < 0 || ir[k] >= rows || (k > cp[i] && ir[k-1] >= ir[k]) {
				return nil, fmt.Errorf("sparse: row ids of column %d not ascending within [0, %d)", c, rows)
			}
		}
	}
	if len(jc) == 0 {
		cp = []int{0}
	}
	return &Dcsc[T]{rows: rows, cols: cols, jc: jc, cp: cp, ir: ir, num: num}, nil
}

func compareColumnMajor[T any](a, b Triple[T]) int {
	if a.Col != b.Col {
		return a.Col - b.Col
	}
	return a.Row - b.Row
}

func (m *Dcsc[T]) Rows() int         { return m.rows }
func (m *Dcsc[T]) Cols() int         { return m.cols }
func (m *Dcsc[T]) NNZ() int          { return len(m.ir) }
func (m *Dcsc[T]) NonemptyCols() int { return len(m.jc) }
func (m *Dcsc[T]) ColIDs() []int     { return m.jc }
func (m *Dcsc[T]) ColPtr() []int     { return m.cp }
func (m *Dcsc[T]) RowIdx() []int     { return m.ir }
func (m *Dcsc[T]) Values() []T       { return m.num }

// Column returns the id, row indices and values of the i-th nonempty column.
func (m *Dcsc[T]) Column(i int) (col int, rows []int, vals []T) {
	lo, hi := m.cp[i], m.cp[i+1]
	return m.jc[i], m.ir[lo:hi], m.num[lo:hi]
}

// ConstructAux builds the chunked dense-to-nonempty column index.
//
// The column id space [0, cols] is cut into chunks of ceil((cols+1)/nzc)
// ids, so on average a chunk holds about one nonempty column.
func (m *Dcsc[T]) ConstructAux() Aux {
	nzc := len(m.jc)
	if nzc == 0 {
		return Aux{}
	}
	chunkSize := int(math.Ceil(float64(m.cols+1) / float64(nzc)))
	numChunks := (m.cols + 1 + chunkSize - 1) / chunkSize

	index := make([]int, numChunks+1)
	reg, cur := 0, 1
	for i, c := range m.jc {
		for c >= cur*chunkSize {
			index[cur] = reg
			cur++
		}
		reg = i + 1
	}
	for ; cur <= numChunks; cur++ {
		index[cur] = reg
	}
	return Aux{Index: index, ChunkSize: chunkSize}
}

// auxIndex returns the position of col in jc using the chunk index.
func (m *Dcsc[T]) auxIndex(col int, aux Aux) (int, bool) {
	base := col / aux.ChunkSize
	start, end := aux.Index[base], aux.Index[base+1]
	for p := start; p < end; p++ {
		if m.jc[p] == col {
			return p, true
		}
	}
	return end, false
}

// FillColInds resolves the ascending column ids in keys to entry ranges.
func (m *Dcsc[T]) FillColInds(keys []int, dst []Range, aux Aux) {
	nind := len(keys)
	if nind == 0 {
		return
	}
	nzc := len(m.jc)
	if aux.IsZero() || nzc/nind < ScanThreshold {
		p := 0
		for i, k := range keys {
			for p < nzc && m.jc[p] < k {
				p++
			}
			if p < nzc && m.jc[p] == k {
				dst[i] = Range{First: m.cp[p], End: m.cp[p+1]}
			} else {
				dst[i] = Range{}
			}
		}
		return
	}
	for i, k := range keys {
		if p, found := m.auxIndex(k, aux); found {
			dst[i] = Range{First: m.cp[p], End: m.cp[p+1]}
		} else {
			dst[i] = Range{}
		}
	}
}

// Release drops the backing arrays. The dimensions are kept; the store
// reports zero entries afterwards.
func (m *Dcsc[T]) Release() {
	m.jc, m.ir, m.num = nil, nil, nil
	m.cp = []int{0}
}

// ToTuples copies the entries into column-major ordered triples.
func (m *Dcsc[T]) ToTuples() *Tuples[T] {
	entries := make([]Triple[T], 0, len(m.ir))
	for i, c := range m.jc {
		for k := m.cp[i]; k < m.cp[i+1]; k++ {
			entries = append(entries, Triple[T]{Row: m.ir[k], Col: c, Val: m.num[k]})
		}
	}
	return NewTuples(m.rows, m.cols, entries)
}

// Transpose returns a new store holding the transpose of m.
func (m *Dcsc[T]) Transpose() *Dcsc[T] {
	entries := make([]Triple[T], 0, len(m.ir))
	for i, c := range m.jc {
		for k := m.cp[i]; k < m.cp[i+1]; k++ {
			entries = append(entries, Triple[T]{Row: c, Col: m.ir[k], Val: m.num[k]})
		}
	}
	return NewDcsc(m.cols, m.rows, entries, nil)
}

// String returns a short description such as "Dcsc[5x7, nnz=12, nzc=4]".
func (m *Dcsc[T]) String() string {
	return fmt.Sprintf("Dcsc[%dx%d, nnz=%d, nzc=%d]", m.rows, m.cols, len(m.ir), len(m.jc))
}
