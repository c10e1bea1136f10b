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

// Columns is the read-only view of a column-compressed store that the
// multiplication kernels need. Implementations must not change while a
// kernel is reading them.
type Columns[T any] interface {
	// Rows returns the number of rows.
	Rows() int
	// Cols returns the number of columns, empty ones included.
	Cols() int
	// NNZ returns the number of stored entries.
	NNZ() int
	// NonemptyCols returns the number of columns holding at least one entry.
	NonemptyCols() int

	// ColIDs returns the ascending column id of every nonempty column.
	ColIDs() []int
	// ColPtr returns the NonemptyCols()+1 cumulative entry offsets.
	ColPtr() []int
	// RowIdx returns the row index of every entry, ascending within a column.
	RowIdx() []int
	// Values returns the value of every entry, parallel to RowIdx.
	Values() []T

	// ConstructAux builds the chunked column index used by FillColInds.
	ConstructAux() Aux
	// FillColInds resolves every column id in keys (ascending) to the range
	// of its entries, writing dst[i] for keys[i]. Missing columns resolve to
	// the empty range {0, 0}. dst must be at least len(keys) long.
	FillColInds(keys []int, dst []Range, aux Aux)
}

// Releaser is implemented by stores that can drop their backing arrays
// before they become unreachable.
type Releaser interface {
	Release()
}

// IsNil reports whether m is nil, either as an interface or as a nil
// *Dcsc wrapped in one.
func IsNil[T any](m Columns[T]) bool {
	if m == nil {
		return true
	}
	d, ok := m.(*Dcsc[T])
	return ok && d == nil
}

// IsZero reports whether m stores no entries.
func IsZero[T any](m Columns[T]) bool {
	return IsNil(m) || m.NNZ() == 0
}

// Release drops the storage of m if it implements Releaser.
func Release[T any](m Columns[T]) {
	if r, ok := m.(Releaser); ok {
		r.Release()
	}
}
