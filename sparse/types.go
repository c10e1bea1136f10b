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

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// SignedInts is a constraint for signed integer types.
type SignedInts interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInts is a constraint for unsigned integer types.
type UnsignedInts interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integers is a constraint for all integer types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Number is a constraint for every type with + and * operators.
type Number interface {
	Floats | Integers
}

// Triple is one stored entry of a sparse matrix.
type Triple[T any] struct {
	Row int
	Col int
	Val T
}

// Range is a half-open [First, End) window into a store's flattened entry
// list. An empty range (First == End) means the queried column holds no
// entries.
type Range struct {
	First int
	End   int
}

// Len returns the number of entries in the range.
func (r Range) Len() int {
	return r.End - r.First
}

// Empty reports whether the range holds no entries.
func (r Range) Empty() bool {
	return r.First == r.End
}

// Aux is the dense-to-nonempty column index of a DCSC store.
//
// Column c lives, if present, among jc[Index[c/ChunkSize]:Index[c/ChunkSize+1]],
// so a lookup scans at most one chunk of nonempty column ids.
type Aux struct {
	Index     []int
	ChunkSize int
}

// IsZero reports whether the index was never built.
func (a Aux) IsZero() bool {
	return len(a.Index) == 0 || a.ChunkSize <= 0
}
