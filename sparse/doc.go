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

// Package sparse provides the storage types shared by the sparse kernels in
// sparse/contrib.
//
// The central type is the doubly compressed column store (DCSC), which keeps
// only the nonempty columns of a matrix:
//
//	jc: column id of every nonempty column        [1, 4, 7]
//	cp: cumulative entry offsets, len(jc)+1        [0, 2, 3, 5]
//	ir: row index of every entry                   [0, 3, 2, 1, 4]
//	v:  value of every entry                       [...]
//
// Kernels consume a store through the Columns interface, so any layout that
// can expose these arrays and resolve row keys to entry ranges can be
// multiplied. Dcsc is the in-memory implementation used by the tools and tests.
//
// Products are returned as Tuples, a flat list of (row, col, value) triples.
//
// Example:
//
//	a := sparse.NewDcsc(2, 3, []sparse.Triple[float64]{
//	    {Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 2, Val: 2}, {Row: 1, Col: 1, Val: 3},
//	}, nil)
//	fmt.Println(a.NNZ(), a.NonemptyCols()) // 3 3
package sparse
