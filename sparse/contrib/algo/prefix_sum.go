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

package algo

import (
	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

// BasePrefixSum computes the inclusive prefix sum of data in place, starting
// from carry, and returns the last value written (or carry if data is empty).
//
//	data := []int{1, 2, 3}
//	BasePrefixSum(data, 10) // data = [11, 13, 16], returns 16
func BasePrefixSum[T sparse.Number](data []T, carry T) T {
	for i := range data {
		carry += data[i]
		data[i] = carry
	}
	return carry
}

// PrefixSum returns the exclusive prefix sum of in: a new slice of length
// len(in)+1 with out[0] = 0 and out[i+1] = in[0] + ... + in[i].
//
// With a nil or single-worker pool the scan is serial. Otherwise the index
// range is cut into one contiguous chunk per worker and scanned in two
// phases separated by the pool's join:
//
//  1. each chunk computes its local running sum and records its total;
//  2. each chunk adds the totals of all preceding chunks to its elements.
//
// Every output element is written by exactly one task in each phase.
func PrefixSum[T sparse.Number](pool *workerpool.Pool, in []T) []T {
	n := len(in)
	out := make([]T, n+1)
	psum := out[1:]

	chunks := min(pool.NumWorkers(), n)
	if chunks <= 1 {
		copy(psum, in)
		BasePrefixSum(psum, 0)
		return out
	}
	chunkSize := (n + chunks - 1) / chunks
	chunks = (n + chunkSize - 1) / chunkSize
	totals := make([]T, chunks)

	pool.ParallelForAtomic(chunks, func(c int) {
		start := c * chunkSize
		end := min(start+chunkSize, n)
		copy(psum[start:end], in[start:end])
		totals[c] = BasePrefixSum(psum[start:end], 0)
	})

	// Barrier: every chunk total is final here.

	pool.ParallelForAtomic(chunks, func(c int) {
		var offset T
		for _, t := range totals[:c] {
			offset += t
		}
		if offset == 0 {
			return
		}
		start := c * chunkSize
		end := min(start+chunkSize, n)
		for i := start; i < end; i++ {
			psum[i] += offset
		}
	})
	return out
}
