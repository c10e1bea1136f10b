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

// Package algo provides the small parallel building blocks shared by the
// sparse kernels.
//
// # Prefix sums
//
// PrefixSum turns per-column counts into write offsets:
//
//	counts := []int{2, 1, 3, 5}
//	offsets := algo.PrefixSum(pool, counts)
//	// offsets = [0, 2, 3, 6, 11]
//
// Column j of an output then owns the window [offsets[j], offsets[j+1]),
// which lets workers fill disjoint parts of a single buffer without locks.
//
// # Table sizing
//
// NextPow2 rounds a requested capacity up to a power of two so open
// addressing tables can be indexed with a bit mask.
package algo
