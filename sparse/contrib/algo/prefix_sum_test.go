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
	"fmt"
	"math/rand"
	"testing"

	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

// prefixSumReference is a straightforward serial exclusive scan.
func prefixSumReference(in []int64) []int64 {
	out := make([]int64, len(in)+1)
	for i, v := range in {
		out[i+1] = out[i] + v
	}
	return out
}

func TestPrefixSumExample(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	got := PrefixSum(pool, []int{2, 1, 3, 5})
	want := []int{0, 2, 3, 6, 11}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("PrefixSum = %v, want %v", got, want)
	}
}

func TestPrefixSumSerial(t *testing.T) {
	got := PrefixSum(nil, []int{4, 0, 1})
	want := []int{0, 4, 4, 5}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("PrefixSum(nil) = %v, want %v", got, want)
	}

	single := workerpool.New(1)
	defer single.Close()
	if got := PrefixSum(single, []int{4, 0, 1}); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("PrefixSum(1 worker) = %v, want %v", got, want)
	}
}

func TestPrefixSumEmpty(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	got := PrefixSum[int](pool, nil)
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("PrefixSum(empty) = %v, want [0]", got)
	}
}

func TestPrefixSumRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, workers := range []int{1, 2, 3, 4, 7, 16} {
		pool := workerpool.New(workers)
		for _, n := range []int{1, 2, 5, 16, 17, 1000, 4099} {
			in := make([]int64, n)
			for i := range in {
				in[i] = int64(rng.Intn(100))
			}
			got := PrefixSum(pool, in)
			want := prefixSumReference(in)
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("workers=%d n=%d: out[%d] = %d, want %d", workers, n, i, got[i], want[i])
				}
			}
		}
		pool.Close()
	}
}

func TestPrefixSumDoesNotModifyInput(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	in := []float64{1.5, 2.5, 3, 4, 5, 6, 7, 8}
	PrefixSum(pool, in)
	if in[0] != 1.5 || in[7] != 8 {
		t.Errorf("input modified: %v", in)
	}
}

func TestBasePrefixSum(t *testing.T) {
	data := []uint32{1, 2, 3}
	last := BasePrefixSum(data, 10)
	if last != 16 || fmt.Sprint(data) != "[11 13 16]" {
		t.Errorf("BasePrefixSum = %v (last %d), want [11 13 16] (last 16)", data, last)
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ n, min, want int }{
		{0, 16, 16},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{1000, 16, 1024},
		{1024, 16, 1024},
		{3, 1, 4},
	}
	for _, tt := range tests {
		if got := NextPow2(tt.n, tt.min); got != tt.want {
			t.Errorf("NextPow2(%d, %d) = %d, want %d", tt.n, tt.min, got, tt.want)
		}
	}
}

func BenchmarkPrefixSum(b *testing.B) {
	pool := workerpool.New(0)
	defer pool.Close()

	in := make([]int, 1<<20)
	for i := range in {
		in[i] = i & 7
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PrefixSum(pool, in)
	}
}
