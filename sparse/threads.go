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
	"os"
	"runtime"
	"strconv"
)

// NumThreadsEnv names the environment variable that overrides the default
// number of worker threads used by the parallel kernels.
const NumThreadsEnv = "SPGEMM_NUM_THREADS"

// DefaultThreads returns the number of worker threads kernels use when the
// caller does not choose one.
//
// Order of precedence:
//   - SPGEMM_NUM_THREADS, when it parses as a positive integer
//   - the number of CPUs in the process affinity mask (Linux only)
//   - runtime.GOMAXPROCS(0)
//
// The result never exceeds GOMAXPROCS, since more workers than Ps only adds
// scheduling overhead.
func DefaultThreads() int {
	procs := runtime.GOMAXPROCS(0)
	if n, ok := threadsFromEnv(); ok {
		return min(n, procs)
	}
	if n := affinityCPUs(); n > 0 {
		return min(n, procs)
	}
	return procs
}

func threadsFromEnv() (int, bool) {
	val := os.Getenv(NumThreadsEnv)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
