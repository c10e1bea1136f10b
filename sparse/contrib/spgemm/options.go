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
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

var (
	// ErrDimensionMismatch is returned when A has a different number of
	// columns than B has rows.
	ErrDimensionMismatch = errors.New("spgemm: inner dimensions do not match")

	// ErrNilSemiring is returned when Multiply or Add is missing.
	ErrNilSemiring = errors.New("spgemm: semiring needs both Multiply and Add")

	// ErrNilOperand is returned when A or B is nil, including a nil
	// *sparse.Dcsc.
	ErrNilOperand = errors.New("spgemm: nil operand")
)

// Estimator selects how the number of distinct output rows per column is
// counted before the merge.
type Estimator int

const (
	// EstimatorHash counts distinct rows with an open addressing table sized
	// from the column's FLOP count.
	EstimatorHash Estimator = iota
	// EstimatorHeap counts distinct rows with a k-way heap merge. It needs
	// no table but pays a heap operation per product.
	EstimatorHeap
)

// String returns "hash" or "heap".
func (e Estimator) String() string {
	switch e {
	case EstimatorHash:
		return "hash"
	case EstimatorHeap:
		return "heap"
	default:
		return "unknown"
	}
}

// strategy pins the merge strategy of every column. Auto uses the
// compression ratio.
type strategy int

const (
	strategyAuto strategy = iota
	strategyHeap
	strategyHash
)

// Stats describes one multiplication. All counts refer to this node's
// product only.
type Stats struct {
	// Threads is the number of workers used.
	Threads int
	// FLOP is the number of products a naive merge would form.
	FLOP int64
	// NNZ is the estimated number of output entries (distinct positions).
	NNZ int64
	// Written is the number of entries in the result. It is smaller than
	// NNZ when every product reaching a position was annihilated.
	Written int64
	// Annihilated is the number of products dropped by the semiring.
	Annihilated int64
	// CompressionRatio is FLOP / NNZ, or 0 when NNZ is 0.
	CompressionRatio float64
	// HeapColumns and HashColumns count the columns merged by each strategy.
	HeapColumns int
	HashColumns int
	// Elapsed is the wall time of the whole call.
	Elapsed time.Duration
}

type config struct {
	pool          *workerpool.Pool
	threads       int
	releaseA      bool
	releaseB      bool
	estimator     Estimator
	strategy      strategy
	stats         *Stats
	logger        *zap.Logger
	meterProvider metric.MeterProvider
}

// Option configures Multiply.
type Option func(*config)

// WithPool runs the kernel on an existing pool. The pool is not closed.
// Takes precedence over WithThreads.
func WithPool(pool *workerpool.Pool) Option {
	return func(c *config) {
		c.pool = pool
	}
}

// WithThreads runs the kernel on a temporary pool of n workers.
// n <= 0 selects sparse.DefaultThreads().
func WithThreads(n int) Option {
	return func(c *config) {
		c.threads = n
	}
}

// WithReleaseA releases A's storage as soon as the merge no longer reads
// it, bounding peak memory in chained products such as A*A*A.
func WithReleaseA() Option {
	return func(c *config) {
		c.releaseA = true
	}
}

// WithReleaseB is WithReleaseA for B.
func WithReleaseB() Option {
	return func(c *config) {
		c.releaseB = true
	}
}

// WithEstimator selects the output size estimator. Default EstimatorHash.
func WithEstimator(e Estimator) Option {
	return func(c *config) {
		c.estimator = e
	}
}

// WithStats stores the diagnostics of the call in s.
func WithStats(s *Stats) Option {
	return func(c *config) {
		c.stats = s
	}
}

// WithLogger sets the logger for diagnostics. Defaults to the logger carried
// by the context (ctxzap), which is a no-op logger if none was attached.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMeterProvider records diagnostics to OpenTelemetry instruments of mp.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// withStrategy pins the merge strategy of every column.
func withStrategy(s strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}
