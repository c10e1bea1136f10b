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
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// InstrumentationName is the name of the meter the kernel records to.
const InstrumentationName = "github.com/go-sparse/spgemm/sparse/contrib/spgemm"

const (
	flopCounterName    = "spgemm.flop"
	nnzCounterName     = "spgemm.nnz"
	columnsCounterName = "spgemm.columns"
	durationHistoName  = "spgemm.duration"
)

type recorder struct {
	flop     metric.Int64Counter
	nnz      metric.Int64Counter
	columns  metric.Int64Counter
	duration metric.Float64Histogram
}

// newRecorder creates the kernel's instruments on mp. If any of them cannot
// be created the error goes to the global otel error handler and the
// recorder falls back to no-op instruments.
func newRecorder(mp metric.MeterProvider) *recorder {
	meter := mp.Meter(InstrumentationName)

	var r recorder
	var err, errs error
	r.flop, err = meter.Int64Counter(flopCounterName,
		metric.WithDescription("products formed by a naive merge, per multiplication"),
		metric.WithUnit("{product}"))
	errs = errors.Join(errs, err)
	r.nnz, err = meter.Int64Counter(nnzCounterName,
		metric.WithDescription("entries written to product matrices"),
		metric.WithUnit("{entry}"))
	errs = errors.Join(errs, err)
	r.columns, err = meter.Int64Counter(columnsCounterName,
		metric.WithDescription("output columns merged, by merge strategy"),
		metric.WithUnit("{column}"))
	errs = errors.Join(errs, err)
	r.duration, err = meter.Float64Histogram(durationHistoName,
		metric.WithDescription("wall time of a multiplication"),
		metric.WithUnit("ms"))
	errs = errors.Join(errs, err)

	if errs != nil {
		otel.Handle(errs)
		if _, isNoop := mp.(noop.MeterProvider); !isNoop {
			return newRecorder(noop.NewMeterProvider())
		}
	}
	return &r
}

func (r *recorder) record(ctx context.Context, s *Stats) {
	r.flop.Add(ctx, s.FLOP)
	r.nnz.Add(ctx, s.Written)
	if s.HeapColumns > 0 {
		r.columns.Add(ctx, int64(s.HeapColumns), metric.WithAttributes(attribute.String("strategy", "heap")))
	}
	if s.HashColumns > 0 {
		r.columns.Add(ctx, int64(s.HashColumns), metric.WithAttributes(attribute.String("strategy", "hash")))
	}
	r.duration.Record(ctx, float64(s.Elapsed.Microseconds())/1000)
}
