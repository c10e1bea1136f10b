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

package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/spgemm"
	"github.com/go-sparse/spgemm/sparse/mmio"
)

var semirings = map[string]spgemm.Semiring[float64, float64, float64]{
	"plus-times":        spgemm.PlusTimes[float64](),
	"min-plus":          spgemm.MinPlus[float64](),
	"max-times":         spgemm.MaxTimes[float64](),
	"select-second-max": spgemm.SelectSecondMax[float64, float64](),
}

func semiringNames() string {
	names := make([]string, 0, len(semirings))
	for name := range semirings {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

func parseEstimator(name string) (spgemm.Estimator, error) {
	switch name {
	case "", spgemm.EstimatorHash.String():
		return spgemm.EstimatorHash, nil
	case spgemm.EstimatorHeap.String():
		return spgemm.EstimatorHeap, nil
	default:
		return 0, fmt.Errorf("unknown estimator %q (want hash or heap)", name)
	}
}

func addEstimatorFlag(fs *pflag.FlagSet) {
	fs.String("estimator", spgemm.EstimatorHash.String(), "output size estimator: hash or heap")
}

func newMultiplyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multiply A B",
		Short: "Compute C = A*B and write it as a Matrix Market file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := a.v
			sr, ok := semirings[v.GetString("semiring")]
			if !ok {
				return fmt.Errorf("unknown semiring %q (want one of %s)", v.GetString("semiring"), semiringNames())
			}
			est, err := parseEstimator(v.GetString("estimator"))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			l := ctxzap.Extract(ctx)

			ma, mb, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}
			l.Debug("operands loaded", zap.Stringer("a", ma), zap.Stringer("b", mb))

			var stats spgemm.Stats
			c, err := spgemm.Multiply(ctx, ma, mb, sr,
				spgemm.WithPool(a.pool),
				spgemm.WithEstimator(est),
				spgemm.WithReleaseA(),
				spgemm.WithReleaseB(),
				spgemm.WithStats(&stats),
				spgemm.WithMeterProvider(a.mp),
			)
			if err != nil {
				return err
			}

			if err := writeProduct(cmd, v.GetString("output"), c); err != nil {
				return err
			}
			l.Info("product written",
				zap.String("output", v.GetString("output")),
				zap.Int("nnz", c.NNZ()),
				zap.Int64("flop", stats.FLOP),
				zap.Float64("compression_ratio", stats.CompressionRatio),
				zap.Duration("elapsed", stats.Elapsed),
			)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringP("output", "o", "-", "output file; .gz and .zst are compressed, - is stdout")
	fs.String("semiring", "plus-times", "semiring: "+semiringNames())
	addEstimatorFlag(fs)
	return cmd
}

func writeProduct(cmd *cobra.Command, path string, c *sparse.Tuples[float64]) error {
	if path != "" && path != "-" {
		return mmio.WriteFile(path, c)
	}
	return mmio.Write(cmd.OutOrStdout(), c)
}
