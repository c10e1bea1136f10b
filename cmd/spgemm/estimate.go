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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-sparse/spgemm/sparse/contrib/spgemm"
)

func newEstimateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate A B",
		Short: "Report the FLOP and output size estimates of A*B without multiplying",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := parseEstimator(a.v.GetString("estimator"))
			if err != nil {
				return err
			}
			ma, mb, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}
			if ma.Cols() != mb.Rows() {
				return fmt.Errorf("%w: A is %dx%d, B is %dx%d", spgemm.ErrDimensionMismatch,
					ma.Rows(), ma.Cols(), mb.Rows(), mb.Cols())
			}

			flop := spgemm.EstimateFLOP[float64, float64](a.pool, ma, mb)
			var nnz []int
			if est == spgemm.EstimatorHeap {
				nnz = spgemm.EstimateNNZHeap[float64, float64](a.pool, ma, mb)
			} else {
				nnz = spgemm.EstimateNNZ[float64, float64](a.pool, ma, mb, flop)
			}
			if flop == nil {
				// One operand is empty.
				flop = make([]int, mb.NonemptyCols())
				nnz = make([]int, mb.NonemptyCols())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			if a.v.GetBool("per-column") {
				fmt.Fprintln(tw, "column\tflop\tnnz\tratio\t")
				for i, col := range mb.ColIDs() {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t\n", col, flop[i], nnz[i], ratio(flop[i], nnz[i]))
				}
			}
			var totalFLOP, totalNNZ int
			for i := range flop {
				totalFLOP += flop[i]
				totalNNZ += nnz[i]
			}
			fmt.Fprintf(tw, "total\t%d\t%d\t%s\t\n", totalFLOP, totalNNZ, ratio(totalFLOP, totalNNZ))
			return tw.Flush()
		},
	}

	cmd.Flags().Bool("per-column", false, "print one row per nonempty column of B")
	addEstimatorFlag(cmd.Flags())
	return cmd
}

func ratio(flop, nnz int) string {
	if nnz == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(flop)/float64(nnz))
}
