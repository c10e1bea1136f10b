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
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-sparse/spgemm/sparse/contrib/mcl"
)

func newMCLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcl GRAPH",
		Short: "Cluster a graph with the Markov Cluster algorithm",
		Long: `Cluster the graph stored as a square Matrix Market adjacency matrix.
Each output line lists the members of one cluster.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v := a.v
			g, err := loadMatrix(args[0])
			if err != nil {
				return err
			}

			var labels []string
			if path := v.GetString("labels"); path != "" {
				if labels, err = readLabels(path); err != nil {
					return err
				}
			}

			res, err := mcl.Run(cmd.Context(), g, mcl.Params{
				Expansion:      v.GetInt("expansion"),
				Inflation:      v.GetFloat64("inflation"),
				PruneThreshold: v.GetFloat64("prune"),
				MaxPerColumn:   v.GetInt("max-per-column"),
				ChaosEpsilon:   v.GetFloat64("epsilon"),
				MaxIterations:  v.GetInt("max-iterations"),
				Pool:           a.pool,
			})
			if err != nil {
				return err
			}

			w, closeFn, err := outputWriter(cmd, v.GetString("output"))
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, closeFn())
			}()
			return mcl.WriteClusters(w, res.Clusters, labels, v.GetInt("base"))
		},
	}

	d := mcl.DefaultParams()
	fs := cmd.Flags()
	fs.StringP("output", "o", "-", "cluster file, - is stdout")
	fs.String("labels", "", "file with one vertex label per line")
	fs.Int("base", 1, "added to vertex ids when no labels are given")
	fs.Int("expansion", d.Expansion, "matrix power per iteration")
	fs.Float64("inflation", d.Inflation, "inflation exponent")
	fs.Float64("prune", d.PruneThreshold, "drop entries below this value")
	fs.Int("max-per-column", d.MaxPerColumn, "keep at most this many entries per column, 0 for no limit")
	fs.Float64("epsilon", d.ChaosEpsilon, "stop once the chaos falls below this value")
	fs.Int("max-iterations", d.MaxIterations, "iteration limit")
	return cmd
}

func readLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		labels = append(labels, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading labels: %w", err)
	}
	return labels, nil
}
