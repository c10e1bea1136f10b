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

package mcl

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
)

// undirected builds a symmetric unit weight graph from an edge list.
func undirected(n int, edges [][2]int) *sparse.Dcsc[float64] {
	var entries []sparse.Triple[float64]
	for _, e := range edges {
		entries = append(entries,
			sparse.Triple[float64]{Row: e[0], Col: e[1], Val: 1},
			sparse.Triple[float64]{Row: e[1], Col: e[0], Val: 1})
	}
	return sparse.NewDcsc(n, n, entries, nil)
}

func TestRunSeparatesComponents(t *testing.T) {
	g := undirected(7, [][2]int{
		{0, 1}, {1, 2}, {0, 2},
		{3, 4}, {4, 5}, {3, 5},
	})
	before := g.NNZ()

	pool := workerpool.New(3)
	defer pool.Close()
	res, err := Run(context.Background(), g, Params{Pool: pool})
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Equal(t, 3, res.NumClusters)
	require.Equal(t, []int{0, 0, 0, 1, 1, 1, 2}, res.Clusters)
	require.Equal(t, before, g.NNZ(), "input graph must not be modified")
}

func TestRunTwoCommunities(t *testing.T) {
	// Two 5-cliques joined by a single edge.
	var edges [][2]int
	for _, off := range []int{0, 5} {
		for i := 0; i < 5; i++ {
			for j := i + 1; j < 5; j++ {
				edges = append(edges, [2]int{off + i, off + j})
			}
		}
	}
	edges = append(edges, [2]int{4, 5})

	res, err := Run(context.Background(), undirected(10, edges), Params{Threads: 2})
	require.NoError(t, err)
	require.Equal(t, 2, res.NumClusters)
	for v := 1; v < 5; v++ {
		require.Equal(t, res.Clusters[0], res.Clusters[v])
		require.Equal(t, res.Clusters[5], res.Clusters[5+v])
	}
	require.NotEqual(t, res.Clusters[0], res.Clusters[5])

	// Every column of the final flow stays stochastic.
	flow := res.Flow
	for i := range flow.NonemptyCols() {
		_, _, vals := flow.Column(i)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), sparse.NewDcsc[float64](2, 3, nil, nil), Params{})
	require.ErrorIs(t, err, ErrNotSquare)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, undirected(3, [][2]int{{0, 1}}), Params{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPruneColumn(t *testing.T) {
	var scratch []float64

	rows := []int{0, 4, 7}
	vals := []float64{0.5, 0.3, 0.2}
	n, _ := pruneColumn(rows, vals, Params{Inflation: 2, PruneThreshold: 1e-4, MaxPerColumn: 2}, &scratch)
	require.Equal(t, 2, n)
	require.Equal(t, []int{0, 4}, rows[:n])
	require.InDelta(t, 0.25/0.34, vals[0], 1e-12)
	require.InDelta(t, 0.09/0.34, vals[1], 1e-12)

	rows = []int{0, 4, 7}
	vals = []float64{0.5, 0.3, 0.2}
	n, _ = pruneColumn(rows, vals, Params{Inflation: 2, PruneThreshold: 0.2}, &scratch)
	require.Equal(t, 2, n, "entry 0.04/0.38 falls below the threshold")

	// The largest entry survives any threshold.
	rows = []int{1, 2, 3}
	vals = []float64{0.2, 0.5, 0.3}
	n, chaos := pruneColumn(rows, vals, Params{Inflation: 1, PruneThreshold: 0.9}, &scratch)
	require.Equal(t, 1, n)
	require.Equal(t, 2, rows[0])
	require.Equal(t, 1.0, vals[0])
	require.Zero(t, chaos)

	// Ties at the cutoff are kept in row order up to the limit.
	rows = []int{1, 2, 3, 4}
	vals = []float64{0.25, 0.25, 0.25, 0.25}
	n, _ = pruneColumn(rows, vals, Params{Inflation: 1, PruneThreshold: 1e-4, MaxPerColumn: 3}, &scratch)
	require.Equal(t, 3, n)
	require.Equal(t, []int{1, 2, 3}, rows[:n])
}

func TestClusters(t *testing.T) {
	flow := sparse.NewDcsc(5, 5, []sparse.Triple[float64]{
		{Row: 0, Col: 0, Val: 1},
		{Row: 0, Col: 1, Val: 1},
		{Row: 2, Col: 2, Val: 1},
		{Row: 2, Col: 3, Val: 1},
		{Row: 1, Col: 4, Val: 1}, // row 1 is no attractor
	}, nil)
	ids, n := Clusters(flow)
	require.Equal(t, 3, n)
	require.Equal(t, []int{0, 0, 1, 1, 2}, ids)

	// Attractors sharing a column merge into one cluster.
	flow = sparse.NewDcsc(3, 3, []sparse.Triple[float64]{
		{Row: 0, Col: 0, Val: 1},
		{Row: 0, Col: 1, Val: 0.5},
		{Row: 2, Col: 1, Val: 0.5},
		{Row: 2, Col: 2, Val: 1},
	}, nil)
	ids, n = Clusters(flow)
	require.Equal(t, 1, n)
	require.Equal(t, []int{0, 0, 0}, ids)
}

func TestWriteClusters(t *testing.T) {
	clusterOf := []int{0, 0, 1, 1, 2}

	var buf bytes.Buffer
	require.NoError(t, WriteClusters(&buf, clusterOf, nil, 1))
	require.Equal(t, "1 2\n3 4\n5\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteClusters(&buf, clusterOf, []string{"b", "a", "d", "c", "e"}, 0))
	require.Equal(t, "a b\nc d\ne\n", buf.String())

	require.Error(t, WriteClusters(&buf, clusterOf, []string{"x"}, 0))
}
