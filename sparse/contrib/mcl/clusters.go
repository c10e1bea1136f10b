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
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/go-sparse/spgemm/sparse"
)

// Clusters reads the clustering off a converged flow matrix.
//
// Rows with a nonzero diagonal entry are attractors. Attractors that share a
// column belong to the same cluster, and every vertex joins the cluster of
// the attractors in its column. Vertices whose column reaches no attractor
// form singleton clusters. It returns the cluster id of every vertex and the
// number of clusters.
func Clusters(flow *sparse.Dcsc[float64]) ([]int, int) {
	n := flow.Cols()
	attractors := bitset.New(uint(n))
	for i := range flow.NonemptyCols() {
		col, rows, vals := flow.Column(i)
		if k, found := slices.BinarySearch(rows, col); found && vals[k] > 0 {
			attractors.Set(uint(col))
		}
	}

	parent := make([]int, n)
	for v := range parent {
		parent[v] = v
	}
	// Link each vertex to the attractors of its column, and the attractors
	// to each other.
	linked := bitset.New(uint(n))
	for i := range flow.NonemptyCols() {
		col, rows, vals := flow.Column(i)
		first := -1
		for k, r := range rows {
			if vals[k] <= 0 || !attractors.Test(uint(r)) {
				continue
			}
			if first < 0 {
				first = r
				union(parent, col, r)
				linked.Set(uint(col))
				continue
			}
			union(parent, first, r)
		}
	}

	ids := make([]int, n)
	next := 0
	byRoot := make(map[int]int, attractors.Count())
	for v := range ids {
		if !linked.Test(uint(v)) && !attractors.Test(uint(v)) {
			ids[v] = next
			next++
			continue
		}
		root := find(parent, v)
		id, ok := byRoot[root]
		if !ok {
			id = next
			byRoot[root] = id
			next++
		}
		ids[v] = id
	}
	return ids, next
}

func find(parent []int, v int) int {
	for parent[v] != v {
		parent[v] = parent[parent[v]]
		v = parent[v]
	}
	return v
}

func union(parent []int, a, b int) {
	ra, rb := find(parent, a), find(parent, b)
	if ra == rb {
		return
	}
	if ra < rb {
		parent[rb] = ra
	} else {
		parent[ra] = rb
	}
}

// WriteClusters writes one cluster per line, its members separated by
// spaces and sorted. Members are printed by label when labels is not nil,
// otherwise by vertex id plus base.
func WriteClusters(w io.Writer, clusterOf []int, labels []string, base int) error {
	if labels != nil && len(labels) != len(clusterOf) {
		return fmt.Errorf("mcl: %d labels for %d vertices", len(labels), len(clusterOf))
	}
	numClusters := 0
	for _, c := range clusterOf {
		numClusters = max(numClusters, c+1)
	}
	members := make([][]int, numClusters)
	for v, c := range clusterOf {
		members[c] = append(members[c], v)
	}

	bw := bufio.NewWriter(w)
	names := make([]string, 0)
	for _, vs := range members {
		names = names[:0]
		if labels != nil {
			for _, v := range vs {
				names = append(names, labels[v])
			}
			slices.Sort(names)
		} else {
			// vs is already ascending.
			for _, v := range vs {
				names = append(names, strconv.Itoa(v+base))
			}
		}
		if _, err := bw.WriteString(strings.Join(names, " ") + "\n"); err != nil {
			return fmt.Errorf("mcl: writing clusters: %w", err)
		}
	}
	return bw.Flush()
}
