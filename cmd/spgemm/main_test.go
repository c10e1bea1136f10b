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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	matrixA = `%%MatrixMarket matrix coordinate integer general
2 3 3
1 1 1
1 3 2
2 2 3
`
	matrixB = `%%MatrixMarket matrix coordinate integer general
3 2 3
2 1 1
1 2 4
3 2 5
`
)

func writeInputs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMultiplyCommand(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.mtx": matrixA, "b.mtx": matrixB})

	out, err := run(t, "multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"), "--threads", "2")
	require.NoError(t, err)
	require.Equal(t, "%%MatrixMarket matrix coordinate real general\n2 2 2\n2 1 3\n1 2 14\n", out)

	// Compressed output round trips through the reader.
	outPath := filepath.Join(dir, "c.mtx.zst")
	_, err = run(t, "multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"), "-o", outPath)
	require.NoError(t, err)
	product, err := loadMatrix(outPath)
	require.NoError(t, err)
	require.Equal(t, 2, product.NNZ())
}

func TestMultiplySemiringFromEnv(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.mtx": matrixA, "b.mtx": matrixB})
	t.Setenv("SPGEMM_SEMIRING", "max-times")

	out, err := run(t, "multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"))
	require.NoError(t, err)
	// max(1*4, 2*5) = 10 for C(0, 1).
	require.Contains(t, out, "1 2 10\n")
}

func TestMultiplyErrors(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.mtx": matrixA, "b.mtx": matrixB})

	_, err := run(t, "multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"), "--semiring", "tropical")
	require.ErrorContains(t, err, "unknown semiring")

	_, err = run(t, "multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "a.mtx"))
	require.ErrorContains(t, err, "inner dimensions")

	_, err = run(t, "multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "missing.mtx"))
	require.Error(t, err)
}

func TestEstimateCommand(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.mtx": matrixA, "b.mtx": matrixB})

	for _, est := range []string{"hash", "heap"} {
		out, err := run(t, "estimate", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"),
			"--per-column", "--estimator", est)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 4)
		require.Equal(t, []string{"0", "1", "1", "1.00"}, strings.Fields(lines[1]))
		require.Equal(t, []string{"1", "2", "1", "2.00"}, strings.Fields(lines[2]))
		require.Equal(t, []string{"total", "3", "2", "1.50"}, strings.Fields(lines[3]))
	}
}

func TestMCLCommand(t *testing.T) {
	graph := `%%MatrixMarket matrix coordinate pattern symmetric
5 5 4
2 1
3 1
3 2
5 4
`
	dir := writeInputs(t, map[string]string{
		"g.mtx":      graph,
		"labels.txt": "e\nd\nc\nb\na\n",
	})

	out, err := run(t, "mcl", filepath.Join(dir, "g.mtx"))
	require.NoError(t, err)
	require.Equal(t, "1 2 3\n4 5\n", out)

	outPath := filepath.Join(dir, "clusters.txt")
	_, err = run(t, "mcl", filepath.Join(dir, "g.mtx"), "--labels", filepath.Join(dir, "labels.txt"), "-o", outPath)
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, "c d e\na b\n", string(data))
}

func TestMetricsFlag(t *testing.T) {
	dir := writeInputs(t, map[string]string{"a.mtx": matrixA, "b.mtx": matrixB})

	cmd := newRootCmd()
	var out, metrics bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&metrics)
	cmd.SetArgs([]string{"multiply", filepath.Join(dir, "a.mtx"), filepath.Join(dir, "b.mtx"),
		"--metrics", "--log-level", "error"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, metrics.String(), "spgemm.flop")
	require.Contains(t, metrics.String(), "spgemm.columns")
}
