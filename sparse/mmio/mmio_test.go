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

package mmio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sparse/spgemm/sparse"
)

func TestReadGeneral(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate real general
% produced by hand
%   second line
3 4 3

1 1 1.5
3 2 -2
2 4 1e3
`
	h, m, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, FieldReal, h.Field)
	require.Equal(t, SymmetryGeneral, h.Symmetry)
	require.Equal(t, []string{"produced by hand", "second line"}, h.Comments)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 4, m.Cols())
	require.Equal(t, []sparse.Triple[float64]{
		{Row: 0, Col: 0, Val: 1.5},
		{Row: 2, Col: 1, Val: -2},
		{Row: 1, Col: 3, Val: 1000},
	}, m.Entries())
}

func TestReadSymmetric(t *testing.T) {
	in := `%%MatrixMarket matrix coordinate integer symmetric
3 3 3
1 1 4
2 1 7
3 2 9
`
	h, m, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, h.Entries)
	require.Equal(t, [][]float64{
		{4, 7, 0},
		{7, 0, 9},
		{0, 9, 0},
	}, m.Dense())
}

func TestReadSkewSymmetricPattern(t *testing.T) {
	skew := `%%MatrixMarket matrix coordinate real skew-symmetric
2 2 1
2 1 3
`
	_, m, err := Read(strings.NewReader(skew))
	require.NoError(t, err)
	require.Equal(t, [][]float64{{0, -3}, {3, 0}}, m.Dense())

	pattern := `%%MatrixMarket matrix coordinate pattern general
2 3 2
1 3
2 2
`
	h, m, err := Read(strings.NewReader(pattern))
	require.NoError(t, err)
	require.Equal(t, FieldPattern, h.Field)
	require.Equal(t, [][]float64{{0, 0, 1}, {0, 1, 0}}, m.Dense())
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrFormat},
		{"bad banner", "%%MatrixMarket tensor coordinate real general\n1 1 0\n", ErrFormat},
		{"array", "%%MatrixMarket matrix array real general\n1 1\n1\n", ErrUnsupported},
		{"complex", "%%MatrixMarket matrix coordinate complex general\n1 1 0\n", ErrUnsupported},
		{"hermitian", "%%MatrixMarket matrix coordinate real hermitian\n1 1 0\n", ErrUnsupported},
		{"missing size", "%%MatrixMarket matrix coordinate real general\n% only comments\n", ErrFormat},
		{"out of range", "%%MatrixMarket matrix coordinate real general\n2 2 1\n3 1 1\n", ErrFormat},
		{"zero index", "%%MatrixMarket matrix coordinate real general\n2 2 1\n0 1 1\n", ErrFormat},
		{"too few", "%%MatrixMarket matrix coordinate real general\n2 2 2\n1 1 1\n", ErrFormat},
		{"too many", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 1 1\n2 2 1\n", ErrFormat},
		{"bad value", "%%MatrixMarket matrix coordinate integer general\n2 2 1\n1 1 1.5\n", ErrFormat},
		{"missing value", "%%MatrixMarket matrix coordinate real general\n2 2 1\n1 1\n", ErrFormat},
		{"upper triangle", "%%MatrixMarket matrix coordinate real symmetric\n2 2 1\n1 2 1\n", ErrFormat},
		{"skew diagonal", "%%MatrixMarket matrix coordinate real skew-symmetric\n2 2 1\n1 1 1\n", ErrFormat},
		{"more entries than positions", "%%MatrixMarket matrix coordinate real general\n3 3 100000000000000\n1 1 1\n", ErrFormat},
		{"entries in empty matrix", "%%MatrixMarket matrix coordinate real general\n0 5 1\n1 1 1\n", ErrFormat},
		{"rectangular symmetric", "%%MatrixMarket matrix coordinate real symmetric\n2 3 0\n", ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadLargeDeclaredCount(t *testing.T) {
	// A count that fits the matrix but not memory must not be allocated
	// up front; the short body is then reported as a format error.
	in := "%%MatrixMarket matrix coordinate real general\n2000000000 2000000000 4000000000000\n1 1 1\n"
	_, _, err := Read(strings.NewReader(in))
	require.ErrorIs(t, err, ErrFormat)
	require.ErrorContains(t, err, "header declares 4000000000000")

	// Symmetric storage doubles the buffer; the doubling must not overflow.
	in = "%%MatrixMarket matrix coordinate real symmetric\n3000000000 3000000000 9000000000000000000\n1 1 1\n"
	_, _, err = Read(strings.NewReader(in))
	require.ErrorIs(t, err, ErrFormat)
}

func TestWriteRead(t *testing.T) {
	m := sparse.NewTuples(3, 2, []sparse.Triple[float64]{
		{Row: 0, Col: 0, Val: 2},
		{Row: 2, Col: 0, Val: 0.25},
		{Row: 1, Col: 1, Val: -1e-9},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, "test matrix"))
	require.True(t, strings.HasPrefix(buf.String(),
		"%%MatrixMarket matrix coordinate real general\n% test matrix\n3 2 3\n1 1 2\n3 1 0.25\n"),
		"unexpected output:\n%s", buf.String())

	h, got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, []string{"test matrix"}, h.Comments)
	require.Equal(t, m.Entries(), got.Entries())
}

func TestFileCompression(t *testing.T) {
	m := sparse.NewTuples(4, 4, []sparse.Triple[float64]{
		{Row: 3, Col: 0, Val: 1},
		{Row: 0, Col: 2, Val: 3.5},
	})
	dir := t.TempDir()
	for _, name := range []string{"m.mtx", "m.mtx.gz", "m.mtx.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, m))

			_, got, err := ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, 4, got.Rows())
			require.Equal(t, m.Entries(), got.Entries())
		})
	}

	_, _, err := ReadFile(filepath.Join(dir, "missing.mtx"))
	require.Error(t, err)
}

func TestCompressionOf(t *testing.T) {
	require.Equal(t, CompressionGzip, CompressionOf("a/b.mtx.GZ"))
	require.Equal(t, CompressionZstd, CompressionOf("b.mtx.zst"))
	require.Equal(t, CompressionNone, CompressionOf("b.mtx"))
}
