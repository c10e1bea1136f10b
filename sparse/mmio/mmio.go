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

// Package mmio reads and writes sparse matrices in the Matrix Market
// coordinate format.
//
// Files ending in ".gz" or ".zst" are decompressed on the fly by ReadFile
// and compressed by WriteFile.
package mmio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-sparse/spgemm/sparse"
)

// Banner is the first token of every Matrix Market file.
const Banner = "%%MatrixMarket"

// maxPresize bounds the entry buffer allocated from the size line alone.
const maxPresize = 1 << 20

// ErrFormat is wrapped by every error caused by malformed input.
var ErrFormat = errors.New("mmio: malformed Matrix Market data")

// ErrUnsupported is returned for valid headers this package cannot load,
// such as dense arrays or complex values.
var ErrUnsupported = errors.New("mmio: unsupported Matrix Market variant")

type Field string

const (
	FieldReal    Field = "real"
	FieldInteger Field = "integer"
	FieldPattern Field = "pattern"
)

type Symmetry string

const (
	SymmetryGeneral       Symmetry = "general"
	SymmetrySymmetric     Symmetry = "symmetric"
	SymmetrySkewSymmetric Symmetry = "skew-symmetric"
)

// Header describes a coordinate matrix file. Entries is the count declared
// in the size line, before symmetric entries are mirrored.
type Header struct {
	Field    Field
	Symmetry Symmetry
	Rows     int
	Cols     int
	Entries  int
	Comments []string
}

// Read parses a coordinate matrix. Pattern entries get the value 1 and
// symmetric storage is expanded, so the returned triples describe the full
// matrix in file order.
func Read(r io.Reader) (*Header, *sparse.Tuples[float64], error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	line := 0
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, nil, fmt.Errorf("mmio: reading banner: %w", err)
		}
		return nil, nil, fmt.Errorf("%w: empty input", ErrFormat)
	}
	line++
	h, err := parseBanner(sc.Text())
	if err != nil {
		return nil, nil, err
	}

	sized := false
	var entries []sparse.Triple[float64]
	seen := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if text[0] == '%' {
			if !sized {
				h.Comments = append(h.Comments, strings.TrimSpace(text[1:]))
			}
			continue
		}
		if !sized {
			if err := parseSize(h, text); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			sized = true
			entries = make([]sparse.Triple[float64], 0, expandedCap(h))
			continue
		}
		if seen == h.Entries {
			return nil, nil, fmt.Errorf("%w: line %d: more than %d entries", ErrFormat, line, h.Entries)
		}
		e, err := parseEntry(h, text)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		seen++
		entries = append(entries, e)
		if e.Row != e.Col {
			switch h.Symmetry {
			case SymmetrySymmetric:
				entries = append(entries, sparse.Triple[float64]{Row: e.Col, Col: e.Row, Val: e.Val})
			case SymmetrySkewSymmetric:
				entries = append(entries, sparse.Triple[float64]{Row: e.Col, Col: e.Row, Val: -e.Val})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("mmio: line %d: %w", line, err)
	}
	if !sized {
		return nil, nil, fmt.Errorf("%w: missing size line", ErrFormat)
	}
	if seen != h.Entries {
		return nil, nil, fmt.Errorf("%w: got %d entries, header declares %d", ErrFormat, seen, h.Entries)
	}
	return h, sparse.NewTuples(h.Rows, h.Cols, entries), nil
}

func parseBanner(s string) (*Header, error) {
	f := strings.Fields(strings.ToLower(s))
	if len(f) != 5 || f[0] != strings.ToLower(Banner) || f[1] != "matrix" {
		return nil, fmt.Errorf("%w: bad banner %q", ErrFormat, s)
	}
	if f[2] != "coordinate" {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupported, f[2])
	}
	h := &Header{Field: Field(f[3]), Symmetry: Symmetry(f[4])}
	switch h.Field {
	case FieldReal, FieldInteger, FieldPattern:
	default:
		return nil, fmt.Errorf("%w: field %q", ErrUnsupported, f[3])
	}
	switch h.Symmetry {
	case SymmetryGeneral, SymmetrySymmetric, SymmetrySkewSymmetric:
	default:
		return nil, fmt.Errorf("%w: symmetry %q", ErrUnsupported, f[4])
	}
	return h, nil
}

func parseSize(h *Header, s string) error {
	f := strings.Fields(s)
	if len(f) != 3 {
		return fmt.Errorf("%w: size line %q", ErrFormat, s)
	}
	var dims [3]int
	for i, tok := range f {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: size line %q", ErrFormat, s)
		}
		dims[i] = v
	}
	h.Rows, h.Cols, h.Entries = dims[0], dims[1], dims[2]
	if h.Symmetry != SymmetryGeneral && h.Rows != h.Cols {
		return fmt.Errorf("%w: %s matrix is %dx%d", ErrFormat, h.Symmetry, h.Rows, h.Cols)
	}
	// rows*cols may overflow; any count fits then.
	if (h.Cols == 0 || h.Rows <= math.MaxInt/h.Cols) && h.Entries > h.Rows*h.Cols {
		return fmt.Errorf("%w: %d entries in a %dx%d matrix", ErrFormat, h.Entries, h.Rows, h.Cols)
	}
	return nil
}

func expandedCap(h *Header) int {
	n := min(h.Entries, maxPresize)
	if h.Symmetry == SymmetryGeneral {
		return n
	}
	return 2 * n
}

func parseEntry(h *Header, s string) (sparse.Triple[float64], error) {
	f := strings.Fields(s)
	want := 3
	if h.Field == FieldPattern {
		want = 2
	}
	if len(f) != want {
		return sparse.Triple[float64]{}, fmt.Errorf("%w: entry %q has %d fields, want %d", ErrFormat, s, len(f), want)
	}
	row, err1 := strconv.Atoi(f[0])
	col, err2 := strconv.Atoi(f[1])
	if err1 != nil || err2 != nil {
		return sparse.Triple[float64]{}, fmt.Errorf("%w: entry %q", ErrFormat, s)
	}
	if row < 1 || row > h.Rows || col < 1 || col > h.Cols {
		return sparse.Triple[float64]{}, fmt.Errorf("%w: entry (%d, %d) outside %dx%d", ErrFormat, row, col, h.Rows, h.Cols)
	}
	e := sparse.Triple[float64]{Row: row - 1, Col: col - 1, Val: 1}
	switch h.Field {
	case FieldInteger:
		v, err := strconv.ParseInt(f[2], 10, 64)
		if err != nil {
			return e, fmt.Errorf("%w: integer value %q", ErrFormat, f[2])
		}
		e.Val = float64(v)
	case FieldReal:
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return e, fmt.Errorf("%w: real value %q", ErrFormat, f[2])
		}
		e.Val = v
	}
	if h.Symmetry == SymmetrySkewSymmetric && e.Row == e.Col {
		return e, fmt.Errorf("%w: diagonal entry (%d, %d) in skew-symmetric matrix", ErrFormat, row, col)
	}
	if h.Symmetry != SymmetryGeneral && e.Row < e.Col {
		return e, fmt.Errorf("%w: entry (%d, %d) above the diagonal of %s matrix", ErrFormat, row, col, h.Symmetry)
	}
	return e, nil
}

// Write stores t as a general real coordinate matrix with 1-based indices.
// Values that are whole numbers of moderate size are written without a
// fractional part.
func Write(w io.Writer, t *sparse.Tuples[float64], comments ...string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s matrix coordinate real general\n", Banner)
	for _, c := range comments {
		fmt.Fprintf(bw, "%% %s\n", c)
	}
	fmt.Fprintf(bw, "%d %d %d\n", t.Rows(), t.Cols(), t.NNZ())

	var buf []byte
	for _, e := range t.Entries() {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(e.Row+1), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(e.Col+1), 10)
		buf = append(buf, ' ')
		buf = appendValue(buf, e.Val)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("mmio: writing entry: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("mmio: flushing: %w", err)
	}
	return nil
}

func appendValue(buf []byte, v float64) []byte {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return strconv.AppendInt(buf, int64(v), 10)
	}
	return strconv.AppendFloat(buf, v, 'g', -1, 64)
}
