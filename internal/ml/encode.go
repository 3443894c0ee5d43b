package ml

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// IndicatorDtype is the dtype reported for one-hot indicator columns.
const IndicatorDtype = "bool"

// Column is one raw feature. Exactly one of Values (numeric) and Levels
// (categorical) is set. Missing categorical cells are "".
type Column struct {
	Name   string
	Dtype  string
	Values []float64
	Levels []string
}

// Categorical reports whether c is one-hot encoded.
func (c Column) Categorical() bool { return c.Values == nil }

func (c Column) len() int {
	if c.Categorical() {
		return len(c.Levels)
	}
	return len(c.Values)
}

// FeatureMatrix is the encoded design matrix, one row per record.
type FeatureMatrix struct {
	Names  []string
	Dtypes []string
	X      *mat.Dense
}

// Categories returns the distinct non-empty levels in byte order.
func Categories(levels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range levels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Encode builds the design matrix. Numeric columns come first in their given
// order, then the indicator columns of each categorical column, named
// "<column>_<level>". The first level of every categorical column is dropped.
// A record with a missing categorical cell gets zeros in all of that column's
// indicators; a missing numeric cell is ErrMissingValue.
func Encode(cols []Column) (*FeatureMatrix, error) {
	if len(cols) == 0 {
		return nil, errors.Wrap(ErrShape, "no feature columns")
	}
	n := cols[0].len()
	for _, c := range cols {
		if c.len() != n {
			return nil, errors.Wrapf(ErrShape, "column %s has %d rows, want %d", c.Name, c.len(), n)
		}
	}
	if n == 0 {
		return nil, errors.Wrap(ErrShape, "no rows")
	}

	type source struct {
		col   int
		level string
	}
	var (
		names   []string
		dtypes  []string
		sources []source
	)
	for i, c := range cols {
		if c.Categorical() {
			continue
		}
		names = append(names, c.Name)
		dtypes = append(dtypes, c.Dtype)
		sources = append(sources, source{col: i})
	}
	for i, c := range cols {
		if !c.Categorical() {
			continue
		}
		cats := Categories(c.Levels)
		if len(cats) > 0 {
			cats = cats[1:]
		}
		for _, l := range cats {
			names = append(names, c.Name+"_"+l)
			dtypes = append(dtypes, IndicatorDtype)
			sources = append(sources, source{col: i, level: l})
		}
	}
	if len(names) == 0 {
		return nil, errors.Wrap(ErrShape, "encoding left no features")
	}

	x := mat.NewDense(n, len(names), nil)
	for j, s := range sources {
		c := cols[s.col]
		for r := 0; r < n; r++ {
			if c.Categorical() {
				if c.Levels[r] == s.level {
					x.Set(r, j, 1)
				}
				continue
			}
			v := c.Values[r]
			if math.IsNaN(v) {
				return nil, errors.Wrapf(ErrMissingValue, "column %s row %d", c.Name, r+1)
			}
			x.Set(r, j, v)
		}
	}
	return &FeatureMatrix{Names: names, Dtypes: dtypes, X: x}, nil
}

// Rows returns the sub-matrix of the given rows, in order.
func (f *FeatureMatrix) Rows(idx []int) *mat.Dense {
	_, p := f.X.Dims()
	out := mat.NewDense(len(idx), p, nil)
	for i, r := range idx {
		out.SetRow(i, f.X.RawRowView(r))
	}
	return out
}
