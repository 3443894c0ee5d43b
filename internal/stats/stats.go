// Package stats holds the descriptive statistics shared by the report jobs.
// Every function skips NaN inputs the way a data-frame library does.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the describe() row set for one numeric column.
type Summary struct {
	Count                   int
	Mean, Std               float64
	Min, Q25, Q50, Q75, Max float64
}

// SummaryLabels are the row labels of a describe table, in order.
var SummaryLabels = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Values returns the summary in SummaryLabels order.
func (s Summary) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
}

// Describe summarises the non-NaN values of x. Std is the sample standard
// deviation; it is NaN for fewer than two values.
func Describe(x []float64) Summary {
	v := Present(x)
	nan := math.NaN()
	s := Summary{Count: len(v), Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	if len(v) == 0 {
		return s
	}
	sort.Float64s(v)
	s.Mean = stat.Mean(v, nil)
	if len(v) > 1 {
		s.Std = stat.StdDev(v, nil)
	}
	s.Min = v[0]
	s.Max = v[len(v)-1]
	s.Q25 = Quantile(v, 0.25)
	s.Q50 = Quantile(v, 0.50)
	s.Q75 = Quantile(v, 0.75)
	return s
}

// Present returns a copy of x without NaN values.
func Present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Quantile returns the p-quantile of sorted using linear interpolation
// between closest ranks: h = (n-1)p, q = x[floor(h)] + (h-floor(h))*(x[floor(h)+1]-x[floor(h)]).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Mean is the mean of the non-NaN values of x, or NaN when there are none.
func Mean(x []float64) float64 {
	v := Present(x)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// Pearson returns the correlation of x and y over pairs where neither is NaN.
// It is NaN for fewer than two pairs or when either side has zero variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if floats.Min(xs) == floats.Max(xs) || floats.Min(ys) == floats.Max(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// QuantileBins assigns each value of x to one of q quantile bins. Bin edges are
// the 0, 1/q, ..., 1 quantiles with duplicates dropped; intervals are closed on
// the right and the first one also includes its left edge. NaN values get -1.
// The returned count is the number of bins actually used; it is 0, with every
// value at -1, when all edges collapse into one.
func QuantileBins(x []float64, q int) ([]int, int) {
	v := Present(x)
	bins := make([]int, len(x))
	if len(v) == 0 || q < 1 {
		for i := range bins {
			bins[i] = -1
		}
		return bins, 0
	}
	sort.Float64s(v)

	edges := make([]float64, 0, q+1)
	for i := 0; i <= q; i++ {
		e := Quantile(v, float64(i)/float64(q))
		if len(edges) == 0 || e != edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	nbins := len(edges) - 1
	if nbins == 0 {
		for i := range bins {
			bins[i] = -1
		}
		return bins, 0
	}

	for i, val := range x {
		if math.IsNaN(val) {
			bins[i] = -1
			continue
		}
		// First edge index with edges[k] >= val; the bin is the interval ending there.
		k := sort.SearchFloat64s(edges, val)
		b := k - 1
		if b < 0 {
			b = 0
		}
		if b >= nbins {
			b = nbins - 1
		}
		bins[i] = b
	}
	return bins, nbins
}
