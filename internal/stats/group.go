package stats

import (
	"math"
	"sort"
	"strings"
)

// Group is one group-by bucket: its key values and the mean of the target
// over its members.
type Group struct {
	Keys  []string
	Mean  float64
	Count int
}

// GroupMean groups values by the parallel key columns and averages each
// group. Rows with an empty key or a NaN value are dropped. Groups come back
// sorted by key.
func GroupMean(values []float64, keys ...[]string) []Group {
	type acc struct {
		keys  []string
		sum   float64
		count int
	}
	buckets := map[string]*acc{}
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		k := make([]string, len(keys))
		skip := false
		for j, col := range keys {
			if i >= len(col) || col[i] == "" {
				skip = true
				break
			}
			k[j] = col[i]
		}
		if skip {
			continue
		}
		id := strings.Join(k, "\x1f")
		a, ok := buckets[id]
		if !ok {
			a = &acc{keys: k}
			buckets[id] = a
		}
		a.sum += v
		a.count++
	}

	out := make([]Group, 0, len(buckets))
	for _, a := range buckets {
		out = append(out, Group{Keys: a.keys, Mean: a.sum / float64(a.count), Count: a.count})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessKeys(out[i].Keys, out[j].Keys)
	})
	return out
}

func lessKeys(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// SortByMeanDesc orders groups by mean, highest first. Ties keep their
// current relative order, so callers pre-sort to choose a tie-break.
func SortByMeanDesc(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Mean > groups[j].Mean
	})
}

// ValueCount is one distinct value with its frequency.
type ValueCount struct {
	Value      float64
	Count      int
	Proportion float64
}

// ValueCounts counts distinct non-NaN values, most frequent first (ties by
// ascending value). Proportions are relative to the non-NaN total.
func ValueCounts(x []float64) []ValueCount {
	counts := map[float64]int{}
	total := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		counts[v]++
		total++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c, Proportion: float64(c) / float64(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
