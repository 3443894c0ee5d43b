package ml

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// Split holds the record indices of each partition, ascending.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit partitions the records labeled y. The test partition gets
// ceil(testSize*n) records. With stratify set each class contributes in
// proportion to its size, leftover records going to the classes with the
// largest remainders; records within a class are drawn from a source seeded
// with seed. Either partition coming out empty is ErrEmptyPartition.
func TrainTestSplit(y []int, testSize float64, seed int64, stratify bool) (Split, error) {
	if !(testSize > 0 && testSize < 1) {
		return Split{}, invalid("test_size", testSize, "outside allowed range (0, 1)")
	}
	n := len(y)
	nTest := int(math.Ceil(testSize * float64(n)))
	if n == 0 || nTest == 0 || nTest >= n {
		return Split{}, errors.Wrapf(ErrEmptyPartition, "%d records with test size %g", n, testSize)
	}

	rng := rand.New(rand.NewSource(seed))
	var s Split
	if !stratify {
		perm := rng.Perm(n)
		s.Test = append(s.Test, perm[:nTest]...)
		s.Train = append(s.Train, perm[nTest:]...)
	} else {
		classes := classIndices(y)
		quota := allocate(classes, nTest, n)
		for k, idx := range classes {
			rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
			s.Test = append(s.Test, idx[:quota[k]]...)
			s.Train = append(s.Train, idx[quota[k]:]...)
		}
	}
	sort.Ints(s.Train)
	sort.Ints(s.Test)
	return s, nil
}

// classIndices groups record indices by label, classes in ascending order.
func classIndices(y []int) [][]int {
	byLabel := make(map[int][]int)
	var labels []int
	for i, v := range y {
		if _, ok := byLabel[v]; !ok {
			labels = append(labels, v)
		}
		byLabel[v] = append(byLabel[v], i)
	}
	sort.Ints(labels)
	out := make([][]int, len(labels))
	for k, l := range labels {
		out[k] = byLabel[l]
	}
	return out
}

// allocate shares total test slots across classes by largest remainder.
// Ties go to the larger class, then the lower label.
func allocate(classes [][]int, total, n int) []int {
	quota := make([]int, len(classes))
	rem := make([]float64, len(classes))
	used := 0
	for k, idx := range classes {
		exact := float64(total) * float64(len(idx)) / float64(n)
		quota[k] = int(math.Floor(exact))
		rem[k] = exact - float64(quota[k])
		used += quota[k]
	}
	order := make([]int, len(classes))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if rem[ka] != rem[kb] {
			return rem[ka] > rem[kb]
		}
		return len(classes[ka]) > len(classes[kb])
	})
	for i := 0; used < total; i = (i + 1) % len(order) {
		k := order[i]
		if quota[k] < len(classes[k]) {
			quota[k]++
			used++
		}
	}
	return quota
}
