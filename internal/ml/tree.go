package ml

import (
	"math/rand"
	"slices"
)

// node is one node of a fitted tree. Leaves have feature -1.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	prob      float64 // Fraction of class 1 among the node's samples.
}

// tree is a CART classification tree grown on Gini impurity without a depth
// limit. importance holds the total weighted impurity decrease per feature.
type tree struct {
	nodes      []node
	importance []float64
}

// treeBuilder grows one tree. rows are the feature rows of the whole training
// set; samples index into them and may repeat (bootstrap).
type treeBuilder struct {
	rows     [][]float64
	y        []int
	mtry     int
	minSplit int
	rng      *rand.Rand

	tree    *tree
	scratch []sortedSample
}

type sortedSample struct {
	v   float64
	y   int
	idx int
}

func newTreeBuilder(rows [][]float64, y []int, mtry int, rng *rand.Rand) *treeBuilder {
	p := 0
	if len(rows) > 0 {
		p = len(rows[0])
	}
	return &treeBuilder{
		rows:     rows,
		y:        y,
		mtry:     mtry,
		minSplit: 2,
		rng:      rng,
		tree:     &tree{importance: make([]float64, p)},
	}
}

func (b *treeBuilder) build(samples []int) *tree {
	b.scratch = make([]sortedSample, len(samples))
	b.grow(samples)
	return b.tree
}

// grow adds the subtree for samples and returns its node index.
func (b *treeBuilder) grow(samples []int) int {
	n := len(samples)
	pos := 0
	for _, s := range samples {
		pos += b.y[s]
	}
	id := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, node{feature: -1, prob: float64(pos) / float64(n)})
	if n < b.minSplit || pos == 0 || pos == n {
		return id
	}

	sp, ok := b.bestSplit(samples, pos)
	if !ok {
		return id
	}
	b.tree.importance[sp.feature] += sp.decrease

	left := make([]int, 0, sp.nLeft)
	right := make([]int, 0, n-sp.nLeft)
	for _, s := range samples {
		if b.rows[s][sp.feature] <= sp.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	l := b.grow(left)
	r := b.grow(right)
	b.tree.nodes[id].feature = sp.feature
	b.tree.nodes[id].threshold = sp.threshold
	b.tree.nodes[id].left = l
	b.tree.nodes[id].right = r
	return id
}

type split struct {
	feature   int
	threshold float64
	nLeft     int
	decrease  float64
}

// bestSplit visits features in random order until mtry non-constant ones have
// been tried and returns the split with the largest weighted Gini decrease.
// It reports false when every feature is constant over samples.
func (b *treeBuilder) bestSplit(samples []int, pos int) (split, bool) {
	n := len(samples)
	parent := float64(n) * gini(pos, n)
	best := split{feature: -1}
	bestScore := -1.0

	visited := 0
	buf := b.scratch[:n]
	for _, f := range b.rng.Perm(len(b.tree.importance)) {
		if visited >= b.mtry {
			break
		}
		for i, s := range samples {
			buf[i] = sortedSample{v: b.rows[s][f], y: b.y[s], idx: s}
		}
		slices.SortFunc(buf, func(a, c sortedSample) int {
			switch {
			case a.v < c.v:
				return -1
			case a.v > c.v:
				return 1
			}
			return a.idx - c.idx
		})
		if buf[0].v == buf[n-1].v {
			continue
		}
		visited++

		leftPos := 0
		for i := 0; i < n-1; i++ {
			leftPos += buf[i].y
			if buf[i].v == buf[i+1].v {
				continue
			}
			nl := i + 1
			nr := n - nl
			child := float64(nl)*gini(leftPos, nl) + float64(nr)*gini(pos-leftPos, nr)
			score := parent - child
			if score > bestScore {
				bestScore = score
				best = split{
					feature:   f,
					threshold: midpoint(buf[i].v, buf[i+1].v),
					nLeft:     nl,
					decrease:  score,
				}
			}
		}
	}
	if best.feature < 0 {
		return split{}, false
	}
	return best, true
}

// midpoint splits lo < hi so that lo goes left and hi goes right. Adjacent
// floats can round the midpoint onto hi; lo is used then.
func midpoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if m >= hi {
		return lo
	}
	return m
}

// gini is the Gini impurity of a node with pos positives among n samples.
func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// predict returns the class-1 fraction of the leaf row falls into.
func (t *tree) predict(row []float64) float64 {
	i := 0
	for {
		nd := &t.nodes[i]
		if nd.feature < 0 {
			return nd.prob
		}
		if row[nd.feature] <= nd.threshold {
			i = nd.left
		} else {
			i = nd.right
		}
	}
}
