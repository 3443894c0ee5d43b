package ml

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Random forest defaults.
const DefaultTrees = 200

// RandomForest is a bagged ensemble of CART trees. MaxFeatures zero means
// max(1, int(sqrt(p))) features are tried per split.
type RandomForest struct {
	Trees       int
	MaxFeatures int
	Seed        int64
	Workers     int

	trees      []*tree
	nFeatures  int
	importance []float64
}

// NewRandomForest returns a forest of n trees seeded with seed.
func NewRandomForest(n int, seed int64) (*RandomForest, error) {
	if n < 1 {
		return nil, invalid("n_estimators", n, "must be at least 1")
	}
	return &RandomForest{Trees: n, Seed: seed, Workers: runtime.NumCPU()}, nil
}

// Fit grows every tree on its own bootstrap sample. Per-tree seeds are drawn
// from the forest seed before any tree is grown, so the result does not
// depend on Workers.
func (f *RandomForest) Fit(ctx context.Context, x mat.Matrix, y []int) error {
	n, p := x.Dims()
	if n != len(y) {
		return errors.Wrapf(ErrShape, "%d rows, %d labels", n, len(y))
	}
	if n == 0 {
		return errors.Wrap(ErrEmptyPartition, "no training rows")
	}
	if f.MaxFeatures < 0 {
		return invalid("max_features", f.MaxFeatures, "must not be negative")
	}
	mtry := f.MaxFeatures
	if mtry == 0 {
		mtry = max(1, int(math.Sqrt(float64(p))))
	}
	mtry = min(mtry, p)

	rows := denseRows(x)
	master := rand.New(rand.NewSource(f.Seed))
	seeds := make([]int64, f.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*tree, f.Trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.Workers))
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			samples := make([]int, n)
			for k := range samples {
				samples[k] = rng.Intn(n)
			}
			trees[i] = newTreeBuilder(rows, y, mtry, rng).build(samples)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.trees = trees
	f.nFeatures = p
	f.importance = meanImportance(trees, p)
	return nil
}

// meanImportance normalises each tree's impurity decreases to sum to 1,
// averages them and normalises the average. Trees that never split add zeros.
func meanImportance(trees []*tree, p int) []float64 {
	out := make([]float64, p)
	per := make([]float64, p)
	for _, t := range trees {
		copy(per, t.importance)
		if s := floats.Sum(per); s > 0 {
			floats.Scale(1/s, per)
			floats.Add(out, per)
		}
	}
	if s := floats.Sum(out); s > 0 {
		floats.Scale(1/s, out)
	}
	return out
}

// PredictProba averages the leaf class-1 fractions over all trees.
func (f *RandomForest) PredictProba(x mat.Matrix) ([]float64, error) {
	if f.trees == nil {
		return nil, errors.WithStack(ErrNotFitted)
	}
	n, p := x.Dims()
	if p != f.nFeatures {
		return nil, errors.Wrapf(ErrShape, "%d features, model has %d", p, f.nFeatures)
	}
	rows := denseRows(x)
	out := make([]float64, n)
	for i, row := range rows {
		sum := 0.0
		for _, t := range f.trees {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// Predict returns class 1 where the averaged probability exceeds 0.5.
func (f *RandomForest) Predict(x mat.Matrix) ([]int, error) {
	prob, err := f.PredictProba(x)
	if err != nil {
		return nil, err
	}
	return threshold(prob), nil
}

// FeatureImportances returns the mean decrease in impurity per feature,
// summing to 1 unless no tree ever split.
func (f *RandomForest) FeatureImportances() []float64 { return f.importance }

func denseRows(x mat.Matrix) [][]float64 {
	n, p := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, p)
		for j := range rows[i] {
			rows[i][j] = x.At(i, j)
		}
	}
	return rows
}
