package ml

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// separable returns 100 rows: x0 decides the class, x1 is noise.
func separable() (*mat.Dense, []int) {
	const n = 100
	x := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i)/n)
		x.Set(i, 1, float64(i*37%n)/n)
		if i >= n/2 {
			y[i] = 1
		}
	}
	return x, y
}

func TestLogisticRegression_Separable(t *testing.T) {
	x := mat.NewDense(10, 1, []float64{-2, -1.5, -1, -0.5, -0.25, 0.25, 0.5, 1, 1.5, 2})
	y := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}

	m, err := NewLogisticRegression(DefaultC, DefaultMaxIter)
	require.NoError(t, err)
	require.NoError(t, m.Fit(context.Background(), x, y))

	pred, err := m.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, pred)
	assert.Greater(t, m.Coef()[0], 0.0)
	assert.Greater(t, m.Iterations(), 0)

	prob, err := m.PredictProba(x)
	require.NoError(t, err)
	for _, p := range prob {
		assert.True(t, p > 0 && p < 1)
	}
}

func TestLogisticRegression_DescentMatchesSign(t *testing.T) {
	x, y := separable()
	m, err := NewLogisticRegression(1, 200)
	require.NoError(t, err)
	m.Rho = 0
	require.NoError(t, m.Fit(context.Background(), x, y))
	assert.Greater(t, m.Coef()[0], 0.0)
}

func TestLogisticRegression_Deterministic(t *testing.T) {
	x, y := separable()
	fit := func() []float64 {
		m, err := NewLogisticRegression(1, 300)
		require.NoError(t, err)
		require.NoError(t, m.Fit(context.Background(), x, y))
		p, err := m.PredictProba(x)
		require.NoError(t, err)
		return p
	}
	assert.Equal(t, fit(), fit())
}

func TestLogisticRegression_Errors(t *testing.T) {
	_, err := NewLogisticRegression(0, 10)
	var inv *ErrInvalidArgument
	assert.True(t, errors.As(err, &inv))

	m, err := NewLogisticRegression(1, 10)
	require.NoError(t, err)
	_, err = m.Predict(mat.NewDense(1, 1, nil))
	assert.True(t, errors.Is(err, ErrNotFitted))

	err = m.Fit(context.Background(), mat.NewDense(2, 1, nil), []int{0})
	assert.True(t, errors.Is(err, ErrShape))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x, y := separable()
	assert.ErrorIs(t, m.Fit(ctx, x, y), context.Canceled)
}

func TestRandomForest_Fit(t *testing.T) {
	x, y := separable()
	f, err := NewRandomForest(25, 42)
	require.NoError(t, err)
	require.NoError(t, f.Fit(context.Background(), x, y))

	pred, err := f.Predict(x)
	require.NoError(t, err)
	acc, err := Accuracy(y, pred)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.95)

	imp := f.FeatureImportances()
	require.Len(t, imp, 2)
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.InDelta(t, 1.0, floats.Sum(imp), 1e-9)
	assert.Greater(t, imp[0], imp[1])
}

func TestRandomForest_IndependentOfWorkers(t *testing.T) {
	x, y := separable()
	fit := func(workers int) ([]float64, []float64) {
		f, err := NewRandomForest(20, 7)
		require.NoError(t, err)
		f.Workers = workers
		require.NoError(t, f.Fit(context.Background(), x, y))
		p, err := f.PredictProba(x)
		require.NoError(t, err)
		return p, f.FeatureImportances()
	}
	p1, imp1 := fit(1)
	p4, imp4 := fit(4)
	assert.Equal(t, p1, p4)
	assert.Equal(t, imp1, imp4)
}

func TestRandomForest_ConstantFeatures(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 5, 1, 5, 1, 5, 1, 5})
	y := []int{0, 1, 1, 1}
	f, err := NewRandomForest(5, 1)
	require.NoError(t, err)
	require.NoError(t, f.Fit(context.Background(), x, y))

	assert.Equal(t, []float64{0, 0}, f.FeatureImportances())
	prob, err := f.PredictProba(x)
	require.NoError(t, err)
	for _, p := range prob {
		assert.True(t, p >= 0 && p <= 1)
	}
}

func TestRandomForest_Errors(t *testing.T) {
	_, err := NewRandomForest(0, 1)
	var inv *ErrInvalidArgument
	assert.True(t, errors.As(err, &inv))

	f, err := NewRandomForest(3, 1)
	require.NoError(t, err)
	_, err = f.PredictProba(mat.NewDense(1, 1, nil))
	assert.True(t, errors.Is(err, ErrNotFitted))

	f.MaxFeatures = -1
	x, y := separable()
	assert.Error(t, f.Fit(context.Background(), x, y))
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, 1.5, midpoint(1, 2))
	lo := 1.0
	hi := 1.0000000000000002
	assert.Equal(t, lo, midpoint(lo, hi))
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, gini(0, 4))
	assert.Equal(t, 0.5, gini(2, 4))
	assert.Equal(t, 0.0, gini(0, 0))
}
