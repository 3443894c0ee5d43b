package ml

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Logistic regression defaults.
const (
	DefaultC       = 1.0
	DefaultMaxIter = 1000
	DefaultTol     = 1e-6
	DefaultEta     = 0.1
	DefaultRho     = 0.9
)

// LogisticRegression is an L2-regularised binary classifier with an
// unpenalised intercept. Features are standardised with the training mean
// and standard deviation before fitting.
type LogisticRegression struct {
	C       float64
	MaxIter int
	Tol     float64
	Eta     float64 // Step size.
	Rho     float64 // Nesterov momentum; zero selects plain gradient descent.

	coef      []float64
	intercept float64
	mean      []float64
	scale     []float64
	iters     int
	converged bool
}

// NewLogisticRegression returns a model with inverse regularisation strength
// c, fitted by Nesterov descent for at most maxIter iterations. The optimiser
// is built afresh on every Fit.
func NewLogisticRegression(c float64, maxIter int) (*LogisticRegression, error) {
	if !(c > 0) {
		return nil, invalid("C", c, "outside allowed range (0, Inf)")
	}
	if maxIter < 1 {
		return nil, invalid("max_iter", maxIter, "must be at least 1")
	}
	return &LogisticRegression{C: c, MaxIter: maxIter, Tol: DefaultTol, Eta: DefaultEta, Rho: DefaultRho}, nil
}

func (m *LogisticRegression) optimiser() (Optimiser, error) {
	if m.Rho == 0 {
		return NewDescent(m.Eta)
	}
	return NewNesterov(m.Eta, m.Rho)
}

// Fit minimises mean log-loss plus ||w||^2/(2Cn) over the rows of x.
func (m *LogisticRegression) Fit(ctx context.Context, x mat.Matrix, y []int) error {
	n, p := x.Dims()
	if n != len(y) {
		return errors.Wrapf(ErrShape, "%d rows, %d labels", n, len(y))
	}
	if n == 0 {
		return errors.Wrap(ErrEmptyPartition, "no training rows")
	}
	opt, err := m.optimiser()
	if err != nil {
		return err
	}

	m.mean, m.scale = standardisation(x)
	// Design matrix with a trailing column of ones for the intercept.
	a := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			a.Set(i, j, (x.At(i, j)-m.mean[j])/m.scale[j])
		}
		a.Set(i, p, 1)
	}
	target := make([]float64, n)
	for i, v := range y {
		target[i] = float64(v)
	}

	theta := mat.NewVecDense(p+1, nil)
	grad := mat.NewVecDense(p+1, nil)
	z := mat.NewVecDense(n, nil)
	opt.Extend(p + 1)

	lambda := 1 / (m.C * float64(n))
	m.converged = false
	for m.iters = 0; m.iters < m.MaxIter; m.iters++ {
		if m.iters%64 == 0 && ctx.Err() != nil {
			return errors.WithStack(ctx.Err())
		}
		z.MulVec(a, theta)
		for i := 0; i < n; i++ {
			z.SetVec(i, sigmoid(z.AtVec(i))-target[i])
		}
		grad.MulVec(a.T(), z)
		grad.ScaleVec(1/float64(n), grad)
		for j := 0; j < p; j++ {
			grad.SetVec(j, grad.AtVec(j)+lambda*theta.AtVec(j))
		}
		if maxAbs(grad.RawVector().Data) < m.Tol {
			m.converged = true
			break
		}
		opt.Update(theta, theta, grad)
	}

	m.coef = make([]float64, p)
	for j := range m.coef {
		m.coef[j] = theta.AtVec(j)
	}
	m.intercept = theta.AtVec(p)
	return nil
}

// PredictProba returns the class-1 probability of every row of x.
func (m *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	if m.coef == nil {
		return nil, errors.WithStack(ErrNotFitted)
	}
	n, p := x.Dims()
	if p != len(m.coef) {
		return nil, errors.Wrapf(ErrShape, "%d features, model has %d", p, len(m.coef))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		z := m.intercept
		for j := 0; j < p; j++ {
			z += m.coef[j] * (x.At(i, j) - m.mean[j]) / m.scale[j]
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

// Predict returns class 1 where the probability exceeds 0.5.
func (m *LogisticRegression) Predict(x mat.Matrix) ([]int, error) {
	prob, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	return threshold(prob), nil
}

// Iterations is the number of optimiser steps the last Fit took.
func (m *LogisticRegression) Iterations() int { return m.iters }

// Converged reports whether the last Fit met the gradient tolerance.
func (m *LogisticRegression) Converged() bool { return m.converged }

// Coef returns the weights on the standardised features.
func (m *LogisticRegression) Coef() []float64 { return m.coef }

// standardisation returns the column means and standard deviations of x.
// Constant columns get a scale of 1.
func standardisation(x mat.Matrix) (mean, scale []float64) {
	n, p := x.Dims()
	mean = make([]float64, p)
	scale = make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		mu, variance := stat.PopMeanVariance(col, nil)
		mean[j] = mu
		scale[j] = math.Sqrt(variance)
		if scale[j] == 0 || math.IsNaN(scale[j]) {
			scale[j] = 1
		}
	}
	return mean, scale
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func maxAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(x)), math.Abs(floats.Min(x)))
}

func threshold(prob []float64) []int {
	out := make([]int, len(prob))
	for i, v := range prob {
		if v > 0.5 {
			out[i] = 1
		}
	}
	return out
}
