package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Optimiser represents a first-order optimisation algorithm.
type Optimiser interface {
	// Update the parameters using gradient and store the result in out.
	Update(out, parameters *mat.VecDense, gradient mat.Vector) *mat.VecDense
	// Extend the internal state of the optimiser to accommodate at least n parameters.
	Extend(n int)
}

// Descent is plain gradient descent with a fixed step size.
type Descent struct {
	eta float64
}

// NewDescent returns a gradient descent optimiser with step size eta.
func NewDescent(eta float64) (*Descent, error) {
	if eta < 0 || math.IsNaN(eta) {
		return nil, invalid("eta", eta, "outside allowed range [0, Inf)")
	}
	return &Descent{eta: eta}, nil
}

func (o *Descent) Update(out, p *mat.VecDense, g mat.Vector) *mat.VecDense {
	out.AddScaledVec(p, -o.eta, g)
	return out
}

func (o *Descent) Extend(_ int) {}

// Nesterov is Nesterov accelerated gradient descent with step size eta and
// momentum rho.
type Nesterov struct {
	eta float64
	rho float64
	vel *mat.VecDense
}

// NewNesterov returns a Nesterov optimiser. eta must be non-negative and rho
// in [0, 1).
func NewNesterov(eta, rho float64) (*Nesterov, error) {
	if eta < 0 || math.IsNaN(eta) {
		return nil, invalid("eta", eta, "outside allowed range [0, Inf)")
	}
	if rho < 0 || rho >= 1 || math.IsNaN(rho) {
		return nil, invalid("rho", rho, "outside allowed range [0, 1)")
	}
	return &Nesterov{eta: eta, rho: rho}, nil
}

func (o *Nesterov) Update(out, p *mat.VecDense, g mat.Vector) *mat.VecDense {
	out.CopyVec(p)
	out.AddScaledVec(out, o.rho*o.rho, o.vel)
	out.AddScaledVec(out, -(1+o.rho)*o.eta, g)

	o.vel.ScaleVec(o.rho, o.vel)
	o.vel.AddScaledVec(o.vel, -o.eta, g)
	return out
}

func (o *Nesterov) Extend(n int) {
	o.vel = extendVec(o.vel, n)
}

// extendVec grows vec in place to length at least n, zero-filling.
func extendVec(vec *mat.VecDense, n int) *mat.VecDense {
	if vec == nil {
		return mat.NewVecDense(n, make([]float64, n))
	}
	raw := vec.RawVector()
	d := n - raw.N
	if d <= 0 {
		return vec
	}
	raw.Data = append(raw.Data, make([]float64, d)...)
	raw.N = n
	vec.SetRawVector(raw)
	return vec
}
