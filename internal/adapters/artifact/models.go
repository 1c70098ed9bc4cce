package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StandardScaler applies (x - mean) / scale column-wise.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler builds a scaler. A zero scale is treated as 1, matching
// how the scaler was fitted on constant columns.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("%w: empty mean", ErrInvalidArtifact)
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: %d means but %d scales", ErrInvalidArtifact, len(mean), len(scale))
	}
	if floats.HasNaN(mean) || floats.HasNaN(scale) {
		return nil, fmt.Errorf("%w: NaN in scaler parameters", ErrInvalidArtifact)
	}

	s := &StandardScaler{
		mean:  make([]float64, len(mean)),
		scale: make([]float64, len(scale)),
	}
	copy(s.mean, mean)
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

// Features is the number of columns the scaler was fitted on.
func (s *StandardScaler) Features() int { return len(s.mean) }

// Transform standardises every row of x.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrShape, c, len(s.mean))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return out, nil
}

// LinearRegression computes x·coef + intercept per row.
type LinearRegression struct {
	coef      *mat.VecDense
	intercept float64
}

// NewLinearRegression builds a regressor from its fitted parameters.
func NewLinearRegression(coef []float64, intercept float64) (*LinearRegression, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("%w: empty coefficients", ErrInvalidArtifact)
	}
	if floats.HasNaN(coef) {
		return nil, fmt.Errorf("%w: NaN in coefficients", ErrInvalidArtifact)
	}
	c := make([]float64, len(coef))
	copy(c, coef)
	return &LinearRegression{coef: mat.NewVecDense(len(c), c), intercept: intercept}, nil
}

// Features is the number of coefficients.
func (m *LinearRegression) Features() int { return m.coef.Len() }

// Predict returns one value per row of x.
func (m *LinearRegression) Predict(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if c != m.coef.Len() {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrShape, c, m.coef.Len())
	}
	var y mat.VecDense
	y.MulVec(x, m.coef)
	out := make([]float64, r)
	for i := range out {
		out[i] = y.AtVec(i) + m.intercept
	}
	return out, nil
}
