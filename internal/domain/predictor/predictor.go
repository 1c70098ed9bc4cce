// Package predictor turns an encoded vehicle configuration into a fuel
// consumption estimate using a frozen scaler and regressor.
package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/fuelsense/internal/domain/vehicle"
	"gonum.org/v1/gonum/mat"
)

// Scaler standardises a 1xN feature matrix.
type Scaler interface {
	// Transform returns a new matrix with the same shape as x.
	Transform(x mat.Matrix) (*mat.Dense, error)
	// Features is the width the scaler was fitted on.
	Features() int
}

// Regressor predicts one value per input row.
type Regressor interface {
	Predict(x mat.Matrix) ([]float64, error)
	// Features is the width the regressor was fitted on.
	Features() int
}

// Result contains a prediction and its efficiency tier.
type Result struct {
	Consumption float64               // L/100km
	Tier        Tier                  // efficiency band of Consumption
	Features    vehicle.FeatureVector // the encoded input
	Elapsed     time.Duration         // time spent in scale+predict
}

// Formatted renders the consumption with two decimals.
func (r Result) Formatted() string {
	return fmt.Sprintf("%.2f", r.Consumption)
}

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithClock overrides the time source used to measure prediction latency.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		if now != nil {
			p.now = now
		}
	}
}

// Predictor runs the frozen scaler and regressor. It holds no mutable state
// and is safe for concurrent use.
type Predictor struct {
	scaler    Scaler
	regressor Regressor
	now       func() time.Time
}

// New creates a Predictor over an already loaded scaler/regressor pair.
func New(scaler Scaler, regressor Regressor, opts ...Option) *Predictor {
	p := &Predictor{
		scaler:    scaler,
		regressor: regressor,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Features is the input width the predictor expects.
func (p *Predictor) Features() int {
	return p.scaler.Features()
}

// Predict scales v, runs the regressor and classifies the first output.
func (p *Predictor) Predict(ctx context.Context, v vehicle.FeatureVector) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	if p.scaler == nil || p.regressor == nil {
		return Result{}, ErrNotReady
	}

	// gonum panics on shape mismatch; check widths first.
	if len(v) != p.scaler.Features() || len(v) != p.regressor.Features() {
		return Result{}, fmt.Errorf("%w: vector has %d features, scaler expects %d, regressor expects %d",
			ErrDimensionMismatch, len(v), p.scaler.Features(), p.regressor.Features())
	}

	start := p.now()

	row := make([]float64, len(v))
	copy(row, v)
	x := mat.NewDense(1, len(row), row)

	scaled, err := p.scaler.Transform(x)
	if err != nil {
		return Result{}, fmt.Errorf("%w: scale: %w", ErrPredict, err)
	}

	out, err := p.regressor.Predict(scaled)
	if err != nil {
		return Result{}, fmt.Errorf("%w: regress: %w", ErrPredict, err)
	}
	if len(out) == 0 {
		return Result{}, fmt.Errorf("%w: regressor returned no values", ErrPredict)
	}

	consumption := out[0]
	features := make(vehicle.FeatureVector, len(v))
	copy(features, v)
	return Result{
		Consumption: consumption,
		Tier:        Classify(consumption),
		Features:    features,
		Elapsed:     p.now().Sub(start),
	}, nil
}
