package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// Perceptron is a binary classifier over {0,1} labels trained with the
// classic mistake-driven update rule. Samples are visited in input order
// every epoch, so training is deterministic.
type Perceptron struct {
	model.BaseEstimator

	// Coef holds one weight per feature.
	Coef []float64
	// Intercept is the bias term.
	Intercept float64
	// NFeatures is the feature count seen at fit time.
	NFeatures int

	// MaxIter is the number of passes over the data.
	MaxIter int
	// Eta0 is the update step size.
	Eta0 float64
}

// PerceptronOption configures a Perceptron.
type PerceptronOption func(*Perceptron)

// WithPerceptronMaxIter sets the number of epochs.
func WithPerceptronMaxIter(n int) PerceptronOption {
	return func(p *Perceptron) { p.MaxIter = n }
}

// WithPerceptronEta0 sets the update step size.
func WithPerceptronEta0(eta float64) PerceptronOption {
	return func(p *Perceptron) { p.Eta0 = eta }
}

// NewPerceptron creates a perceptron with sklearn-like defaults.
func NewPerceptron(opts ...PerceptronOption) *Perceptron {
	p := &Perceptron{
		MaxIter: 1000,
		Eta0:    0.1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fit trains the perceptron. y must be a column vector of 0/1 labels.
// Training stops early once an epoch completes without a mistake.
func (p *Perceptron) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Perceptron.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Perceptron.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Perceptron.Fit", "y must be a column vector")
	}
	for i := 0; i < r; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.NewValueError("Perceptron.Fit", "labels must be 0 or 1")
		}
	}

	p.NFeatures = c
	p.Coef = make([]float64, c)
	p.Intercept = 0

	for iter := 0; iter < p.MaxIter; iter++ {
		mistakes := 0
		for i := 0; i < r; i++ {
			z := p.Intercept
			for j := 0; j < c; j++ {
				z += p.Coef[j] * X.At(i, j)
			}
			pred := 0.0
			if z >= 0 {
				pred = 1
			}

			diff := y.At(i, 0) - pred
			if diff == 0 {
				continue
			}
			mistakes++
			for j := 0; j < c; j++ {
				p.Coef[j] += p.Eta0 * diff * X.At(i, j)
			}
			p.Intercept += p.Eta0 * diff
		}
		if mistakes == 0 {
			break
		}
	}

	p.SetFitted()
	return nil
}

// Predict returns the hard 0/1 label per input row.
func (p *Perceptron) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Perceptron", "Predict")
	}

	r, c := X.Dims()
	if c != p.NFeatures {
		return nil, errors.NewDimensionError("Perceptron.Predict", p.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		z := p.Intercept
		for j := 0; j < c; j++ {
			z += p.Coef[j] * X.At(i, j)
		}
		if z >= 0 {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}

// Coefficients returns the fitted weights in feature order.
func (p *Perceptron) Coefficients() []float64 {
	return append([]float64(nil), p.Coef...)
}

// InterceptValue returns the fitted intercept.
func (p *Perceptron) InterceptValue() float64 {
	return p.Intercept
}
