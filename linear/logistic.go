package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// LogisticRegression is a binary classifier over {0,1} labels, fitted with
// full-batch gradient descent on the regularized log loss. Training is
// deterministic for a fixed input.
type LogisticRegression struct {
	model.BaseEstimator

	// Coef holds one weight per feature.
	Coef []float64
	// Intercept is the bias term.
	Intercept float64
	// NFeatures is the feature count seen at fit time.
	NFeatures int

	// MaxIter is the number of gradient steps.
	MaxIter int
	// LearningRate is the gradient step size.
	LearningRate float64
	// C is the inverse regularization strength; the L2 penalty weight
	// is 1/C.
	C float64
}

// LogisticOption configures a LogisticRegression.
type LogisticOption func(*LogisticRegression)

// WithLogisticMaxIter sets the number of gradient steps.
func WithLogisticMaxIter(n int) LogisticOption {
	return func(lr *LogisticRegression) { lr.MaxIter = n }
}

// WithLogisticLearningRate sets the gradient step size.
func WithLogisticLearningRate(eta float64) LogisticOption {
	return func(lr *LogisticRegression) { lr.LearningRate = eta }
}

// WithLogisticC sets the inverse regularization strength.
func WithLogisticC(c float64) LogisticOption {
	return func(lr *LogisticRegression) { lr.C = c }
}

// NewLogisticRegression creates a classifier with sklearn-like defaults.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	lr := &LogisticRegression{
		MaxIter:      1000,
		LearningRate: 0.1,
		C:            1.0,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

func sigmoid(z float64) float64 {
	// Clamp to keep exp from overflowing on extreme margins.
	if z < -35 {
		return 0
	}
	if z > 35 {
		return 1
	}
	return 1 / (1 + math.Exp(-z))
}

// Fit trains the classifier. y must be a column vector of 0/1 labels.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LogisticRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}
	for i := 0; i < r; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.NewValueError("LogisticRegression.Fit", "labels must be 0 or 1")
		}
	}

	lr.NFeatures = c
	lr.Coef = make([]float64, c)
	lr.Intercept = 0

	lambda := 0.0
	if lr.C > 0 {
		lambda = 1 / lr.C
	}

	grad := make([]float64, c)
	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < r; i++ {
			z := lr.Intercept
			for j := 0; j < c; j++ {
				z += lr.Coef[j] * X.At(i, j)
			}
			diff := sigmoid(z) - y.At(i, 0)
			for j := 0; j < c; j++ {
				grad[j] += diff * X.At(i, j)
			}
			gradIntercept += diff
		}

		step := lr.LearningRate / float64(r)
		for j := 0; j < c; j++ {
			lr.Coef[j] -= step * (grad[j] + lambda*lr.Coef[j])
		}
		lr.Intercept -= step * gradIntercept
	}

	lr.SetFitted()
	return nil
}

// Predict returns the hard 0/1 label per input row.
func (lr *LogisticRegression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(proba.Len(), nil)
	for i := 0; i < proba.Len(); i++ {
		if proba.AtVec(i) >= 0.5 {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}

// PredictProba returns P(class=1) per input row.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		z := lr.Intercept
		for j := 0; j < c; j++ {
			z += lr.Coef[j] * X.At(i, j)
		}
		out.SetVec(i, sigmoid(z))
	}
	return out, nil
}

// Coefficients returns the fitted weights in feature order.
func (lr *LogisticRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.Coef...)
}

// InterceptValue returns the fitted intercept.
func (lr *LogisticRegression) InterceptValue() float64 {
	return lr.Intercept
}
