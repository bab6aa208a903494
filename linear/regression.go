// Package linear implements the linear model variants: ordinary least
// squares regression, logistic regression and the perceptron. All three
// expose their coefficients, so they support linear explanations.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/parallel"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// rows below this threshold are assembled sequentially
const parallelThreshold = 1000

// Regression is an ordinary least squares model fitted by a QR
// decomposition of the intercept-augmented design matrix.
type Regression struct {
	model.BaseEstimator

	// Coef holds one weight per feature.
	Coef []float64
	// Intercept is the bias term.
	Intercept float64
	// NFeatures is the feature count seen at fit time.
	NFeatures int
}

// NewRegression creates an unfitted linear regression model.
func NewRegression() *Regression {
	return &Regression{}
}

// Fit estimates the weights and intercept from training data.
func (lr *Regression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Regression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Regression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Regression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// Prepend a column of ones for the intercept term.
	XWithIntercept := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	// Least squares via QR. One-hot expanded features are often close to
	// collinear, which surfaces as a Condition error; the solution is
	// still usable, so only genuine failures abort the fit.
	var weights mat.VecDense
	if err := weights.SolveVec(XWithIntercept, yVec); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return errors.NewModelError("Regression.Fit", "singular matrix", errors.ErrSingularMatrix)
		}
	}

	lr.Intercept = weights.AtVec(0)
	lr.Coef = make([]float64, c)
	for j := 0; j < c; j++ {
		lr.Coef[j] = weights.AtVec(j + 1)
	}

	lr.SetFitted()
	return nil
}

// Predict returns one prediction per input row.
func (lr *Regression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("Regression.Predict", lr.NFeatures, c, 1)
	}

	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		sum := lr.Intercept
		for j := 0; j < c; j++ {
			sum += lr.Coef[j] * X.At(i, j)
		}
		out.SetVec(i, sum)
	}
	return out, nil
}

// Score returns the coefficient of determination R² on the given data.
func (lr *Regression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	var mean float64
	for i := 0; i < r; i++ {
		mean += y.At(i, 0)
	}
	mean /= float64(r)

	var ssRes, ssTot float64
	for i := 0; i < r; i++ {
		res := y.At(i, 0) - pred.AtVec(i)
		tot := y.At(i, 0) - mean
		ssRes += res * res
		ssTot += tot * tot
	}
	if ssTot == 0 {
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Coefficients returns the fitted weights in feature order.
func (lr *Regression) Coefficients() []float64 {
	return append([]float64(nil), lr.Coef...)
}

// InterceptValue returns the fitted intercept.
func (lr *Regression) InterceptValue() float64 {
	return lr.Intercept
}
