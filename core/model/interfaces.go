// Package model defines the estimator contracts shared by every trainable
// variant in the engine, plus gob persistence helpers for trained models.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is implemented by anything trainable against a feature matrix
// and a target column vector.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor returns one prediction per input row, in input row order.
type Predictor interface {
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Estimator is the uniform contract the factory trains and predicts with.
type Estimator interface {
	Fitter
	Predictor
	IsFitted() bool
}

// ProbabilityEstimator is implemented by classifiers that can return a
// class-probability column alongside hard predictions.
type ProbabilityEstimator interface {
	// PredictProba returns P(class=1) per input row for binary models.
	PredictProba(X mat.Matrix) (*mat.VecDense, error)
}

// ImportanceExplainable is the capability interface for ensemble
// estimators that attribute a relative importance to each input feature.
type ImportanceExplainable interface {
	// FeatureImportances returns one non-negative weight per feature, in
	// fitted column order, normalized to sum to one.
	FeatureImportances() []float64
}

// LinearExplainable is the capability interface for estimators whose
// predictions decompose into coefficient * feature contributions.
// Only variants that genuinely expose coefficients implement it;
// everything else simply does not offer an explanation.
type LinearExplainable interface {
	// Coefficients returns one weight per feature, in fitted column order.
	Coefficients() []float64
	// InterceptValue returns the fitted intercept.
	InterceptValue() float64
}
