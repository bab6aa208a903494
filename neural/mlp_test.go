package neural

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMLPRegressorLearnsLinear(t *testing.T) {
	// y = 2x on inputs already in a small range, so default learning
	// rates converge without scaling.
	n := 20
	values := make([]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)/float64(n) - 0.5
		values[i] = x
		targets[i] = 2 * x
	}
	X := mat.NewDense(n, 1, values)
	y := mat.NewVecDense(n, targets)

	m := NewMLPRegressor(
		WithHiddenLayers([]int{8}),
		WithMaxIter(3000),
		WithLearningRate(0.01),
		WithRandomState(42),
	)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	var mse float64
	for i := 0; i < n; i++ {
		diff := pred.AtVec(i) - targets[i]
		mse += diff * diff
	}
	mse /= float64(n)
	if mse > 0.05 {
		t.Errorf("MSE after training = %v, want < 0.05", mse)
	}
}

func TestMLPClassifierSeparable(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{-1, -0.8, -0.6, -0.4, 0.4, 0.6, 0.8, 1})
	y := mat.NewVecDense(8, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	m := NewMLPClassifier(
		WithHiddenLayers([]int{6}),
		WithMaxIter(3000),
		WithLearningRate(0.05),
		WithRandomState(42),
	)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	correct := 0
	for i := 0; i < y.Len(); i++ {
		if pred.AtVec(i) == y.AtVec(i) {
			correct++
		}
	}
	if correct < 7 {
		t.Errorf("correct = %d/8, want at least 7", correct)
	}

	proba, err := m.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	for i := 0; i < proba.Len(); i++ {
		p := proba.AtVec(i)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Errorf("probability[%d] = %v outside [0,1]", i, p)
		}
	}
}

func TestMLPClassifierRejectsNonBinaryLabels(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{0, 1, 2})

	m := NewMLPClassifier()
	if err := m.Fit(X, y); err == nil {
		t.Error("Fit() with label 2 expected error")
	}
}

func TestMLPDeterministicSeed(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{-1, -0.5, -0.2, 0.2, 0.5, 1})
	y := mat.NewVecDense(6, []float64{-2, -1, -0.4, 0.4, 1, 2})

	first := NewMLPRegressor(WithMaxIter(200), WithRandomState(9))
	second := NewMLPRegressor(WithMaxIter(200), WithRandomState(9))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	a, _ := first.Predict(X)
	b, _ := second.Predict(X)
	for i := 0; i < a.Len(); i++ {
		if a.AtVec(i) != b.AtVec(i) {
			t.Errorf("prediction[%d] differs across identical seeds", i)
		}
	}
}

func TestMLPNotFitted(t *testing.T) {
	m := NewMLPRegressor()
	if _, err := m.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict() before Fit expected error")
	}
	c := NewMLPClassifier()
	if _, err := c.PredictProba(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("PredictProba() before Fit expected error")
	}
}
