package linear

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func separableData() (*mat.Dense, *mat.VecDense) {
	// One feature, cleanly separable around 0.
	X := mat.NewDense(8, 1, []float64{-4, -3, -2, -1, 1, 2, 3, 4})
	y := mat.NewVecDense(8, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestLogisticSeparable(t *testing.T) {
	X, y := separableData()

	lr := NewLogisticRegression(WithLogisticMaxIter(2000), WithLogisticLearningRate(0.5))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < y.Len(); i++ {
		if pred.AtVec(i) != y.AtVec(i) {
			t.Errorf("prediction[%d] = %v, want %v", i, pred.AtVec(i), y.AtVec(i))
		}
	}
}

func TestLogisticPredictProba(t *testing.T) {
	X, y := separableData()

	lr := NewLogisticRegression(WithLogisticMaxIter(2000), WithLogisticLearningRate(0.5))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	proba, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	for i := 0; i < proba.Len(); i++ {
		p := proba.AtVec(i)
		if p < 0 || p > 1 {
			t.Errorf("probability[%d] = %v outside [0,1]", i, p)
		}
	}
	// Strongly negative inputs should sit well below 0.5, strongly
	// positive ones well above.
	if proba.AtVec(0) > 0.5 {
		t.Errorf("P(1|x=-4) = %v, want < 0.5", proba.AtVec(0))
	}
	if proba.AtVec(7) < 0.5 {
		t.Errorf("P(1|x=4) = %v, want > 0.5", proba.AtVec(7))
	}
}

func TestLogisticRejectsNonBinaryLabels(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{0, 1, 2})

	lr := NewLogisticRegression()
	if err := lr.Fit(X, y); err == nil {
		t.Error("Fit() with label 2 expected error")
	}
}

func TestLogisticDeterministic(t *testing.T) {
	X, y := separableData()

	first := NewLogisticRegression(WithLogisticMaxIter(200))
	second := NewLogisticRegression(WithLogisticMaxIter(200))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	a, b := first.Coefficients(), second.Coefficients()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("coefficient %d differs across identical fits: %v vs %v", i, a[i], b[i])
		}
	}
	if first.InterceptValue() != second.InterceptValue() {
		t.Error("intercept differs across identical fits")
	}
}
