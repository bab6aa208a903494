package linear

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPerceptronSeparable(t *testing.T) {
	X, y := separableData()

	p := NewPerceptron(WithPerceptronMaxIter(100), WithPerceptronEta0(0.5))
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := p.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < y.Len(); i++ {
		if pred.AtVec(i) != y.AtVec(i) {
			t.Errorf("prediction[%d] = %v, want %v", i, pred.AtVec(i), y.AtVec(i))
		}
	}
}

func TestPerceptronTwoFeatures(t *testing.T) {
	// Class 1 iff x1 + x2 > 0.
	X := mat.NewDense(6, 2, []float64{
		-2, -1,
		-1, -2,
		-3, 1,
		2, 1,
		1, 2,
		3, -1,
	})
	y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})

	p := NewPerceptron(WithPerceptronMaxIter(500))
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	pred, err := p.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < y.Len(); i++ {
		if pred.AtVec(i) != y.AtVec(i) {
			t.Errorf("prediction[%d] = %v, want %v", i, pred.AtVec(i), y.AtVec(i))
		}
	}
	if len(p.Coefficients()) != 2 {
		t.Errorf("Coefficients() length = %d, want 2", len(p.Coefficients()))
	}
}

func TestPerceptronRejectsNonBinaryLabels(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewVecDense(2, []float64{0, 3})

	p := NewPerceptron()
	if err := p.Fit(X, y); err == nil {
		t.Error("Fit() with label 3 expected error")
	}
}

func TestPerceptronNotFitted(t *testing.T) {
	p := NewPerceptron()
	if _, err := p.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict() before Fit expected error")
	}
}
