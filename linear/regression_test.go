package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const epsilon = 1e-9

func TestRegressionExactFit(t *testing.T) {
	// y = 2x + 1, exactly linear data.
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{3, 5, 7, 9})

	lr := NewRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !lr.IsFitted() {
		t.Fatal("IsFitted() = false after Fit")
	}

	if math.Abs(lr.Coefficients()[0]-2) > epsilon {
		t.Errorf("coefficient = %v, want 2", lr.Coefficients()[0])
	}
	if math.Abs(lr.InterceptValue()-1) > epsilon {
		t.Errorf("intercept = %v, want 1", lr.InterceptValue())
	}

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{5, 10}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred.AtVec(0)-11) > epsilon || math.Abs(pred.AtVec(1)-21) > epsilon {
		t.Errorf("predictions = [%v, %v], want [11, 21]", pred.AtVec(0), pred.AtVec(1))
	}
}

func TestRegressionMultiFeature(t *testing.T) {
	// y = 1*x1 + 2*x2 + 3
	X := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 1,
		1, 2,
		3, 2,
		2, 3,
	})
	y := mat.NewVecDense(5, []float64{6, 7, 8, 10, 11})

	lr := NewRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	coefs := lr.Coefficients()
	if math.Abs(coefs[0]-1) > 1e-6 || math.Abs(coefs[1]-2) > 1e-6 {
		t.Errorf("coefficients = %v, want [1, 2]", coefs)
	}
	if math.Abs(lr.InterceptValue()-3) > 1e-6 {
		t.Errorf("intercept = %v, want 3", lr.InterceptValue())
	}
}

func TestRegressionScore(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{3, 5, 7, 9})

	lr := NewRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1) > epsilon {
		t.Errorf("Score() = %v, want 1", score)
	}
}

func TestRegressionNotFitted(t *testing.T) {
	lr := NewRegression()
	if _, err := lr.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict() before Fit expected error")
	}
}

func TestRegressionDimensionMismatch(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewVecDense(3, []float64{1, 2, 3})

	lr := NewRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := lr.Predict(mat.NewDense(1, 3, []float64{1, 2, 3})); err == nil {
		t.Error("Predict() with wrong feature count expected error")
	}
}
