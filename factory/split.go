package factory

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// SplitIndices shuffles the row indices 0..n-1 with a seeded permutation
// and divides them into a training and a held-out evaluation portion.
// The same seed over the same n always produces the same split, which
// keeps everything derived from it reproducible. At least one row lands
// on each side whenever two or more rows exist.
func SplitIndices(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "SplitIndices")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValueError("SplitIndices", "test fraction must be in (0, 1)")
	}
	if n < 2 {
		return nil, nil, errors.NewValueError("SplitIndices", "need at least two rows to split")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	nTrain := n - nTest
	return perm[:nTrain], perm[nTrain:], nil
}

// TrainTestSplit applies SplitIndices to an already encoded design
// matrix and target vector.
func TrainTestSplit(X *mat.Dense, y *mat.VecDense, testFraction float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if y.Len() != r {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", r, y.Len(), 0)
	}

	trainIdx, testIdx, err := SplitIndices(r, testFraction, seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	XTrain = mat.NewDense(len(trainIdx), c, nil)
	XTest = mat.NewDense(len(testIdx), c, nil)
	yTrain = SelectVec(y, trainIdx)
	yTest = SelectVec(y, testIdx)

	for i, src := range trainIdx {
		for j := 0; j < c; j++ {
			XTrain.Set(i, j, X.At(src, j))
		}
	}
	for i, src := range testIdx {
		for j := 0; j < c; j++ {
			XTest.Set(i, j, X.At(src, j))
		}
	}
	return XTrain, XTest, yTrain, yTest, nil
}

// SelectVec gathers the elements of y at the given indices, in order.
func SelectVec(y *mat.VecDense, indices []int) *mat.VecDense {
	out := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		out.SetVec(i, y.AtVec(idx))
	}
	return out
}
