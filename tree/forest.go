package tree

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/parallel"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// trees below this count are fitted sequentially
const parallelTreeThreshold = 8

// ForestOption configures a forest estimator.
type ForestOption func(*forestParams)

type forestParams struct {
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	randomState     int64
}

func defaultForestParams() forestParams {
	return forestParams{
		nEstimators:     100,
		maxDepth:        8,
		minSamplesSplit: 2,
		randomState:     42,
	}
}

// WithNEstimators sets the number of trees in the forest.
func WithNEstimators(n int) ForestOption {
	return func(p *forestParams) { p.nEstimators = n }
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(d int) ForestOption {
	return func(p *forestParams) { p.maxDepth = d }
}

// WithRandomState sets the seed driving the bootstrap samples. The same
// seed over the same data grows the same forest.
func WithRandomState(seed int64) ForestOption {
	return func(p *forestParams) { p.randomState = seed }
}

// ForestRegressor is a bagged ensemble of CART regression trees. The
// prediction is the mean of the per-tree predictions.
type ForestRegressor struct {
	model.BaseEstimator

	Params    forestParamsExport
	Trees     []*Node
	NFeatures int
	// Importances holds the per-feature impurity decrease shares,
	// normalized to sum to one.
	Importances []float64
}

// ForestClassifier is a bagged ensemble of CART classification trees.
// Labels are numeric class indices; two or more classes are supported.
// The prediction is the majority vote.
type ForestClassifier struct {
	model.BaseEstimator

	Params    forestParamsExport
	Trees     []*Node
	NFeatures int
	Classes   []float64
	// Importances holds the per-feature impurity decrease shares,
	// normalized to sum to one.
	Importances []float64
}

// forestParamsExport mirrors forestParams with exported fields so fitted
// forests serialize with their hyperparameters.
type forestParamsExport struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	RandomState     int64
}

func exportParams(p forestParams) forestParamsExport {
	return forestParamsExport{
		NEstimators:     p.nEstimators,
		MaxDepth:        p.maxDepth,
		MinSamplesSplit: p.minSamplesSplit,
		RandomState:     p.randomState,
	}
}

// NewForestRegressor creates an unfitted forest regressor.
func NewForestRegressor(opts ...ForestOption) *ForestRegressor {
	p := defaultForestParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &ForestRegressor{Params: exportParams(p)}
}

// NewForestClassifier creates an unfitted forest classifier.
func NewForestClassifier(opts ...ForestOption) *ForestClassifier {
	p := defaultForestParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &ForestClassifier{Params: exportParams(p)}
}

func validateForestInput(op string, X, y mat.Matrix) (int, int, error) {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return 0, 0, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return 0, 0, errors.NewValueError(op, "y must be a column vector")
	}
	return r, c, nil
}

func toRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

func toTargets(y mat.Matrix) []float64 {
	r, _ := y.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = y.At(i, 0)
	}
	return out
}

// fitForest grows the trees on bootstrap samples. Each tree gets its own
// seed derived from the base seed, so the forest is reproducible even
// though the trees fit in parallel.
func fitForest(rows [][]float64, targets []float64, p forestParamsExport, impurity impurityFunc, leafValue func([]float64) float64) []*Node {
	trees := make([]*Node, p.NEstimators)
	n := len(targets)

	parallel.ParallelizeWithThreshold(p.NEstimators, parallelTreeThreshold, func(start, end int) {
		for t := start; t < end; t++ {
			rng := rand.New(rand.NewSource(p.RandomState + int64(t)))

			sampleX := make([][]float64, n)
			sampleY := make([]float64, n)
			for i := 0; i < n; i++ {
				idx := rng.Intn(n)
				sampleX[i] = rows[idx]
				sampleY[i] = targets[idx]
			}

			trees[t] = growTree(sampleX, sampleY, 0, p.MaxDepth, p.MinSamplesSplit, impurity, leafValue)
		}
	})
	return trees
}

// Fit grows the regression forest.
func (f *ForestRegressor) Fit(X, y mat.Matrix) error {
	_, c, err := validateForestInput("ForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}

	f.NFeatures = c
	f.Trees = fitForest(toRows(X), toTargets(y), f.Params, variance, leafValueMean)
	f.Importances = featureImportances(f.Trees, c)
	f.SetFitted()
	return nil
}

// FeatureImportances returns the per-feature impurity decrease shares.
func (f *ForestRegressor) FeatureImportances() []float64 {
	return append([]float64(nil), f.Importances...)
}

// Predict returns the mean tree prediction per input row.
func (f *ForestRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestRegressor", "Predict")
	}

	r, c := X.Dims()
	if c != f.NFeatures {
		return nil, errors.NewDimensionError("ForestRegressor.Predict", f.NFeatures, c, 1)
	}

	rows := toRows(X)
	out := mat.NewVecDense(r, nil)
	for i, row := range rows {
		var sum float64
		for _, t := range f.Trees {
			sum += t.predict(row)
		}
		out.SetVec(i, sum/float64(len(f.Trees)))
	}
	return out, nil
}

// Fit grows the classification forest. y must hold numeric class labels.
func (f *ForestClassifier) Fit(X, y mat.Matrix) error {
	r, c, err := validateForestInput("ForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}

	classSet := make(map[float64]struct{})
	for i := 0; i < r; i++ {
		classSet[y.At(i, 0)] = struct{}{}
	}
	classes := make([]float64, 0, len(classSet))
	for v := range classSet {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	f.NFeatures = c
	f.Classes = classes
	f.Trees = fitForest(toRows(X), toTargets(y), f.Params, gini, leafValueMajority)
	f.Importances = featureImportances(f.Trees, c)
	f.SetFitted()
	return nil
}

// FeatureImportances returns the per-feature impurity decrease shares.
func (f *ForestClassifier) FeatureImportances() []float64 {
	return append([]float64(nil), f.Importances...)
}

// Predict returns the majority vote per input row.
func (f *ForestClassifier) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestClassifier", "Predict")
	}

	r, c := X.Dims()
	if c != f.NFeatures {
		return nil, errors.NewDimensionError("ForestClassifier.Predict", f.NFeatures, c, 1)
	}

	rows := toRows(X)
	out := mat.NewVecDense(r, nil)
	for i, row := range rows {
		votes := make(map[float64]int)
		for _, t := range f.Trees {
			votes[t.predict(row)]++
		}
		best, bestCount := 0.0, -1
		for _, class := range f.Classes {
			if votes[class] > bestCount {
				best, bestCount = class, votes[class]
			}
		}
		out.SetVec(i, best)
	}
	return out, nil
}

// PredictProba returns the fraction of trees voting for class 1.
// Only defined for binary forests.
func (f *ForestClassifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestClassifier", "PredictProba")
	}
	if len(f.Classes) != 2 {
		return nil, errors.NewValueError("ForestClassifier.PredictProba", "probabilities are only defined for binary forests")
	}

	r, c := X.Dims()
	if c != f.NFeatures {
		return nil, errors.NewDimensionError("ForestClassifier.PredictProba", f.NFeatures, c, 1)
	}

	rows := toRows(X)
	out := mat.NewVecDense(r, nil)
	for i, row := range rows {
		votes := 0
		for _, t := range f.Trees {
			if t.predict(row) == 1 {
				votes++
			}
		}
		out.SetVec(i, float64(votes)/float64(len(f.Trees)))
	}
	return out, nil
}
