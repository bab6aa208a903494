package factory

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/linear"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/neural"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/tree"
)

// Create instantiates the estimator for a model type with the given
// hyperparameters. Unknown model types fail closed.
func Create(modelType ModelType, hp Hyperparameters) (model.Estimator, error) {
	if hp == nil {
		hp = Hyperparameters{}
	}

	switch modelType {
	case LinearRegression:
		return linear.NewRegression(), nil

	case LogisticRegression:
		return linear.NewLogisticRegression(
			linear.WithLogisticMaxIter(hp.Int("iterations", 1000)),
			linear.WithLogisticLearningRate(hp.Float("learning_rate", 0.1)),
			linear.WithLogisticC(hp.Float("C", 1.0)),
		), nil

	case Perceptron:
		return linear.NewPerceptron(
			linear.WithPerceptronMaxIter(hp.Int("iterations", 1000)),
			linear.WithPerceptronEta0(hp.Float("learning_rate", 0.1)),
		), nil

	case RandomForestRegressor:
		return tree.NewForestRegressor(
			tree.WithNEstimators(hp.Int("n_estimators", 100)),
			tree.WithMaxDepth(hp.Int("max_depth", 8)),
			tree.WithRandomState(int64(hp.Int("random_state", 42))),
		), nil

	case RandomForestClassifier:
		return tree.NewForestClassifier(
			tree.WithNEstimators(hp.Int("n_estimators", 100)),
			tree.WithMaxDepth(hp.Int("max_depth", 8)),
			tree.WithRandomState(int64(hp.Int("random_state", 42))),
		), nil

	case NeuralNetworkRegressor:
		return neural.NewMLPRegressor(
			neural.WithHiddenLayers(hp.HiddenLayers("hidden_layers", []int{10, 5})),
			neural.WithMaxIter(hp.Int("iterations", 1000)),
			neural.WithLearningRate(hp.Float("learning_rate", 0.001)),
			neural.WithRandomState(int64(hp.Int("random_state", 42))),
		), nil

	case NeuralNetworkClassifier:
		return neural.NewMLPClassifier(
			neural.WithHiddenLayers(hp.HiddenLayers("hidden_layers", []int{10, 5})),
			neural.WithMaxIter(hp.Int("iterations", 1000)),
			neural.WithLearningRate(hp.Float("learning_rate", 0.001)),
			neural.WithRandomState(int64(hp.Int("random_state", 42))),
		), nil
	}

	return nil, errors.Wrapf(errors.ErrUnknownModelType, "%q", string(modelType))
}

// EncodeTarget converts raw target cells into the numeric column vector
// the estimator trains on. Regression targets must parse as floats.
// Classification targets map to class indices over the sorted distinct
// labels; the returned label list is the reversible mapping persisted in
// the artifact. Binary-only variants reject more than two classes instead
// of training a meaningless model.
func EncodeTarget(cells []string, modelType ModelType) (*mat.VecDense, []string, error) {
	if len(cells) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "EncodeTarget")
	}

	if !modelType.IsClassifier() {
		values := make([]float64, len(cells))
		for i, cell := range cells {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, errors.NewValidationError("target", "regression target cell is not numeric", cell)
			}
			values[i] = v
		}
		return mat.NewVecDense(len(values), values), nil, nil
	}

	distinct := make(map[string]struct{})
	for _, cell := range cells {
		distinct[cell] = struct{}{}
	}
	labels := make([]string, 0, len(distinct))
	for label := range distinct {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	if len(labels) < 2 {
		return nil, nil, errors.NewValidationError("target", "classification target needs at least two distinct labels", len(labels))
	}
	if modelType.BinaryOnly() && len(labels) != 2 {
		return nil, nil, errors.NewValidationError("target", "this model type supports exactly two classes", len(labels))
	}

	index := make(map[string]float64, len(labels))
	for i, label := range labels {
		index[label] = float64(i)
	}
	values := make([]float64, len(cells))
	for i, cell := range cells {
		values[i] = index[cell]
	}
	return mat.NewVecDense(len(values), values), labels, nil
}

// DecodeLabel maps a predicted class index back to the original label.
func DecodeLabel(prediction float64, labels []string) string {
	idx := int(prediction)
	if idx < 0 || idx >= len(labels) {
		return strconv.FormatFloat(prediction, 'g', -1, 64)
	}
	return labels[idx]
}

// Train fits the estimator against the encoded design matrix and target.
// The call is synchronous; callers that cannot block wrap it, the
// contract itself does not change.
func Train(est model.Estimator, X, y mat.Matrix) error {
	if err := est.Fit(X, y); err != nil {
		return errors.Wrap(err, "training failed")
	}
	return nil
}

// Predict returns one prediction per input row, in input row order.
func Predict(est model.Estimator, X mat.Matrix) (*mat.VecDense, error) {
	return est.Predict(X)
}
