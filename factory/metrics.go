package factory

import (
	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/metrics"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// Bundle is the model-type-dependent metrics mapping computed at training
// time and stored with the model record. Values are JSON-serializable.
type Bundle map[string]interface{}

// Metrics evaluates a fitted estimator on the given data and assembles
// the type-appropriate bundle.
//
// Regression bundles carry mse, r2_score and mae. Classification bundles
// carry accuracy and the class labels; precision, recall, f1_score and
// the confusion matrix are included only for exactly two classes; with
// more classes they are omitted rather than silently approximated.
// Variants exposing coefficients additionally report coefficients and
// intercept, forest variants report per-feature importances, and
// recomputing the bundle yields the same values.
func Metrics(est model.Estimator, X, y mat.Matrix, modelType ModelType, labels []string) (Bundle, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return nil, err
	}

	r, _ := y.Dims()
	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	bundle := Bundle{}

	if modelType.IsClassifier() {
		accuracy, err := metrics.Accuracy(yVec, pred)
		if err != nil {
			return nil, err
		}
		bundle["accuracy"] = accuracy
		bundle["classes"] = append([]string(nil), labels...)

		if len(labels) == 2 {
			precision, err := metrics.Precision(yVec, pred)
			if err != nil {
				return nil, err
			}
			recall, err := metrics.Recall(yVec, pred)
			if err != nil {
				return nil, err
			}
			f1, err := metrics.F1Score(yVec, pred)
			if err != nil {
				return nil, err
			}
			cm, err := metrics.ConfusionMatrix(yVec, pred)
			if err != nil {
				return nil, err
			}
			bundle["precision"] = precision
			bundle["recall"] = recall
			bundle["f1_score"] = f1
			bundle["confusion_matrix"] = cm
		}
	} else {
		mse, err := metrics.MSE(yVec, pred)
		if err != nil {
			return nil, err
		}
		r2, err := metrics.R2Score(yVec, pred)
		if err != nil {
			return nil, err
		}
		mae, err := metrics.MAE(yVec, pred)
		if err != nil {
			return nil, err
		}
		bundle["mse"] = mse
		bundle["r2_score"] = r2
		bundle["mae"] = mae
	}

	if explainable, ok := est.(model.LinearExplainable); ok {
		bundle["coefficients"] = explainable.Coefficients()
		bundle["intercept"] = explainable.InterceptValue()
	}
	if ensemble, ok := est.(model.ImportanceExplainable); ok {
		bundle["feature_importances"] = ensemble.FeatureImportances()
	}

	return bundle, nil
}

// AttachTargetRange records the observed target extremes in a regression
// bundle so display layers can place predictions on a meaningful scale.
func AttachTargetRange(bundle Bundle, y *mat.VecDense) error {
	if y.Len() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "AttachTargetRange")
	}
	min, max := y.AtVec(0), y.AtVec(0)
	for i := 1; i < y.Len(); i++ {
		v := y.AtVec(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	bundle["target_min"] = min
	bundle["target_max"] = max
	return nil
}
