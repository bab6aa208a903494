package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// Accuracy computes the fraction of predictions equal to the true labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix computes the 2x2 confusion matrix for {0,1} labels as
// [[TN, FP], [FN, TP]].
func ConfusionMatrix(yTrue, yPred *mat.VecDense) ([][]int, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	cm := [][]int{{0, 0}, {0, 0}}
	for i := 0; i < n; i++ {
		truth, pred := yTrue.AtVec(i), yPred.AtVec(i)
		if truth != 0 && truth != 1 || pred != 0 && pred != 1 {
			return nil, errors.NewValueError("ConfusionMatrix", "labels must be 0 or 1")
		}
		cm[int(truth)][int(pred)]++
	}
	return cm, nil
}

// Precision computes TP / (TP + FP) for the positive class of {0,1}
// labels. With no positive predictions the metric is undefined and 0 is
// returned with a warning.
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	tp, fp := cm[1][1], cm[0][1]
	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fp), nil
}

// Recall computes TP / (TP + FN) for the positive class of {0,1} labels.
// With no true positives in the data the metric is undefined and 0 is
// returned with a warning.
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	tp, fn := cm[1][1], cm[1][0]
	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true positives", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fn), nil
}

// F1Score computes the harmonic mean of precision and recall.
func F1Score(yTrue, yPred *mat.VecDense) (float64, error) {
	precision, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	recall, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if precision+recall == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1_score", "precision and recall are both zero", 0))
		return 0, nil
	}
	return 2 * precision * recall / (precision + recall), nil
}
