// Package predict serves trained models: single and batch predictions,
// class probabilities, and coefficient-based explanations for the
// variants that support them.
package predict

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/artifact"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/factory"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/frame"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/ledger"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/lifecycle"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/log"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/preprocessing"
)

// explainTolerance bounds the allowed drift between the decomposed
// score and the model's own regression output.
const explainTolerance = 1e-6

// Service answers prediction requests against stored model artifacts.
type Service struct {
	mgr *lifecycle.Manager
	log log.Logger
}

// NewService creates a prediction service over the given lifecycle manager.
func NewService(mgr *lifecycle.Manager, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{mgr: mgr, log: logger}
}

// Result is one prediction. Label is set only for classifiers, where it
// is the original class label the numeric output maps back to.
// Probability is set only for binary classifiers that expose one.
type Result struct {
	Value       float64
	Label       string
	Probability *float64
}

// PredictOne runs a single prediction. The features map must supply a
// raw value for every feature column the model was trained on; unknown
// extra keys are ignored.
func (s *Service) PredictOne(modelID string, features map[string]string) (Result, error) {
	results, err := s.PredictBatch(modelID, []map[string]string{features})
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// PredictBatch runs predictions for many feature rows in one pass. A row
// missing any trained feature column fails the whole batch with an error
// naming the row and the absent columns.
func (s *Service) PredictBatch(modelID string, records []map[string]string) ([]Result, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError("records", "no feature rows supplied", nil)
	}

	record, art, err := s.load(modelID)
	if err != nil {
		return nil, err
	}

	X, err := s.encode(art, records)
	if err != nil {
		return nil, err
	}

	predictions, err := art.Estimator.Predict(X)
	if err != nil {
		return nil, err
	}

	var probabilities *mat.VecDense
	if prob, ok := art.Estimator.(model.ProbabilityEstimator); ok && len(art.Labels) == 2 {
		probabilities, err = prob.PredictProba(X)
		if err != nil {
			return nil, err
		}
	}

	results := make([]Result, len(records))
	for i := range records {
		r := Result{Value: predictions.AtVec(i)}
		if art.ModelType.IsClassifier() {
			r.Label = factory.DecodeLabel(r.Value, art.Labels)
		}
		if probabilities != nil {
			p := probabilities.AtVec(i)
			r.Probability = &p
		}
		results[i] = r
	}

	s.log.Debug("prediction served", "model_id", record.ID, "rows", len(records))
	return results, nil
}

// Contribution is one encoded column's share of a linear prediction.
type Contribution struct {
	// Name is the encoded column name, e.g. "age" or "city_Paris".
	Name   string
	Scaled float64
	Weight float64
	Effect float64
}

// Explanation decomposes one linear prediction into per-column effects.
// Intercept plus the sum of all Effect values reproduces Score exactly.
// For regression Score is the prediction itself; for logistic variants
// it is the pre-sigmoid margin.
type Explanation struct {
	Intercept     float64
	Contributions []Contribution
	Score         float64
	Prediction    Result
}

// Explain produces a coefficient breakdown for a single feature row.
// Models without coefficients return a ValidationError rather than a
// fabricated explanation.
func (s *Service) Explain(modelID string, features map[string]string) (Explanation, error) {
	record, art, err := s.load(modelID)
	if err != nil {
		return Explanation{}, err
	}

	explainable, ok := art.Estimator.(model.LinearExplainable)
	if !ok {
		return Explanation{}, errors.NewValidationError("model_type", "model does not expose linear coefficients", string(art.ModelType))
	}

	X, err := s.encode(art, []map[string]string{features})
	if err != nil {
		return Explanation{}, err
	}

	coefs := explainable.Coefficients()
	if len(coefs) != len(art.Encoding.Columns) {
		return Explanation{}, errors.NewDimensionError("Explain", len(art.Encoding.Columns), len(coefs), 1)
	}

	explanation := Explanation{
		Intercept:     explainable.InterceptValue(),
		Contributions: make([]Contribution, len(coefs)),
	}
	score := explanation.Intercept
	for j, name := range art.Encoding.Columns {
		scaled := X.At(0, j)
		effect := coefs[j] * scaled
		score += effect
		explanation.Contributions[j] = Contribution{
			Name:   name,
			Scaled: scaled,
			Weight: coefs[j],
			Effect: effect,
		}
	}
	explanation.Score = score

	predictions, err := art.Estimator.Predict(X)
	if err != nil {
		return Explanation{}, err
	}
	predicted := predictions.AtVec(0)

	// The breakdown must agree with the model's own output: regression
	// scores reproduce the prediction, classifier scores decide the label
	// by sign. Divergence means the artifact is internally inconsistent.
	if art.ModelType.IsClassifier() {
		wantClass := 0.0
		if score >= 0 {
			wantClass = 1
		}
		if wantClass != predicted {
			return Explanation{}, errors.NewModelError("Explain", "coefficient breakdown disagrees with the model prediction",
				errors.Newf("score %g implies class %g, model predicted %g", score, wantClass, predicted))
		}
	} else if math.Abs(score-predicted) > explainTolerance {
		return Explanation{}, errors.NewModelError("Explain", "coefficient breakdown does not reproduce the prediction",
			errors.Newf("score %g, model predicted %g", score, predicted))
	}

	explanation.Prediction = Result{Value: predicted}
	if art.ModelType.IsClassifier() {
		explanation.Prediction.Label = factory.DecodeLabel(predicted, art.Labels)
	}

	s.log.Debug("explanation served", "model_id", record.ID, "columns", len(coefs))
	return explanation, nil
}

func (s *Service) load(modelID string) (ledger.ModelRecord, *artifact.Artifact, error) {
	record, err := s.mgr.Model(modelID)
	if err != nil {
		return ledger.ModelRecord{}, nil, err
	}
	art, err := s.mgr.LoadArtifact(record)
	if err != nil {
		return ledger.ModelRecord{}, nil, err
	}
	return record, art, nil
}

// encode turns raw feature maps into the scaled matrix the estimator was
// fitted on, reusing the encoding state captured at training time.
func (s *Service) encode(art *artifact.Artifact, records []map[string]string) (*mat.Dense, error) {
	f, err := frame.FromRecords(art.FeatureColumns, records)
	if err != nil {
		return nil, err
	}
	encoder := preprocessing.NewFeatureEncoder()
	return encoder.Transform(f, art.Encoding)
}
