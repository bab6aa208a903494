// Package artifact persists a trained estimator together with its fitted
// encoding state as one unit. The composite is never reconstructed by
// convention: whatever was captured at training time is exactly what
// inference loads back.
package artifact

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/core/model"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/factory"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/linear"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/neural"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/preprocessing"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/tree"
)

func init() {
	// Concrete estimator types crossing the gob boundary behind the
	// Estimator interface.
	gob.Register(&linear.Regression{})
	gob.Register(&linear.LogisticRegression{})
	gob.Register(&linear.Perceptron{})
	gob.Register(&tree.ForestRegressor{})
	gob.Register(&tree.ForestClassifier{})
	gob.Register(&neural.MLPRegressor{})
	gob.Register(&neural.MLPClassifier{})

	// Scalar kinds appearing inside the hyperparameter map.
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
	gob.Register(float64(0))
	gob.Register(int(0))
	gob.Register("")
	gob.Register(false)
}

// Artifact is the serialized unit binding a fitted estimator to the
// encoding state and column schema captured at training time.
type Artifact struct {
	ModelType      factory.ModelType
	Estimator      model.Estimator
	Encoding       *preprocessing.State
	FeatureColumns []string
	TargetColumn   string
	// Labels is the ordered class label mapping for classifiers; the
	// class index an estimator predicts is the position in this list.
	// Nil for regression variants.
	Labels      []string
	Hyperparams factory.Hyperparameters
	CreatedAt   time.Time
}

// NewBasename produces a collision-resistant stored-file name carrying
// a rough creation ordering: {randomId}_{timestamp}.
func NewBasename(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return id + "_" + now.UTC().Format("20060102150405")
}

// NewFilename is NewBasename with the artifact extension attached.
func NewFilename(now time.Time) string {
	return NewBasename(now) + ".gob"
}

// Save writes the artifact into dir under a fresh collision-resistant
// name and returns that name.
func (a *Artifact) Save(dir string) (string, error) {
	filename := NewFilename(time.Now())
	path := filepath.Join(dir, filename)
	if err := model.SaveGob(a, path); err != nil {
		return "", err
	}
	return filename, nil
}

// Load reads an artifact back from dir. A missing or corrupt file is
// reported as a StorageError.
func Load(dir, filename string) (*Artifact, error) {
	var a Artifact
	if err := model.LoadGob(&a, filepath.Join(dir, filename)); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an artifact file. An already absent file is not an
// error; artifacts are immutable and deletion is their only mutation.
func Delete(dir, filename string) error {
	path := filepath.Join(dir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewStorageError("Delete", path, err)
	}
	return nil
}
