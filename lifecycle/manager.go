// Package lifecycle owns the full life of datasets and trained models:
// upload cataloging, the train-to-artifact flow, and deletion with its
// cascade rules. It binds the encoding pipeline, the model factory and
// the metadata ledgers together.
package lifecycle

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/artifact"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/config"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/factory"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/frame"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/ledger"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/log"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/preprocessing"
)

const (
	datasetLedgerFile = "datasets.csv"
	modelLedgerFile   = "models.csv"

	defaultTestFraction = 0.2
	defaultSplitSeed    = 42
)

// Manager coordinates dataset and model lifecycles over the configured
// storage directories.
type Manager struct {
	cfg      *config.Config
	datasets *ledger.Store[ledger.DatasetRecord]
	models   *ledger.Store[ledger.ModelRecord]
	log      log.Logger
}

// NewManager creates a manager over the storage layout in cfg. Both
// storage directories must exist and be writable.
func NewManager(cfg *config.Config, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		cfg:      cfg,
		datasets: ledger.NewStore(filepath.Join(cfg.Storage.DatasetDir, datasetLedgerFile), ledger.DatasetCodec(), logger),
		models:   ledger.NewStore(filepath.Join(cfg.Storage.ModelDir, modelLedgerFile), ledger.ModelCodec(), logger),
		log:      logger,
	}
}

// Datasets returns every dataset record, newest first.
func (m *Manager) Datasets() []ledger.DatasetRecord {
	return m.datasets.List()
}

// Dataset returns one dataset record by id.
func (m *Manager) Dataset(id string) (ledger.DatasetRecord, error) {
	return m.datasets.Get(id)
}

// Models returns every model record, newest first.
func (m *Manager) Models() []ledger.ModelRecord {
	return m.models.List()
}

// Model returns one model record by id.
func (m *Manager) Model(id string) (ledger.ModelRecord, error) {
	return m.models.Get(id)
}

// CreateDataset validates an uploaded CSV, stores the raw file and
// catalogs it. The stored file is immutable from here on.
func (m *Manager) CreateDataset(name, description string, upload io.Reader) (ledger.DatasetRecord, error) {
	raw, err := io.ReadAll(upload)
	if err != nil {
		return ledger.DatasetRecord{}, errors.NewStorageError("CreateDataset", name, err)
	}

	f, err := frame.ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return ledger.DatasetRecord{}, err
	}
	if f.NumRows() == 0 {
		return ledger.DatasetRecord{}, errors.NewValidationError("dataset", "dataset has a header but no data rows", name)
	}

	now := time.Now()
	record := ledger.DatasetRecord{
		ID:             ledger.NewID(),
		Name:           name,
		Description:    description,
		StoredFilename: artifact.NewBasename(now) + ".csv",
		RowCount:       f.NumRows(),
		ColumnCount:    f.NumCols(),
		CreatedAt:      now,
	}

	path := m.cfg.DatasetPath(record.StoredFilename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return ledger.DatasetRecord{}, errors.NewStorageError("CreateDataset", path, err)
	}

	if err := m.datasets.Create(record); err != nil {
		// The data file is orphaned if the ledger write fails; remove it
		// best-effort so storage does not accumulate unreferenced files.
		if cleanupErr := os.Remove(path); cleanupErr != nil {
			m.log.Warn("failed to clean up orphaned dataset file", "path", path, "error", cleanupErr)
		}
		return ledger.DatasetRecord{}, err
	}

	m.log.Info("dataset created", "dataset_id", record.ID, "rows", record.RowCount, "columns", record.ColumnCount)
	return record, nil
}

// DeleteDataset removes a dataset file and its record. Deletion is
// blocked while model records still reference the dataset, so no model
// is ever left pointing at data that no longer exists.
func (m *Manager) DeleteDataset(id string) error {
	record, err := m.datasets.Get(id)
	if err != nil {
		return err
	}

	var dependents int
	for _, mr := range m.models.List() {
		if mr.DatasetID == id {
			dependents++
		}
	}
	if dependents > 0 {
		return errors.NewValidationError("dataset_id", "dataset is still referenced by trained models", dependents)
	}

	path := m.cfg.DatasetPath(record.StoredFilename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewStorageError("DeleteDataset", path, err)
	}

	removed, err := m.datasets.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		m.log.Warn("dataset row was already gone during delete", "dataset_id", id)
	}
	return nil
}

// LoadFrame reads the raw frame backing a dataset record.
func (m *Manager) LoadFrame(record ledger.DatasetRecord) (*frame.Frame, error) {
	return frame.ReadCSVFile(m.cfg.DatasetPath(record.StoredFilename))
}

// TrainRequest carries everything the form layer supplies for one
// training run.
type TrainRequest struct {
	Name            string
	Description     string
	ModelType       string
	DatasetID       string
	TargetColumn    string
	FeatureColumns  []string
	Hyperparameters factory.Hyperparameters

	// TestFraction and Seed control the held-out evaluation split;
	// zero values take the defaults (0.2 and 42).
	TestFraction float64
	Seed         int64
}

// TrainModel runs the whole training flow: dataset load, encoding,
// split, fit, evaluation, artifact save and record create. The artifact
// is written before the metadata row; if the row cannot be written the
// orphaned artifact is removed best-effort.
func (m *Manager) TrainModel(req TrainRequest) (ledger.ModelRecord, factory.Bundle, error) {
	var zero ledger.ModelRecord

	modelType, err := factory.ParseModelType(req.ModelType)
	if err != nil {
		return zero, nil, err
	}

	dataset, err := m.datasets.Get(req.DatasetID)
	if err != nil {
		return zero, nil, err
	}

	f, err := m.LoadFrame(dataset)
	if err != nil {
		return zero, nil, err
	}

	if len(req.FeatureColumns) == 0 {
		return zero, nil, errors.NewValidationError("feature_columns", "select at least one feature column", nil)
	}
	if !f.HasColumn(req.TargetColumn) {
		return zero, nil, errors.NewValidationError("target_column", "column not present in dataset", req.TargetColumn)
	}
	for _, col := range req.FeatureColumns {
		if col == req.TargetColumn {
			return zero, nil, errors.NewValidationError("feature_columns", "target column cannot be a feature column", col)
		}
	}

	features, err := f.Select(req.FeatureColumns)
	if err != nil {
		return zero, nil, err
	}

	m.log.Info("training started",
		"model_type", string(modelType),
		"dataset_id", dataset.ID,
		"rows", f.NumRows(),
		"features", len(req.FeatureColumns))

	targetCells, err := f.Column(req.TargetColumn)
	if err != nil {
		return zero, nil, err
	}
	y, labels, err := factory.EncodeTarget(targetCells, modelType)
	if err != nil {
		return zero, nil, err
	}

	testFraction := req.TestFraction
	if testFraction == 0 {
		testFraction = defaultTestFraction
	}
	seed := req.Seed
	if seed == 0 {
		seed = defaultSplitSeed
	}

	// The split happens before the encoder fit so the scaling statistics
	// come from the training rows alone; the held-out rows only ever pass
	// through the already fitted state.
	trainIdx, testIdx, err := factory.SplitIndices(f.NumRows(), testFraction, seed)
	if err != nil {
		return zero, nil, err
	}
	trainFeatures, err := features.SelectRows(trainIdx)
	if err != nil {
		return zero, nil, err
	}
	testFeatures, err := features.SelectRows(testIdx)
	if err != nil {
		return zero, nil, err
	}

	encoder := preprocessing.NewFeatureEncoder()
	XTrain, encState, err := encoder.FitTransform(trainFeatures)
	if err != nil {
		return zero, nil, err
	}
	XTest, err := encoder.Transform(testFeatures, encState)
	if err != nil {
		return zero, nil, err
	}
	yTrain := factory.SelectVec(y, trainIdx)
	yTest := factory.SelectVec(y, testIdx)

	est, err := factory.Create(modelType, req.Hyperparameters)
	if err != nil {
		return zero, nil, err
	}
	if err := factory.Train(est, XTrain, yTrain); err != nil {
		m.log.Error("training failed", "model_type", string(modelType), "dataset_id", dataset.ID, "error", err)
		return zero, nil, err
	}

	bundle, err := factory.Metrics(est, XTest, yTest, modelType, labels)
	if err != nil {
		return zero, nil, err
	}
	if !modelType.IsClassifier() {
		if err := factory.AttachTargetRange(bundle, y); err != nil {
			return zero, nil, err
		}
	}

	art := &artifact.Artifact{
		ModelType:      modelType,
		Estimator:      est,
		Encoding:       encState,
		FeatureColumns: req.FeatureColumns,
		TargetColumn:   req.TargetColumn,
		Labels:         labels,
		Hyperparams:    req.Hyperparameters,
		CreatedAt:      time.Now(),
	}
	artifactName, err := art.Save(m.cfg.Storage.ModelDir)
	if err != nil {
		return zero, nil, err
	}

	record := ledger.ModelRecord{
		ID:               ledger.NewID(),
		Name:             req.Name,
		Description:      req.Description,
		ModelType:        string(modelType),
		Hyperparameters:  req.Hyperparameters,
		ArtifactFilename: artifactName,
		DatasetID:        dataset.ID,
		TargetColumn:     req.TargetColumn,
		FeatureColumns:   req.FeatureColumns,
		Metrics:          bundle,
		CreatedAt:        time.Now(),
	}
	if err := m.models.Create(record); err != nil {
		if cleanupErr := artifact.Delete(m.cfg.Storage.ModelDir, artifactName); cleanupErr != nil {
			m.log.Warn("failed to clean up orphaned artifact", "artifact", artifactName, "error", cleanupErr)
		}
		return zero, nil, err
	}

	m.log.Info("training completed", "model_id", record.ID, "artifact", artifactName)
	return record, bundle, nil
}

// DeleteResult reports which of the two deletion steps completed, so
// partial success reaches the caller instead of being swallowed.
type DeleteResult struct {
	ArtifactRemoved bool
	RecordRemoved   bool
}

// DeleteModel removes the artifact file (absence tolerated) and then the
// ledger row.
func (m *Manager) DeleteModel(id string) (DeleteResult, error) {
	var result DeleteResult

	record, err := m.models.Get(id)
	if err != nil {
		return result, err
	}

	if err := artifact.Delete(m.cfg.Storage.ModelDir, record.ArtifactFilename); err != nil {
		m.log.Warn("failed to remove artifact file", "model_id", id, "artifact", record.ArtifactFilename, "error", err)
	} else {
		result.ArtifactRemoved = true
	}

	removed, err := m.models.Delete(id)
	if err != nil {
		return result, err
	}
	result.RecordRemoved = removed
	if !removed {
		m.log.Warn("model row was already gone during delete", "model_id", id)
	}
	return result, nil
}

// LoadArtifact reads the trained artifact behind a model record.
func (m *Manager) LoadArtifact(record ledger.ModelRecord) (*artifact.Artifact, error) {
	return artifact.Load(m.cfg.Storage.ModelDir, record.ArtifactFilename)
}

// UpdateModelMetrics replaces the stored metrics bundle of a model and
// returns the refreshed record. Safe to call repeatedly with the same
// bundle.
func (m *Manager) UpdateModelMetrics(id string, bundle factory.Bundle) (ledger.ModelRecord, error) {
	return m.models.Update(id, func(r ledger.ModelRecord) ledger.ModelRecord {
		r.Metrics = bundle
		return r
	})
}
