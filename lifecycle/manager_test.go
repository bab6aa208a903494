package lifecycle

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/config"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/factory"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/ledger"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

const housingCSV = `area,rooms,city,price
50,2,Paris,200000
60,2,Paris,230000
70,3,Tokyo,260000
80,3,Tokyo,300000
90,4,Berlin,340000
100,4,Berlin,380000
110,5,Paris,420000
120,5,Tokyo,460000
130,6,Berlin,500000
140,6,Paris,540000
`

const churnCSV = `age,plan,churned
22,basic,yes
25,basic,yes
28,basic,yes
31,basic,yes
45,premium,no
48,premium,no
52,premium,no
55,premium,no
60,premium,no
62,basic,yes
`

func newManager(t *testing.T) *Manager {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatasetDir: t.TempDir(),
			ModelDir:   t.TempDir(),
		},
	}
	require.NoError(t, cfg.EnsureDirs())
	return NewManager(cfg, nil)
}

func uploadDataset(t *testing.T, m *Manager, name, csv string) ledger.DatasetRecord {
	t.Helper()
	record, err := m.CreateDataset(name, "", strings.NewReader(csv))
	require.NoError(t, err)
	return record
}

func TestCreateDataset(t *testing.T) {
	m := newManager(t)

	record := uploadDataset(t, m, "housing", housingCSV)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 10, record.RowCount)
	assert.Equal(t, 4, record.ColumnCount)

	// The stored file round-trips through the frame loader.
	f, err := m.LoadFrame(record)
	require.NoError(t, err)
	assert.Equal(t, 10, f.NumRows())

	list := m.Datasets()
	require.Len(t, list, 1)
	assert.Equal(t, record.ID, list[0].ID)
}

func TestCreateDatasetRejectsBadCSV(t *testing.T) {
	m := newManager(t)

	_, err := m.CreateDataset("empty", "", strings.NewReader(""))
	assert.Error(t, err)

	_, err = m.CreateDataset("header only", "", strings.NewReader("a,b\n"))
	assert.Error(t, err)

	_, err = m.CreateDataset("ragged", "", strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)

	// Nothing was cataloged or stored.
	assert.Empty(t, m.Datasets())
}

func TestTrainModelRegression(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "housing", housingCSV)

	record, bundle, err := m.TrainModel(TrainRequest{
		Name:           "price model",
		ModelType:      "linear_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "price",
		FeatureColumns: []string{"area", "rooms", "city"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.NotEmpty(t, record.ArtifactFilename)
	assert.Equal(t, dataset.ID, record.DatasetID)

	// Regression bundles carry error metrics plus the target range.
	for _, key := range []string{"mse", "r2_score", "mae", "target_min", "target_max", "coefficients", "intercept"} {
		assert.Contains(t, bundle, key)
	}
	assert.NotContains(t, bundle, "accuracy")

	// The artifact is loadable and matches the record.
	art, err := m.LoadArtifact(record)
	require.NoError(t, err)
	assert.Equal(t, "price", art.TargetColumn)
	assert.True(t, art.Estimator.IsFitted())
	assert.Equal(t, []string{"area", "rooms", "city"}, art.FeatureColumns)
}

func TestTrainModelClassification(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "churn", churnCSV)

	record, bundle, err := m.TrainModel(TrainRequest{
		Name:           "churn model",
		ModelType:      "logistic_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "churned",
		FeatureColumns: []string{"age", "plan"},
		Hyperparameters: factory.Hyperparameters{
			"iterations":    float64(500),
			"learning_rate": 0.5,
		},
	})
	require.NoError(t, err)

	for _, key := range []string{"accuracy", "precision", "recall", "f1_score", "confusion_matrix", "classes"} {
		assert.Contains(t, bundle, key)
	}
	assert.NotContains(t, bundle, "mse")

	art, err := m.LoadArtifact(record)
	require.NoError(t, err)
	assert.Equal(t, []string{"no", "yes"}, art.Labels)
}

func TestTrainModelScalerFitsOnTrainingRowsOnly(t *testing.T) {
	// The outlier row makes the full-column mean (181) unreachable from
	// any eight-row training subset, so a leak is always visible.
	const outlierCSV = `area,price
50,100
60,120
70,140
80,160
90,180
100,200
110,220
120,240
130,260
1000,2000
`
	m := newManager(t)
	dataset := uploadDataset(t, m, "outliers", outlierCSV)

	record, _, err := m.TrainModel(TrainRequest{
		Name:           "leak check",
		ModelType:      "linear_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "price",
		FeatureColumns: []string{"area"},
	})
	require.NoError(t, err)

	art, err := m.LoadArtifact(record)
	require.NoError(t, err)
	require.NotEmpty(t, art.Encoding.Mean)

	// Recompute the training-side mean over the same deterministic split.
	f, err := m.LoadFrame(dataset)
	require.NoError(t, err)
	trainIdx, _, err := factory.SplitIndices(f.NumRows(), 0.2, 42)
	require.NoError(t, err)
	areas, err := f.Column("area")
	require.NoError(t, err)
	var sum float64
	for _, idx := range trainIdx {
		v, parseErr := strconv.ParseFloat(areas[idx], 64)
		require.NoError(t, parseErr)
		sum += v
	}
	trainMean := sum / float64(len(trainIdx))

	assert.InDelta(t, trainMean, art.Encoding.Mean[0], 1e-9)
	assert.NotEqual(t, 181.0, art.Encoding.Mean[0])
}

func TestTrainModelValidation(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "housing", housingCSV)

	tests := []struct {
		name string
		req  TrainRequest
	}{
		{
			name: "unknown model type",
			req: TrainRequest{
				ModelType:      "gradient_boosting",
				DatasetID:      dataset.ID,
				TargetColumn:   "price",
				FeatureColumns: []string{"area"},
			},
		},
		{
			name: "missing dataset",
			req: TrainRequest{
				ModelType:      "linear_regression",
				DatasetID:      "nope",
				TargetColumn:   "price",
				FeatureColumns: []string{"area"},
			},
		},
		{
			name: "missing target column",
			req: TrainRequest{
				ModelType:      "linear_regression",
				DatasetID:      dataset.ID,
				TargetColumn:   "nonexistent",
				FeatureColumns: []string{"area"},
			},
		},
		{
			name: "no feature columns",
			req: TrainRequest{
				ModelType:    "linear_regression",
				DatasetID:    dataset.ID,
				TargetColumn: "price",
			},
		},
		{
			name: "target used as feature",
			req: TrainRequest{
				ModelType:      "linear_regression",
				DatasetID:      dataset.ID,
				TargetColumn:   "price",
				FeatureColumns: []string{"area", "price"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := m.TrainModel(tt.req)
			assert.Error(t, err)
		})
	}

	// No half-trained model leaked into the ledger or onto disk.
	assert.Empty(t, m.Models())
}

func TestDeleteModelRemovesArtifactAndRecord(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "housing", housingCSV)

	record, _, err := m.TrainModel(TrainRequest{
		Name:           "doomed",
		ModelType:      "linear_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "price",
		FeatureColumns: []string{"area"},
	})
	require.NoError(t, err)

	artifactPath := m.cfg.ModelPath(record.ArtifactFilename)
	_, err = os.Stat(artifactPath)
	require.NoError(t, err)

	result, err := m.DeleteModel(record.ID)
	require.NoError(t, err)
	assert.True(t, result.ArtifactRemoved)
	assert.True(t, result.RecordRemoved)

	_, err = os.Stat(artifactPath)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, m.Models())

	// Deleting again fails on the record lookup.
	_, err = m.DeleteModel(record.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteModelWithMissingArtifact(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "housing", housingCSV)

	record, _, err := m.TrainModel(TrainRequest{
		Name:           "orphan",
		ModelType:      "linear_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "price",
		FeatureColumns: []string{"area"},
	})
	require.NoError(t, err)

	// Lose the artifact out of band; the row removal must still succeed.
	require.NoError(t, os.Remove(m.cfg.ModelPath(record.ArtifactFilename)))

	result, err := m.DeleteModel(record.ID)
	require.NoError(t, err)
	assert.True(t, result.ArtifactRemoved)
	assert.True(t, result.RecordRemoved)
}

func TestDeleteDatasetBlockedByDependentModels(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "housing", housingCSV)

	record, _, err := m.TrainModel(TrainRequest{
		Name:           "dependent",
		ModelType:      "linear_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "price",
		FeatureColumns: []string{"area"},
	})
	require.NoError(t, err)

	err = m.DeleteDataset(dataset.ID)
	require.Error(t, err)
	var vErr *errors.ValidationError
	assert.ErrorAs(t, err, &vErr)

	// After the dependent model goes away the dataset can be deleted.
	_, err = m.DeleteModel(record.ID)
	require.NoError(t, err)
	require.NoError(t, m.DeleteDataset(dataset.ID))
	assert.Empty(t, m.Datasets())
}

func TestUpdateModelMetrics(t *testing.T) {
	m := newManager(t)
	dataset := uploadDataset(t, m, "housing", housingCSV)

	record, bundle, err := m.TrainModel(TrainRequest{
		Name:           "refreshable",
		ModelType:      "linear_regression",
		DatasetID:      dataset.ID,
		TargetColumn:   "price",
		FeatureColumns: []string{"area"},
	})
	require.NoError(t, err)

	bundle["extra"] = 1.0
	updated, err := m.UpdateModelMetrics(record.ID, bundle)
	require.NoError(t, err)
	assert.Equal(t, 1.0, updated.Metrics["extra"])

	got, err := m.Model(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Metrics["extra"])
}
