package ledger

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/factory"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// DatasetRecord catalogs one uploaded dataset. The underlying data file
// is immutable once created; only the administrative fields may change.
type DatasetRecord struct {
	ID             string
	Name           string
	Description    string
	StoredFilename string
	RowCount       int
	ColumnCount    int
	CreatedAt      time.Time
}

func (r DatasetRecord) RecordID() string           { return r.ID }
func (r DatasetRecord) RecordCreatedAt() time.Time { return r.CreatedAt }

// ModelRecord catalogs one trained model and owns exactly one artifact
// file. DatasetID must reference an existing DatasetRecord at creation
// time.
type ModelRecord struct {
	ID               string
	Name             string
	Description      string
	ModelType        string
	Hyperparameters  factory.Hyperparameters
	ArtifactFilename string
	DatasetID        string
	TargetColumn     string
	FeatureColumns   []string
	Metrics          factory.Bundle
	CreatedAt        time.Time
}

func (r ModelRecord) RecordID() string           { return r.ID }
func (r ModelRecord) RecordCreatedAt() time.Time { return r.CreatedAt }

// DatasetCodec translates dataset records to and from CSV rows.
func DatasetCodec() Codec[DatasetRecord] {
	return Codec[DatasetRecord]{
		Header: []string{"id", "name", "description", "stored_filename", "row_count", "column_count", "created_at"},
		Encode: func(r DatasetRecord) ([]string, error) {
			return []string{
				r.ID,
				r.Name,
				r.Description,
				r.StoredFilename,
				strconv.Itoa(r.RowCount),
				strconv.Itoa(r.ColumnCount),
				r.CreatedAt.UTC().Format(time.RFC3339Nano),
			}, nil
		},
		Decode: func(row []string) (DatasetRecord, error) {
			if len(row) != 7 {
				return DatasetRecord{}, errors.Newf("dataset row has %d cells, want 7", len(row))
			}
			rowCount, err := strconv.Atoi(row[4])
			if err != nil {
				return DatasetRecord{}, errors.Wrap(err, "row_count")
			}
			colCount, err := strconv.Atoi(row[5])
			if err != nil {
				return DatasetRecord{}, errors.Wrap(err, "column_count")
			}
			createdAt, err := time.Parse(time.RFC3339Nano, row[6])
			if err != nil {
				return DatasetRecord{}, errors.Wrap(err, "created_at")
			}
			return DatasetRecord{
				ID:             row[0],
				Name:           row[1],
				Description:    row[2],
				StoredFilename: row[3],
				RowCount:       rowCount,
				ColumnCount:    colCount,
				CreatedAt:      createdAt,
			}, nil
		},
	}
}

// ModelCodec translates model records to and from CSV rows. The
// hyperparameters, feature column list and metrics bundle are stored as
// JSON cells.
func ModelCodec() Codec[ModelRecord] {
	return Codec[ModelRecord]{
		Header: []string{"id", "name", "description", "model_type", "hyperparameters", "artifact_filename", "dataset_id", "target_column", "feature_columns", "metrics", "created_at"},
		Encode: func(r ModelRecord) ([]string, error) {
			hyperparams, err := json.Marshal(r.Hyperparameters)
			if err != nil {
				return nil, errors.Wrap(err, "hyperparameters")
			}
			features, err := json.Marshal(r.FeatureColumns)
			if err != nil {
				return nil, errors.Wrap(err, "feature_columns")
			}
			metricsJSON, err := json.Marshal(r.Metrics)
			if err != nil {
				return nil, errors.Wrap(err, "metrics")
			}
			return []string{
				r.ID,
				r.Name,
				r.Description,
				r.ModelType,
				string(hyperparams),
				r.ArtifactFilename,
				r.DatasetID,
				r.TargetColumn,
				string(features),
				string(metricsJSON),
				r.CreatedAt.UTC().Format(time.RFC3339Nano),
			}, nil
		},
		Decode: func(row []string) (ModelRecord, error) {
			if len(row) != 11 {
				return ModelRecord{}, errors.Newf("model row has %d cells, want 11", len(row))
			}
			var hyperparams factory.Hyperparameters
			if row[4] != "" && row[4] != "null" {
				if err := json.Unmarshal([]byte(row[4]), &hyperparams); err != nil {
					return ModelRecord{}, errors.Wrap(err, "hyperparameters")
				}
			}
			var features []string
			if row[8] != "" && row[8] != "null" {
				if err := json.Unmarshal([]byte(row[8]), &features); err != nil {
					return ModelRecord{}, errors.Wrap(err, "feature_columns")
				}
			}
			var bundle factory.Bundle
			if row[9] != "" && row[9] != "null" {
				if err := json.Unmarshal([]byte(row[9]), &bundle); err != nil {
					return ModelRecord{}, errors.Wrap(err, "metrics")
				}
			}
			createdAt, err := time.Parse(time.RFC3339Nano, row[10])
			if err != nil {
				return ModelRecord{}, errors.Wrap(err, "created_at")
			}
			return ModelRecord{
				ID:               row[0],
				Name:             row[1],
				Description:      row[2],
				ModelType:        row[3],
				Hyperparameters:  hyperparams,
				ArtifactFilename: row[5],
				DatasetID:        row[6],
				TargetColumn:     row[7],
				FeatureColumns:   features,
				Metrics:          bundle,
				CreatedAt:        createdAt,
			}, nil
		},
	}
}
