package preprocessing

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/frame"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// State is the fitted encoding captured at training time and persisted
// inside the artifact. Columns is the full ordered list of numeric columns
// after categorical expansion; Mean and Scale are the per-column scaling
// parameters aligned to that list; Numeric names the original input
// columns that passed through as numeric rather than expanding into
// indicators. Inference reuses this state verbatim.
type State struct {
	Columns []string
	Mean    []float64
	Scale   []float64
	Numeric []string
}

// FeatureEncoder turns a raw feature frame into a scaled numeric design
// matrix. Categorical columns expand into one indicator column per
// observed value; numeric columns pass through and are standardized.
type FeatureEncoder struct{}

// NewFeatureEncoder creates a FeatureEncoder.
func NewFeatureEncoder() *FeatureEncoder {
	return &FeatureEncoder{}
}

// FitTransform expands and scales the training frame and returns the
// fitted state needed to reproduce the identical encoding later.
func (e *FeatureEncoder) FitTransform(f *frame.Frame) (*mat.Dense, *State, error) {
	columns, numeric, raw, err := expand(f)
	if err != nil {
		return nil, nil, err
	}

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(raw)
	if err != nil {
		return nil, nil, err
	}

	state := &State{
		Columns: columns,
		Mean:    scaler.Mean,
		Scale:   scaler.Scale,
		Numeric: numeric,
	}
	return scaled, state, nil
}

// Transform re-expands a new frame and reindexes it to the fitted column
// list: columns present at training but absent now are zero-filled,
// columns unseen at training are dropped. The resulting matrix always has
// exactly the training-time column count and order, so train-time and
// inference-time feature vectors stay aligned.
func (e *FeatureEncoder) Transform(f *frame.Frame, state *State) (*mat.Dense, error) {
	if state == nil || len(state.Columns) == 0 {
		return nil, errors.NewNotFittedError("FeatureEncoder", "Transform")
	}

	// Columns fitted as numeric must stay numeric: a stray non-numeric
	// cell would otherwise masquerade as an unseen category and silently
	// zero-fill the feature.
	for _, col := range state.Numeric {
		if !f.HasColumn(col) {
			continue
		}
		if _, err := f.NumericColumn(col); err != nil {
			return nil, err
		}
	}

	columns, _, raw, err := expand(f)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(columns))
	for j, col := range columns {
		index[col] = j
	}

	rows, _ := raw.Dims()
	aligned := mat.NewDense(rows, len(state.Columns), nil)
	for j, col := range state.Columns {
		src, ok := index[col]
		if !ok {
			// Zero-filled: the value backing this indicator column did
			// not appear in the new frame.
			continue
		}
		for i := 0; i < rows; i++ {
			aligned.Set(i, j, raw.At(i, src))
		}
	}

	for i := 0; i < rows; i++ {
		for j := range state.Columns {
			aligned.Set(i, j, (aligned.At(i, j)-state.Mean[j])/state.Scale[j])
		}
	}
	return aligned, nil
}

// Scaler reconstructs a fitted StandardScaler from a saved state.
func (s *State) Scaler() *StandardScaler {
	scaler := &StandardScaler{
		Mean:      append([]float64(nil), s.Mean...),
		Scale:     append([]float64(nil), s.Scale...),
		NFeatures: len(s.Columns),
	}
	scaler.SetFitted()
	return scaler
}

// expand converts a raw frame into an unscaled numeric matrix. Fully
// numeric columns pass through under their own name; every other column
// becomes one "column_value" indicator column per distinct value, in
// sorted value order so the expansion is deterministic. The second
// return value names the columns that passed through as numeric.
func expand(f *frame.Frame) ([]string, []string, *mat.Dense, error) {
	if f.NumRows() == 0 {
		return nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "expand")
	}

	var names []string
	var numericCols []string
	var data [][]float64

	for _, col := range f.Columns() {
		cells, err := f.Column(col)
		if err != nil {
			return nil, nil, nil, err
		}

		numeric, err := f.IsNumeric(col)
		if err != nil {
			return nil, nil, nil, err
		}

		if numeric {
			values := make([]float64, len(cells))
			for i, cell := range cells {
				values[i], _ = strconv.ParseFloat(cell, 64)
			}
			names = append(names, col)
			numericCols = append(numericCols, col)
			data = append(data, values)
			continue
		}

		distinct := make(map[string]struct{})
		for _, cell := range cells {
			distinct[cell] = struct{}{}
		}
		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)

		for _, v := range values {
			indicator := make([]float64, len(cells))
			for i, cell := range cells {
				if cell == v {
					indicator[i] = 1
				}
			}
			names = append(names, col+"_"+v)
			data = append(data, indicator)
		}
	}

	rows := f.NumRows()
	out := mat.NewDense(rows, len(names), nil)
	for j, columnValues := range data {
		for i := 0; i < rows; i++ {
			out.Set(i, j, columnValues[i])
		}
	}
	return names, numericCols, out, nil
}
