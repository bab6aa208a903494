// Package frame holds raw tabular data parsed from CSV uploads. Cells stay
// as strings until the encoding pipeline decides which columns are numeric
// and which need categorical expansion.
package frame

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

// Frame is an ordered set of named columns over string cells.
type Frame struct {
	columns []string
	rows    [][]string
}

// New builds a frame from a header and rows. Every row must have exactly
// one cell per column.
func New(columns []string, rows [][]string) (*Frame, error) {
	if len(columns) == 0 {
		return nil, errors.NewValidationError("columns", "frame requires at least one column", nil)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.NewValidationError("rows", "row length does not match column count",
				map[string]int{"row": i, "cells": len(row), "columns": len(columns)})
		}
	}
	return &Frame{columns: columns, rows: rows}, nil
}

// ReadCSV parses a frame from CSV data with a header row.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewValidationError("csv", "malformed CSV input", err.Error())
	}
	if len(records) == 0 {
		return nil, errors.NewValidationError("csv", "file is empty", nil)
	}
	return New(records[0], records[1:])
}

// ReadCSVFile parses a frame from a CSV file on disk.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("ReadCSVFile", path, err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// FromRecords builds a frame from map-shaped rows, in the given column
// order. Rows missing any named column fail with a ValidationError that
// names the missing columns.
func FromRecords(columns []string, records []map[string]string) (*Frame, error) {
	rows := make([][]string, 0, len(records))
	for i, record := range records {
		var missing []string
		row := make([]string, len(columns))
		for j, col := range columns {
			value, ok := record[col]
			if !ok {
				missing = append(missing, col)
				continue
			}
			row[j] = value
		}
		if len(missing) > 0 {
			return nil, errors.NewValidationError("features", "row is missing required feature values",
				map[string]interface{}{"row": i, "missing": missing})
		}
		rows = append(rows, row)
	}
	return New(columns, rows)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int {
	return len(f.columns)
}

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	return f.columnIndex(name) >= 0
}

func (f *Frame) columnIndex(name string) int {
	for i, col := range f.columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns the raw cells of one column.
func (f *Frame) Column(name string) ([]string, error) {
	idx := f.columnIndex(name)
	if idx < 0 {
		return nil, errors.NewValidationError("column", "column not present in frame", name)
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Select returns a new frame containing only the named columns, in the
// given order. Unknown names are reported by name.
func (f *Frame) Select(names []string) (*Frame, error) {
	indices := make([]int, len(names))
	for i, name := range names {
		idx := f.columnIndex(name)
		if idx < 0 {
			return nil, errors.NewValidationError("column", "column not present in frame", name)
		}
		indices[i] = idx
	}
	rows := make([][]string, len(f.rows))
	for i, row := range f.rows {
		selected := make([]string, len(indices))
		for j, idx := range indices {
			selected[j] = row[idx]
		}
		rows[i] = selected
	}
	return &Frame{columns: append([]string(nil), names...), rows: rows}, nil
}

// SelectRows returns a new frame containing only the rows at the given
// indices, in the given order.
func (f *Frame) SelectRows(indices []int) (*Frame, error) {
	rows := make([][]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(f.rows) {
			return nil, errors.NewValidationError("rows", "row index out of range", idx)
		}
		rows[i] = f.rows[idx]
	}
	return &Frame{columns: append([]string(nil), f.columns...), rows: rows}, nil
}

// IsNumeric reports whether every cell of the column parses as a float.
// Empty cells do not count as numeric.
func (f *Frame) IsNumeric(name string) (bool, error) {
	cells, err := f.Column(name)
	if err != nil {
		return false, err
	}
	for _, cell := range cells {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// NumericColumn parses one column into a float vector.
func (f *Frame) NumericColumn(name string) (*mat.VecDense, error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, errors.NewValidationError(name, "cell is not numeric", cell)
		}
		values[i] = v
	}
	return mat.NewVecDense(len(values), values), nil
}

// NumericMatrix parses every cell as a float into a dense matrix. The
// offending column and cell are named when parsing fails.
func (f *Frame) NumericMatrix() (*mat.Dense, error) {
	if len(f.rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NumericMatrix")
	}
	out := mat.NewDense(len(f.rows), len(f.columns), nil)
	for i, row := range f.rows {
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.NewValidationError(f.columns[j], "cell is not numeric", cell)
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// Row returns one data row as a column-name keyed map.
func (f *Frame) Row(i int) map[string]string {
	out := make(map[string]string, len(f.columns))
	for j, col := range f.columns {
		out[col] = f.rows[i][j]
	}
	return out
}
