// Package results persists run-level metric tables and their column means.
package results

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"anombench/internal/apperr"
)

// Columns is the fixed metric layout of a results row. Rows bind to these
// names positionally.
var Columns = []string{
	"Instance AUROC",
	"Full Pixel AUROC",
	"Full PRO",
	"Anomaly Pixel AUROC",
	"Anomaly PRO",
}

// FileName is the table written under the results path.
const FileName = "results.csv"

type options struct {
	rowNames []string
	columns  []string
}

type Option func(*options)

// WithRowNames prefixes each CSV row with its dataset name and the mean row
// with the literal "Mean".
func WithRowNames(names []string) Option {
	return func(o *options) { o.rowNames = names }
}

// WithColumns overrides the default column layout.
func WithColumns(columns []string) Option {
	return func(o *options) { o.columns = columns }
}

// Store writes results.csv under path (header, one row per input row, one
// trailing mean row) and returns the column means keyed "mean_<column>".
// Preconditions are checked before anything is written; an existing file is
// overwritten without warning. Means over zero rows are NaN, callers guard
// for that themselves.
func Store(path string, rows [][]float64, opts ...Option) (map[string]float64, error) {
	o := options{columns: Columns}
	for _, opt := range opts {
		opt(&o)
	}

	if o.rowNames != nil && len(o.rowNames) != len(rows) {
		return nil, apperr.NewShapeMismatch("row names vs result rows", len(rows), len(o.rowNames))
	}
	for i, row := range rows {
		if len(row) != len(o.columns) {
			return nil, apperr.NewShapeMismatch(fmt.Sprintf("columns in row %d", i), len(o.columns), len(row))
		}
	}

	means := columnMeans(rows, len(o.columns))
	for i, name := range o.columns {
		slog.Info("metric summary", "column", name, "mean", means[i])
	}

	file, err := os.Create(filepath.Join(path, FileName))
	if err != nil {
		return nil, fmt.Errorf("create results file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	header := o.columns
	if o.rowNames != nil {
		header = append([]string{"Row Names"}, header...)
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		record := formatRow(row)
		if o.rowNames != nil {
			record = append([]string{o.rowNames[i]}, record...)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	meanRecord := formatRow(means)
	if o.rowNames != nil {
		meanRecord = append([]string{"Mean"}, meanRecord...)
	}
	if err := w.Write(meanRecord); err != nil {
		return nil, fmt.Errorf("write mean row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush results file: %w", err)
	}

	out := make(map[string]float64, len(o.columns))
	for i, name := range o.columns {
		out["mean_"+name] = means[i]
	}
	return out, nil
}

func columnMeans(rows [][]float64, columns int) []float64 {
	means := make([]float64, columns)
	column := make([]float64, len(rows))
	for j := 0; j < columns; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		means[j] = stat.Mean(column, nil)
	}
	return means
}

func formatRow(row []float64) []string {
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return record
}
