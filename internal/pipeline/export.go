package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"liquidity-crisis/internal/model"
)

// Export file names offered for download.
const (
	ExportCSVName  = "predictions_with_crisis.csv"
	ExportXLSXName = "predictions_with_crisis.xlsx"
	xlsxSheet      = "predictions"
)

// WriteCSV writes the augmented dataset: original columns plus the
// prediction and crisis flag columns.
func WriteCSV(w io.Writer, r *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return err
	}
	for _, rec := range r.Records() {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the augmented dataset to path, creating parent directories.
func WriteCSVFile(path string, r *Result) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, r) })
}

// WriteXLSX writes the augmented dataset as a single-sheet workbook.
// Predictions are numeric cells and flags boolean cells; every other
// column keeps its uploaded text.
func WriteXLSX(w io.Writer, r *Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := r.Header()
	predIdx := indexOf(header, model.ColumnPrediction)
	flagIdx := indexOf(header, model.ColumnCrisisFlag)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range r.Records() {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		row[predIdx] = r.Predictions[i]
		row[flagIdx] = r.Detection.Flags[i]

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return f.Write(w)
}

// WriteXLSXFile writes the workbook to path, creating parent directories.
func WriteXLSXFile(path string, r *Result) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, r) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
