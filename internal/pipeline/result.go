package pipeline

import (
	"strconv"

	"liquidity-crisis/internal/analysis"
	"liquidity-crisis/internal/model"
)

// Result is the enriched view of one group after prediction and detection.
// This is the primary artifact for "what happened" in a run.
type Result struct {
	Group string
	Model string
	// Groups lists every group of the uploaded dataset in first-seen order.
	Groups []string

	// Dataset holds the filtered rows with their original columns.
	Dataset *model.Dataset
	// TimeColumn is the configured time key; it may be absent from Dataset.
	TimeColumn string

	Predictions []float64
	Detection   *analysis.CrisisResult
	Summary     analysis.Summary
}

// Threshold is the crisis threshold of the run.
func (r *Result) Threshold() float64 {
	return r.Detection.Threshold
}

// CrisisCount is the number of flagged rows.
func (r *Result) CrisisCount() int {
	return r.Detection.CrisisCount
}

// Header returns the original columns followed by the two derived ones.
// A derived column already present in the upload is overwritten in place.
func (r *Result) Header() []string {
	header := append([]string(nil), r.Dataset.Columns...)
	if r.Dataset.Index(model.ColumnPrediction) < 0 {
		header = append(header, model.ColumnPrediction)
	}
	if r.Dataset.Index(model.ColumnCrisisFlag) < 0 {
		header = append(header, model.ColumnCrisisFlag)
	}
	return header
}

// Records returns every row aligned with Header.
func (r *Result) Records() [][]string {
	predIdx := r.Dataset.Index(model.ColumnPrediction)
	flagIdx := r.Dataset.Index(model.ColumnCrisisFlag)
	width := len(r.Header())

	out := make([][]string, len(r.Dataset.Rows))
	for i, row := range r.Dataset.Rows {
		rec := make([]string, len(row), width)
		copy(rec, row)
		pred := FormatPrediction(r.Predictions[i])
		flag := model.FormatFlag(r.Detection.Flags[i])
		if predIdx >= 0 {
			rec[predIdx] = pred
		} else {
			rec = append(rec, pred)
		}
		if flagIdx >= 0 {
			rec[flagIdx] = flag
		} else {
			rec = append(rec, flag)
		}
		out[i] = rec
	}
	return out
}

// Times returns the time key of each row, or nil when the column is absent.
func (r *Result) Times() []string {
	if r.TimeColumn == "" {
		return nil
	}
	return r.Dataset.Column(r.TimeColumn)
}

// FormatPrediction renders a prediction with the fewest digits that parse
// back to the same float64, so exported flags can be recomputed exactly.
func FormatPrediction(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
