// Package features turns dataset rows into the numeric vectors a
// prediction provider consumes.
package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"liquidity-crisis/internal/model"
)

// Exclusions names the columns that are never features.
type Exclusions struct {
	Group  string
	Time   string
	Target string
}

// DefaultExclusions matches the column names of the reference datasets.
func DefaultExclusions() Exclusions {
	return Exclusions{
		Group:  model.ColumnGroup,
		Time:   model.ColumnTime,
		Target: model.ColumnTarget,
	}
}

// The derived export columns are always excluded so that a previously
// exported file can be analyzed again.
func (e Exclusions) excludes(col string) bool {
	switch col {
	case e.Group, e.Time, e.Target, model.ColumnPrediction, model.ColumnCrisisFlag:
		return true
	}
	return false
}

// Matrix is a dense row-major feature table.
type Matrix struct {
	Columns []string
	Values  [][]float64
}

// Rows returns the number of feature vectors.
func (m *Matrix) Rows() int {
	if m == nil {
		return 0
	}
	return len(m.Values)
}

// Flat returns the values as one row-major slice.
func (m *Matrix) Flat() []float64 {
	out := make([]float64, 0, len(m.Values)*len(m.Columns))
	for _, r := range m.Values {
		out = append(out, r...)
	}
	return out
}

// ValueError reports a feature cell that is not a finite number.
// Row is zero-based among the data rows of the projected dataset; callers
// that projected a filtered subset remap it to the uploaded file and set Group.
type ValueError struct {
	Row    int
	Group  string
	Column string
	Value  string
}

func (e *ValueError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("row %d (%s): feature %q has invalid value %q, want a finite number", e.Row+1, e.Group, e.Column, e.Value)
	}
	return fmt.Sprintf("row %d: feature %q has invalid value %q, want a finite number", e.Row+1, e.Column, e.Value)
}

// FeatureColumns lists columns minus the excluded ones, in their original order.
// Excluded names that are not present are simply ignored.
func FeatureColumns(columns []string, excl Exclusions) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if excl.excludes(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Project builds the feature matrix for every row of ds.
func Project(ds *model.Dataset, excl Exclusions) (*Matrix, error) {
	cols := FeatureColumns(ds.Columns, excl)
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = ds.Index(c)
	}

	m := &Matrix{
		Columns: cols,
		Values:  make([][]float64, len(ds.Rows)),
	}
	for r, row := range ds.Rows {
		vec := make([]float64, len(cols))
		for j, k := range idx {
			cell := strings.TrimSpace(row[k])
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ValueError{Row: r, Column: cols[j], Value: row[k]}
			}
			vec[j] = v
		}
		m.Values[r] = vec
	}
	return m, nil
}
