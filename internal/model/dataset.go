package model

import "strconv"

// Well-known column names of an uploaded dataset and of the augmented export.
const (
	ColumnGroup  = "crypto"
	ColumnTime   = "date"
	ColumnTarget = "liquidity"

	ColumnPrediction = "Predicted_Liquidity"
	ColumnCrisisFlag = "Crisis_Flag"
)

// Row is one record of a Dataset. Values are aligned with Dataset.Columns.
type Row []string

// Dataset is an ordered table of string cells with a named header.
// Cells stay as text until a stage needs them typed (features, dates).
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Index returns the position of column name, or -1 if it is absent.
func (d *Dataset) Index(name string) int {
	if d == nil {
		return -1
	}
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the header contains name.
func (d *Dataset) HasColumn(name string) bool {
	return d.Index(name) >= 0
}

// Value returns the cell of row i in column name, or "" when the column is absent.
func (d *Dataset) Value(i int, name string) string {
	idx := d.Index(name)
	if idx < 0 || i < 0 || i >= len(d.Rows) {
		return ""
	}
	return d.Rows[i][idx]
}

// Column returns every value of column name in row order.
func (d *Dataset) Column(name string) []string {
	idx := d.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r[idx]
	}
	return out
}

// Head returns a dataset holding at most the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return &Dataset{Columns: d.Columns, Rows: d.Rows[:n]}
}

// FormatFlag renders a crisis flag the way the exported CSV carries it.
func FormatFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ParseFlag accepts the exported flag spelling as well as Go's boolean forms.
func ParseFlag(s string) (bool, error) {
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	return strconv.ParseBool(s)
}
