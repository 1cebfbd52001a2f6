package data

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"liquidity-crisis/internal/model"
)

// ErrEmptyDataset is returned for uploads with no header row.
var ErrEmptyDataset = errors.New("dataset is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadDatasetCSV reads a delimited dataset from disk.
func LoadDatasetCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDatasetCSV(f)
}

// ParseDatasetCSV parses a header row followed by records.
// Every record must have exactly as many fields as the header.
func ParseDatasetCSV(r io.Reader) (*model.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = true
		columns[i] = h
	}

	ds := &model.Dataset{Columns: columns}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number of ragged rows.
			return nil, fmt.Errorf("parse record: %w", err)
		}
		ds.Rows = append(ds.Rows, model.Row(rec))
	}
	return ds, nil
}

// Groups returns the distinct values of groupCol in order of first appearance.
func Groups(ds *model.Dataset, groupCol string) ([]string, error) {
	idx := ds.Index(groupCol)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", groupCol)
	}
	seen := map[string]bool{}
	out := []string{}
	for _, r := range ds.Rows {
		v := r[idx]
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// FilterGroup keeps the rows whose groupCol equals value, preserving order.
func FilterGroup(ds *model.Dataset, groupCol, value string) *model.Dataset {
	out, _ := SelectGroup(ds, groupCol, value)
	return out
}

// SelectGroup is FilterGroup that also returns, for each kept row, its
// zero-based index among the data rows of ds.
func SelectGroup(ds *model.Dataset, groupCol, value string) (*model.Dataset, []int) {
	out := &model.Dataset{Columns: ds.Columns}
	idx := ds.Index(groupCol)
	if idx < 0 {
		return out, nil
	}
	var source []int
	for i, r := range ds.Rows {
		if r[idx] == value {
			out.Rows = append(out.Rows, r)
			source = append(source, i)
		}
	}
	return out, source
}
