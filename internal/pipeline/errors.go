package pipeline

import (
	"fmt"

	"liquidity-crisis/internal/analysis"
)

// SchemaError means the uploaded dataset lacks the grouping column.
// No prediction or detection work is done when it is returned.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset must contain a %q column to filter different cryptocurrencies", e.Column)
}

// EmptyGroupError means the selected group matched no rows.
// It unwraps to analysis.ErrEmptyInput.
type EmptyGroupError struct {
	Group string
}

func (e *EmptyGroupError) Error() string {
	if e.Group == "" {
		return "dataset has no rows to analyze"
	}
	return fmt.Sprintf("no rows found for %q", e.Group)
}

func (e *EmptyGroupError) Unwrap() error {
	return analysis.ErrEmptyInput
}
