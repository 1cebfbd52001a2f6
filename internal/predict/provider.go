// Package predict holds the liquidity prediction provider: the model
// artifact, its declared feature schema and the load-once handle that
// every pipeline run shares.
package predict

import (
	"fmt"
	"strings"

	"liquidity-crisis/internal/features"
)

// Provider maps feature vectors to predicted liquidity scores.
// Implementations must be safe for concurrent read-only use.
type Provider interface {
	Name() string
	// Features is the ordered schema the provider was built against.
	Features() []string
	Predict(m *features.Matrix) ([]float64, error)
}

// FeatureMismatchError reports a projected feature set that differs from
// the provider's declared schema.
type FeatureMismatchError struct {
	Expected   []string
	Actual     []string
	Missing    []string
	Unexpected []string
}

func (e *FeatureMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("feature columns do not match the model schema")
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, "; unexpected: %s", strings.Join(e.Unexpected, ", "))
	}
	if len(e.Missing) == 0 && len(e.Unexpected) == 0 {
		fmt.Fprintf(&b, "; expected order: %s", strings.Join(e.Expected, ", "))
	}
	return b.String()
}

// CheckSchema compares actual against expected, order included.
func CheckSchema(expected, actual []string) error {
	if equalStrings(expected, actual) {
		return nil
	}
	want := make(map[string]bool, len(expected))
	for _, c := range expected {
		want[c] = true
	}
	have := make(map[string]bool, len(actual))
	for _, c := range actual {
		have[c] = true
	}
	e := &FeatureMismatchError{Expected: expected, Actual: actual}
	for _, c := range expected {
		if !have[c] {
			e.Missing = append(e.Missing, c)
		}
	}
	for _, c := range actual {
		if !want[c] {
			e.Unexpected = append(e.Unexpected, c)
		}
	}
	return e
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
