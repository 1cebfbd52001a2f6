package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultCrisisQuantile flags the bottom decile of predicted liquidity.
const DefaultCrisisQuantile = 0.1

// ErrEmptyInput is returned when a threshold is requested for no values.
var ErrEmptyInput = errors.New("no predictions to evaluate")

// ErrNonFinite is returned when a value is NaN or infinite.
var ErrNonFinite = errors.New("value is not a finite number")

// CrisisResult is the outcome of one detection pass.
// Flags is aligned with the input predictions.
type CrisisResult struct {
	Quantile    float64
	Threshold   float64
	Flags       []bool
	CrisisCount int
}

// Quantile returns the q-quantile of values using linear interpolation
// between order statistics at rank q*(n-1). values is not modified and
// must all be finite.
func Quantile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile %v outside [0, 1]", q)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("value %d is %v: %w", i, v, ErrNonFinite)
		}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, q), nil
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// DetectCrises computes the q-quantile threshold of predictions and flags
// every prediction strictly below it. A value equal to the threshold is
// never flagged, so a constant series has no crises.
func DetectCrises(predictions []float64, q float64) (*CrisisResult, error) {
	threshold, err := Quantile(predictions, q)
	if err != nil {
		return nil, err
	}
	res := &CrisisResult{
		Quantile:  q,
		Threshold: threshold,
		Flags:     make([]bool, len(predictions)),
	}
	for i, p := range predictions {
		if p < threshold {
			res.Flags[i] = true
			res.CrisisCount++
		}
	}
	return res, nil
}
