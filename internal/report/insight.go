// Package report renders pipeline results for people: insight messages
// and the predicted liquidity chart.
package report

import (
	"fmt"
	"strconv"

	"liquidity-crisis/internal/pipeline"
)

// Insight levels.
const (
	LevelWarning = "warning"
	LevelSuccess = "success"
)

// Insight is the headline a user sees after a run.
type Insight struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// NewInsight picks the warning or the all-clear for r.
func NewInsight(r *pipeline.Result) Insight {
	if r.CrisisCount() > 0 {
		return Insight{
			Level:   LevelWarning,
			Message: fmt.Sprintf("Liquidity crises detected for %s. Traders should manage risks.", r.Group),
		}
	}
	return Insight{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("No liquidity crises detected for %s.", r.Group),
	}
}

// FormatThreshold renders a threshold with two decimals.
func FormatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Lines is the plain-text summary printed by the CLI.
func Lines(r *pipeline.Result) []string {
	in := NewInsight(r)
	return []string{
		fmt.Sprintf("Crisis Days Detected: %d", r.CrisisCount()),
		fmt.Sprintf("Crisis Threshold (%s quantile): %s", quantileLabel(r.Detection.Quantile), FormatThreshold(r.Threshold())),
		in.Message,
	}
}

func quantileLabel(q float64) string {
	return strconv.FormatFloat(q*100, 'f', -1, 64) + "%"
}
