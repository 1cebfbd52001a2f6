// Package pipeline runs the liquidity crisis analysis for one group of an
// uploaded dataset: filter, check schema, project features, predict, detect.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"liquidity-crisis/internal/analysis"
	"liquidity-crisis/internal/config"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/features"
	"liquidity-crisis/internal/metrics"
	"liquidity-crisis/internal/model"
	"liquidity-crisis/internal/predict"
)

// Engine sequences the pipeline stages. It holds no per-run state and is
// safe for concurrent use as long as the provider is.
type Engine struct {
	Model    *predict.Handle
	Columns  config.ColumnsConfig
	Quantile float64

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// New creates an engine with the given model handle and configuration.
func New(h *predict.Handle, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Model:    h,
		Columns:  cfg.Columns,
		Quantile: cfg.Detector.Quantile,
		Metrics:  m,
		Logger:   logger.With(slog.String("component", "pipeline")),
	}
}

// Groups validates the grouping column and lists its distinct values.
func (e *Engine) Groups(ds *model.Dataset) ([]string, error) {
	if !ds.HasColumn(e.Columns.Group) {
		return nil, &SchemaError{Column: e.Columns.Group}
	}
	return data.Groups(ds, e.Columns.Group)
}

// Run executes the pipeline for one group. An empty group selects the
// first group of the dataset. Nothing is returned on failure.
func (e *Engine) Run(ds *model.Dataset, group string) (*Result, error) {
	start := time.Now()
	res, err := e.run(ds, group)
	outcome := outcomeOf(err)
	if err == nil {
		e.Metrics.ObserveAnalysis(outcome, time.Since(start), len(res.Predictions), res.CrisisCount())
		e.Logger.Info("Analysis completed",
			slog.String("group", res.Group),
			slog.Int("rows", len(res.Predictions)),
			slog.Int("crisis_count", res.CrisisCount()),
			slog.Float64("threshold", res.Threshold()),
			slog.Duration("took", time.Since(start)))
		return res, nil
	}
	e.Metrics.ObserveAnalysis(outcome, time.Since(start), 0, 0)
	e.Logger.Warn("Analysis failed",
		slog.String("group", group),
		slog.String("outcome", outcome),
		slog.String("error", err.Error()))
	return nil, err
}

func (e *Engine) run(ds *model.Dataset, group string) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	groups, err := e.Groups(ds)
	if err != nil {
		return nil, err
	}
	if group == "" {
		if len(groups) == 0 {
			return nil, &EmptyGroupError{}
		}
		group = groups[0]
	}

	filtered, source := data.SelectGroup(ds, e.Columns.Group, group)
	if filtered.Len() == 0 {
		return nil, &EmptyGroupError{Group: group}
	}

	provider, err := e.Model.Get()
	if err != nil {
		return nil, &ModelError{Err: err}
	}
	excl := e.Columns.Exclusions()
	if err := predict.CheckSchema(provider.Features(), features.FeatureColumns(filtered.Columns, excl)); err != nil {
		return nil, err
	}
	x, err := features.Project(filtered, excl)
	if err != nil {
		var valueErr *features.ValueError
		if errors.As(err, &valueErr) {
			valueErr.Row = source[valueErr.Row]
			valueErr.Group = group
		}
		return nil, err
	}
	predictions, err := provider.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(predictions) != filtered.Len() {
		return nil, fmt.Errorf("provider returned %d predictions for %d rows", len(predictions), filtered.Len())
	}

	detection, err := analysis.DetectCrises(predictions, e.Quantile)
	if err != nil {
		return nil, fmt.Errorf("detect crises: %w", err)
	}

	timeCol := ""
	if filtered.HasColumn(e.Columns.Time) {
		timeCol = e.Columns.Time
	}
	return &Result{
		Group:       group,
		Groups:      groups,
		Model:       provider.Name(),
		Dataset:     filtered,
		TimeColumn:  timeCol,
		Predictions: predictions,
		Detection:   detection,
		Summary:     analysis.Summarize(predictions, detection),
	}, nil
}

// Overview runs the pipeline for every group and ranks them by crisis share.
// Each group gets its own threshold.
func (e *Engine) Overview(ds *model.Dataset) ([]analysis.GroupSummary, error) {
	groups, err := e.Groups(ds)
	if err != nil {
		return nil, err
	}
	out := make([]analysis.GroupSummary, 0, len(groups))
	for _, g := range groups {
		res, err := e.Run(ds, g)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g, err)
		}
		out = append(out, analysis.GroupSummary{Group: g, Summary: res.Summary})
	}
	return analysis.RankByCrisisShare(out), nil
}

// ModelError wraps a failure to load the prediction provider.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("prediction model unavailable: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func outcomeOf(err error) string {
	var (
		schemaErr   *SchemaError
		emptyErr    *EmptyGroupError
		mismatchErr *predict.FeatureMismatchError
		valueErr    *features.ValueError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &schemaErr):
		return metrics.OutcomeSchemaError
	case errors.As(err, &emptyErr):
		return metrics.OutcomeEmptyGroup
	case errors.As(err, &mismatchErr):
		return metrics.OutcomeFeatureMismatch
	case errors.As(err, &valueErr):
		return metrics.OutcomeInvalidValue
	default:
		return metrics.OutcomeError
	}
}
