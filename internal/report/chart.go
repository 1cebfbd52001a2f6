package report

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"liquidity-crisis/internal/pipeline"
)

// ChartOptions controls the PNG size.
type ChartOptions struct {
	Width  int
	Height int
}

// DefaultChartOptions matches a 10x4 inch figure at 100 dpi.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 1000, Height: 400}
}

// timeLayouts are tried in order when reading the time key.
var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// ParseTimes parses every value with the first layout that fits the first
// value. It returns false if any value fails to parse.
func ParseTimes(values []string) ([]time.Time, bool) {
	if len(values) == 0 {
		return nil, false
	}
	first := strings.TrimSpace(values[0])
	layout := ""
	for _, l := range timeLayouts {
		if _, err := time.Parse(l, first); err == nil {
			layout = l
			break
		}
	}
	if layout == "" {
		return nil, false
	}
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := time.Parse(layout, strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

var (
	predictionStyle = chart.Style{
		StrokeColor: chart.ColorBlue,
		StrokeWidth: 2,
	}
	thresholdStyle = chart.Style{
		StrokeColor:     chart.ColorRed,
		StrokeWidth:     2,
		StrokeDashArray: []float64{6, 4},
	}
)

// RenderChart draws predicted liquidity against the time key with a dashed
// threshold line and writes it as PNG. Rows are plotted against their
// index when the time key is missing or unparseable.
func RenderChart(w io.Writer, r *pipeline.Result, opts ChartOptions) error {
	if r == nil || len(r.Predictions) == 0 {
		return errors.New("nothing to plot")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultChartOptions()
	}

	ys := r.Predictions
	threshold := r.Threshold()

	var series []chart.Series
	xAxis := chart.XAxis{Name: "Date"}
	times, ok := ParseTimes(r.Times())
	if ok && len(times) > 1 {
		lo, hi := timeBounds(times)
		ok = lo.Before(hi)
	}
	if ok {
		xs := times
		if len(xs) == 1 {
			// A single point has no x range; widen it by a day.
			xs = []time.Time{xs[0], xs[0].Add(24 * time.Hour)}
			ys = []float64{ys[0], ys[0]}
		}
		lo, hi := timeBounds(xs)
		series = []chart.Series{
			chart.TimeSeries{Name: "Predicted Liquidity", XValues: xs, YValues: ys, Style: predictionStyle},
			chart.TimeSeries{Name: "Crisis Threshold", XValues: []time.Time{lo, hi}, YValues: []float64{threshold, threshold}, Style: thresholdStyle},
		}
		xAxis.ValueFormatter = dateFormatter
	} else {
		xs := make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i)
		}
		if len(xs) == 1 {
			xs = []float64{0, 1}
			ys = []float64{ys[0], ys[0]}
		}
		series = []chart.Series{
			chart.ContinuousSeries{Name: "Predicted Liquidity", XValues: xs, YValues: ys, Style: predictionStyle},
			chart.ContinuousSeries{Name: "Crisis Threshold", XValues: []float64{xs[0], xs[len(xs)-1]}, YValues: []float64{threshold, threshold}, Style: thresholdStyle},
		}
		xAxis.Name = "Row"
	}

	ch := chart.Chart{
		Title:      "Predicted Liquidity Over Time",
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: "Liquidity", Range: yRange(ys, threshold)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// dateFormatter labels time ticks, which go-chart passes as Unix nanoseconds.
func dateFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return time.Unix(0, int64(f)).UTC().Format("2006-01-02")
}

func timeBounds(ts []time.Time) (time.Time, time.Time) {
	lo, hi := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return lo, hi
}

// yRange pads the y axis so that flat series still render.
func yRange(ys []float64, threshold float64) *chart.ContinuousRange {
	lo, hi := threshold, threshold
	for _, y := range ys {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
		if lo != 0 {
			pad = abs(lo) * 0.05
		}
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
