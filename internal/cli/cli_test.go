package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-crisis/internal/analysis"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/model"
	"liquidity-crisis/internal/pipeline"
	"liquidity-crisis/internal/predict"
)

const historyCSV = `crypto,date,volume,spread,liquidity
BTC,2024-01-01,10,0,1
BTC,2024-01-02,20,0,1
BTC,2024-01-03,30,0,1
BTC,2024-01-04,40,0,1
BTC,2024-01-05,50,0,1
ETH,2024-01-01,5,5,1
BTC,2024-01-06,60,0,1
BTC,2024-01-07,70,0,1
BTC,2024-01-08,80,0,1
BTC,2024-01-09,90,0,1
BTC,2024-01-10,100,0,1
ETH,2024-01-02,5,5,1
`

type fixture struct {
	dir       string
	dataPath  string
	modelPath string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		dataPath:  filepath.Join(dir, "history.csv"),
		modelPath: filepath.Join(dir, "model.yaml"),
	}
	require.NoError(t, os.WriteFile(f.dataPath, []byte(historyCSV), 0o644))
	require.NoError(t, predict.SaveLinearModel(f.modelPath, &predict.LinearModel{
		ModelName:    "sum",
		FeatureNames: []string{"volume", "spread"},
		Coefficients: []float64{1, 1},
	}))
	return f
}

func run(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := New(&out, &errOut).Execute(args)
	return code, out.String(), errOut.String()
}

func TestDetect(t *testing.T) {
	f := newFixture(t)
	csvOut := filepath.Join(f.dir, "results", "predictions_with_crisis.csv")
	xlsxOut := filepath.Join(f.dir, "results", "predictions_with_crisis.xlsx")
	pngOut := filepath.Join(f.dir, "results", "liquidity.png")

	code, out, errOut := run("detect",
		"--data", f.dataPath, "--model", f.modelPath, "--crypto", "BTC",
		"--out", csvOut, "--xlsx", xlsxOut, "--chart", pngOut)
	require.Equal(t, ExitSuccess, code, errOut)

	assert.Contains(t, out, "Data for BTC: 10 rows")
	assert.Contains(t, out, "Crisis Days Detected: 1")
	assert.Contains(t, out, "Crisis Threshold (10% quantile): 19.00")
	assert.Contains(t, out, "Liquidity crises detected for BTC. Traders should manage risks.")

	exported, err := data.LoadDatasetCSV(csvOut)
	require.NoError(t, err)
	assert.Equal(t, 10, exported.Len())
	assert.True(t, exported.HasColumn(model.ColumnPrediction))

	for _, p := range []string{xlsxOut, pngOut} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}
}

func TestDetectDefaultCrypto(t *testing.T) {
	f := newFixture(t)
	code, out, _ := run("detect", "--data", f.dataPath, "--model", f.modelPath)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Data for BTC")
}

func TestDetectErrors(t *testing.T) {
	f := newFixture(t)

	code, _, errOut := run("detect", "--model", f.modelPath)
	assert.Equal(t, ExitValidation, code)
	assert.Contains(t, errOut, "--data is required")

	code, _, errOut = run("detect", "--data", f.dataPath, "--model", f.modelPath, "--crypto", "DOGE")
	assert.Equal(t, ExitValidation, code)
	assert.Contains(t, errOut, `no rows found for "DOGE"`)

	code, _, errOut = run("detect", "--data", f.dataPath, "--model", filepath.Join(f.dir, "missing.yaml"))
	assert.Equal(t, ExitInternal, code)
	assert.Contains(t, errOut, "prediction model unavailable")

	code, _, errOut = run("model", "--model", filepath.Join(f.dir, "missing.yaml"))
	assert.Equal(t, ExitInternal, code)
	assert.Contains(t, errOut, "prediction model unavailable")
}

func TestDetectIOErrors(t *testing.T) {
	f := newFixture(t)

	code, _, _ := run("detect", "--data", filepath.Join(f.dir, "absent.csv"), "--model", f.modelPath)
	assert.Equal(t, ExitInternal, code)

	// A regular file where the output directory should be.
	blocker := filepath.Join(f.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	code, out, errOut := run("detect", "--data", f.dataPath, "--model", f.modelPath,
		"--out", filepath.Join(blocker, "predictions.csv"))
	assert.Equal(t, ExitInternal, code, errOut)
	assert.Contains(t, out, "Crisis Days Detected: 1")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitValidation, exitCode(errors.New("bad input")))
	assert.Equal(t, ExitValidation, exitCode(&pipeline.EmptyGroupError{Group: "DOGE"}))
	assert.Equal(t, ExitInternal, exitCode(&pipeline.ModelError{Err: errors.New("gone")}))
	assert.Equal(t, ExitInternal, exitCode(fmt.Errorf("wrap: %w", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist})))
	assert.Equal(t, ExitInternal, exitCode(fmt.Errorf("detect crises: %w", analysis.ErrNonFinite)))
}

func TestGroups(t *testing.T) {
	f := newFixture(t)
	code, out, _ := run("groups", "--data", f.dataPath, "--model", f.modelPath)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "BTC\nETH\n", out)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	code, out, errOut := run("overview", "--data", f.dataPath, "--model", f.modelPath)
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "crisis_days")
	assert.Regexp(t, `1\s+BTC\s+10\s+1\s+0\.100\s+19\.00`, out)
	assert.Regexp(t, `2\s+ETH\s+2\s+0\s+0\.000\s+10\.00`, out)
}

func TestModel(t *testing.T) {
	f := newFixture(t)
	code, out, _ := run("model", "--model", f.modelPath)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "model: sum")
	assert.Contains(t, out, "1. volume")
	assert.Contains(t, out, "2. spread")
}

func TestConfigFile(t *testing.T) {
	f := newFixture(t)
	cfgPath := filepath.Join(f.dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model:\n  path: model.yaml\ndetector:\n  quantile: 0.5\n"), 0o644))

	code, out, errOut := run("detect", "--config", cfgPath, "--data", f.dataPath, "--crypto", "BTC")
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "Crisis Threshold (50% quantile): 55.00")
	assert.Contains(t, out, "Crisis Days Detected: 5")
}
