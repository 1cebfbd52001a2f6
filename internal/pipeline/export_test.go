package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/features"
	"liquidity-crisis/internal/model"
)

// fractionalProvider yields predictions whose decimal forms need many digits.
type fractionalProvider struct{}

func (fractionalProvider) Name() string       { return "fractional" }
func (fractionalProvider) Features() []string { return []string{"volume", "spread"} }

func (fractionalProvider) Predict(m *features.Matrix) ([]float64, error) {
	out := make([]float64, m.Rows())
	for i, row := range m.Values {
		out[i] = (row[0] + row[1]) / 3
	}
	return out, nil
}

func runBTC(t *testing.T) *Result {
	t.Helper()
	e := newTestEngine(fractionalProvider{})
	res, err := e.Run(parse(t, historyCSV), "BTC")
	require.NoError(t, err)
	return res
}

func TestWriteCSVRoundTrip(t *testing.T) {
	res := runBTC(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	back, err := data.ParseDatasetCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, res.Dataset.Len(), back.Len())
	assert.Len(t, back.Columns, len(res.Dataset.Columns)+2)
	assert.Equal(t, res.Dataset.Columns, back.Columns[:len(res.Dataset.Columns)])
	assert.Equal(t, model.ColumnPrediction, back.Columns[len(back.Columns)-2])
	assert.Equal(t, model.ColumnCrisisFlag, back.Columns[len(back.Columns)-1])

	preds := make([]float64, back.Len())
	for i := range preds {
		v, err := strconv.ParseFloat(back.Value(i, model.ColumnPrediction), 64)
		require.NoError(t, err)
		preds[i] = v

		for _, col := range res.Dataset.Columns {
			assert.Equal(t, res.Dataset.Value(i, col), back.Value(i, col))
		}
	}
	assert.Equal(t, res.Predictions, preds)

	threshold := res.Threshold()
	for i, p := range preds {
		flag, err := model.ParseFlag(back.Value(i, model.ColumnCrisisFlag))
		require.NoError(t, err)
		assert.Equal(t, p < threshold, flag, "row %d", i)
	}
}

func TestWriteCSVOverwritesDerivedColumns(t *testing.T) {
	e := newTestEngine(&sumProvider{features: []string{"volume"}})
	in := "crypto,volume,Predicted_Liquidity,Crisis_Flag\nBTC,1,stale,False\nBTC,2,stale,True\n"

	res, err := e.Run(parse(t, in), "BTC")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	back, err := data.ParseDatasetCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"crypto", "volume", model.ColumnPrediction, model.ColumnCrisisFlag}, back.Columns)
	assert.Equal(t, []string{"1", "2"}, back.Column(model.ColumnPrediction))
	assert.Equal(t, []string{"True", "False"}, back.Column(model.ColumnCrisisFlag))
}

func TestWriteXLSX(t *testing.T) {
	res := runBTC(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, res.Dataset.Len()+1)
	assert.Equal(t, res.Header(), rows[0])
	assert.Equal(t, "BTC", rows[1][0])

	flag, err := f.GetCellValue(xlsxSheet, "G2")
	require.NoError(t, err)
	assert.Contains(t, []string{"TRUE", "1"}, flag)
}

func TestWriteFiles(t *testing.T) {
	res := runBTC(t)
	dir := filepath.Join(t.TempDir(), "results")

	csvPath := filepath.Join(dir, ExportCSVName)
	require.NoError(t, WriteCSVFile(csvPath, res))
	back, err := data.LoadDatasetCSV(csvPath)
	require.NoError(t, err)
	assert.Equal(t, res.Dataset.Len(), back.Len())

	xlsxPath := filepath.Join(dir, ExportXLSXName)
	require.NoError(t, WriteXLSXFile(xlsxPath, res))
	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
