package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-crisis/internal/model"
)

const sampleCSV = `crypto,date,volume,liquidity
BTC,2024-01-01,100,0.5
ETH,2024-01-01,200,0.6
BTC,2024-01-02,300,0.7
SOL,2024-01-01,50,0.1
`

func TestParseDatasetCSV(t *testing.T) {
	ds, err := ParseDatasetCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"crypto", "date", "volume", "liquidity"}, ds.Columns)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, model.Row{"ETH", "2024-01-01", "200", "0.6"}, ds.Rows[1])
}

func TestParseDatasetCSVHeaderCleanup(t *testing.T) {
	in := "\xEF\xBB\xBFcrypto, date ,volume\nBTC,2024-01-01,1\n"

	ds, err := ParseDatasetCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"crypto", "date", "volume"}, ds.Columns)
}

func TestParseDatasetCSVHeaderOnly(t *testing.T) {
	ds, err := ParseDatasetCSV(strings.NewReader("crypto,volume\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, []string{"crypto", "volume"}, ds.Columns)
}

func TestParseDatasetCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"duplicate column", "crypto,volume,volume\nBTC,1,2\n", "duplicate column"},
		{"empty column name", "crypto,,volume\nBTC,1,2\n", "empty name"},
		{"ragged row", "crypto,volume\nBTC,1\nETH\n", "parse record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDatasetCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDatasetCSVEmpty(t *testing.T) {
	_, err := ParseDatasetCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestLoadDatasetCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ds, err := LoadDatasetCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())

	_, err = LoadDatasetCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestGroups(t *testing.T) {
	ds, err := ParseDatasetCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	groups, err := Groups(ds, "crypto")
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, groups)

	_, err = Groups(ds, "symbol")
	assert.Error(t, err)
}

func TestFilterGroup(t *testing.T) {
	ds, err := ParseDatasetCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	btc := FilterGroup(ds, "crypto", "BTC")
	assert.Equal(t, ds.Columns, btc.Columns)
	require.Equal(t, 2, btc.Len())
	assert.Equal(t, "2024-01-01", btc.Value(0, "date"))
	assert.Equal(t, "2024-01-02", btc.Value(1, "date"))

	assert.Equal(t, 0, FilterGroup(ds, "crypto", "DOGE").Len())
	assert.Equal(t, 0, FilterGroup(ds, "symbol", "BTC").Len())
}

func TestSelectGroupSourceRows(t *testing.T) {
	ds, err := ParseDatasetCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	btc, source := SelectGroup(ds, "crypto", "BTC")
	require.Equal(t, 2, btc.Len())
	assert.Equal(t, []int{0, 2}, source)

	sol, source := SelectGroup(ds, "crypto", "SOL")
	assert.Equal(t, 1, sol.Len())
	assert.Equal(t, []int{3}, source)

	_, source = SelectGroup(ds, "symbol", "BTC")
	assert.Empty(t, source)
}
