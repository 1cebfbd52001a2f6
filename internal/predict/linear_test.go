package predict

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-crisis/internal/features"
)

func testModel() *LinearModel {
	return &LinearModel{
		ModelName:    "test-linear",
		Version:      "1",
		Target:       "liquidity",
		FeatureNames: []string{"volume", "price"},
		Intercept:    1,
		Coefficients: []float64{2, -0.5},
	}
}

func TestLinearModelPredict(t *testing.T) {
	m := testModel()
	x := &features.Matrix{
		Columns: []string{"volume", "price"},
		Values:  [][]float64{{1, 2}, {0, 0}, {3, 10}},
	}

	got, err := m.Predict(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 1, 2}, got, 1e-12)
}

func TestLinearModelPredictNoRows(t *testing.T) {
	got, err := testModel().Predict(&features.Matrix{Columns: []string{"volume", "price"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLinearModelPredictSchemaMismatch(t *testing.T) {
	x := &features.Matrix{
		Columns: []string{"price", "volume"},
		Values:  [][]float64{{1, 2}},
	}
	_, err := testModel().Predict(x)

	var mismatch *FeatureMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, mismatch.Missing)
	assert.Empty(t, mismatch.Unexpected)
	assert.Contains(t, err.Error(), "expected order: volume, price")
}

func TestLinearModelValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *LinearModel)
		want   string
	}{
		{"no features", func(m *LinearModel) { m.FeatureNames = nil; m.Coefficients = nil }, "no features"},
		{"length mismatch", func(m *LinearModel) { m.Coefficients = []float64{1} }, "coefficients"},
		{"duplicate", func(m *LinearModel) { m.FeatureNames = []string{"volume", "volume"} }, "twice"},
		{"empty name", func(m *LinearModel) { m.FeatureNames = []string{"volume", ""} }, "empty feature"},
		{"not finite", func(m *LinearModel) { m.Coefficients[1] = math.NaN() }, "not finite"},
	}

	require.NoError(t, testModel().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLinearModelName(t *testing.T) {
	assert.Equal(t, "test-linear", testModel().Name())
	assert.Equal(t, "linear", (&LinearModel{}).Name())
}

func TestLinearModelFeaturesIsCopy(t *testing.T) {
	m := testModel()
	f := m.Features()
	f[0] = "changed"
	assert.Equal(t, "volume", m.FeatureNames[0])
}

func TestSaveLoadLinearModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, SaveLinearModel(path, testModel()))

	loaded, err := LoadLinearModel(path)
	require.NoError(t, err)
	assert.Equal(t, testModel(), loaded)
}

func TestLoadLinearModelErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLinearModel(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("features: [a, b]\ncoefficients: [1]\n"), 0o644))
	_, err = LoadLinearModel(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")

	garbled := filepath.Join(dir, "garbled.yaml")
	require.NoError(t, os.WriteFile(garbled, []byte("features: [a\n"), 0o644))
	_, err = LoadLinearModel(garbled)
	assert.Error(t, err)
}

func TestSaveLinearModelRejectsInvalid(t *testing.T) {
	m := testModel()
	m.Coefficients = nil
	assert.Error(t, SaveLinearModel(filepath.Join(t.TempDir(), "model.yaml"), m))
}
