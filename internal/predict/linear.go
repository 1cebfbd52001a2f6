package predict

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"liquidity-crisis/internal/features"
)

// LinearModel is a serialized linear regression:
// prediction = intercept + sum(coefficients[i] * features[i]).
//
// Example artifact:
//
//	name: liquidity-ridge
//	version: "2024-06-01"
//	target: liquidity
//	features: [price, volume, market_cap]
//	intercept: 0.12
//	coefficients: [0.001, 0.00002, 0.0000001]
type LinearModel struct {
	ModelName    string    `yaml:"name"`
	Version      string    `yaml:"version"`
	Target       string    `yaml:"target"`
	FeatureNames []string  `yaml:"features"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
}

// Name returns ModelName, or "linear" when unset.
func (m *LinearModel) Name() string {
	if m.ModelName == "" {
		return "linear"
	}
	return m.ModelName
}

func (m *LinearModel) Features() []string {
	return append([]string(nil), m.FeatureNames...)
}

// Validate checks the declared features and coefficients of the artifact.
func (m *LinearModel) Validate() error {
	if m == nil {
		return errors.New("model is nil")
	}
	if len(m.FeatureNames) == 0 {
		return errors.New("model declares no features")
	}
	if len(m.FeatureNames) != len(m.Coefficients) {
		return fmt.Errorf("model declares %d features but %d coefficients",
			len(m.FeatureNames), len(m.Coefficients))
	}
	seen := map[string]bool{}
	for _, f := range m.FeatureNames {
		if f == "" {
			return errors.New("model has an empty feature name")
		}
		if seen[f] {
			return fmt.Errorf("model declares feature %q twice", f)
		}
		seen[f] = true
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d (%s) is not finite", i, m.FeatureNames[i])
		}
	}
	return nil
}

// Predict evaluates the model for every row of x. The columns of x must
// match Features exactly.
func (m *LinearModel) Predict(x *features.Matrix) ([]float64, error) {
	if err := CheckSchema(m.FeatureNames, x.Columns); err != nil {
		return nil, err
	}
	n := x.Rows()
	if n == 0 {
		return []float64{}, nil
	}

	X := mat.NewDense(n, len(m.FeatureNames), x.Flat())
	beta := mat.NewVecDense(len(m.Coefficients), m.Coefficients)

	var y mat.VecDense
	y.MulVec(X, beta)

	out := make([]float64, n)
	for i := range out {
		out[i] = y.AtVec(i) + m.Intercept
	}
	return out, nil
}

// LoadLinearModel reads and validates a YAML model artifact.
func LoadLinearModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m LinearModel
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s invalid: %w", path, err)
	}
	return &m, nil
}

// SaveLinearModel writes m as a YAML artifact.
func SaveLinearModel(path string, m *LinearModel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
