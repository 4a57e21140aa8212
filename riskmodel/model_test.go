package riskmodel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clinical profiles taken from the Cleveland dataset documentation.
var (
	lowRiskSample = []float64{
		45, 0, 2, 120, 180, 0, 0, 180, 0, 0.0, 1, 0, 3,
	}
	highRiskSample = []float64{
		70, 1, 3, 180, 300, 1, 2, 120, 1, 4.0, 2, 3, 7,
	}
)

func TestPredictValidInput(t *testing.T) {
	m := New()

	p, err := m.Predict(lowRiskSample)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Probability, 0.0)
	assert.LessOrEqual(t, p.Probability, 1.0)
	assert.Contains(t, []int{0, 1}, p.Prediction)
	assert.NotEmpty(t, p.RiskLevel)
	assert.NotEmpty(t, p.Interpretation)
}

func TestPredictOrdersRisk(t *testing.T) {
	m := New()

	low, err := m.Probability(lowRiskSample)
	require.NoError(t, err)
	high, err := m.Probability(highRiskSample)
	require.NoError(t, err)

	assert.Less(t, low, high, "a healthy profile must score below a severe one")
}

func TestPredictRejectsWrongFeatureCount(t *testing.T) {
	m := New()

	_, err := m.Predict([]float64{63, 1, 1})
	assert.ErrorIs(t, err, ErrWrongFeatureCount)

	_, err = m.Predict(append(append([]float64{}, lowRiskSample...), 1.0))
	assert.ErrorIs(t, err, ErrWrongFeatureCount)
}

func TestPredictRejectsNonFiniteValues(t *testing.T) {
	m := New()

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		sample := append([]float64{}, lowRiskSample...)
		sample[4] = bad
		_, err := m.Predict(sample)
		assert.ErrorIs(t, err, ErrNonFiniteInput)
	}
}

func TestPredictBatch(t *testing.T) {
	m := New()

	results, err := m.PredictBatch([][]float64{lowRiskSample, highRiskSample})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Less(t, results[0].Probability, results[1].Probability)

	_, err = m.PredictBatch([][]float64{lowRiskSample, {1, 2}})
	assert.Error(t, err)
}

func TestRiskLevelBands(t *testing.T) {
	assert.Equal(t, "Low Risk", RiskLevel(0.0))
	assert.Equal(t, "Low Risk", RiskLevel(0.19))
	assert.Equal(t, "Moderate Risk", RiskLevel(0.2))
	assert.Equal(t, "Moderate Risk", RiskLevel(0.49))
	assert.Equal(t, "High Risk", RiskLevel(0.5))
	assert.Equal(t, "High Risk", RiskLevel(0.79))
	assert.Equal(t, "Very High Risk", RiskLevel(0.8))
	assert.Equal(t, "Very High Risk", RiskLevel(1.0))
}

func TestFeatureImportancesSorted(t *testing.T) {
	m := New()

	weights := m.FeatureImportances()
	require.Len(t, weights, len(FeatureNames))
	for i := 1; i < len(weights); i++ {
		assert.GreaterOrEqual(t, weights[i-1].Importance, weights[i].Importance)
	}

	top := m.TopFeatures(5)
	assert.Len(t, top, 5)
	assert.Equal(t, weights[0], top[0])
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.json")

	params := `{
		"coefficients": [0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1,0.1],
		"intercept": 0,
		"scaler_mean": [0,0,0,0,0,0,0,0,0,0,0,0,0],
		"scaler_scale": [1,1,1,1,1,1,1,1,1,1,1,1,1]
	}`
	require.NoError(t, os.WriteFile(path, []byte(params), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	// With zeroed inputs the score is sigmoid(0) = 0.5
	prob, err := m.Probability(make([]float64, 13))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, prob, 1e-9)
}

func TestLoadRejectsBadParams(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.json")
	require.NoError(t, os.WriteFile(short, []byte(`{"coefficients":[1,2]}`), 0o644))
	_, err := Load(short)
	assert.Error(t, err)

	zeroScale := filepath.Join(dir, "zero.json")
	require.NoError(t, os.WriteFile(zeroScale, []byte(`{
		"coefficients": [1,1,1,1,1,1,1,1,1,1,1,1,1],
		"intercept": 0,
		"scaler_mean": [0,0,0,0,0,0,0,0,0,0,0,0,0],
		"scaler_scale": [1,1,1,1,1,1,0,1,1,1,1,1,1]
	}`), 0o644))
	_, err = Load(zeroScale)
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	m, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = LoadOrDefault("/nonexistent/params.json")
	assert.Error(t, err)
	assert.NotNil(t, m, "must still return a usable model")
}
