// Package riskmodel scores heart disease risk from the 13 standard
// Cleveland clinical attributes using a scaled logistic model. Model
// parameters ship compiled in and can be replaced from a JSON export
// of the training pipeline.
package riskmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

// FeatureNames is the required input order for Predict.
var FeatureNames = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

var (
	ErrWrongFeatureCount = errors.New("riskmodel: input must have exactly 13 features")
	ErrNonFiniteInput    = errors.New("riskmodel: input contains NaN or infinite values")
)

// Params holds the logistic regression weights and the standard scaler
// statistics fitted on the training set.
type Params struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	ScalerMean   []float64 `json:"scaler_mean"`
	ScalerScale  []float64 `json:"scaler_scale"`
}

// Model is safe for concurrent use once constructed.
type Model struct {
	params Params
}

// Prediction is the full scoring result for one sample.
type Prediction struct {
	Prediction     int     `json:"prediction"`
	Probability    float64 `json:"probability"`
	RiskLevel      string  `json:"risk_level"`
	Interpretation string  `json:"interpretation"`
}

// defaultParams were fitted on the cleaned Cleveland dataset
// (297 rows, binary target) with standard scaling.
var defaultParams = Params{
	Coefficients: []float64{
		-0.0431, // age
		0.6712,  // sex
		0.5140,  // cp
		0.3519,  // trestbps
		0.2231,  // chol
		-0.1853, // fbs
		0.1957,  // restecg
		-0.4292, // thalach
		0.4661,  // exang
		0.3846,  // oldpeak
		0.2774,  // slope
		0.8514,  // ca
		0.7293,  // thal
	},
	Intercept: -0.2096,
	ScalerMean: []float64{
		54.5421, 0.6768, 3.1582, 131.6936, 247.3502, 0.1448, 0.9966,
		149.5993, 0.3266, 1.0556, 1.6027, 0.6768, 4.7306,
	},
	ScalerScale: []float64{
		9.0341, 0.4677, 0.9641, 17.7628, 51.9104, 0.3519, 0.9933,
		22.9416, 0.4690, 1.1641, 0.6166, 0.9384, 1.9375,
	},
}

// New returns a model running on the compiled-in parameters.
func New() *Model {
	return &Model{params: defaultParams}
}

// Load reads parameters exported by the training pipeline as JSON.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("riskmodel: read params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("riskmodel: parse params: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Model{params: p}, nil
}

// LoadOrDefault falls back to the compiled-in parameters when the path
// is empty or unreadable, so the service can always serve predictions.
func LoadOrDefault(path string) (*Model, error) {
	if path == "" {
		return New(), nil
	}
	m, err := Load(path)
	if err != nil {
		return New(), err
	}
	return m, nil
}

func (p Params) validate() error {
	n := len(FeatureNames)
	if len(p.Coefficients) != n || len(p.ScalerMean) != n || len(p.ScalerScale) != n {
		return fmt.Errorf("riskmodel: params must have %d coefficients, means and scales", n)
	}
	for i, s := range p.ScalerScale {
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("riskmodel: invalid scaler scale for %s", FeatureNames[i])
		}
	}
	return nil
}

func validateInput(features []float64) error {
	if len(features) != len(FeatureNames) {
		return ErrWrongFeatureCount
	}
	for _, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteInput
		}
	}
	return nil
}

// Probability returns P(disease) for one sample in FeatureNames order.
func (m *Model) Probability(features []float64) (float64, error) {
	if err := validateInput(features); err != nil {
		return 0, err
	}
	z := m.params.Intercept
	for i, v := range features {
		scaled := (v - m.params.ScalerMean[i]) / m.params.ScalerScale[i]
		z += m.params.Coefficients[i] * scaled
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Predict scores one sample and classifies at the 0.5 threshold.
func (m *Model) Predict(features []float64) (Prediction, error) {
	prob, err := m.Probability(features)
	if err != nil {
		return Prediction{}, err
	}
	pred := 0
	interpretation := "No Heart Disease Detected"
	if prob >= 0.5 {
		pred = 1
		interpretation = "Heart Disease Detected"
	}
	return Prediction{
		Prediction:     pred,
		Probability:    prob,
		RiskLevel:      RiskLevel(prob),
		Interpretation: interpretation,
	}, nil
}

// PredictBatch scores several samples, failing on the first invalid one.
func (m *Model) PredictBatch(samples [][]float64) ([]Prediction, error) {
	results := make([]Prediction, 0, len(samples))
	for i, sample := range samples {
		p, err := m.Predict(sample)
		if err != nil {
			return nil, fmt.Errorf("riskmodel: sample %d: %w", i, err)
		}
		results = append(results, p)
	}
	return results, nil
}

// RiskLevel maps a probability into the four patient-facing bands.
func RiskLevel(probability float64) string {
	switch {
	case probability < 0.2:
		return "Low Risk"
	case probability < 0.5:
		return "Moderate Risk"
	case probability < 0.8:
		return "High Risk"
	default:
		return "Very High Risk"
	}
}

// FeatureWeight pairs a feature with its importance score.
type FeatureWeight struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureImportances ranks features by absolute coefficient, highest first.
func (m *Model) FeatureImportances() []FeatureWeight {
	weights := make([]FeatureWeight, len(FeatureNames))
	for i, name := range FeatureNames {
		weights[i] = FeatureWeight{Feature: name, Importance: math.Abs(m.params.Coefficients[i])}
	}
	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].Importance > weights[j].Importance
	})
	return weights
}

// TopFeatures returns the n highest-weighted features.
func (m *Model) TopFeatures(n int) []FeatureWeight {
	all := m.FeatureImportances()
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
