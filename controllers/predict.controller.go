package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heartcare-backend/report"
	"heartcare-backend/riskmodel"
	"heartcare-backend/security"
)

// PredictController serves risk scoring and report generation over one
// shared model instance.
type PredictController struct {
	model    *riskmodel.Model
	renderer report.Renderer
}

func NewPredictController(model *riskmodel.Model, renderer report.Renderer) *PredictController {
	return &PredictController{model: model, renderer: renderer}
}

type PredictInput struct {
	Age      float64 `json:"age" binding:"required"`
	Sex      float64 `json:"sex"`
	CP       float64 `json:"cp"`
	Trestbps float64 `json:"trestbps" binding:"required"`
	Chol     float64 `json:"chol" binding:"required"`
	FBS      float64 `json:"fbs"`
	Restecg  float64 `json:"restecg"`
	Thalach  float64 `json:"thalach" binding:"required"`
	Exang    float64 `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    float64 `json:"slope"`
	CA       float64 `json:"ca"`
	Thal     float64 `json:"thal"`
}

func (in *PredictInput) features() []float64 {
	return []float64{
		in.Age, in.Sex, in.CP, in.Trestbps, in.Chol, in.FBS, in.Restecg,
		in.Thalach, in.Exang, in.Oldpeak, in.Slope, in.CA, in.Thal,
	}
}

func (pc *PredictController) sendPredictError(c *gin.Context, err error) {
	if errors.Is(err, riskmodel.ErrWrongFeatureCount) || errors.Is(err, riskmodel.ErrNonFiniteInput) {
		security.SendValidationError(c, "Invalid clinical data", err.Error())
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
}

// Predict scores one set of clinical attributes.
func (pc *PredictController) Predict(c *gin.Context) {
	var input PredictInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	result, err := pc.model.Predict(input.features())
	if err != nil {
		pc.sendPredictError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction":     result.Prediction,
		"probability":    result.Probability,
		"risk_level":     result.RiskLevel,
		"interpretation": result.Interpretation,
		"top_features":   pc.model.TopFeatures(5),
	})
}

type PredictReportInput struct {
	PredictInput
	PatientName string `json:"patient_name"`
}

// PredictReport scores the input and returns a rendered assessment
// document instead of raw numbers.
func (pc *PredictController) PredictReport(c *gin.Context) {
	var input PredictReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	features := input.features()
	result, err := pc.model.Predict(features)
	if err != nil {
		pc.sendPredictError(c, err)
		return
	}

	doc, err := pc.renderer.Render(report.Assessment{
		PatientName: input.PatientName,
		Features:    features,
		Result:      result,
		TopFeatures: pc.model.TopFeatures(5),
		GeneratedAt: time.Now(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	c.Data(http.StatusOK, pc.renderer.ContentType(), doc)
}

// FeatureImportances exposes the model's ranked weights.
func (pc *PredictController) FeatureImportances(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"features": pc.model.FeatureImportances()})
}
