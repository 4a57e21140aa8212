// Package report turns a risk assessment into a patient-facing document.
package report

import (
	"fmt"
	"strings"
	"time"

	"heartcare-backend/riskmodel"
)

// Assessment carries everything a renderer needs for one report.
type Assessment struct {
	PatientName string
	Features    []float64
	Result      riskmodel.Prediction
	TopFeatures []riskmodel.FeatureWeight
	GeneratedAt time.Time
}

// Renderer produces a report document in some output format.
type Renderer interface {
	Render(a Assessment) ([]byte, error)
	ContentType() string
}

const disclaimer = `This report is generated by an automated screening system for educational and screening purposes only. It is not a substitute for professional medical advice, diagnosis, or treatment. Always consult with qualified healthcare professionals for medical decisions.

The accuracy of this assessment depends on the quality and completeness of the provided data. For medical emergencies, please contact emergency services immediately.`

var chestPainDescriptions = map[int]string{
	0: "Typical Angina",
	1: "Atypical Angina",
	2: "Non-anginal Pain",
	3: "Asymptomatic",
}

var ecgDescriptions = map[int]string{
	0: "Normal",
	1: "ST-T Wave Abnormality",
	2: "Left Ventricular Hypertrophy",
}

var slopeDescriptions = map[int]string{
	0: "Upsloping",
	1: "Flat",
	2: "Downsloping",
}

var thalDescriptions = map[int]string{
	0: "Normal",
	1: "Fixed Defect",
	2: "Reversable Defect",
}

func describe(table map[int]string, v float64) string {
	if s, ok := table[int(v)]; ok {
		return s
	}
	return "Unknown"
}

func recommendations(riskLevel string) []string {
	switch {
	case strings.Contains(riskLevel, "Low"):
		return []string{
			"Continue maintaining a healthy lifestyle",
			"Regular check-ups with your doctor",
			"Monitor your health metrics regularly",
			"Maintain a balanced diet and exercise routine",
			"Avoid smoking and excessive alcohol consumption",
		}
	case strings.Contains(riskLevel, "Moderate"):
		return []string{
			"Consult with a healthcare provider",
			"Consider lifestyle modifications (diet, exercise)",
			"Regular monitoring of heart health",
			"Stress management techniques",
			"Consider preventive medications if prescribed",
		}
	default:
		return []string{
			"Immediately consult a healthcare provider",
			"Consider lifestyle changes",
			"Regular medical monitoring",
			"Follow medical advice strictly",
			"Consider cardiac rehabilitation programs",
		}
	}
}

// TextRenderer writes a plain-text report.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (r *TextRenderer) Render(a Assessment) ([]byte, error) {
	if len(a.Features) != len(riskmodel.FeatureNames) {
		return nil, fmt.Errorf("report: expected %d features, got %d",
			len(riskmodel.FeatureNames), len(a.Features))
	}

	generatedAt := a.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	var b strings.Builder
	line := strings.Repeat("=", 60)

	b.WriteString(line + "\n")
	b.WriteString("HEART DISEASE RISK ASSESSMENT REPORT\n")
	b.WriteString("Cardiovascular Health Analysis\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "Report Generated: %s\n\n", generatedAt.Format("January 2, 2006 at 3:04 PM"))

	b.WriteString("PATIENT INFORMATION\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	if a.PatientName != "" {
		fmt.Fprintf(&b, "%-24s %s\n", "Name", a.PatientName)
	}
	f := a.Features
	sex := "Female"
	if f[1] == 1 {
		sex = "Male"
	}
	fbs := "Normal"
	if f[5] == 1 {
		fbs = "High (>120 mg/dl)"
	}
	exang := "No"
	if f[8] == 1 {
		exang = "Yes"
	}
	fmt.Fprintf(&b, "%-24s %.0f\n", "Age", f[0])
	fmt.Fprintf(&b, "%-24s %s\n", "Sex", sex)
	fmt.Fprintf(&b, "%-24s %s\n", "Chest Pain Type", describe(chestPainDescriptions, f[2]))
	fmt.Fprintf(&b, "%-24s %.0f mm Hg\n", "Resting Blood Pressure", f[3])
	fmt.Fprintf(&b, "%-24s %.0f mg/dl\n", "Cholesterol", f[4])
	fmt.Fprintf(&b, "%-24s %s\n", "Fasting Blood Sugar", fbs)
	fmt.Fprintf(&b, "%-24s %s\n", "Resting ECG", describe(ecgDescriptions, f[6]))
	fmt.Fprintf(&b, "%-24s %.0f bpm\n", "Max Heart Rate", f[7])
	fmt.Fprintf(&b, "%-24s %s\n", "Exercise Angina", exang)
	fmt.Fprintf(&b, "%-24s %.1f mm\n", "ST Depression", f[9])
	fmt.Fprintf(&b, "%-24s %s\n", "Slope", describe(slopeDescriptions, f[10]))
	fmt.Fprintf(&b, "%-24s %.0f\n", "Major Vessels", f[11])
	fmt.Fprintf(&b, "%-24s %s\n\n", "Thalassemia", describe(thalDescriptions, f[12]))

	b.WriteString("ASSESSMENT RESULTS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "Risk Level:       %s\n", a.Result.RiskLevel)
	fmt.Fprintf(&b, "Risk Probability: %.1f%%\n", a.Result.Probability*100)
	fmt.Fprintf(&b, "Result:           %s\n\n", a.Result.Interpretation)

	if len(a.TopFeatures) > 0 {
		b.WriteString("KEY CONTRIBUTING FACTORS\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, fw := range a.TopFeatures {
			fmt.Fprintf(&b, "  * %s: %.3f\n", fw.Feature, fw.Importance)
		}
		b.WriteString("\n")
	}

	b.WriteString("RECOMMENDATIONS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, rec := range recommendations(a.Result.RiskLevel) {
		fmt.Fprintf(&b, "  * %s\n", rec)
	}
	b.WriteString("\n")

	b.WriteString("IMPORTANT MEDICAL DISCLAIMER\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	b.WriteString(disclaimer + "\n")
	b.WriteString(line + "\n")

	return []byte(b.String()), nil
}
