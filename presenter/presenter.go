// Package presenter formats prediction results and renders the form page.
package presenter

import (
	"fmt"

	"heartrisk/ml"
)

// Title is the page heading.
const Title = "Heart Disease Risk Predictor"

// ProbabilityText formats a probability with three decimals.
func ProbabilityText(probability float64) string {
	return fmt.Sprintf("%.3f", probability)
}

// ProbabilityLine is the sentence shown under the form after a prediction.
func ProbabilityLine(probability float64) string {
	return "Predicted probability of heart disease: " + ProbabilityText(probability)
}

// RiskLine is the headline shown after a prediction.
func RiskLine(label ml.RiskLabel) string {
	return "Risk: " + string(label)
}
