// ABOUTME: Computes BMI and the three nutritional-status categories for a measurement.
// ABOUTME: Pure and deterministic over an injected reference dataset.
package nutrition

import (
	"math"

	"github.com/harperreed/growth/internal/agetext"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/reference"
)

// Result is the outcome of evaluating one measurement.
type Result struct {
	// Months is nil when the age text could not be parsed.
	Months         *int    `json:"age_in_month,omitempty"`
	BMI            float64 `json:"bmi"`
	HeightCategory string  `json:"height_category"`
	WeightCategory string  `json:"weight_category"`
	BMICategory    string  `json:"mass_category"`
}

// Evaluator classifies measurements against a reference dataset.
type Evaluator struct {
	ds *reference.Dataset
}

// NewEvaluator creates an Evaluator over ds.
func NewEvaluator(ds *reference.Dataset) *Evaluator {
	return &Evaluator{ds: ds}
}

// Dataset returns the reference tables this evaluator uses.
func (e *Evaluator) Dataset() *reference.Dataset {
	return e.ds
}

// Evaluate parses ageText and classifies height, weight and BMI.
// An unparsable or out-of-range age yields "No Data" for every category;
// BMI is computed regardless.
func (e *Evaluator) Evaluate(height, weight float64, sex models.Sex, ageText string) Result {
	months, ok := agetext.Parse(ageText)
	if !ok {
		return Result{
			BMI:            CalculateBMI(height, weight),
			HeightCategory: models.CategoryNoData,
			WeightCategory: models.CategoryNoData,
			BMICategory:    models.CategoryNoData,
		}
	}
	return e.EvaluateMonths(height, weight, sex, months)
}

// EvaluateMonths is Evaluate for callers that already hold the age in months.
func (e *Evaluator) EvaluateMonths(height, weight float64, sex models.Sex, months int) Result {
	bmi := CalculateBMI(height, weight)
	return Result{
		Months:         &months,
		BMI:            bmi,
		HeightCategory: e.Classify(reference.LengthForAge, sex, months, height),
		WeightCategory: e.Classify(reference.WeightForAge, sex, months, weight),
		BMICategory:    e.Classify(reference.BMIForAge, sex, months, bmi),
	}
}

// Classify looks up the row for (ind, sex, months) and bands value.
// A missing row is "No Data".
func (e *Evaluator) Classify(ind reference.Indicator, sex models.Sex, months int, value float64) string {
	row, ok := e.ds.Row(ind, sex, months)
	if !ok {
		return models.CategoryNoData
	}
	return Classify(value, row, ScaleFor(ind))
}

// Apply recomputes BMI, categories and AgeInMonths on m in place.
func (e *Evaluator) Apply(m *models.Measurement) Result {
	r := e.Evaluate(m.Height, m.Weight, m.Sex, m.AgeText)
	m.AgeInMonths = r.Months
	m.BMI = r.BMI
	m.HeightCategory = r.HeightCategory
	m.WeightCategory = r.WeightCategory
	m.BMICategory = r.BMICategory
	return r
}

// CalculateBMI returns weight / (height/100)^2 rounded to two decimals.
// Height is in cm and weight in kg; a non-positive height gives 0.
func CalculateBMI(height, weight float64) float64 {
	if height <= 0 {
		return 0
	}
	m := height / 100
	return round2(weight / (m * m))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
