// ABOUTME: Tests for banded classification and measurement evaluation.
// ABOUTME: Covers band boundaries, No Data fallbacks and BMI rounding.
package nutrition

import (
	"testing"

	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/reference"
)

var testRow = reference.Row{Month: 0, SD3neg: 1, SD2neg: 2, SD1neg: 3, SD0: 4, SD1: 5, SD2: 6, SD3: 7}

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0.5, "Severely Wasted"},
		{1, "Severely Wasted"},
		{1.5, "Wasted"},
		{2, "Wasted"},
		{2.01, "Normal"},
		{4, "Normal"},
		{5, "Normal"},
		{5.5, "Overweight"},
		{6, "Overweight"},
		{7, "Overweight"},
		{7.01, "Obese"},
	}

	for _, tt := range tests {
		if got := Classify(tt.value, testRow, WastingScale); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestClassifyStuntingScale(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1, "Severely Stunted"},
		{2, "Stunted"},
		{3, "Normal"},
		{6.5, "Normal"},
		{7, "Normal"},
		{8, "Tall"},
	}

	for _, tt := range tests {
		if got := Classify(tt.value, testRow, StuntingScale); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestScaleFor(t *testing.T) {
	if ScaleFor(reference.LengthForAge) != StuntingScale {
		t.Error("length-for-age should use the stunting scale")
	}
	if ScaleFor(reference.WeightForAge) != WastingScale {
		t.Error("weight-for-age should use the wasting scale")
	}
	if ScaleFor(reference.BMIForAge) != WastingScale {
		t.Error("bmi-for-age should use the wasting scale")
	}
}

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ds, err := reference.Default()
	if err != nil {
		t.Fatalf("load reference: %v", err)
	}
	return NewEvaluator(ds)
}

func TestEvaluateInRange(t *testing.T) {
	e := newTestEvaluator(t)

	r := e.Evaluate(100, 20, models.SexFemale, "1 tahun 11 bulan")

	if r.Months == nil || *r.Months != 23 {
		t.Fatalf("Months = %v, want 23", r.Months)
	}
	if r.BMI != 20.00 {
		t.Errorf("BMI = %v, want 20.00", r.BMI)
	}
	for name, got := range map[string]string{
		"height": r.HeightCategory,
		"weight": r.WeightCategory,
		"bmi":    r.BMICategory,
	} {
		if got == "" || got == models.CategoryNoData || !models.IsValidCategory(got) {
			t.Errorf("%s category = %q, want an in-vocabulary label", name, got)
		}
	}
	if r.HeightCategory != models.CategoryTall {
		t.Errorf("HeightCategory = %q, want Tall", r.HeightCategory)
	}
	if r.WeightCategory != models.CategoryObese {
		t.Errorf("WeightCategory = %q, want Obese", r.WeightCategory)
	}
	if r.BMICategory != models.CategoryOverweight {
		t.Errorf("BMICategory = %q, want Overweight", r.BMICategory)
	}
}

func TestEvaluateOutOfRangeAge(t *testing.T) {
	e := newTestEvaluator(t)

	r := e.Evaluate(100, 20, models.SexFemale, "10 tahun")

	if r.Months == nil || *r.Months != 120 {
		t.Fatalf("Months = %v, want 120", r.Months)
	}
	if r.BMI != 20.00 {
		t.Errorf("BMI = %v, want 20.00", r.BMI)
	}
	if r.HeightCategory != "No Data" || r.WeightCategory != "No Data" || r.BMICategory != "No Data" {
		t.Errorf("categories = %q/%q/%q, want No Data", r.HeightCategory, r.WeightCategory, r.BMICategory)
	}
}

func TestEvaluateUnparsableAge(t *testing.T) {
	e := newTestEvaluator(t)

	r := e.Evaluate(80, 10, models.SexMale, "sekitar satu tahun")

	if r.Months != nil {
		t.Errorf("Months = %d, want nil", *r.Months)
	}
	if r.BMI != 15.62 {
		t.Errorf("BMI = %v, want 15.62", r.BMI)
	}
	if r.HeightCategory != "No Data" || r.WeightCategory != "No Data" || r.BMICategory != "No Data" {
		t.Errorf("categories = %q/%q/%q, want No Data", r.HeightCategory, r.WeightCategory, r.BMICategory)
	}
}

func TestEvaluateNormalBoy(t *testing.T) {
	e := newTestEvaluator(t)

	// Median boy at 12 months: 75.7 cm, 9.6 kg.
	r := e.Evaluate(75.7, 9.6, models.SexMale, "1 tahun 0 bulan")

	if r.HeightCategory != "Normal" || r.WeightCategory != "Normal" || r.BMICategory != "Normal" {
		t.Errorf("categories = %q/%q/%q, want Normal", r.HeightCategory, r.WeightCategory, r.BMICategory)
	}
	if r.BMI != 16.75 {
		t.Errorf("BMI = %v, want 16.75", r.BMI)
	}
}

func TestEvaluateSexSelectsTable(t *testing.T) {
	e := newTestEvaluator(t)

	// 6.4 kg at 6 months: boys SD2neg is 6.4 (Wasted), girls SD2neg is 5.7 (Normal).
	boy := e.EvaluateMonths(65, 6.4, models.SexMale, 6)
	girl := e.EvaluateMonths(65, 6.4, models.SexFemale, 6)

	if boy.WeightCategory != "Wasted" {
		t.Errorf("boy WeightCategory = %q, want Wasted", boy.WeightCategory)
	}
	if girl.WeightCategory != "Normal" {
		t.Errorf("girl WeightCategory = %q, want Normal", girl.WeightCategory)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := newTestEvaluator(t)
	a := e.Evaluate(87.1, 11.2, models.SexMale, "2 tahun 3 bulan")
	b := e.Evaluate(87.1, 11.2, models.SexMale, "2 tahun 3 bulan")
	if *a.Months != *b.Months || a.BMI != b.BMI || a.HeightCategory != b.HeightCategory ||
		a.WeightCategory != b.WeightCategory || a.BMICategory != b.BMICategory {
		t.Errorf("results differ: %+v vs %+v", a, b)
	}
}

func TestApply(t *testing.T) {
	e := newTestEvaluator(t)
	m := models.NewMeasurement("u1", "Siti", models.SexFemale, "1 tahun 11 bulan", 100, 20)

	e.Apply(m)

	if m.AgeInMonths == nil || *m.AgeInMonths != 23 {
		t.Errorf("AgeInMonths = %v, want 23", m.AgeInMonths)
	}
	if m.BMI != 20 {
		t.Errorf("BMI = %v, want 20", m.BMI)
	}
	if m.WeightCategory != models.CategoryObese {
		t.Errorf("WeightCategory = %q, want Obese", m.WeightCategory)
	}
	if m.BMICategory != models.CategoryOverweight {
		t.Errorf("BMICategory = %q, want Overweight", m.BMICategory)
	}
}

func TestCalculateBMI(t *testing.T) {
	tests := []struct {
		height, weight, want float64
	}{
		{100, 20, 20},
		{80, 10, 15.62},
		{50, 3.3, 13.2},
		{0, 10, 0},
		{-5, 10, 0},
	}
	for _, tt := range tests {
		if got := CalculateBMI(tt.height, tt.weight); got != tt.want {
			t.Errorf("CalculateBMI(%v, %v) = %v, want %v", tt.height, tt.weight, got, tt.want)
		}
	}
}
