// ABOUTME: Nutritional-status category labels produced by classification.
// ABOUTME: Labels are stored verbatim in height/weight/mass category columns.
package models

const (
	CategoryNoData = "No Data"

	CategorySeverelyWasted = "Severely Wasted"
	CategoryWasted         = "Wasted"
	CategoryNormal         = "Normal"
	CategoryOverweight     = "Overweight"
	CategoryObese          = "Obese"

	CategorySeverelyStunted = "Severely Stunted"
	CategoryStunted         = "Stunted"
	CategoryTall            = "Tall"
)

// AllCategories lists every label a category field may hold.
var AllCategories = []string{
	CategoryNoData,
	CategorySeverelyWasted, CategoryWasted, CategoryNormal, CategoryOverweight, CategoryObese,
	CategorySeverelyStunted, CategoryStunted, CategoryTall,
}

// IsValidCategory checks if a string is a known category label.
func IsValidCategory(s string) bool {
	for _, c := range AllCategories {
		if c == s {
			return true
		}
	}
	return false
}
