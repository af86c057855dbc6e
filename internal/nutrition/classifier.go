// ABOUTME: Banded classification of a measured value against SD thresholds.
// ABOUTME: Bands have closed upper bounds; each indicator has its own labels.
package nutrition

import (
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/reference"
)

// Scale names the six bands of one indicator, lowest first:
// <=SD3neg, <=SD2neg, <=SD1, <=SD2, <=SD3, >SD3.
type Scale [6]string

var (
	// WastingScale labels weight-for-age and BMI-for-age.
	WastingScale = Scale{
		models.CategorySeverelyWasted,
		models.CategoryWasted,
		models.CategoryNormal,
		models.CategoryOverweight,
		models.CategoryOverweight,
		models.CategoryObese,
	}

	// StuntingScale labels length-for-age.
	StuntingScale = Scale{
		models.CategorySeverelyStunted,
		models.CategoryStunted,
		models.CategoryNormal,
		models.CategoryNormal,
		models.CategoryNormal,
		models.CategoryTall,
	}
)

// ScaleFor returns the label scale used by an indicator.
func ScaleFor(ind reference.Indicator) Scale {
	if ind == reference.LengthForAge {
		return StuntingScale
	}
	return WastingScale
}

// Classify places v in a band of row. A value equal to a threshold falls in
// the lower band.
func Classify(v float64, row reference.Row, scale Scale) string {
	switch {
	case v <= row.SD3neg:
		return scale[0]
	case v <= row.SD2neg:
		return scale[1]
	case v <= row.SD1:
		return scale[2]
	case v <= row.SD2:
		return scale[3]
	case v <= row.SD3:
		return scale[4]
	}
	return scale[5]
}
