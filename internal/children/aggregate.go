// ABOUTME: Groups measurements by child identity and builds current-status summaries.
// ABOUTME: Picks the latest measurement by parsed age with a deterministic tie-break.
package children

import (
	"errors"
	"sort"
	"strings"

	"github.com/harperreed/growth/internal/agetext"
	"github.com/harperreed/growth/internal/models"
)

// ErrNotFound is returned when a child has no measurements at all.
var ErrNotFound = errors.New("children not found")

// GroupByChild partitions records by their stored ChildID. order lists the
// child IDs by first appearance.
func GroupByChild(records []*models.Measurement) (order []string, groups map[string][]*models.Measurement) {
	groups = make(map[string][]*models.Measurement)
	for _, r := range records {
		if _, seen := groups[r.ChildID]; !seen {
			order = append(order, r.ChildID)
		}
		groups[r.ChildID] = append(groups[r.ChildID], r)
	}
	return order, groups
}

// later reports whether a should be preferred over b as the latest record:
// greater parsed age, then later CreatedAt, then greater ID.
func later(a, b *models.Measurement) bool {
	if c := agetext.Compare(a.AgeText, b.AgeText); c != 0 {
		return c > 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

// PickLatest returns the record with the greatest parsed age, or nil for an
// empty slice. Unparsable ages rank below every parsable one.
func PickLatest(records []*models.Measurement) *models.Measurement {
	var latest *models.Measurement
	for _, r := range records {
		if latest == nil || later(r, latest) {
			latest = r
		}
	}
	return latest
}

// Summarize builds the summary of a single child's records.
func Summarize(records []*models.Measurement) (*models.ChildSummary, error) {
	latest := PickLatest(records)
	if latest == nil {
		return nil, ErrNotFound
	}

	history := make([]*models.Measurement, len(records))
	copy(history, records)
	sort.SliceStable(history, func(i, j int) bool {
		if c := agetext.Compare(history[i].AgeText, history[j].AgeText); c != 0 {
			return c < 0
		}
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})

	return &models.ChildSummary{
		ChildID:              latest.ChildID,
		ChildName:            latest.ChildName,
		Sex:                  latest.Sex,
		CreatorID:            latest.CreatorID,
		LatestAge:            latest.AgeText,
		LatestHeight:         latest.Height,
		LatestWeight:         latest.Weight,
		LatestBMI:            latest.BMI,
		LatestHeightCategory: latest.HeightCategory,
		LatestWeightCategory: latest.WeightCategory,
		LatestBMICategory:    latest.BMICategory,
		CreatedAt:            latest.CreatedAt,
		History:              history,
	}, nil
}

// SummarizeAll groups records and summarizes each child in order of first
// appearance.
func SummarizeAll(records []*models.Measurement) []*models.ChildSummary {
	order, groups := GroupByChild(records)
	summaries := make([]*models.ChildSummary, 0, len(order))
	for _, id := range order {
		s, err := Summarize(groups[id])
		if err != nil {
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// NameMatches reports whether the child name of m contains substr, ignoring
// case. An empty substr matches every record.
func NameMatches(m *models.Measurement, substr string) bool {
	return containsFold(m.ChildName, substr)
}

// CategoryMatches reports whether any of the three categories of m contains
// substr, ignoring case. An empty substr matches every record.
func CategoryMatches(m *models.Measurement, substr string) bool {
	if substr == "" {
		return true
	}
	return containsFold(m.HeightCategory, substr) ||
		containsFold(m.WeightCategory, substr) ||
		containsFold(m.BMICategory, substr)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
