// ABOUTME: ChildSummary aggregate built from a child's measurements.
// ABOUTME: Carries identity, the latest snapshot and the ordered history.
package models

import "time"

// ChildSummary is the current-status view of one child.
type ChildSummary struct {
	ChildID   string `json:"child_id" yaml:"child_id"`
	ChildName string `json:"child_name" yaml:"child_name"`
	Sex       Sex    `json:"gender" yaml:"gender"`
	CreatorID string `json:"creator_id" yaml:"creator_id"`

	LatestAge            string    `json:"latest_age" yaml:"latest_age"`
	LatestHeight         float64   `json:"latest_height" yaml:"latest_height"`
	LatestWeight         float64   `json:"latest_weight" yaml:"latest_weight"`
	LatestBMI            float64   `json:"latest_bmi" yaml:"latest_bmi"`
	LatestHeightCategory string    `json:"latest_height_category" yaml:"latest_height_category"`
	LatestWeightCategory string    `json:"latest_weight_category" yaml:"latest_weight_category"`
	LatestBMICategory    string    `json:"latest_mass_category" yaml:"latest_mass_category"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at"`

	// History is ascending by parsed age.
	History []*Measurement `json:"history" yaml:"history"`
}
