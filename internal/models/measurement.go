// ABOUTME: Measurement model and Sex enum for child anthropometry records.
// ABOUTME: Also derives the child identity shared by a child's measurements.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Sex is the child's sex as stored and serialized externally.
type Sex string

const (
	SexMale   Sex = "Laki-laki"
	SexFemale Sex = "Perempuan"
)

// AllSexes lists the valid sexes.
var AllSexes = []Sex{SexMale, SexFemale}

// ParseSex accepts the stored strings, the one-letter codes L/P and M/F.
// Matching is case-insensitive.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "laki-laki", "l", "m", "male":
		return SexMale, nil
	case "perempuan", "p", "f", "female":
		return SexFemale, nil
	}
	return "", fmt.Errorf("unknown sex: %q (use Laki-laki/L/M or Perempuan/P/F)", s)
}

// Code returns the one-letter code used in child identities.
func (s Sex) Code() string {
	if s == SexMale {
		return "L"
	}
	return "P"
}

// IsValid reports whether s is one of the known sexes.
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// UnmarshalText lets JSON and YAML input use any form ParseSex accepts.
func (s *Sex) UnmarshalText(text []byte) error {
	parsed, err := ParseSex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Measurement is one anthropometric record of a child.
// BMI and the three categories are derived; only the nutrition evaluator
// writes them.
type Measurement struct {
	ID             uuid.UUID  `json:"id" yaml:"id"`
	ChildID        string     `json:"child_id" yaml:"child_id"`
	ChildName      string     `json:"child_name" yaml:"child_name"`
	AgeText        string     `json:"age_text" yaml:"age_text"`
	AgeInMonths    *int       `json:"age_in_month,omitempty" yaml:"age_in_month,omitempty"`
	Height         float64    `json:"height" yaml:"height"`
	Weight         float64    `json:"weight" yaml:"weight"`
	Sex            Sex        `json:"gender" yaml:"gender"`
	BMI            float64    `json:"bmi" yaml:"bmi"`
	HeightCategory string     `json:"height_category" yaml:"height_category"`
	WeightCategory string     `json:"weight_category" yaml:"weight_category"`
	BMICategory    string     `json:"mass_category" yaml:"mass_category"`
	CreatorID      string     `json:"creator_id" yaml:"creator_id"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" yaml:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// NewMeasurement creates a Measurement with a generated UUID, the derived
// child identity and current timestamps. Categories are left empty.
func NewMeasurement(creatorID, childName string, sex Sex, ageText string, height, weight float64) *Measurement {
	now := time.Now()
	return &Measurement{
		ID:        uuid.New(),
		ChildID:   DeriveChildID(creatorID, childName, sex),
		ChildName: childName,
		AgeText:   ageText,
		Height:    height,
		Weight:    weight,
		Sex:       sex,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithCreatedAt sets a custom created_at timestamp.
func (m *Measurement) WithCreatedAt(t time.Time) *Measurement {
	m.CreatedAt = t
	m.UpdatedAt = t
	return m
}

// IsDeleted reports whether the measurement was soft-deleted.
func (m *Measurement) IsDeleted() bool {
	return m.DeletedAt != nil
}

// ShortID returns the 8-character ID prefix shown in listings.
func (m *Measurement) ShortID() string {
	return m.ID.String()[:8]
}

// DeriveChildID builds "<creator>-<name without whitespace>-<L|P>".
func DeriveChildID(creatorID, childName string, sex Sex) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, childName)
	return fmt.Sprintf("%s-%s-%s", creatorID, name, sex.Code())
}
