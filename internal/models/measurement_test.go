// ABOUTME: Tests for Measurement model, Sex parsing and child identity.
// ABOUTME: Validates constructor defaults and external field names.
package models

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseSex(t *testing.T) {
	tests := []struct {
		input   string
		want    Sex
		wantErr bool
	}{
		{"Laki-laki", SexMale, false},
		{"laki-laki", SexMale, false},
		{"L", SexMale, false},
		{"M", SexMale, false},
		{"Perempuan", SexFemale, false},
		{"P", SexFemale, false},
		{"f", SexFemale, false},
		{" F ", SexFemale, false},
		{"x", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSex(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSex(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSexCode(t *testing.T) {
	if SexMale.Code() != "L" {
		t.Errorf("SexMale.Code() = %q, want L", SexMale.Code())
	}
	if SexFemale.Code() != "P" {
		t.Errorf("SexFemale.Code() = %q, want P", SexFemale.Code())
	}
}

func TestDeriveChildID(t *testing.T) {
	tests := []struct {
		creator string
		name    string
		sex     Sex
		want    string
	}{
		{"u1", "Budi Santoso", SexMale, "u1-BudiSantoso-L"},
		{"u1", "  Siti\tAminah ", SexFemale, "u1-SitiAminah-P"},
		{"u2", "Budi Santoso", SexMale, "u2-BudiSantoso-L"},
	}

	for _, tt := range tests {
		if got := DeriveChildID(tt.creator, tt.name, tt.sex); got != tt.want {
			t.Errorf("DeriveChildID(%q, %q, %q) = %q, want %q", tt.creator, tt.name, tt.sex, got, tt.want)
		}
	}
}

func TestDeriveChildIDStableUnderWhitespace(t *testing.T) {
	a := DeriveChildID("u1", "Budi Santoso", SexMale)
	b := DeriveChildID("u1", "BudiSantoso", SexMale)
	if a != b {
		t.Errorf("expected same identity, got %q and %q", a, b)
	}
}

func TestNewMeasurement(t *testing.T) {
	m := NewMeasurement("u1", "Budi", SexMale, "1 tahun 2 bulan", 80, 10)

	if m.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if m.ChildID != "u1-Budi-L" {
		t.Errorf("ChildID = %s, want u1-Budi-L", m.ChildID)
	}
	if m.CreatedAt.IsZero() || m.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if m.IsDeleted() {
		t.Error("new measurement should not be deleted")
	}
	if len(m.ShortID()) != 8 {
		t.Errorf("ShortID length = %d, want 8", len(m.ShortID()))
	}
}

func TestMeasurementJSONFieldNames(t *testing.T) {
	m := NewMeasurement("u1", "Budi", SexMale, "5 bulan", 65, 7)
	m.BMICategory = CategoryNormal

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)

	for _, field := range []string{`"child_id"`, `"age_text"`, `"mass_category":"Normal"`, `"gender":"Laki-laki"`, `"creator_id"`} {
		if !strings.Contains(out, field) {
			t.Errorf("JSON missing %s: %s", field, out)
		}
	}
	if strings.Contains(out, "deleted_at") {
		t.Errorf("JSON should omit nil deleted_at: %s", out)
	}
}

func TestSexUnmarshalAcceptsCodes(t *testing.T) {
	var m Measurement
	if err := json.Unmarshal([]byte(`{"gender":"P"}`), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if m.Sex != SexFemale {
		t.Errorf("Sex = %q, want %q", m.Sex, SexFemale)
	}

	if err := json.Unmarshal([]byte(`{"gender":"unknown"}`), &m); err == nil {
		t.Error("expected error for unknown gender")
	}
}

func TestSexUnmarshalYAML(t *testing.T) {
	var m Measurement
	if err := yaml.Unmarshal([]byte("gender: L\n"), &m); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if m.Sex != SexMale {
		t.Errorf("Sex = %q, want %q", m.Sex, SexMale)
	}
}

func TestIsValidCategory(t *testing.T) {
	if !IsValidCategory("No Data") {
		t.Error("No Data should be valid")
	}
	if !IsValidCategory(CategoryTall) {
		t.Error("Tall should be valid")
	}
	if IsValidCategory("Gigantic") {
		t.Error("Gigantic should not be valid")
	}
}
