// ABOUTME: Export and import functionality for growth data.
// ABOUTME: Supports JSON, YAML, and Markdown export over any Repository.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/growth/internal/agetext"
	"github.com/harperreed/growth/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for growth data.
type ExportData struct {
	Version      string                `json:"version" yaml:"version"`
	ExportedAt   time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool         string                `json:"tool" yaml:"tool"`
	Measurements []*models.Measurement `json:"measurements" yaml:"measurements"`
}

// ImportSummary counts what an import did.
type ImportSummary struct {
	Imported int
	Skipped  int
}

// GetAllData retrieves all live measurements matching filter for export.
func GetAllData(ctx context.Context, repo Repository, filter *MeasurementFilter) (*ExportData, error) {
	ms, err := repo.ListMeasurements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	if ms == nil {
		ms = []*models.Measurement{}
	}

	return &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "growth",
		Measurements: ms,
	}, nil
}

// ImportData creates every measurement in data. Records whose ID already
// exists in repo are skipped so re-importing the same file is harmless.
func ImportData(ctx context.Context, repo Repository, data *ExportData) (*ImportSummary, error) {
	summary := &ImportSummary{}
	for _, m := range data.Measurements {
		if _, err := repo.GetMeasurement(ctx, m.ID.String()); err == nil {
			summary.Skipped++
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return summary, fmt.Errorf("check measurement %s: %w", m.ID, err)
		}

		for _, c := range []string{m.HeightCategory, m.WeightCategory, m.BMICategory} {
			if c != "" && !models.IsValidCategory(c) {
				return summary, fmt.Errorf("import measurement %s: unknown category %q", m.ID, c)
			}
		}
		if m.ChildID == "" {
			m.ChildID = models.DeriveChildID(m.CreatorID, m.ChildName, m.Sex)
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = m.CreatedAt
		}
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			return summary, fmt.Errorf("import measurement %s: %w", m.ID, err)
		}
		summary.Imported++
	}
	return summary, nil
}

// ExportJSON exports measurements as indented JSON.
func ExportJSON(ctx context.Context, repo Repository, filter *MeasurementFilter) ([]byte, error) {
	data, err := GetAllData(ctx, repo, filter)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports measurements as YAML grouped by child.
func ExportYAML(ctx context.Context, repo Repository, filter *MeasurementFilter) ([]byte, error) {
	data, err := GetAllData(ctx, repo, filter)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string      `yaml:"version"`
		ExportedAt string      `yaml:"exported_at"`
		Tool       string      `yaml:"tool"`
		Children   []yamlChild `yaml:"children"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Children:   []yamlChild{},
	}

	for _, group := range groupByChild(data.Measurements) {
		first := group[0]
		yc := yamlChild{
			ChildID: first.ChildID,
			Name:    first.ChildName,
			Gender:  string(first.Sex),
			Creator: first.CreatorID,
		}
		for _, m := range group {
			yc.Measurements = append(yc.Measurements, yamlMeasurement{
				ID:             m.ShortID(),
				Age:            m.AgeText,
				Height:         m.Height,
				Weight:         m.Weight,
				BMI:            m.BMI,
				HeightCategory: m.HeightCategory,
				WeightCategory: m.WeightCategory,
				MassCategory:   m.BMICategory,
				CreatedAt:      m.CreatedAt.Format(time.RFC3339),
			})
		}
		yamlData.Children = append(yamlData.Children, yc)
	}

	return yaml.Marshal(yamlData)
}

type yamlChild struct {
	ChildID      string            `yaml:"child_id"`
	Name         string            `yaml:"name"`
	Gender       string            `yaml:"gender"`
	Creator      string            `yaml:"creator_id"`
	Measurements []yamlMeasurement `yaml:"measurements"`
}

type yamlMeasurement struct {
	ID             string  `yaml:"id"`
	Age            string  `yaml:"age"`
	Height         float64 `yaml:"height"`
	Weight         float64 `yaml:"weight"`
	BMI            float64 `yaml:"bmi"`
	HeightCategory string  `yaml:"height_category"`
	WeightCategory string  `yaml:"weight_category"`
	MassCategory   string  `yaml:"mass_category"`
	CreatedAt      string  `yaml:"created_at"`
}

// ExportMarkdown renders one table per child, rows ascending by age.
func ExportMarkdown(ctx context.Context, repo Repository, filter *MeasurementFilter) (string, error) {
	data, err := GetAllData(ctx, repo, filter)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Growth Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(data.Measurements) == 0 {
		sb.WriteString("No measurements.\n")
		return sb.String(), nil
	}

	for _, group := range groupByChild(data.Measurements) {
		first := group[0]
		sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", first.ChildName, first.Sex))
		sb.WriteString("| Age | Height | Weight | BMI | Height cat. | Weight cat. | Mass cat. |\n")
		sb.WriteString("|-----|--------|--------|-----|-------------|-------------|-----------|\n")

		rows := append([]*models.Measurement(nil), group...)
		sortByAge(rows)
		for _, m := range rows {
			sb.WriteString(fmt.Sprintf("| %s | %.1f cm | %.1f kg | %.2f | %s | %s | %s |\n",
				m.AgeText, m.Height, m.Weight, m.BMI,
				m.HeightCategory, m.WeightCategory, m.BMICategory))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, data []byte) (*ImportSummary, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(ctx, repo, &exportData)
}

// groupByChild keeps first-appearance order of child IDs.
func groupByChild(ms []*models.Measurement) [][]*models.Measurement {
	index := make(map[string]int)
	var groups [][]*models.Measurement
	for _, m := range ms {
		i, ok := index[m.ChildID]
		if !ok {
			i = len(groups)
			index[m.ChildID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}
	return groups
}

func sortByAge(ms []*models.Measurement) {
	sort.SliceStable(ms, func(i, j int) bool {
		return agetext.Compare(ms[i].AgeText, ms[j].AgeText) < 0
	})
}
