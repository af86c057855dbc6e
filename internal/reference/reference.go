// ABOUTME: WHO child growth reference tables (0-60 months) loaded from embedded CSV.
// ABOUTME: Provides exact-month row lookup per indicator and sex.
package reference

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"sync"

	"github.com/harperreed/growth/internal/models"
)

// Indicator is one of the measured dimensions classified against a table.
type Indicator string

const (
	LengthForAge Indicator = "length_for_age"
	WeightForAge Indicator = "weight_for_age"
	BMIForAge    Indicator = "bmi_for_age"
)

// AllIndicators lists the indicators in display order.
var AllIndicators = []Indicator{LengthForAge, WeightForAge, BMIForAge}

// ParseIndicator accepts the indicator names plus the short forms
// length, height, weight and bmi.
func ParseIndicator(s string) (Indicator, error) {
	switch s {
	case string(LengthForAge), "length", "height", "height_for_age":
		return LengthForAge, nil
	case string(WeightForAge), "weight":
		return WeightForAge, nil
	case string(BMIForAge), "bmi", "mass":
		return BMIForAge, nil
	}
	return "", fmt.Errorf("unknown indicator: %q", s)
}

const (
	MinMonth = 0
	MaxMonth = 60
)

// Row holds the seven SD thresholds for one month.
type Row struct {
	Month  int     `json:"month"`
	SD3neg float64 `json:"sd3neg"`
	SD2neg float64 `json:"sd2neg"`
	SD1neg float64 `json:"sd1neg"`
	SD0    float64 `json:"sd0"`
	SD1    float64 `json:"sd1"`
	SD2    float64 `json:"sd2"`
	SD3    float64 `json:"sd3"`
}

// Thresholds returns the row's cut points in ascending order.
func (r Row) Thresholds() [7]float64 {
	return [7]float64{r.SD3neg, r.SD2neg, r.SD1neg, r.SD0, r.SD1, r.SD2, r.SD3}
}

type tableKey struct {
	indicator Indicator
	sex       models.Sex
}

// Dataset is an immutable set of reference tables. Safe for concurrent reads.
type Dataset struct {
	tables map[tableKey]map[int]Row
}

//go:embed data/*.csv
var embedded embed.FS

var (
	defaultDataset *Dataset
	defaultOnce    sync.Once
	defaultErr     error
)

// Default returns the process-wide dataset built from the embedded tables.
// The tables are parsed exactly once.
func Default() (*Dataset, error) {
	defaultOnce.Do(func() {
		defaultDataset, defaultErr = Load()
	})
	return defaultDataset, defaultErr
}

// MustDefault is Default for callers that cannot continue without tables.
func MustDefault() *Dataset {
	ds, err := Default()
	if err != nil {
		panic(fmt.Sprintf("load reference tables: %v", err))
	}
	return ds
}

// Load parses the embedded tables into a new Dataset.
func Load() (*Dataset, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded tables: %w", err)
	}
	return LoadFS(sub)
}

// LoadFS parses "<indicator>_<male|female>.csv" files from fsys.
// Every indicator and sex must be present.
func LoadFS(fsys fs.FS) (*Dataset, error) {
	ds := &Dataset{tables: make(map[tableKey]map[int]Row)}

	for _, ind := range AllIndicators {
		for _, sex := range models.AllSexes {
			name := fileName(ind, sex)
			f, err := fsys.Open(name)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			rows, err := parseTable(f)
			_ = f.Close()
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			ds.tables[tableKey{ind, sex}] = rows
		}
	}

	return ds, nil
}

func fileName(ind Indicator, sex models.Sex) string {
	suffix := "female"
	if sex == models.SexMale {
		suffix = "male"
	}
	return fmt.Sprintf("%s_%s.csv", ind, suffix)
}

func parseTable(r io.Reader) (map[int]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 8
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != "month" {
		return nil, fmt.Errorf("unexpected header %q", header[0])
	}

	rows := make(map[int]Row)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		month, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("month %q: %w", rec[0], err)
		}
		var vals [7]float64
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("month %d column %s: %w", month, header[i+1], err)
			}
			vals[i] = v
		}
		if _, dup := rows[month]; dup {
			return nil, fmt.Errorf("duplicate month %d", month)
		}
		rows[month] = Row{
			Month:  month,
			SD3neg: vals[0],
			SD2neg: vals[1],
			SD1neg: vals[2],
			SD0:    vals[3],
			SD1:    vals[4],
			SD2:    vals[5],
			SD3:    vals[6],
		}
	}
	return rows, nil
}

// Row looks up the thresholds for an exact month. ok is false for months
// outside 0..60 or months missing from the table.
func (d *Dataset) Row(ind Indicator, sex models.Sex, months int) (Row, bool) {
	if months < MinMonth || months > MaxMonth {
		return Row{}, false
	}
	table, ok := d.tables[tableKey{ind, sex}]
	if !ok {
		return Row{}, false
	}
	row, ok := table[months]
	return row, ok
}

// Rows returns a table in month order, for display.
func (d *Dataset) Rows(ind Indicator, sex models.Sex) []Row {
	var out []Row
	for m := MinMonth; m <= MaxMonth; m++ {
		if row, ok := d.Row(ind, sex, m); ok {
			out = append(out, row)
		}
	}
	return out
}

// Validate checks every table covers 0..60 with non-decreasing thresholds.
func (d *Dataset) Validate() error {
	var errs []error
	for _, ind := range AllIndicators {
		for _, sex := range models.AllSexes {
			table, ok := d.tables[tableKey{ind, sex}]
			if !ok {
				errs = append(errs, fmt.Errorf("%s/%s: table missing", ind, sex))
				continue
			}
			for m := MinMonth; m <= MaxMonth; m++ {
				row, ok := table[m]
				if !ok {
					errs = append(errs, fmt.Errorf("%s/%s: month %d missing", ind, sex, m))
					continue
				}
				t := row.Thresholds()
				for i := 1; i < len(t); i++ {
					if t[i] < t[i-1] {
						errs = append(errs, fmt.Errorf("%s/%s: month %d thresholds decrease at column %d", ind, sex, m, i))
						break
					}
				}
			}
			if len(table) != MaxMonth-MinMonth+1 {
				errs = append(errs, fmt.Errorf("%s/%s: %d rows, want %d", ind, sex, len(table), MaxMonth-MinMonth+1))
			}
		}
	}
	return errors.Join(errs...)
}
