// ABOUTME: Converts between free-text Indonesian age descriptions and month counts.
// ABOUTME: Understands "N tahun M bulan", "M bulan" and "N tahun".
package agetext

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	yearsAndMonths = regexp.MustCompile(`(?i)(\d+)\s*tahun\s*(\d+)\s*bulan`)
	monthsOnly     = regexp.MustCompile(`(?i)(\d+)\s*bulan`)
	yearsOnly      = regexp.MustCompile(`(?i)^\s*(\d+)\s*tahun\s*$`)
)

// Parse returns the age in months described by text.
// ok is false when text has none of the recognized shapes; callers must
// treat that as "cannot classify", not as zero months.
func Parse(text string) (months int, ok bool) {
	if m := yearsAndMonths.FindStringSubmatch(text); m != nil {
		years, err1 := strconv.Atoi(m[1])
		rem, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || years > (math.MaxInt-rem)/12 {
			return 0, false
		}
		return years*12 + rem, true
	}
	if m := monthsOnly.FindStringSubmatch(text); m != nil {
		rem, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return rem, true
	}
	if m := yearsOnly.FindStringSubmatch(text); m != nil {
		years, err := strconv.Atoi(m[1])
		if err != nil || years > math.MaxInt/12 {
			return 0, false
		}
		return years * 12, true
	}
	return 0, false
}

// Format renders months as "<years> tahun <rem> bulan", or "<rem> bulan"
// under one year.
func Format(months int) string {
	years := months / 12
	rem := months % 12
	if years > 0 {
		return fmt.Sprintf("%d tahun %d bulan", years, rem)
	}
	return fmt.Sprintf("%d bulan", rem)
}

// Compare orders two age texts by parsed months. Unparsable ages sort
// before every parsable one; two unparsable ages compare equal.
func Compare(a, b string) int {
	ma, okA := Parse(a)
	mb, okB := Parse(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	case ma < mb:
		return -1
	case ma > mb:
		return 1
	}
	return 0
}
