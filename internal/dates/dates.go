// Package dates normalizes the ambiguous date strings found in
// spreadsheet exports into canonical YYYY-MM-DD form.
//
// Slash- and dash-separated numeric dates are read as DAY/MONTH/YEAR.
// This is a deliberate business convention, not an oversight: the
// source exports are produced in DD/MM/YYYY locales, so "10/11/2025"
// means 10 November, never 11 October. If the export format ever
// changes to MM/DD/YYYY this package will silently misread dates;
// that decision must stay visible here rather than be "fixed" by
// locale detection the data cannot support.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const canonical = "2006-01-02"

var (
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{2,4})$`)
	ymdPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)

	// embeddedDMY extracts a DD/MM/YYYY fragment out of label text such
	// as "Date From 03/11/2025".
	embeddedDMY = regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`)
)

// fallbackFormats are tried, in order, when neither numeric pattern
// applies. These cover the display strings the spreadsheet reader
// produces for true date cells.
var fallbackFormats = []string{
	canonical,
	"2006-01-02 15:04:05",
	"01-02-06", // excelize default display for date serials
	"2-Jan-2006",
	"2-Jan-06",
	"02-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

// Normalize converts a raw cell value into canonical YYYY-MM-DD form.
// It returns ok=false when the value is not a recognizable date; the
// caller must surface a missing-or-invalid-date error rather than
// guess.
//
// Normalize is idempotent: feeding its own output back yields the
// same string.
func Normalize(raw string) (string, bool) {
	s := trim(raw)
	if s == "" {
		return "", false
	}

	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return buildDate(year, month, day)
	}

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return buildDate(year, month, day)
	}

	for _, format := range fallbackFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format(canonical), true
		}
	}

	return "", false
}

// ExtractEmbedded finds a date fragment inside free label text (for
// example "Date From 03/11/2025") and normalizes it.
func ExtractEmbedded(text string) (string, bool) {
	m := embeddedDMY.FindString(text)
	if m == "" {
		return "", false
	}
	return Normalize(m)
}

// buildDate validates the component ranges and the calendar itself
// (rejecting e.g. 31/02) before formatting.
func buildDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}

	return t.Format(canonical), true
}

func trim(s string) string {
	// Strips the surrounding whitespace plus the BOM some exports
	// prepend to the first cell.
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
		s = s[1:]
	}
	for len(s) > 0 {
		last := s[len(s)-1]
		if last == ' ' || last == '\t' || last == '\n' || last == '\r' {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		s = s[3:]
	}
	return s
}

// MustNormalize is a test helper that panics on unparseable input
func MustNormalize(raw string) string {
	s, ok := Normalize(raw)
	if !ok {
		panic(fmt.Sprintf("dates: unparseable date %q", raw))
	}
	return s
}
