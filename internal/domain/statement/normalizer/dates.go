// Package normalizer provides the date, amount and description normalisation
// shared by every extraction strategy.
package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned when no date stage accepts a token.
var ErrInvalidDateFormat = errors.New("invalid date format")

// dayFirstLayouts are tried against the whole token, in order.
var dayFirstLayouts = []string{
	"2/1/2006", // DD/MM/YYYY
	"2-1-2006", // DD-MM-YYYY
	"2006-1-2", // YYYY-MM-DD
	"2006/1/2", // YYYY/MM/DD
	"2/1/06",   // DD/MM/YY
	"2-1-06",   // DD-MM-YY
}

var (
	monthDayYearPattern = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	dayMonthYearPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+([a-z]{3,9})\.?,?\s+(\d{4})\b`)
	positionalPattern   = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// ParseDate resolves a raw date token to a calendar date (UTC midnight).
// Stages: explicit day-first layouts, month-name forms, then a positional
// day/month/year scan that expands two-digit years with "20".
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidDateFormat)
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if m := monthDayYearPattern.FindStringSubmatch(s); m != nil {
		if t, ok := monthNameDate(m[3], m[1], m[2]); ok {
			return t, nil
		}
	}
	if m := dayMonthYearPattern.FindStringSubmatch(s); m != nil {
		if t, ok := monthNameDate(m[3], m[2], m[1]); ok {
			return t, nil
		}
	}

	if m := positionalPattern.FindStringSubmatch(s); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		if t, ok := calendarDate(year, m[2], m[1]); ok {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
}

// MonthFromName maps "jan", "Sept", "DECEMBER" and similar to a month.
func MonthFromName(name string) (time.Month, bool) {
	n := strings.ToLower(strings.TrimSuffix(name, "."))
	if len(n) < 3 {
		return 0, false
	}
	for i, full := range monthNames {
		if strings.HasPrefix(full, n) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

func monthNameDate(year, monthName, day string) (time.Time, bool) {
	month, ok := MonthFromName(monthName)
	if !ok {
		return time.Time{}, false
	}
	return calendarDate(year, strconv.Itoa(int(month)), day)
}

// calendarDate builds a date and rejects values time.Date would normalise,
// such as 31 February.
func calendarDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
