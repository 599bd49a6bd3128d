package model

import (
	"strconv"
	"strings"
	"time"
)

// Defaults substituted for missing date components when a comparable instant
// is needed. They only affect ordering and validity checks, never display.
const (
	defaultDay   = 1
	defaultMonth = time.January
	defaultYear  = 1970

	twoDigitYearMax  = 99
	twoDigitYearBase = 1900
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// PlaceDate is an optional, possibly partial date. Each component is kept as
// the raw text the user entered; a blank component is absent.
type PlaceDate struct {
	Day   string
	Month string
	Year  string
}

// HasDate reports whether at least one component is non-blank.
func (d PlaceDate) HasDate() bool {
	return strings.TrimSpace(d.Day) != "" ||
		strings.TrimSpace(d.Month) != "" ||
		strings.TrimSpace(d.Year) != ""
}

// Format renders the date for display:
//
//	day, month and year -> "3rd May 2024"
//	month and year      -> "May 2024"
//	year                -> "2024"
//
// Anything else, including day or day+month without a year, renders as "".
func (d PlaceDate) Format() string {
	day := d.Day
	month := ""
	if d.Month != "" {
		month = MonthName(d.Month)
	}
	year := d.Year

	switch {
	case day != "" && month != "" && year != "":
		return day + OrdinalSuffix(day) + " " + month + " " + year
	case month != "" && year != "":
		return month + " " + year
	case year != "":
		return year
	default:
		return ""
	}
}

// Comparable returns the instant used for sorting and for the visited/wishlist
// date checks. Missing, unparseable or zero components fall back to day 1,
// January and 1970. Years 1 to 99 are read as 1901 to 1999, matching the
// browser's Date constructor. Out-of-range days and months normalize the way
// time.Date does (31 February becomes early March).
func (d PlaceDate) Comparable() time.Time {
	day := intOr(d.Day, defaultDay)
	month := intOr(d.Month, int(defaultMonth))
	year := intOr(d.Year, defaultYear)
	if year >= 0 && year <= twoDigitYearMax {
		year += twoDigitYearBase
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

// OrdinalSuffix returns the English ordinal suffix for a day of the month, or
// "" when day does not start with an integer.
func OrdinalSuffix(day string) string {
	n, ok := leadingInt(day)
	if !ok {
		return ""
	}
	if n >= 11 && n <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// MonthName maps "1".."12" to the full English month name. Any other input
// yields "".
func MonthName(month string) string {
	n, ok := leadingInt(month)
	if !ok || n < 1 || n > 12 {
		return ""
	}
	return monthNames[n-1]
}

// intOr parses the leading integer of s, returning def when there is none or
// when it is zero.
func intOr(s string, def int) int {
	n, ok := leadingInt(s)
	if !ok || n == 0 {
		return def
	}
	return n
}

// leadingInt parses an optional sign followed by decimal digits at the start
// of s (after surrounding whitespace is trimmed). Trailing text is ignored, so
// "3rd" parses as 3.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
