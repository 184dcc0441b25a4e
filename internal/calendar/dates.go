// Package calendar maps reading-plan day indexes onto calendar dates.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used in every artifact and URL.
const DateLayout = "2006-01-02"

// ParseDateString parses a date string in YYYY-MM-DD format (UTC midnight).
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, dateStr)
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// Midnight truncates t to the start of its calendar day, keeping the date
// as seen in t's location but expressed in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateForIndex returns the calendar date of plan day index for a plan
// starting on start.
func DateForIndex(start time.Time, index int) time.Time {
	return Midnight(start).AddDate(0, 0, index)
}

// IndexForDate returns the plan day index of date for a plan starting on
// start. The result may be negative or beyond the plan length; callers
// check it with InPlan.
func IndexForDate(start, date time.Time) int {
	// Whole-day difference; both sides are UTC midnights so DST never applies.
	return int(Midnight(date).Sub(Midnight(start)).Hours() / 24)
}

// InPlan reports whether index falls inside a plan of the given length.
func InPlan(index, days int) bool {
	return index >= 0 && index < days
}

// StartOfYear returns January 1 of year.
func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	return IndexForDate(StartOfYear(year), StartOfYear(year+1))
}

// ValidateSpan checks that a start/end pair is ordered and no longer than
// maxDays days inclusive.
func ValidateSpan(start, end time.Time, maxDays int) error {
	if start.After(end) {
		return fmt.Errorf("start date %s is after end date %s", FormatDate(start), FormatDate(end))
	}
	if span := IndexForDate(start, end) + 1; span > maxDays {
		return fmt.Errorf("date range of %d days exceeds %d", span, maxDays)
	}
	return nil
}
