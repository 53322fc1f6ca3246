// Package billing normalizes billing cadences and projects charge dates.
//
// All functions are pure: "today" is always passed in by the caller and input
// subscriptions are never modified.
package billing

import (
	"time"

	"github.com/Veraticus/subtrack/internal/model"
)

const day = 24 * time.Hour

// civil truncates t to its calendar date at UTC midnight.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidDate reports whether t carries a usable date.
func ValidDate(t time.Time) bool {
	return !t.IsZero()
}

// DaysBetween returns the number of calendar days from today to date.
// It is negative when date is in the past. Time of day is ignored.
func DaysBetween(date, today time.Time) int {
	return int(civil(date).Sub(civil(today)) / day)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return civil(a).Equal(civil(b))
}

// AdvanceDate returns the charge date one billing period after date.
func AdvanceDate(date time.Time, freq model.BillingFrequency) time.Time {
	return occurrence(date, freq, 1)
}

// occurrence returns the n-th charge date counted from anchor. Months are
// always offset from the anchor so that a charge on the 31st lands on the
// last day of shorter months without drifting.
func occurrence(anchor time.Time, freq model.BillingFrequency, n int) time.Time {
	switch freq {
	case model.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case model.FrequencyQuarterly:
		return addMonthsClamped(anchor, 3*n)
	case model.FrequencyYearly:
		return addMonthsClamped(anchor, 12*n)
	default:
		return addMonthsClamped(anchor, n)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	d := t.Day()
	if d > lastDay {
		d = lastDay
	}
	return first.AddDate(0, 0, d-1)
}
