// Package timeparse converts the loose date and time strings users type into
// canonical forms and UTC instants. Parsing is locale-tolerant: "7", "7h",
// "7h30" and "07:30" are all accepted as times, and dates may omit the year.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate normalizes a "DD/MM" or "DD/MM/YYYY" string into ISO "YYYY-MM-DD".
// Two-digit years are interpreted as 20xx and a missing year defaults to the
// current year in loc. The result is round-tripped through time.Date so
// impossible dates such as 31/02 are rejected.
func ParseDate(input string, now time.Time, loc *time.Location) (string, bool) {
	parts := strings.Split(strings.TrimSpace(input), "/")
	if len(parts) != 2 && len(parts) != 3 {
		return "", false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return "", false
	}

	year := now.In(loc).Year()
	if len(parts) == 3 {
		year, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return "", false
		}
		if year < 100 {
			year += 2000
		}
	}

	// Reject dates that only exist through normalization (e.g. 31/02 -> 03/03).
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// ParseTime normalizes a user-typed time of day into "HH:MM".
// Accepted inputs: "7", "07", "7h", "7h30", "7:30", "07:30".
func ParseTime(input string) (string, bool) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return "", false
	}

	var hourPart, minutePart string
	switch {
	case strings.Contains(s, "h"):
		idx := strings.Index(s, "h")
		hourPart = s[:idx]
		minutePart = s[idx+1:]
	case strings.Contains(s, ":"):
		idx := strings.Index(s, ":")
		hourPart = s[:idx]
		minutePart = s[idx+1:]
	default:
		hourPart = s
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hour < 0 || hour > 23 {
		return "", false
	}

	minute := 0
	if mp := strings.TrimSpace(minutePart); mp != "" {
		minute, err = strconv.Atoi(mp)
		if err != nil || minute < 0 || minute > 59 {
			return "", false
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// NextDay returns the ISO date of the calendar day after isoDate.
func NextDay(isoDate string) (string, bool) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02"), true
}

// Combine resolves an ISO date and an "HH:MM" time of day in loc and returns
// the corresponding UTC instant. Both arguments must already be canonical.
func Combine(isoDate, hhmm string, loc *time.Location) (time.Time, bool) {
	var year, month, day int
	if _, err := fmt.Sscanf(isoDate, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return time.Time{}, false
	}
	var hour, minute int
	if _, err := fmt.Sscanf(hhmm, "%2d:%2d", &hour, &minute); err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, false
	}

	return t.UTC(), true
}
