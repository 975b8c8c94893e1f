package dates

import (
	"sort"
	"time"
)

// DayFormat is the wire format for calendar days across the whole API.
const DayFormat = "2006-01-02"

// FormatDay truncates a timestamp to its calendar day string.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight timestamp.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, s, time.UTC)
}

// IsToday reports whether day (YYYY-MM-DD) equals the reference date's day.
func IsToday(day string, ref time.Time) bool {
	return day == FormatDay(ref)
}

// AddDays returns the day string n calendar days after day.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, n)), nil
}

// TrailingWindow returns the n day strings ending at ref, oldest first.
func TrailingWindow(ref time.Time, n int) []string {
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, FormatDay(ref.AddDate(0, 0, -i)))
	}
	return days
}

// DaysBetween lists every calendar day in [start, end] inclusive. Malformed
// bounds or end before start yield an empty slice.
func DaysBetween(start, end string) []string {
	s, err := ParseDay(start)
	if err != nil {
		return nil
	}
	e, err := ParseDay(end)
	if err != nil {
		return nil
	}
	var days []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDay(d))
	}
	return days
}

// SortedUnique returns the valid day strings from the input, de-duplicated
// and ascending. Malformed entries are dropped.
func SortedUnique(days []string) []string {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		if _, err := ParseDay(d); err != nil {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DayIndex maps a day to its absolute day number, usable for gap checks.
func DayIndex(day string) (int, bool) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, false
	}
	return int(t.Unix() / 86400), true
}

// LongestRun returns the length of the longest run of consecutive calendar
// days in the list (gap of exactly one day between neighbours).
func LongestRun(days []string) int {
	sorted := SortedUnique(days)
	longest, run, prev := 0, 0, 0
	for i, d := range sorted {
		idx, ok := DayIndex(d)
		if !ok {
			continue
		}
		if i > 0 && idx == prev+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = idx
	}
	return longest
}

// RunEndingAt counts the consecutive days in the list that end exactly at
// the given day. Zero when the day itself is absent.
func RunEndingAt(days []string, end string) int {
	endIdx, ok := DayIndex(end)
	if !ok {
		return 0
	}
	present := make(map[int]bool, len(days))
	for _, d := range days {
		if idx, ok := DayIndex(d); ok {
			present[idx] = true
		}
	}
	run := 0
	for present[endIdx-run] {
		run++
	}
	return run
}

// WeekIndex returns an absolute ISO-week number for ordering consecutive
// weeks across year boundaries.
func WeekIndex(day string) (int, bool) {
	idx, ok := DayIndex(day)
	if !ok {
		return 0, false
	}
	// Day 0 (1970-01-01) was a Thursday; shift so weeks start on Monday.
	return (idx + 3) / 7, true
}

// MonthIndex returns an absolute month number (year*12 + month).
func MonthIndex(day string) (int, bool) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, false
	}
	return t.Year()*12 + int(t.Month()) - 1, true
}
