package habit

import (
	"time"

	"lifeTrackAPI/internal/dates"
)

// StreakOn derives the habit's current streak from its completed dates as of
// the reference date. The streak is anchored at the most recent completion:
// it only counts as "current" when that completion falls in the reference
// period or the one immediately before it. Pure over
// (frequency, completedDates, ref).
func StreakOn(h *Habit, ref time.Time) int {
	switch h.Frequency {
	case FrequencyWeekly:
		return periodStreak(h.CompletedDates, ref, dates.WeekIndex)
	case FrequencyMonthly:
		return periodStreak(h.CompletedDates, ref, dates.MonthIndex)
	default:
		return dailyStreak(h.CompletedDates, ref)
	}
}

// LongestRun is the longest daily streak the habit has ever had, regardless
// of whether it is still alive.
func LongestRun(h *Habit) int {
	return dates.LongestRun(h.CompletedDates)
}

// CanCompleteOn decides whether date is eligible for a completion toggle.
// Daily habits accept any date (backfill is allowed). Weekly and monthly
// habits accept at most one completion per period; the already-completed
// date stays eligible so it can be toggled off.
func CanCompleteOn(h *Habit, date string) bool {
	var indexOf func(string) (int, bool)
	switch h.Frequency {
	case FrequencyWeekly:
		indexOf = dates.WeekIndex
	case FrequencyMonthly:
		indexOf = dates.MonthIndex
	default:
		return true
	}

	period, ok := indexOf(date)
	if !ok {
		return false
	}
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
		if p, ok := indexOf(d); ok && p == period {
			return false
		}
	}
	return true
}

func dailyStreak(completed []string, ref time.Time) int {
	sorted := dates.SortedUnique(completed)
	if len(sorted) == 0 {
		return 0
	}

	today := dates.FormatDay(ref)
	todayIdx, _ := dates.DayIndex(today)

	// Anchor at the most recent completion on or before the reference day.
	anchor := -1
	for i := len(sorted) - 1; i >= 0; i-- {
		idx, ok := dates.DayIndex(sorted[i])
		if ok && idx <= todayIdx {
			anchor = idx
			break
		}
	}
	// A missed day breaks the run: the streak is only alive if the anchor
	// is today or yesterday.
	if anchor < todayIdx-1 {
		return 0
	}

	present := make(map[int]bool, len(sorted))
	for _, d := range sorted {
		if idx, ok := dates.DayIndex(d); ok {
			present[idx] = true
		}
	}
	run := 0
	for present[anchor-run] {
		run++
	}
	return run
}

// periodStreak counts consecutive periods (weeks or months) containing at
// least one completion, ending at the period of the most recent completion,
// which must be the current or previous period.
func periodStreak(completed []string, ref time.Time, indexOf func(string) (int, bool)) int {
	periods := make(map[int]bool, len(completed))
	maxPeriod := -1
	for _, d := range completed {
		p, ok := indexOf(d)
		if !ok {
			continue
		}
		periods[p] = true
		if p > maxPeriod {
			maxPeriod = p
		}
	}
	if maxPeriod < 0 {
		return 0
	}

	current, _ := indexOf(dates.FormatDay(ref))
	anchor := maxPeriod
	if anchor > current {
		anchor = current
	}
	if !periods[anchor] || anchor < current-1 {
		return 0
	}

	run := 0
	for periods[anchor-run] {
		run++
	}
	return run
}
