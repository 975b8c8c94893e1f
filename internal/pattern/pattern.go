// Package pattern scans rolling 7-14 day windows of check-ins, habits and
// finance entries for behavioral trends. Detection is read-only and fully
// recomputed on every call; nothing here is persisted.
package pattern

import (
	"time"

	"lifeTrackAPI/internal/checkin"
	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/finance"
	"lifeTrackAPI/internal/habit"
)

type Type string

const (
	TypePositive Type = "positive"
	TypeNegative Type = "negative"
)

type Severity string

// SeverityLow exists in the wire format but no current rule emits it; the
// bucketing below only produces medium and high.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	CategoryMood     = "humor"
	CategoryEnergy   = "energy"
	CategoryHabits   = "habits"
	CategoryExpenses = "expenses"
	CategoryFinances = "finances"
	CategoryCheckIns = "checkins"
	CategorySleep    = "sleep"
)

// Detected is an ephemeral alert. ConsecutiveDays carries either the length
// of the qualifying consecutive run or the qualifying day count, depending
// on the detector.
type Detected struct {
	Type            Type     `json:"type"`
	Category        string   `json:"category"`
	Severity        Severity `json:"severity"`
	ConsecutiveDays int      `json:"consecutive_days"`
	Title           string   `json:"title"`
	Message         string   `json:"message"`
}

const (
	consecutiveThreshold = 3
	countOf7Negative     = 3
	countOf7Positive     = 5
	highSeverityAt       = 5

	lowMoodMax      = 2
	highMoodMin     = 5
	lowEnergyMax    = 2
	highEnergyMin   = 5
	lowSleepHours   = 6.0
	goodSleepHours  = 7.0
	expenseSpikeMul = 1.5
)

func severityFor(n int) Severity {
	if n >= highSeverityAt {
		return SeverityHigh
	}
	return SeverityMedium
}

// Detect runs every detector against the trailing window ending at ref.
// Mood, energy, sleep and expense checks look at the last 14 days of
// records; presence-style checks (habits, check-ins, profitability) look at
// the last 7. Each detector emits at most one pattern.
func Detect(checkIns []checkin.CheckIn, habits []*habit.Habit, entries []finance.Entry, ref time.Time) []Detected {
	var out []Detected

	window14 := windowSet(ref, 14)
	window7 := dates.TrailingWindow(ref, 7)

	byDay := make(map[string]checkin.CheckIn, len(checkIns))
	for _, c := range checkIns {
		if window14[c.Date] {
			byDay[c.Date] = c
		}
	}

	// Mood.
	if run := longestConditionRun(byDay, func(c checkin.CheckIn) bool {
		return c.Mood > 0 && c.Mood <= lowMoodMax
	}); run >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypeNegative, Category: CategoryMood, Severity: severityFor(run), ConsecutiveDays: run,
			Title:   "Low mood streak",
			Message: "Your mood has been low for several days in a row. Consider something that usually lifts you up.",
		})
	}
	if run := longestConditionRun(byDay, func(c checkin.CheckIn) bool {
		return c.Mood >= highMoodMin
	}); run >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypePositive, Category: CategoryMood, Severity: severityFor(run), ConsecutiveDays: run,
			Title:   "Great mood streak",
			Message: "Several consecutive days of great mood. Whatever you're doing, keep doing it.",
		})
	}

	// Energy.
	if run := longestConditionRun(byDay, func(c checkin.CheckIn) bool {
		return c.Energy > 0 && c.Energy <= lowEnergyMax
	}); run >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypeNegative, Category: CategoryEnergy, Severity: severityFor(run), ConsecutiveDays: run,
			Title:   "Running on empty",
			Message: "Energy has been low for days. Check your sleep and recovery.",
		})
	}
	if run := longestConditionRun(byDay, func(c checkin.CheckIn) bool {
		return c.Energy >= highEnergyMin
	}); run >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypePositive, Category: CategoryEnergy, Severity: severityFor(run), ConsecutiveDays: run,
			Title:   "High energy streak",
			Message: "Consecutive days of high energy. Your routine is working.",
		})
	}

	// Sleep. Missing sleep hours are skipped, not treated as zero.
	if run := longestConditionRun(byDay, func(c checkin.CheckIn) bool {
		return c.SleepHours != nil && *c.SleepHours < lowSleepHours
	}); run >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypeNegative, Category: CategorySleep, Severity: severityFor(run), ConsecutiveDays: run,
			Title:   "Sleep debt building",
			Message: "Under six hours of sleep for several nights running.",
		})
	}
	if run := longestConditionRun(byDay, func(c checkin.CheckIn) bool {
		return c.SleepHours != nil && *c.SleepHours >= goodSleepHours
	}); run >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypePositive, Category: CategorySleep, Severity: severityFor(run), ConsecutiveDays: run,
			Title:   "Well rested",
			Message: "Seven or more hours of sleep, several nights in a row.",
		})
	}

	// Habit presence over the last 7 days.
	habitDays := make(map[string]bool)
	for _, h := range habits {
		for _, d := range h.CompletedDates {
			habitDays[d] = true
		}
	}
	zeroDays, activeDays := 0, 0
	for _, d := range window7 {
		if habitDays[d] {
			activeDays++
		} else {
			zeroDays++
		}
	}
	if zeroDays >= countOf7Negative {
		out = append(out, Detected{
			Type: TypeNegative, Category: CategoryHabits, Severity: severityFor(zeroDays), ConsecutiveDays: zeroDays,
			Title:   "Habits slipping",
			Message: "Several days this week without a single habit completed.",
		})
	}
	if activeDays >= countOf7Positive {
		out = append(out, Detected{
			Type: TypePositive, Category: CategoryHabits, Severity: severityFor(activeDays), ConsecutiveDays: activeDays,
			Title:   "Consistent week",
			Message: "Habits completed on most days this week.",
		})
	}

	// Check-in presence over the last 7 days.
	missing, present := 0, 0
	today := dates.FormatDay(ref)
	for _, d := range window7 {
		if _, ok := byDay[d]; ok {
			present++
		} else if d != today {
			// Today only counts as missing once it's over.
			missing++
		}
	}
	if missing >= countOf7Negative {
		out = append(out, Detected{
			Type: TypeNegative, Category: CategoryCheckIns, Severity: severityFor(missing), ConsecutiveDays: missing,
			Title:   "Check-ins missed",
			Message: "Several days this week without a daily check-in.",
		})
	}
	if present >= countOf7Positive {
		out = append(out, Detected{
			Type: TypePositive, Category: CategoryCheckIns, Severity: severityFor(present), ConsecutiveDays: present,
			Title:   "Checked in all week",
			Message: "Daily check-ins on most days this week.",
		})
	}

	// Finances.
	totals := finance.DayTotals(entries)
	out = append(out, financePatterns(totals, window14, window7)...)

	return out
}

func financePatterns(totals map[string]struct{ Income, Expense float64 }, window14 map[string]bool, window7 []string) []Detected {
	var out []Detected

	// Expense spike: days whose spend exceeds 1.5x the window's mean
	// daily spend, three or more in a row.
	var spendDays []string
	var sum float64
	for d, t := range totals {
		if window14[d] && t.Expense > 0 {
			spendDays = append(spendDays, d)
			sum += t.Expense
		}
	}
	if len(spendDays) > 0 {
		mean := sum / float64(len(spendDays))
		var spikes []string
		for _, d := range spendDays {
			if totals[d].Expense > mean*expenseSpikeMul {
				spikes = append(spikes, d)
			}
		}
		if run := dates.LongestRun(spikes); run >= consecutiveThreshold {
			out = append(out, Detected{
				Type: TypeNegative, Category: CategoryExpenses, Severity: severityFor(run), ConsecutiveDays: run,
				Title:   "Spending spike",
				Message: "Expenses well above your average for several consecutive days.",
			})
		}
	}

	// Profitability: days where income beat expenses, three or more of the
	// last seven.
	profitable := 0
	for _, d := range window7 {
		if t, ok := totals[d]; ok && t.Income > t.Expense {
			profitable++
		}
	}
	if profitable >= consecutiveThreshold {
		out = append(out, Detected{
			Type: TypePositive, Category: CategoryFinances, Severity: severityFor(profitable), ConsecutiveDays: profitable,
			Title:   "In the green",
			Message: "Income beat expenses on several days this week.",
		})
	}

	return out
}

// longestConditionRun finds the longest run of consecutive calendar days on
// which the check-in satisfies cond.
func longestConditionRun(byDay map[string]checkin.CheckIn, cond func(checkin.CheckIn) bool) int {
	var qualifying []string
	for d, c := range byDay {
		if cond(c) {
			qualifying = append(qualifying, d)
		}
	}
	return dates.LongestRun(qualifying)
}

func windowSet(ref time.Time, n int) map[string]bool {
	set := make(map[string]bool, n)
	for _, d := range dates.TrailingWindow(ref, n) {
		set[d] = true
	}
	return set
}
