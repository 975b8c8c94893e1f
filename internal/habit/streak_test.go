package habit

import (
	"testing"
	"time"

	"lifeTrackAPI/internal/dates"
)

func refDay(s string) time.Time {
	t, err := dates.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDailyStreak(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		ref       string
		want      int
	}{
		{
			name:      "three consecutive days ending today",
			completed: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
			ref:       "2024-01-03",
			want:      3,
		},
		{
			name:      "same dates but anchor too old",
			completed: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
			ref:       "2024-01-05",
			want:      0,
		},
		{
			name:      "anchor yesterday keeps streak alive",
			completed: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
			ref:       "2024-01-04",
			want:      3,
		},
		{
			name:      "gap in the middle only counts the tail",
			completed: []string{"2024-01-01", "2024-01-03", "2024-01-04"},
			ref:       "2024-01-04",
			want:      2,
		},
		{
			name:      "no completions",
			completed: nil,
			ref:       "2024-01-04",
			want:      0,
		},
		{
			name:      "future completions are ignored",
			completed: []string{"2024-01-03", "2024-01-04", "2024-01-10"},
			ref:       "2024-01-04",
			want:      2,
		},
		{
			name:      "unsorted input with duplicates",
			completed: []string{"2024-01-03", "2024-01-01", "2024-01-02", "2024-01-02"},
			ref:       "2024-01-03",
			want:      3,
		},
		{
			name:      "malformed entries dropped",
			completed: []string{"2024-01-02", "garbage", "2024-01-03"},
			ref:       "2024-01-03",
			want:      2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Habit{Frequency: FrequencyDaily, CompletedDates: tt.completed}
			if got := StreakOn(h, refDay(tt.ref)); got != tt.want {
				t.Errorf("Expected streak %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWeeklyStreak(t *testing.T) {
	// 2024-01-01, 01-08 and 01-15 are consecutive Mondays.
	tests := []struct {
		name      string
		completed []string
		ref       string
		want      int
	}{
		{
			name:      "three consecutive weeks",
			completed: []string{"2024-01-01", "2024-01-08", "2024-01-15"},
			ref:       "2024-01-17",
			want:      3,
		},
		{
			name:      "anchor in previous week still alive",
			completed: []string{"2024-01-01", "2024-01-08", "2024-01-15"},
			ref:       "2024-01-24",
			want:      3,
		},
		{
			name:      "anchor two weeks back is dead",
			completed: []string{"2024-01-01", "2024-01-08", "2024-01-15"},
			ref:       "2024-02-01",
			want:      0,
		},
		{
			name:      "skipped week breaks the run",
			completed: []string{"2024-01-01", "2024-01-15"},
			ref:       "2024-01-17",
			want:      1,
		},
		{
			name:      "two completions in one week count once",
			completed: []string{"2024-01-08", "2024-01-10", "2024-01-15"},
			ref:       "2024-01-17",
			want:      2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Habit{Frequency: FrequencyWeekly, CompletedDates: tt.completed}
			if got := StreakOn(h, refDay(tt.ref)); got != tt.want {
				t.Errorf("Expected streak %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMonthlyStreak(t *testing.T) {
	h := &Habit{Frequency: FrequencyMonthly, CompletedDates: []string{
		"2023-11-20", "2023-12-05", "2024-01-02",
	}}
	if got := StreakOn(h, refDay("2024-01-20")); got != 3 {
		t.Errorf("Expected streak 3, got %d", got)
	}
	// Anchor in the previous month keeps the run.
	if got := StreakOn(h, refDay("2024-02-10")); got != 3 {
		t.Errorf("Expected streak 3 with anchor last month, got %d", got)
	}
	if got := StreakOn(h, refDay("2024-03-10")); got != 0 {
		t.Errorf("Expected dead streak, got %d", got)
	}
}

func TestLongestRunSurvivesBrokenStreak(t *testing.T) {
	h := &Habit{Frequency: FrequencyDaily, CompletedDates: []string{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-10",
	}}
	if got := LongestRun(h); got != 3 {
		t.Errorf("Expected longest run 3, got %d", got)
	}
}

func TestCanCompleteOn(t *testing.T) {
	daily := &Habit{Frequency: FrequencyDaily, CompletedDates: []string{"2024-01-02"}}
	if !CanCompleteOn(daily, "2024-01-02") || !CanCompleteOn(daily, "2023-06-01") {
		t.Error("Daily habits accept any date")
	}

	weekly := &Habit{Frequency: FrequencyWeekly, CompletedDates: []string{"2024-01-09"}}
	// Same week, different day: blocked.
	if CanCompleteOn(weekly, "2024-01-10") {
		t.Error("Expected second completion in same week to be rejected")
	}
	// The completed date itself stays eligible so it can be toggled off.
	if !CanCompleteOn(weekly, "2024-01-09") {
		t.Error("Expected already-completed date to stay eligible")
	}
	// Next week is open.
	if !CanCompleteOn(weekly, "2024-01-15") {
		t.Error("Expected next week to be eligible")
	}

	monthly := &Habit{Frequency: FrequencyMonthly, CompletedDates: []string{"2024-01-09"}}
	if CanCompleteOn(monthly, "2024-01-25") {
		t.Error("Expected second completion in same month to be rejected")
	}
	if !CanCompleteOn(monthly, "2024-02-01") {
		t.Error("Expected next month to be eligible")
	}
}
