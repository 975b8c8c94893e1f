package habit

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit is a single tracked habit. Streak is a cached projection of
// CompletedDates and is recomputed on every toggle; CompletedDates is the
// source of truth.
type Habit struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Icon            string    `json:"icon,omitempty"`
	Frequency       Frequency `json:"frequency"`
	CompletedDates  []string  `json:"completed_dates"`
	Streak          int       `json:"streak"`
	XPPerCompletion int       `json:"xp_per_completion"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DateCompleted reports whether date is in the completed set.
func (h *Habit) DateCompleted(date string) bool {
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

type CreateHabitRequest struct {
	Name            string    `json:"name"`
	Icon            string    `json:"icon"`
	Frequency       Frequency `json:"frequency"`
	XPPerCompletion int       `json:"xp_per_completion"`
}

type ToggleCompletionRequest struct {
	Date string `json:"date"`
}

// ToggleResult reports what a completion toggle did to the aggregate.
type ToggleResult struct {
	Habit         *Habit   `json:"habit"`
	Completed     bool     `json:"completed"`
	XPDelta       int      `json:"xp_delta"`
	NewBadges     []string `json:"new_badges,omitempty"`
	ChallengeDays int      `json:"challenge_days,omitempty"`
}
