package checkin

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is one daily self-report. Mood and Energy are 1-5; zero means the
// field was not answered. SleepHours is absent (nil) rather than zero when
// not recorded, so pattern thresholds are not skewed.
type CheckIn struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Mood       int       `json:"mood"`
	Energy     int       `json:"energy"`
	SleepHours *float64  `json:"sleep_hours,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type UpsertCheckInRequest struct {
	Date       string   `json:"date"`
	Mood       int      `json:"mood"`
	Energy     int      `json:"energy"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}
