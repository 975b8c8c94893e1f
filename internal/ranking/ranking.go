// Package ranking orders participants of multi-user workout challenges.
package ranking

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
)

// Challenge is a shared workout challenge multiple users compete in.
type Challenge struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Modality  string    `json:"modality,omitempty"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant is one (challenge, user) pair in a group workout challenge.
type Participant struct {
	ChallengeID   uuid.UUID `json:"challenge_id"`
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	ImageURL      *string   `json:"image_url,omitempty"`
	CurrentStreak int       `json:"current_streak"`
	TotalWorkouts int       `json:"total_workouts"`
	LastWorkout   *string   `json:"last_workout_date,omitempty"`
}

// Workout is a single recorded session feeding a participant's streak.
type Workout struct {
	Date     string `json:"date"`
	Modality string `json:"modality,omitempty"`
}

// Leaderboard is the ranked view plus the requesting user's own row.
type Leaderboard struct {
	Entries      []*Participant `json:"entries"`
	UserPosition *Participant   `json:"user_position"`
	TotalUsers   int            `json:"total_users"`
}

// Rank orders participants by current streak descending, ties broken by
// total workouts descending. Remaining ties keep insertion order.
func Rank(participants []*Participant) []*Participant {
	ranked := make([]*Participant, len(participants))
	copy(ranked, participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CurrentStreak != ranked[j].CurrentStreak {
			return ranked[i].CurrentStreak > ranked[j].CurrentStreak
		}
		return ranked[i].TotalWorkouts > ranked[j].TotalWorkouts
	})
	return ranked
}

// ParticipantStreak recomputes the consecutive-day workout streak bounded to
// [periodStart, min(today, periodEnd)]. An empty modality counts every
// workout; otherwise only matching sessions qualify.
func ParticipantStreak(workouts []Workout, periodStart, periodEnd string, today time.Time, modality string) int {
	end := dates.FormatDay(today)
	if periodEnd < end {
		end = periodEnd
	}

	var days []string
	for _, w := range workouts {
		if modality != "" && w.Modality != modality {
			continue
		}
		if w.Date >= periodStart && w.Date <= end {
			days = append(days, w.Date)
		}
	}
	if len(days) == 0 {
		return 0
	}

	sorted := dates.SortedUnique(days)
	anchor := sorted[len(sorted)-1]
	anchorIdx, ok := dates.DayIndex(anchor)
	if !ok {
		return 0
	}
	endIdx, ok := dates.DayIndex(end)
	if !ok {
		return 0
	}
	// Same rule as habit streaks: a missed day inside the window kills it.
	if anchorIdx < endIdx-1 {
		return 0
	}
	return dates.RunEndingAt(sorted, anchor)
}
