package stats

import "lifeTrackAPI/internal/badge"

// UserStats is the per-user gamification read-model. Level and XPToNextLevel
// are caches of the leveling formula over XP and are recomputed on every
// read; the counters are the source of truth for badge evaluation.
type UserStats struct {
	UserID               string         `json:"user_id"`
	XP                   int            `json:"xp"`
	Level                int            `json:"level"`
	XPToNextLevel        int            `json:"xp_to_next_level"`
	TotalHabitsCompleted int            `json:"total_habits_completed"`
	CurrentStreak        int            `json:"current_streak"`
	LongestStreak        int            `json:"longest_streak"`
	CheckInsCompleted    int            `json:"check_ins_completed"`
	WorkoutsCompleted    int            `json:"workouts_completed"`
	Badges               []badge.Earned `json:"badges"`
}

// HasBadge reports whether the badge id is already earned.
func (s *UserStats) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Counters snapshots the badge-relevant counters.
func (s *UserStats) Counters() badge.Counters {
	return badge.Counters{
		HabitsCompleted:   s.TotalHabitsCompleted,
		CurrentStreak:     s.CurrentStreak,
		WorkoutsCompleted: s.WorkoutsCompleted,
		CheckInsCompleted: s.CheckInsCompleted,
	}
}
