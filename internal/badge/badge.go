// Package badge holds the achievement catalog and the threshold evaluator.
// The catalog is a data table: adding a badge is a new row, not a new branch.
package badge

import "time"

type CounterType string

const (
	CounterHabitsCompleted   CounterType = "habits_completed"
	CounterCurrentStreak     CounterType = "current_streak"
	CounterWorkoutsCompleted CounterType = "workouts_completed"
	CounterCheckInsCompleted CounterType = "check_ins_completed"
)

// Counters is the aggregate snapshot badges are judged against.
type Counters struct {
	HabitsCompleted   int `json:"habits_completed"`
	CurrentStreak     int `json:"current_streak"`
	WorkoutsCompleted int `json:"workouts_completed"`
	CheckInsCompleted int `json:"check_ins_completed"`
}

func (c Counters) value(t CounterType) int {
	switch t {
	case CounterHabitsCompleted:
		return c.HabitsCompleted
	case CounterCurrentStreak:
		return c.CurrentStreak
	case CounterWorkoutsCompleted:
		return c.WorkoutsCompleted
	case CounterCheckInsCompleted:
		return c.CheckInsCompleted
	}
	return 0
}

// Badge is an immutable catalog entry: one numeric threshold against exactly
// one counter.
type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon"`
	Description string      `json:"description"`
	Counter     CounterType `json:"counter"`
	Threshold   int         `json:"threshold"`
	XPReward    int         `json:"xp_reward"`
}

// Earned is a badge a user has unlocked. A badge id is earned at most once
// per user.
type Earned struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	EarnedDate  time.Time `json:"earned_date"`
}

// Catalog is the full badge table, ordered by counter then threshold.
var Catalog = []Badge{
	{ID: "streak_3", Name: "On a Roll", Icon: "🔥", Description: "Hold a 3-day streak", Counter: CounterCurrentStreak, Threshold: 3, XPReward: 50},
	{ID: "streak_7", Name: "Week of Fire", Icon: "🔥", Description: "Hold a 7-day streak", Counter: CounterCurrentStreak, Threshold: 7, XPReward: 100},
	{ID: "streak_30", Name: "Unstoppable", Icon: "🌋", Description: "Hold a 30-day streak", Counter: CounterCurrentStreak, Threshold: 30, XPReward: 300},
	{ID: "streak_100", Name: "Centurion", Icon: "🏛️", Description: "Hold a 100-day streak", Counter: CounterCurrentStreak, Threshold: 100, XPReward: 1000},
	{ID: "habits_1", Name: "First Step", Icon: "👣", Description: "Complete your first habit", Counter: CounterHabitsCompleted, Threshold: 1, XPReward: 25},
	{ID: "habits_10", Name: "Getting Going", Icon: "⚡", Description: "Complete 10 habits", Counter: CounterHabitsCompleted, Threshold: 10, XPReward: 75},
	{ID: "habits_50", Name: "Habit Machine", Icon: "⚙️", Description: "Complete 50 habits", Counter: CounterHabitsCompleted, Threshold: 50, XPReward: 200},
	{ID: "habits_100", Name: "Relentless", Icon: "🚀", Description: "Complete 100 habits", Counter: CounterHabitsCompleted, Threshold: 100, XPReward: 500},
	{ID: "workouts_20", Name: "Iron Apprentice", Icon: "🏋️", Description: "Finish 20 workouts", Counter: CounterWorkoutsCompleted, Threshold: 20, XPReward: 150},
	{ID: "workouts_50", Name: "Iron Veteran", Icon: "💪", Description: "Finish 50 workouts", Counter: CounterWorkoutsCompleted, Threshold: 50, XPReward: 400},
	{ID: "checkins_1", Name: "Checked In", Icon: "📝", Description: "Complete your first daily check-in", Counter: CounterCheckInsCompleted, Threshold: 1, XPReward: 25},
	{ID: "checkins_7", Name: "Self Aware", Icon: "🪞", Description: "Complete 7 daily check-ins", Counter: CounterCheckInsCompleted, Threshold: 7, XPReward: 75},
	{ID: "checkins_30", Name: "Inner Compass", Icon: "🧭", Description: "Complete 30 daily check-ins", Counter: CounterCheckInsCompleted, Threshold: 30, XPReward: 200},
	{ID: "checkins_100", Name: "Examined Life", Icon: "🦉", Description: "Complete 100 daily check-ins", Counter: CounterCheckInsCompleted, Threshold: 100, XPReward: 500},
}

// ByID looks a catalog badge up by id.
func ByID(id string) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// Evaluate returns every catalog badge whose threshold the counters meet,
// not just newly crossed ones. Stateless and idempotent; the caller diffs
// against the user's earned set and grants only the delta.
func Evaluate(c Counters) []Badge {
	var met []Badge
	for _, b := range Catalog {
		if c.value(b.Counter) >= b.Threshold {
			met = append(met, b)
		}
	}
	return met
}
