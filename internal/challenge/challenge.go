// Package challenge implements the single-habit discipline challenge: a
// fixed-duration commitment to complete one habit every day in a date range,
// with milestone rewards, daily tips and a difficulty journal.
package challenge

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MaxDuration caps a challenge, extensions included.
const MaxDuration = 365

var (
	ErrInvalidDuration   = errors.New("challenge duration must be 7, 14 or 21 days")
	ErrNotActive         = errors.New("challenge is not active")
	ErrInvalidExtension  = errors.New("extension must be at least one day")
	ErrExtensionTooLong  = errors.New("extended duration exceeds 365 days")
	ErrDayOutOfRange     = errors.New("date is outside the challenge range")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 10")
	ErrRewardNotFound    = errors.New("reward not found")
	ErrRewardLocked      = errors.New("not enough completed days to unlock reward")
	ErrTipNotFound       = errors.New("tip not found")
)

// Reward is a milestone prize unlocked once the challenge has accumulated
// Day completed days. Unlocking is one-way; the XP grant is the caller's.
type Reward struct {
	ID          uuid.UUID `json:"id"`
	Day         int       `json:"day"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	XP          int       `json:"xp"`
	Unlocked    bool      `json:"unlocked"`
}

// Tip previews the day about to be attempted. Shown exactly once.
type Tip struct {
	ID      uuid.UUID `json:"id"`
	Day     int       `json:"day"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Shown   bool      `json:"shown"`
}

// Challenge is the aggregate. CompletedDays and DifficultyMap are keyed by
// YYYY-MM-DD; the whole document is read-modify-written as a unit.
type Challenge struct {
	ID            uuid.UUID      `json:"id"`
	UserID        string         `json:"user_id"`
	HabitID       uuid.UUID      `json:"habit_id"`
	Duration      int            `json:"duration"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	Status        Status         `json:"status"`
	CompletedDays []string       `json:"completed_days"`
	DifficultyMap map[string]int `json:"difficulty_map"`
	Rewards       []Reward       `json:"rewards"`
	Tips          []Tip          `json:"tips"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// New creates an active challenge starting on startDate. Allowed durations
// are 7, 14 and 21 days; endDate is startDate + duration - 1.
func New(userID string, habitID uuid.UUID, duration int, startDate string, now time.Time) (*Challenge, error) {
	if duration != 7 && duration != 14 && duration != 21 {
		return nil, ErrInvalidDuration
	}
	if _, err := dates.ParseDay(startDate); err != nil {
		return nil, err
	}
	endDate, err := dates.AddDays(startDate, duration-1)
	if err != nil {
		return nil, err
	}
	return &Challenge{
		ID:            uuid.New(),
		UserID:        userID,
		HabitID:       habitID,
		Duration:      duration,
		StartDate:     startDate,
		EndDate:       endDate,
		Status:        StatusActive,
		CompletedDays: []string{},
		DifficultyMap: map[string]int{},
		Rewards:       rewardsFor(duration),
		Tips:          tipsFor(duration),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// InRange reports whether day falls inside [StartDate, EndDate].
func (c *Challenge) InRange(day string) bool {
	return day >= c.StartDate && day <= c.EndDate
}

// DayCompleted reports whether day is already marked.
func (c *Challenge) DayCompleted(day string) bool {
	for _, d := range c.CompletedDays {
		if d == day {
			return true
		}
	}
	return false
}

// coverageComplete is true once every calendar day in the range is marked.
// Order of marking is irrelevant; out-of-order completion converges to the
// same verdict.
func (c *Challenge) coverageComplete() bool {
	marked := make(map[string]bool, len(c.CompletedDays))
	for _, d := range c.CompletedDays {
		marked[d] = true
	}
	for _, d := range dates.DaysBetween(c.StartDate, c.EndDate) {
		if !marked[d] {
			return false
		}
	}
	return true
}

// MarkDayComplete adds day to the completed set. Marking an already-completed
// day is a no-op. The challenge transitions to completed the instant the
// whole range is covered.
func (c *Challenge) MarkDayComplete(day string, now time.Time) error {
	if c.Status != StatusActive {
		return ErrNotActive
	}
	if _, err := dates.ParseDay(day); err != nil {
		return err
	}
	if !c.InRange(day) {
		return ErrDayOutOfRange
	}
	if c.DayCompleted(day) {
		return nil
	}
	c.CompletedDays = append(c.CompletedDays, day)
	if c.coverageComplete() {
		c.Status = StatusCompleted
	}
	c.UpdatedAt = now
	return nil
}

// EvaluateExpiry lazily fails an active challenge once today is strictly past
// the end date with coverage incomplete. There is no background scheduler;
// callers invoke this on read. Returns true when the status changed.
func (c *Challenge) EvaluateExpiry(today time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if dates.FormatDay(today) <= c.EndDate {
		return false
	}
	if c.coverageComplete() {
		c.Status = StatusCompleted
	} else {
		c.Status = StatusFailed
	}
	c.UpdatedAt = today
	return true
}

// RecordDifficulty upserts the 1-10 difficulty score for a day, independent
// of completion state.
func (c *Challenge) RecordDifficulty(day string, score int, now time.Time) error {
	if score < 1 || score > 10 {
		return ErrInvalidDifficulty
	}
	if _, err := dates.ParseDay(day); err != nil {
		return err
	}
	if !c.InRange(day) {
		return ErrDayOutOfRange
	}
	if c.DifficultyMap == nil {
		c.DifficultyMap = map[string]int{}
	}
	c.DifficultyMap[day] = score
	c.UpdatedAt = now
	return nil
}

// UnlockReward flips the reward to unlocked. Already-unlocked rewards are a
// safe no-op (the returned XP is 0, so double grants cannot happen when the
// caller awards the return value). A reward only unlocks once enough days
// are completed.
func (c *Challenge) UnlockReward(rewardID uuid.UUID, now time.Time) (int, error) {
	for i := range c.Rewards {
		r := &c.Rewards[i]
		if r.ID != rewardID {
			continue
		}
		if r.Unlocked {
			return 0, nil
		}
		if len(c.CompletedDays) < r.Day {
			return 0, ErrRewardLocked
		}
		r.Unlocked = true
		c.UpdatedAt = now
		return r.XP, nil
	}
	return 0, ErrRewardNotFound
}

// NextTip returns the unshown tip previewing the day about to be attempted
// (completed count + 1), if any.
func (c *Challenge) NextTip() *Tip {
	day := len(c.CompletedDays) + 1
	for i := range c.Tips {
		t := &c.Tips[i]
		if t.Day == day && !t.Shown {
			return t
		}
	}
	return nil
}

// MarkTipShown marks a tip as shown, one-way. Re-marking is a no-op.
func (c *Challenge) MarkTipShown(tipID uuid.UUID, now time.Time) error {
	for i := range c.Tips {
		t := &c.Tips[i]
		if t.ID != tipID {
			continue
		}
		if !t.Shown {
			t.Shown = true
			c.UpdatedAt = now
		}
		return nil
	}
	return ErrTipNotFound
}

// Extend lengthens an active challenge by extraDays and regenerates the
// reward/tip catalog for the new total duration. Entries whose day-offset
// already existed keep their unlocked/shown state; only new offsets get
// fresh entries.
func (c *Challenge) Extend(extraDays int, now time.Time) error {
	if c.Status != StatusActive {
		return ErrNotActive
	}
	if extraDays <= 0 {
		return ErrInvalidExtension
	}
	newDuration := c.Duration + extraDays
	if newDuration > MaxDuration {
		return ErrExtensionTooLong
	}
	endDate, err := dates.AddDays(c.EndDate, extraDays)
	if err != nil {
		return err
	}

	c.Duration = newDuration
	c.EndDate = endDate
	c.Rewards = mergeRewards(c.Rewards, rewardsFor(newDuration))
	c.Tips = mergeTips(c.Tips, tipsFor(newDuration))
	c.UpdatedAt = now
	return nil
}

func mergeRewards(old, fresh []Reward) []Reward {
	byDay := make(map[int]Reward, len(old))
	for _, r := range old {
		byDay[r.Day] = r
	}
	for i := range fresh {
		if prev, ok := byDay[fresh[i].Day]; ok {
			fresh[i] = prev
		}
	}
	return fresh
}

func mergeTips(old, fresh []Tip) []Tip {
	byDay := make(map[int]Tip, len(old))
	for _, t := range old {
		byDay[t.Day] = t
	}
	for i := range fresh {
		if prev, ok := byDay[fresh[i].Day]; ok {
			fresh[i] = prev
		}
	}
	return fresh
}
