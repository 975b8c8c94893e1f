package challenge

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
)

func at(s string) time.Time {
	t, err := dates.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestChallenge(t *testing.T, duration int, startDate string) *Challenge {
	t.Helper()
	c, err := New("user_1", uuid.New(), duration, startDate, at(startDate))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewValidatesDuration(t *testing.T) {
	for _, d := range []int{7, 14, 21} {
		c := newTestChallenge(t, d, "2024-03-01")
		if c.Status != StatusActive {
			t.Errorf("Duration %d: expected active, got %s", d, c.Status)
		}
		want, _ := dates.AddDays("2024-03-01", d-1)
		if c.EndDate != want {
			t.Errorf("Duration %d: expected end date %s, got %s", d, want, c.EndDate)
		}
	}

	for _, d := range []int{0, 1, 6, 8, 30, -7} {
		if _, err := New("user_1", uuid.New(), d, "2024-03-01", at("2024-03-01")); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Duration %d: expected ErrInvalidDuration, got %v", d, err)
		}
	}
}

func TestMarkDayCompleteIdempotent(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")

	if err := c.MarkDayComplete("2024-03-02", at("2024-03-02")); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := c.MarkDayComplete("2024-03-02", at("2024-03-02")); err != nil {
		t.Fatalf("Re-mark should be a no-op: %v", err)
	}
	if len(c.CompletedDays) != 1 {
		t.Errorf("Expected 1 completed day, got %d", len(c.CompletedDays))
	}
}

func TestMarkDayCompleteRejectsOutOfRange(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")

	if err := c.MarkDayComplete("2024-02-29", at("2024-03-01")); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("Expected ErrDayOutOfRange before start, got %v", err)
	}
	if err := c.MarkDayComplete("2024-03-08", at("2024-03-08")); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("Expected ErrDayOutOfRange after end, got %v", err)
	}
}

func TestOutOfOrderCompletionConverges(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")

	// Mark all seven days in scrambled order.
	order := []string{"2024-03-04", "2024-03-01", "2024-03-07", "2024-03-02", "2024-03-06", "2024-03-03"}
	for _, d := range order {
		if err := c.MarkDayComplete(d, at(d)); err != nil {
			t.Fatalf("Mark %s failed: %v", d, err)
		}
	}
	if c.Status != StatusActive {
		t.Fatalf("Expected still active with one day missing, got %s", c.Status)
	}

	if err := c.MarkDayComplete("2024-03-05", at("2024-03-07")); err != nil {
		t.Fatalf("Final mark failed: %v", err)
	}
	if c.Status != StatusCompleted {
		t.Errorf("Expected completed after full coverage, got %s", c.Status)
	}
}

func TestMarkAfterTerminalStateFails(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")
	c.Status = StatusFailed
	if err := c.MarkDayComplete("2024-03-02", at("2024-03-02")); !errors.Is(err, ErrNotActive) {
		t.Errorf("Expected ErrNotActive, got %v", err)
	}
}

func TestEvaluateExpiry(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")
	for _, d := range dates.DaysBetween("2024-03-01", "2024-03-06") {
		if err := c.MarkDayComplete(d, at(d)); err != nil {
			t.Fatalf("Mark %s failed: %v", d, err)
		}
	}

	// Still inside the range: no transition.
	if c.EvaluateExpiry(at("2024-03-07")) {
		t.Error("Expected no transition on the end date itself")
	}
	if c.Status != StatusActive {
		t.Fatalf("Expected active, got %s", c.Status)
	}

	// One day past the end with 6/7 coverage: failed.
	if !c.EvaluateExpiry(at("2024-03-08")) {
		t.Error("Expected a transition past the end date")
	}
	if c.Status != StatusFailed {
		t.Errorf("Expected failed, got %s", c.Status)
	}

	// Terminal states never re-evaluate.
	if c.EvaluateExpiry(at("2024-03-09")) {
		t.Error("Expected no transition from a terminal state")
	}
}

func TestRecordDifficulty(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")

	if err := c.RecordDifficulty("2024-03-02", 7, at("2024-03-02")); err != nil {
		t.Fatalf("RecordDifficulty failed: %v", err)
	}
	// Upsert overwrites.
	if err := c.RecordDifficulty("2024-03-02", 3, at("2024-03-02")); err != nil {
		t.Fatalf("RecordDifficulty overwrite failed: %v", err)
	}
	if c.DifficultyMap["2024-03-02"] != 3 {
		t.Errorf("Expected score 3, got %d", c.DifficultyMap["2024-03-02"])
	}

	for _, score := range []int{0, 11, -1} {
		if err := c.RecordDifficulty("2024-03-03", score, at("2024-03-03")); !errors.Is(err, ErrInvalidDifficulty) {
			t.Errorf("Score %d: expected ErrInvalidDifficulty, got %v", score, err)
		}
	}
	if err := c.RecordDifficulty("2024-04-01", 5, at("2024-03-03")); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("Expected ErrDayOutOfRange, got %v", err)
	}
}

func TestUnlockReward(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")

	var day3 *Reward
	for i := range c.Rewards {
		if c.Rewards[i].Day == 3 {
			day3 = &c.Rewards[i]
		}
	}
	if day3 == nil {
		t.Fatal("Expected a day-3 reward in the catalog")
	}

	// Locked until three days are completed.
	if _, err := c.UnlockReward(day3.ID, at("2024-03-01")); !errors.Is(err, ErrRewardLocked) {
		t.Fatalf("Expected ErrRewardLocked, got %v", err)
	}

	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if err := c.MarkDayComplete(d, at(d)); err != nil {
			t.Fatalf("Mark %s failed: %v", d, err)
		}
	}

	xp, err := c.UnlockReward(day3.ID, at("2024-03-03"))
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if xp != 50 {
		t.Errorf("Expected 50 XP for the day-3 reward, got %d", xp)
	}

	// Second unlock grants nothing.
	xp, err = c.UnlockReward(day3.ID, at("2024-03-03"))
	if err != nil {
		t.Fatalf("Repeat unlock failed: %v", err)
	}
	if xp != 0 {
		t.Errorf("Expected 0 XP on repeat unlock, got %d", xp)
	}

	if _, err := c.UnlockReward(uuid.New(), at("2024-03-03")); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("Expected ErrRewardNotFound, got %v", err)
	}
}

func TestNextTipAndMarkShown(t *testing.T) {
	c := newTestChallenge(t, 7, "2024-03-01")

	tip := c.NextTip()
	if tip == nil || tip.Day != 1 {
		t.Fatalf("Expected the day-1 tip, got %+v", tip)
	}

	if err := c.MarkTipShown(tip.ID, at("2024-03-01")); err != nil {
		t.Fatalf("MarkTipShown failed: %v", err)
	}
	if c.NextTip() != nil {
		t.Error("Expected no tip once day-1 tip is shown and no days completed")
	}

	// After one completion the day-2 tip comes up.
	if err := c.MarkDayComplete("2024-03-01", at("2024-03-01")); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	tip = c.NextTip()
	if tip == nil || tip.Day != 2 {
		t.Fatalf("Expected the day-2 tip, got %+v", tip)
	}

	if err := c.MarkTipShown(uuid.New(), at("2024-03-01")); !errors.Is(err, ErrTipNotFound) {
		t.Errorf("Expected ErrTipNotFound, got %v", err)
	}
}

func TestExtend(t *testing.T) {
	c := newTestChallenge(t, 21, "2024-03-01")

	// Unlock the day-1 reward so the merge has state to preserve.
	if err := c.MarkDayComplete("2024-03-01", at("2024-03-01")); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	var day1ID uuid.UUID
	for i := range c.Rewards {
		if c.Rewards[i].Day == 1 {
			day1ID = c.Rewards[i].ID
		}
	}
	if _, err := c.UnlockReward(day1ID, at("2024-03-01")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	if err := c.Extend(14, at("2024-03-02")); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	if c.Duration != 35 {
		t.Errorf("Expected duration 35, got %d", c.Duration)
	}
	want, _ := dates.AddDays("2024-03-01", 34)
	if c.EndDate != want {
		t.Errorf("Expected end date %s, got %s", want, c.EndDate)
	}

	// Unlocked state survived the catalog regeneration.
	for _, r := range c.Rewards {
		if r.Day == 1 && !r.Unlocked {
			t.Error("Expected day-1 reward to stay unlocked after extension")
		}
	}

	// Bonus milestones appear at 28 and 35 with day-scaled XP.
	bonus := map[int]int{}
	for _, r := range c.Rewards {
		if r.Day > 21 {
			bonus[r.Day] = r.XP
		}
	}
	if bonus[28] != 28*15 || bonus[35] != 35*15 {
		t.Errorf("Unexpected bonus rewards: %v", bonus)
	}
}

func TestExtendValidation(t *testing.T) {
	c := newTestChallenge(t, 21, "2024-03-01")

	if err := c.Extend(0, at("2024-03-02")); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("Expected ErrInvalidExtension, got %v", err)
	}
	if err := c.Extend(345, at("2024-03-02")); !errors.Is(err, ErrExtensionTooLong) {
		t.Errorf("Expected ErrExtensionTooLong, got %v", err)
	}
	// Exactly the cap is allowed.
	if err := c.Extend(344, at("2024-03-02")); err != nil {
		t.Errorf("Expected extension to exactly 365 to pass, got %v", err)
	}

	c.Status = StatusCompleted
	if err := c.Extend(7, at("2024-03-02")); !errors.Is(err, ErrNotActive) {
		t.Errorf("Expected ErrNotActive, got %v", err)
	}
}

func TestCatalogSeeding(t *testing.T) {
	c7 := newTestChallenge(t, 7, "2024-03-01")
	if len(c7.Rewards) != 3 {
		t.Errorf("Expected rewards at days 1, 3 and 7, got %d", len(c7.Rewards))
	}
	if len(c7.Tips) != 5 {
		t.Errorf("Expected tips at days 1, 2, 3, 5 and 7, got %d", len(c7.Tips))
	}

	c21 := newTestChallenge(t, 21, "2024-03-01")
	if len(c21.Rewards) != 7 {
		t.Errorf("Expected the full 7-entry reward table, got %d", len(c21.Rewards))
	}
	if len(c21.Tips) != 9 {
		t.Errorf("Expected the full 9-entry tip table, got %d", len(c21.Tips))
	}
}
