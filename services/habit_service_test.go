package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/habit"
)

func fixedNow(day string) func() time.Time {
	t, err := dates.ParseDay(day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newTestHabitService(day string) (*HabitService, *StatsService) {
	store := docstore.NewMemoryStore()
	statsService := NewStatsService(store)
	habitService := NewHabitService(store, statsService)
	habitService.now = fixedNow(day)
	return habitService, statsService
}

func TestCreateHabitValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestHabitService("2024-03-01")

	if _, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Frequency: habit.FrequencyDaily}); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: "hourly"}); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Expected ErrInvalidFrequency, got %v", err)
	}

	h, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: habit.FrequencyDaily})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if h.XPPerCompletion != 10 {
		t.Errorf("Expected default XP of 10, got %d", h.XPPerCompletion)
	}
}

func TestGetHabitEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestHabitService("2024-03-01")

	h, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: habit.FrequencyDaily})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	if _, err := svc.GetHabit(ctx, "u2", h.ID); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("Expected ErrHabitNotFound for foreign habit, got %v", err)
	}
	if _, err := svc.GetHabit(ctx, "u1", uuid.New()); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("Expected ErrHabitNotFound for unknown id, got %v", err)
	}
}

func TestToggleCompletionDrivesStreakXPAndBadges(t *testing.T) {
	ctx := context.Background()
	svc, statsService := newTestHabitService("2024-03-03")

	h, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: habit.FrequencyDaily, XPPerCompletion: 10})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	for _, d := range []string{"2024-03-01", "2024-03-02"} {
		if _, err := svc.ToggleCompletion(ctx, "u1", h.ID, d); err != nil {
			t.Fatalf("Toggle %s failed: %v", d, err)
		}
	}

	res, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-03")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !res.Completed {
		t.Error("Expected a completion, got an un-completion")
	}
	if res.Habit.Streak != 3 {
		t.Errorf("Expected streak 3, got %d", res.Habit.Streak)
	}
	if res.XPDelta != 10 {
		t.Errorf("Expected XP delta 10, got %d", res.XPDelta)
	}

	// Third consecutive day crosses the streak and habit-count thresholds.
	gotBadges := map[string]bool{}
	for _, id := range res.NewBadges {
		gotBadges[id] = true
	}
	if !gotBadges["streak_3"] {
		t.Errorf("Expected streak_3 badge, got %v", res.NewBadges)
	}

	st, err := statsService.GetUserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserStats failed: %v", err)
	}
	if st.TotalHabitsCompleted != 3 {
		t.Errorf("Expected 3 completions counted, got %d", st.TotalHabitsCompleted)
	}
	if st.CurrentStreak != 3 || st.LongestStreak != 3 {
		t.Errorf("Expected streaks 3/3, got %d/%d", st.CurrentStreak, st.LongestStreak)
	}
	// 30 XP from completions plus the streak_3 and habits_1 badge rewards.
	if st.XP != 30+50+25 {
		t.Errorf("Expected 105 XP, got %d", st.XP)
	}
}

func TestToggleOffRemovesCompletionAndXP(t *testing.T) {
	ctx := context.Background()
	svc, statsService := newTestHabitService("2024-03-01")

	h, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: habit.FrequencyDaily})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	if _, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-01"); err != nil {
		t.Fatalf("Toggle on failed: %v", err)
	}
	res, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-01")
	if err != nil {
		t.Fatalf("Toggle off failed: %v", err)
	}
	if res.Completed {
		t.Error("Expected an un-completion")
	}
	if res.XPDelta != -10 {
		t.Errorf("Expected XP delta -10, got %d", res.XPDelta)
	}
	if len(res.Habit.CompletedDates) != 0 {
		t.Errorf("Expected no completed dates, got %v", res.Habit.CompletedDates)
	}

	st, err := statsService.GetUserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserStats failed: %v", err)
	}
	if st.TotalHabitsCompleted != 0 {
		t.Errorf("Expected counter back at 0, got %d", st.TotalHabitsCompleted)
	}
	// Badges are monotonic: habits_1 stays earned even after the rollback,
	// and its reward XP is kept.
	if !st.HasBadge("habits_1") {
		t.Error("Expected habits_1 to stay earned")
	}
}

func TestToggleWeeklyRejectsSecondDayInPeriod(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestHabitService("2024-03-06")

	h, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Long run", Frequency: habit.FrequencyWeekly})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	// 2024-03-04 and 03-06 are in the same Monday-started week.
	if _, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-04"); err != nil {
		t.Fatalf("First toggle failed: %v", err)
	}
	if _, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-06"); !errors.Is(err, ErrPeriodAlreadyCompleted) {
		t.Errorf("Expected ErrPeriodAlreadyCompleted, got %v", err)
	}

	// Toggling the completed date itself is the off-switch and stays legal.
	res, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-04")
	if err != nil {
		t.Fatalf("Toggle off failed: %v", err)
	}
	if res.Completed {
		t.Error("Expected an un-completion")
	}
}

func TestToggleRejectedWhileInFlight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestHabitService("2024-03-01")

	h, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: habit.FrequencyDaily})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	// Simulate an outstanding toggle on the same habit.
	if !svc.guard.acquire(h.ID.String()) {
		t.Fatal("Expected to acquire the guard")
	}
	defer svc.guard.release(h.ID.String())

	if _, err := svc.ToggleCompletion(ctx, "u1", h.ID, "2024-03-01"); !errors.Is(err, ErrOperationInFlight) {
		t.Errorf("Expected ErrOperationInFlight, got %v", err)
	}
}

func TestUserStreakIsBestAcrossHabits(t *testing.T) {
	ctx := context.Background()
	svc, statsService := newTestHabitService("2024-03-03")

	a, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Read", Frequency: habit.FrequencyDaily})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	b, err := svc.CreateHabit(ctx, "u1", &habit.CreateHabitRequest{Name: "Stretch", Frequency: habit.FrequencyDaily})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if _, err := svc.ToggleCompletion(ctx, "u1", a.ID, d); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
	}
	if _, err := svc.ToggleCompletion(ctx, "u1", b.ID, "2024-03-03"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	st, err := statsService.GetUserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserStats failed: %v", err)
	}
	if st.CurrentStreak != 3 {
		t.Errorf("Expected user streak 3 (best habit), got %d", st.CurrentStreak)
	}
}
