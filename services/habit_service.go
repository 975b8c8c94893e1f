package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/habit"
	"lifeTrackAPI/internal/stats"
)

var (
	ErrHabitNotFound          = errors.New("habit not found")
	ErrInvalidFrequency       = errors.New("frequency must be daily, weekly or monthly")
	ErrPeriodAlreadyCompleted = errors.New("another date in this period is already completed")
)

// HabitService owns the habit aggregates: creation, listing and the
// completion toggle that drives streaks, XP, badges and active challenges.
type HabitService struct {
	store        docstore.Store
	statsService *StatsService
	challenges   *ChallengeService
	guard        *entityGuard
	now          func() time.Time
}

func NewHabitService(store docstore.Store, statsService *StatsService) *HabitService {
	return &HabitService{
		store:        store,
		statsService: statsService,
		guard:        newEntityGuard(),
		now:          time.Now,
	}
}

// SetChallengeService injects the challenge fan-in after construction, the
// same way the push provider is injected into the dispatcher.
func (s *HabitService) SetChallengeService(challenges *ChallengeService) {
	s.challenges = challenges
}

func (s *HabitService) CreateHabit(ctx context.Context, userID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	if !req.Frequency.Valid() {
		return nil, ErrInvalidFrequency
	}
	xp := req.XPPerCompletion
	if xp <= 0 {
		xp = 10
	}

	now := s.now()
	h := &habit.Habit{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            req.Name,
		Icon:            req.Icon,
		Frequency:       req.Frequency,
		CompletedDates:  []string{},
		XPPerCompletion: xp,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Put(ctx, docstore.CollectionHabits, h.ID.String(), h); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]*habit.Habit, error) {
	var habits []*habit.Habit
	if err := s.store.Query(ctx, docstore.CollectionHabits, "user_id", userID, &habits); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if habits == nil {
		habits = []*habit.Habit{}
	}
	return habits, nil
}

func (s *HabitService) GetHabit(ctx context.Context, userID string, habitID uuid.UUID) (*habit.Habit, error) {
	h := &habit.Habit{}
	err := s.store.Get(ctx, docstore.CollectionHabits, habitID.String(), h)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if h.UserID != userID {
		return nil, ErrHabitNotFound
	}
	return h, nil
}

func (s *HabitService) DeleteHabit(ctx context.Context, userID string, habitID uuid.UUID) error {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, docstore.CollectionHabits, habitID.String()); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

// ToggleCompletion marks or unmarks the habit for the given date. The whole
// flow is serialized per habit id: a concurrent toggle for the same habit is
// rejected with ErrOperationInFlight rather than queued.
func (s *HabitService) ToggleCompletion(ctx context.Context, userID string, habitID uuid.UUID, date string) (*habit.ToggleResult, error) {
	if _, err := dates.ParseDay(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	key := habitID.String()
	if !s.guard.acquire(key) {
		return nil, ErrOperationInFlight
	}
	defer s.guard.release(key)

	h, err := s.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	completed := !h.DateCompleted(date)
	if completed {
		if !habit.CanCompleteOn(h, date) {
			return nil, ErrPeriodAlreadyCompleted
		}
		h.CompletedDates = append(h.CompletedDates, date)
	} else {
		kept := h.CompletedDates[:0]
		for _, d := range h.CompletedDates {
			if d != date {
				kept = append(kept, d)
			}
		}
		h.CompletedDates = kept
	}

	now := s.now()
	h.Streak = habit.StreakOn(h, now)
	h.UpdatedAt = now
	if err := s.store.Put(ctx, docstore.CollectionHabits, key, h); err != nil {
		return nil, fmt.Errorf("failed to save habit: %w", err)
	}

	userStreak, err := s.currentUserStreak(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	xpDelta := h.XPPerCompletion
	if !completed {
		xpDelta = -h.XPPerCompletion
	}
	_, granted, err := s.statsService.Apply(ctx, userID, func(st *stats.UserStats) {
		if completed {
			st.TotalHabitsCompleted++
		} else if st.TotalHabitsCompleted > 0 {
			st.TotalHabitsCompleted--
		}
		st.CurrentStreak = userStreak
		st.XP += xpDelta
	})
	if err != nil {
		return nil, err
	}

	result := &habit.ToggleResult{
		Habit:     h,
		Completed: completed,
		XPDelta:   xpDelta,
	}
	for _, b := range granted {
		result.NewBadges = append(result.NewBadges, b.ID)
	}

	// Fan the completion into an active challenge covering this habit and
	// date, if any. Challenge day marks are additive only; un-completing a
	// habit never retracts a challenge day.
	if completed && s.challenges != nil {
		c, err := s.challenges.applyHabitCompletion(ctx, userID, habitID, date)
		if err != nil {
			log.Printf("ToggleCompletion: challenge fan-in failed for habit %s: %v", habitID, err)
		} else if c != nil {
			result.ChallengeDays = len(c.CompletedDays)
		}
	}

	return result, nil
}

// currentUserStreak is the best current streak across the user's habits,
// which is what badge thresholds are judged against.
func (s *HabitService) currentUserStreak(ctx context.Context, userID string, ref time.Time) (int, error) {
	habits, err := s.ListHabits(ctx, userID)
	if err != nil {
		return 0, err
	}
	best := 0
	for _, h := range habits {
		if st := habit.StreakOn(h, ref); st > best {
			best = st
		}
	}
	return best, nil
}
