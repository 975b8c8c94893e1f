package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/challenge"
	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
)

var (
	ErrChallengeNotFound      = errors.New("challenge not found")
	ErrChallengeAlreadyActive = errors.New("an active challenge already exists for this habit")
)

// ChallengeService owns the discipline-challenge aggregates. Expiry is
// evaluated lazily on every read; there is no background scheduler.
type ChallengeService struct {
	store        docstore.Store
	statsService *StatsService
	guard        *entityGuard
	now          func() time.Time
}

func NewChallengeService(store docstore.Store, statsService *StatsService) *ChallengeService {
	return &ChallengeService{
		store:        store,
		statsService: statsService,
		guard:        newEntityGuard(),
		now:          time.Now,
	}
}

// StartChallenge opts the user into a challenge for a habit, starting today.
// At most one active challenge may exist per habit.
func (s *ChallengeService) StartChallenge(ctx context.Context, userID string, habitID uuid.UUID, duration int) (*challenge.Challenge, error) {
	existing, err := s.activeForHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrChallengeAlreadyActive
	}

	now := s.now()
	c, err := challenge.New(userID, habitID, duration, dates.FormatDay(now), now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, c.ID.String(), c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return c, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, userID string, id uuid.UUID) (*challenge.Challenge, error) {
	c := &challenge.Challenge{}
	err := s.store.Get(ctx, docstore.CollectionChallenges, id.String(), c)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	if c.UserID != userID {
		return nil, ErrChallengeNotFound
	}
	return s.withExpiryEvaluated(ctx, c)
}

func (s *ChallengeService) ListChallenges(ctx context.Context, userID string) ([]*challenge.Challenge, error) {
	var cs []*challenge.Challenge
	if err := s.store.Query(ctx, docstore.CollectionChallenges, "user_id", userID, &cs); err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	for i, c := range cs {
		evaluated, err := s.withExpiryEvaluated(ctx, c)
		if err != nil {
			return nil, err
		}
		cs[i] = evaluated
	}
	if cs == nil {
		cs = []*challenge.Challenge{}
	}
	return cs, nil
}

// MarkDayComplete marks one day of the challenge done. Serialized per
// challenge id; concurrent marks for the same challenge are rejected.
func (s *ChallengeService) MarkDayComplete(ctx context.Context, userID string, id uuid.UUID, date string) (*challenge.Challenge, error) {
	key := id.String()
	if !s.guard.acquire(key) {
		return nil, ErrOperationInFlight
	}
	defer s.guard.release(key)

	c, err := s.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := c.MarkDayComplete(date, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, key, c); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}
	return c, nil
}

// RecordDifficulty journals how hard a day felt, independent of completion.
func (s *ChallengeService) RecordDifficulty(ctx context.Context, userID string, id uuid.UUID, date string, score int) (*challenge.Challenge, error) {
	c, err := s.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := c.RecordDifficulty(date, score, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, id.String(), c); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}
	return c, nil
}

// UnlockReward unlocks a milestone reward and grants its XP exactly once.
// Unlocking an already-unlocked reward is a no-op with no XP grant.
func (s *ChallengeService) UnlockReward(ctx context.Context, userID string, id, rewardID uuid.UUID) (*challenge.Challenge, error) {
	c, err := s.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	xp, err := c.UnlockReward(rewardID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, id.String(), c); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}
	if xp > 0 {
		if _, err := s.statsService.AwardXP(ctx, userID, xp); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *ChallengeService) MarkTipShown(ctx context.Context, userID string, id, tipID uuid.UUID) (*challenge.Challenge, error) {
	c, err := s.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := c.MarkTipShown(tipID, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, id.String(), c); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}
	return c, nil
}

// ExtendChallenge lengthens an active challenge, preserving the state of
// rewards and tips whose day-offset already existed.
func (s *ChallengeService) ExtendChallenge(ctx context.Context, userID string, id uuid.UUID, extraDays int) (*challenge.Challenge, error) {
	c, err := s.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := c.Extend(extraDays, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, id.String(), c); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}
	return c, nil
}

// applyHabitCompletion forwards a habit completion into the habit's active
// challenge when the date is covered by it. Called from the habit toggle.
func (s *ChallengeService) applyHabitCompletion(ctx context.Context, userID string, habitID uuid.UUID, date string) (*challenge.Challenge, error) {
	c, err := s.activeForHabit(ctx, habitID)
	if err != nil || c == nil {
		return nil, err
	}
	if c.UserID != userID || !c.InRange(date) {
		return nil, nil
	}
	return s.MarkDayComplete(ctx, userID, c.ID, date)
}

// activeForHabit finds the habit's active challenge, if any, after lazy
// expiry evaluation.
func (s *ChallengeService) activeForHabit(ctx context.Context, habitID uuid.UUID) (*challenge.Challenge, error) {
	var cs []*challenge.Challenge
	if err := s.store.Query(ctx, docstore.CollectionChallenges, "habit_id", habitID.String(), &cs); err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	for _, c := range cs {
		evaluated, err := s.withExpiryEvaluated(ctx, c)
		if err != nil {
			return nil, err
		}
		if evaluated.Status == challenge.StatusActive {
			return evaluated, nil
		}
	}
	return nil, nil
}

// withExpiryEvaluated applies the lazy expiry check and persists a status
// transition when one happened.
func (s *ChallengeService) withExpiryEvaluated(ctx context.Context, c *challenge.Challenge) (*challenge.Challenge, error) {
	if !c.EvaluateExpiry(s.now()) {
		return c, nil
	}
	if err := s.store.Put(ctx, docstore.CollectionChallenges, c.ID.String(), c); err != nil {
		return nil, fmt.Errorf("failed to save expired challenge: %w", err)
	}
	log.Printf("Challenge %s transitioned to %s on read", c.ID, c.Status)
	return c, nil
}
