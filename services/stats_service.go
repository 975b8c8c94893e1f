package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifeTrackAPI/internal/badge"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/leveling"
	"lifeTrackAPI/internal/stats"
)

// StatsService owns the per-user gamification read-model: XP, level,
// counters and earned badges. Level fields are recomputed from XP on every
// read; badges are granted exactly once by diffing the evaluator's result
// against the earned set.
type StatsService struct {
	store docstore.Store
}

func NewStatsService(store docstore.Store) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) GetUserStats(ctx context.Context, userID string) (*stats.UserStats, error) {
	st, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}
	refreshLevel(st)
	return st, nil
}

// AwardXP adds delta to the user's XP (clamped at zero) and persists.
func (s *StatsService) AwardXP(ctx context.Context, userID string, delta int) (*stats.UserStats, error) {
	st, _, err := s.Apply(ctx, userID, func(st *stats.UserStats) {
		st.XP += delta
	})
	return st, err
}

// Apply loads the user's stats, runs mutate, re-evaluates badges against the
// updated counters, grants any newly crossed badges (with their one-time XP
// reward) and persists the whole document. Returns the newly granted badges.
func (s *StatsService) Apply(ctx context.Context, userID string, mutate func(*stats.UserStats)) (*stats.UserStats, []badge.Badge, error) {
	st, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	mutate(st)
	if st.XP < 0 {
		st.XP = 0
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}

	// The evaluator returns every badge currently met; only the delta
	// against the earned set is granted.
	var granted []badge.Badge
	for _, b := range badge.Evaluate(st.Counters()) {
		if st.HasBadge(b.ID) {
			continue
		}
		st.Badges = append(st.Badges, badge.Earned{
			ID:          b.ID,
			Name:        b.Name,
			Icon:        b.Icon,
			Description: b.Description,
			EarnedDate:  time.Now(),
		})
		st.XP += b.XPReward
		granted = append(granted, b)
	}

	refreshLevel(st)
	if err := s.store.Put(ctx, docstore.CollectionUserStats, userID, st); err != nil {
		return nil, nil, fmt.Errorf("failed to save user stats: %w", err)
	}
	return st, granted, nil
}

func (s *StatsService) loadOrInit(ctx context.Context, userID string) (*stats.UserStats, error) {
	st := &stats.UserStats{}
	err := s.store.Get(ctx, docstore.CollectionUserStats, userID, st)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return &stats.UserStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}
	return st, nil
}

func refreshLevel(st *stats.UserStats) {
	st.Level = leveling.LevelOf(st.XP)
	st.XPToNextLevel = leveling.XPToNext(st.XP)
}
