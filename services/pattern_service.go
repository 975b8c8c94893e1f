package services

import (
	"context"
	"fmt"
	"time"

	"lifeTrackAPI/internal/checkin"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/notification"
	"lifeTrackAPI/internal/pattern"
)

// PatternService runs the read-only behavioral scan over the user's recent
// check-ins, habits and finance entries. Nothing is persisted; every call
// recomputes from the stored records. High-severity negative findings are
// pushed to the user's devices as a side channel.
type PatternService struct {
	store          docstore.Store
	habitService   *HabitService
	financeService *FinanceService
	dispatcher     *AlertDispatcher
}

func NewPatternService(store docstore.Store, habitService *HabitService, financeService *FinanceService, dispatcher *AlertDispatcher) *PatternService {
	return &PatternService{
		store:          store,
		habitService:   habitService,
		financeService: financeService,
		dispatcher:     dispatcher,
	}
}

// Detect scans the trailing window ending at ref.
func (s *PatternService) Detect(ctx context.Context, userID string, ref time.Time) ([]pattern.Detected, error) {
	var checkIns []checkin.CheckIn
	if err := s.store.Query(ctx, docstore.CollectionCheckIns, "user_id", userID, &checkIns); err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}

	habits, err := s.habitService.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.financeService.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	detected := pattern.Detect(checkIns, habits, entries, ref)

	if s.dispatcher != nil {
		for _, p := range detected {
			if p.Type == pattern.TypeNegative && p.Severity == pattern.SeverityHigh {
				s.dispatcher.Dispatch(notification.Alert{
					UserID: userID,
					Title:  p.Title,
					Body:   p.Message,
					Data: map[string]any{
						"category": p.Category,
						"severity": string(p.Severity),
					},
				})
			}
		}
	}

	if detected == nil {
		detected = []pattern.Detected{}
	}
	return detected, nil
}
