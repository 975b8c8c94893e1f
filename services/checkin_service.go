package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/checkin"
	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/stats"
)

var ErrCheckInNotFound = errors.New("check-in not found")

// checkInXP is granted the first time a day's check-in is recorded.
const checkInXP = 10

// CheckInService stores the daily self-reports pattern detection feeds on.
// One check-in per (user, day); re-submitting updates in place.
type CheckInService struct {
	store        docstore.Store
	statsService *StatsService
	now          func() time.Time
}

func NewCheckInService(store docstore.Store, statsService *StatsService) *CheckInService {
	return &CheckInService{store: store, statsService: statsService, now: time.Now}
}

func (s *CheckInService) Upsert(ctx context.Context, userID string, req *checkin.UpsertCheckInRequest) (*checkin.CheckIn, error) {
	date := req.Date
	if date == "" {
		date = dates.FormatDay(s.now())
	}
	if _, err := dates.ParseDay(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if req.Mood < 0 || req.Mood > 5 || req.Energy < 0 || req.Energy > 5 {
		return nil, fmt.Errorf("mood and energy must be between 0 and 5")
	}
	if req.SleepHours != nil && (*req.SleepHours < 0 || *req.SleepHours > 24) {
		return nil, fmt.Errorf("sleep hours must be between 0 and 24")
	}

	key := checkInKey(userID, date)
	now := s.now()

	c := &checkin.CheckIn{}
	err := s.store.Get(ctx, docstore.CollectionCheckIns, key, c)
	isNew := errors.Is(err, docstore.ErrNotFound)
	if err != nil && !isNew {
		return nil, fmt.Errorf("failed to load check-in: %w", err)
	}
	if isNew {
		c.ID = uuid.New()
		c.UserID = userID
		c.Date = date
		c.CreatedAt = now
	}
	c.Mood = req.Mood
	c.Energy = req.Energy
	c.SleepHours = req.SleepHours
	c.Notes = req.Notes
	c.UpdatedAt = now

	if err := s.store.Put(ctx, docstore.CollectionCheckIns, key, c); err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	// Only the first check-in of a day moves the counter and grants XP;
	// edits are free.
	if isNew {
		if _, _, err := s.statsService.Apply(ctx, userID, func(st *stats.UserStats) {
			st.CheckInsCompleted++
			st.XP += checkInXP
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *CheckInService) Get(ctx context.Context, userID, date string) (*checkin.CheckIn, error) {
	c := &checkin.CheckIn{}
	err := s.store.Get(ctx, docstore.CollectionCheckIns, checkInKey(userID, date), c)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	return c, nil
}

func (s *CheckInService) List(ctx context.Context, userID string) ([]*checkin.CheckIn, error) {
	var cs []*checkin.CheckIn
	if err := s.store.Query(ctx, docstore.CollectionCheckIns, "user_id", userID, &cs); err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	if cs == nil {
		cs = []*checkin.CheckIn{}
	}
	return cs, nil
}

func checkInKey(userID, date string) string {
	return userID + ":" + date
}
