package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/finance"
)

var ErrEntryNotFound = errors.New("finance entry not found")

// FinanceService stores dated income/expense records. The pattern detector
// reads them; nothing here derives state.
type FinanceService struct {
	store docstore.Store
	now   func() time.Time
}

func NewFinanceService(store docstore.Store) *FinanceService {
	return &FinanceService{store: store, now: time.Now}
}

func (s *FinanceService) CreateEntry(ctx context.Context, userID string, req *finance.CreateEntryRequest) (*finance.Entry, error) {
	if req.Type != finance.TypeIncome && req.Type != finance.TypeExpense {
		return nil, fmt.Errorf("entry type must be income or expense")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	date := req.Date
	if date == "" {
		date = dates.FormatDay(s.now())
	}
	if _, err := dates.ParseDay(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	e := &finance.Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		CreatedAt:   s.now(),
	}
	if err := s.store.Put(ctx, docstore.CollectionFinance, e.ID.String(), e); err != nil {
		return nil, fmt.Errorf("failed to create finance entry: %w", err)
	}
	return e, nil
}

func (s *FinanceService) ListEntries(ctx context.Context, userID string) ([]finance.Entry, error) {
	var entries []finance.Entry
	if err := s.store.Query(ctx, docstore.CollectionFinance, "user_id", userID, &entries); err != nil {
		return nil, fmt.Errorf("failed to list finance entries: %w", err)
	}
	if entries == nil {
		entries = []finance.Entry{}
	}
	return entries, nil
}

func (s *FinanceService) DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error {
	e := &finance.Entry{}
	err := s.store.Get(ctx, docstore.CollectionFinance, id.String(), e)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to get finance entry: %w", err)
	}
	if e.UserID != userID {
		return ErrEntryNotFound
	}
	if err := s.store.Delete(ctx, docstore.CollectionFinance, id.String()); err != nil {
		return fmt.Errorf("failed to delete finance entry: %w", err)
	}
	return nil
}
