package finance

import (
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	TypeIncome  EntryType = "income"
	TypeExpense EntryType = "expense"
)

// Entry is a single dated income or expense record.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Type        EntryType `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateEntryRequest struct {
	Date        string    `json:"date"`
	Type        EntryType `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
}

// DayTotals aggregates entries into per-day income and expense sums.
func DayTotals(entries []Entry) map[string]struct{ Income, Expense float64 } {
	totals := make(map[string]struct{ Income, Expense float64 })
	for _, e := range entries {
		t := totals[e.Date]
		switch e.Type {
		case TypeIncome:
			t.Income += e.Amount
		case TypeExpense:
			t.Expense += e.Amount
		}
		totals[e.Date] = t
	}
	return totals
}
