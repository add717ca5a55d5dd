// Package services orchestrates ledger operations: validation of inbound
// fields, storage writes, aggregate queries, and best-effort event
// publishing after each committed mutation.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensed/internal/core"
)

// LedgerStore is the repository surface the service drives. Every operation
// takes its owner id and context explicitly; there is no ambient connection
// state.
type LedgerStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	ListExpensesByOwner(ctx context.Context, ownerID int64) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, expenseID int64) (bool, error)
	SumByOwner(ctx context.Context, ownerID int64) (core.Money, error)
	SumByOwnerBetween(ctx context.Context, ownerID int64, start, end core.Date) (core.Money, error)
}

// EventPublisher emits ledger events after committed mutations. A nil
// publisher disables the stream.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, ownerID, expenseID int64) error
}

// ExpenseView is the wire-safe rendering of an expense: the date as
// DD-MM-YYYY text and the amount as a plain number. Storage-native types
// never cross this boundary.
type ExpenseView struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

type LedgerService struct {
	store  LedgerStore
	events EventPublisher
}

func NewLedgerService(store LedgerStore, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// AddExpense validates and normalizes the raw field values, inserts the
// expense, and returns the new id. The category defaults to "General" when
// absent. Dates must match DD-MM-YYYY exactly; amounts are signed decimals.
func (s *LedgerService) AddExpense(ctx context.Context, ownerID int64, dateText, description, amountText, category string) (int64, error) {
	date, err := core.ParseDate(dateText)
	if err != nil {
		return 0, err
	}
	cents, err := core.ParseAmountCents(amountText)
	if err != nil {
		return 0, err
	}

	e := core.Expense{
		OwnerID:     ownerID,
		Date:        date,
		Description: description,
		Amount:      core.Money{Cents: cents},
		Category:    core.NormalizeCategory(category),
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("add expense: %w", err)
	}
	e.ID = id

	if s.events != nil {
		if err := s.events.PublishExpenseCreated(ctx, e); err != nil {
			// The expense is committed; the stream is best-effort.
			slog.ErrorContext(ctx, "Failed to publish created event",
				"expense_id", id, "error", err)
		}
	}

	return id, nil
}

// GetExpenses lists the owner's expenses newest-first in wire-safe form.
func (s *LedgerService) GetExpenses(ctx context.Context, ownerID int64) ([]ExpenseView, error) {
	expenses, err := s.store.ListExpensesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get expenses: %w", err)
	}

	views := make([]ExpenseView, len(expenses))
	for i, e := range expenses {
		views[i] = ExpenseView{
			ID:          e.ID,
			UserID:      e.OwnerID,
			Date:        e.Date.Wire(),
			Description: e.Description,
			Amount:      e.Amount.Amount(),
			Category:    e.Category,
		}
	}
	return views, nil
}

// DeleteExpense removes the expense when both id and owner match. A miss on
// either comes back as core.ErrNotFound.
func (s *LedgerService) DeleteExpense(ctx context.Context, ownerID, expenseID int64) error {
	deleted, err := s.store.DeleteExpense(ctx, ownerID, expenseID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !deleted {
		return core.ErrNotFound
	}

	if s.events != nil {
		if err := s.events.PublishExpenseDeleted(ctx, ownerID, expenseID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event",
				"expense_id", expenseID, "error", err)
		}
	}

	return nil
}

// GetTotal returns the sum of all the owner's expenses; 0 with no rows.
func (s *LedgerService) GetTotal(ctx context.Context, ownerID int64) (float64, error) {
	total, err := s.store.SumByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("get total: %w", err)
	}
	return total.Amount(), nil
}

// GetTotalBetween returns the sum over start <= date <= end, both parsed
// from the DD-MM-YYYY wire form. An inverted range sums to 0.
func (s *LedgerService) GetTotalBetween(ctx context.Context, ownerID int64, startText, endText string) (float64, error) {
	start, err := core.ParseDate(startText)
	if err != nil {
		return 0, err
	}
	end, err := core.ParseDate(endText)
	if err != nil {
		return 0, err
	}

	total, err := s.store.SumByOwnerBetween(ctx, ownerID, start, end)
	if err != nil {
		return 0, fmt.Errorf("get total between: %w", err)
	}
	return total.Amount(), nil
}
