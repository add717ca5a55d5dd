package services

import (
	"context"
	"path/filepath"
	"testing"

	"expensed/internal/core"
	"expensed/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	created []core.Expense
	deleted []int64
}

func (p *recordingPublisher) PublishExpenseCreated(_ context.Context, e core.Expense) error {
	p.created = append(p.created, e)
	return nil
}

func (p *recordingPublisher) PublishExpenseDeleted(_ context.Context, _, expenseID int64) error {
	p.deleted = append(p.deleted, expenseID)
	return nil
}

func newTestLedger(t *testing.T) (*LedgerService, *storage.Repository, *recordingPublisher, int64) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	owner, err := repo.CreateUser(context.Background(), "alice", "hash")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return NewLedgerService(repo, pub), repo, pub, owner
}

func TestAddExpenseDefaultsCategory(t *testing.T) {
	svc, _, pub, owner := newTestLedger(t)
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, owner, "01-06-2024", "Coffee", "4.50", "")
	require.NoError(t, err)
	assert.Positive(t, id)

	views, err := svc.GetExpenses(ctx, owner)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "General", views[0].Category)
	assert.Equal(t, "01-06-2024", views[0].Date)
	assert.Equal(t, 4.5, views[0].Amount)

	total, err := svc.GetTotal(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 4.5, total)

	require.Len(t, pub.created, 1)
	assert.Equal(t, id, pub.created[0].ID)
}

func TestAddExpenseValidation(t *testing.T) {
	svc, _, _, owner := newTestLedger(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		date    string
		desc    string
		amount  string
		wantErr error
	}{
		{"bad date shape", "2024-06-01", "Coffee", "4.50", core.ErrInvalidDate},
		{"impossible date", "31-02-2024", "Coffee", "4.50", core.ErrInvalidDate},
		{"bad amount", "01-06-2024", "Coffee", "abc", core.ErrInvalidAmount},
		{"blank description", "01-06-2024", "   ", "4.50", core.ErrEmptyDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddExpense(ctx, owner, tc.date, tc.desc, tc.amount, "")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Negative amounts are recorded, not rejected.
	_, err := svc.AddExpense(ctx, owner, "01-06-2024", "Refund", "-3", "")
	assert.NoError(t, err)
}

func TestAddExpenseUnknownOwner(t *testing.T) {
	svc, _, _, _ := newTestLedger(t)

	_, err := svc.AddExpense(context.Background(), 999, "01-06-2024", "Coffee", "4.50", "")
	assert.ErrorIs(t, err, core.ErrOwnerNotFound)
}

func TestDeleteExpense(t *testing.T) {
	svc, _, pub, owner := newTestLedger(t)
	ctx := context.Background()

	id, err := svc.AddExpense(ctx, owner, "01-06-2024", "Coffee", "4.50", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteExpense(ctx, owner, id))
	assert.Equal(t, []int64{id}, pub.deleted)

	// Gone now: the same delete reports not found and changes nothing.
	assert.ErrorIs(t, svc.DeleteExpense(ctx, owner, id), core.ErrNotFound)

	views, err := svc.GetExpenses(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetTotalMatchesListedExpenses(t *testing.T) {
	svc, _, _, owner := newTestLedger(t)
	ctx := context.Background()

	amounts := []string{"10.00", "2.50", "0.05", "-1.55"}
	for _, a := range amounts {
		_, err := svc.AddExpense(ctx, owner, "15-03-2024", "item", a, "Misc")
		require.NoError(t, err)
	}

	views, err := svc.GetExpenses(ctx, owner)
	require.NoError(t, err)

	var sum float64
	for _, v := range views {
		sum += v.Amount
	}

	total, err := svc.GetTotal(ctx, owner)
	require.NoError(t, err)
	assert.InDelta(t, sum, total, 1e-9)
	assert.Equal(t, 11.0, total)
}

func TestGetTotalBetween(t *testing.T) {
	svc, repo, _, _ := newTestLedger(t)
	ctx := context.Background()

	owner, err := repo.CreateUser(ctx, "owner2", "hash")
	require.NoError(t, err)

	_, err = svc.AddExpense(ctx, owner, "10-01-2024", "Groceries", "100", "")
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, owner, "20-01-2024", "Dinner", "50", "")
	require.NoError(t, err)

	total, err := svc.GetTotalBetween(ctx, owner, "01-01-2024", "15-01-2024")
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)

	total, err = svc.GetTotalBetween(ctx, owner, "01-01-2024", "31-01-2024")
	require.NoError(t, err)
	assert.Equal(t, 150.0, total)

	_, err = svc.GetTotalBetween(ctx, owner, "oops", "31-01-2024")
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	// Inverted range is permitted and empty.
	total, err = svc.GetTotalBetween(ctx, owner, "31-01-2024", "01-01-2024")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestNilPublisherDisablesEvents(t *testing.T) {
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	owner, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	svc := NewLedgerService(repo, nil)
	id, err := svc.AddExpense(ctx, owner, "01-06-2024", "Coffee", "4.50", "")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteExpense(ctx, owner, id))
}
