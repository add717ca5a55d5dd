// Package storage persists users and expenses in SQLite. Username
// uniqueness and expense ownership are enforced by schema constraints, not
// application-level checks, so concurrent writers cannot race past them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensed/internal/core"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dbPath and runs
// migrations. Foreign key enforcement is switched on for every connection in
// the pool.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the backing store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}
	return nil
}

// CreateUser inserts a new user and returns its id. A username collision
// surfaces as core.ErrDuplicateUsername; uniqueness is exact byte equality.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateUsername
		}
		return 0, classify("create user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("create user id", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return id, nil
}

// GetUserByUsername resolves a username to its user record.
// Returns core.ErrNotFound when no such user exists.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, classify("get user by username", err)
	}
	return u, nil
}

// CountUsersByUsername returns how many user rows carry the given username.
// The unique constraint keeps this at most 1; exposed for integrity checks.
func (r *Repository) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return 0, classify("count users", err)
	}
	return n, nil
}

// CreateExpense inserts an expense and returns its id. An owner_id that
// references no user trips the foreign key and surfaces as
// core.ErrOwnerNotFound; there is no separate check-then-act pre-check.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (owner_id, date, description, amount_cents, category)
		 VALUES (?, ?, ?, ?, ?)`,
		e.OwnerID, e.Date.ISO(), e.Description, e.Amount.Cents, e.Category)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, core.ErrOwnerNotFound
		}
		return 0, classify("create expense", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("create expense id", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", id,
		"user_id", e.OwnerID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.ISO())

	return id, nil
}

// ListExpensesByOwner returns all expenses for the owner sorted by date
// descending; same-date rows tie-break on id descending so the order is
// deterministic per call.
func (r *Repository) ListExpensesByOwner(ctx context.Context, ownerID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, date, description, amount_cents, category
		 FROM expenses WHERE owner_id = ?
		 ORDER BY date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, classify("list expenses", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e   core.Expense
			iso string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &iso, &e.Description, &e.Amount.Cents, &e.Category); err != nil {
			return nil, classify("scan expense", err)
		}
		if e.Date, err = core.ParseISODate(iso); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", iso, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate expenses", err)
	}

	return expenses, nil
}

// DeleteExpense removes the expense only when both id and owner match, and
// reports whether a row was removed. The single DELETE is atomic: two
// concurrent deletes of the same row cannot both observe RowsAffected == 1.
func (r *Repository) DeleteExpense(ctx context.Context, ownerID, expenseID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`, expenseID, ownerID)
	if err != nil {
		return false, classify("delete expense", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, classify("delete expense rows", err)
	}
	if affected == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", expenseID, "user_id", ownerID)
	return true, nil
}

// SumByOwner sums all of the owner's expense amounts. Zero rows sum to 0.
func (r *Repository) SumByOwner(ctx context.Context, ownerID int64) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE owner_id = ?`,
		ownerID).Scan(&cents)
	if err != nil {
		return core.Money{}, classify("sum expenses", err)
	}
	return core.Money{Cents: cents}, nil
}

// SumByOwnerBetween sums the owner's expenses with start <= date <= end,
// inclusive on both ends. An inverted range simply matches nothing.
func (r *Repository) SumByOwnerBetween(ctx context.Context, ownerID int64, start, end core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE owner_id = ? AND date BETWEEN ? AND ?`,
		ownerID, start.ISO(), end.ISO()).Scan(&cents)
	if err != nil {
		return core.Money{}, classify("sum expenses between", err)
	}
	return core.Money{Cents: cents}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

// classify wraps a storage error, tagging backend-unreachable conditions
// with core.ErrUnavailable so callers can offer retries. Everything else
// propagates as an internal failure.
func classify(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, core.ErrUnavailable, err)
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return fmt.Errorf("%s: %w: %v", op, core.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
