package core

import (
	"errors"
	"strings"
	"time"
)

// DefaultCategory is assigned to expenses recorded without a category.
const DefaultCategory = "General"

type (
	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	Expense struct {
		ID          int64
		OwnerID     int64
		Date        Date
		Description string
		Amount      Money
		Category    string
	}
)

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 100 {
		return errors.New("username too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.OwnerID <= 0 {
		return ErrOwnerNotFound
	}
	return nil
}

// NormalizeCategory returns the category to store for the given raw value.
// Absent or blank categories fall back to DefaultCategory.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCategory
	}
	return s
}
