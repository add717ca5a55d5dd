package core

import (
	"errors"
	"strings"
)

// Domain error taxonomy. Storage and transport layers translate their own
// failures into these values so callers can tell a duplicate username from a
// backend outage.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrNotFound           = errors.New("not found")
	ErrInvalidDate        = errors.New("invalid date, expected DD-MM-YYYY")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyPassword      = errors.New("empty password")
	ErrUnavailable        = errors.New("storage unavailable")
)

// MissingFieldsError reports every absent required field of a request, not
// just the first one encountered.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

// IsMissingFields reports whether err is a MissingFieldsError and returns it.
func IsMissingFields(err error) (*MissingFieldsError, bool) {
	var mf *MissingFieldsError
	if errors.As(err, &mf) {
		return mf, true
	}
	return nil, false
}
