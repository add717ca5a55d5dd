package core

import "time"

const (
	wireDateLayout = "02-01-2006"
	isoDateLayout  = "2006-01-02"
)

// Date is a calendar date with no time-of-day component. The wire form is
// DD-MM-YYYY; storage uses ISO YYYY-MM-DD so lexicographic range scans work.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the exact wire pattern DD-MM-YYYY: two-digit day,
// two-digit month, four-digit year. Calendrically invalid dates such as
// 31-02-2024 are rejected.
func ParseDate(s string) (Date, error) {
	if len(s) != len(wireDateLayout) || s[2] != '-' || s[5] != '-' {
		return Date{}, ErrInvalidDate
	}
	for i := 0; i < len(s); i++ {
		if i == 2 || i == 5 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return Date{}, ErrInvalidDate
		}
	}
	t, err := time.Parse(wireDateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseISODate parses the storage representation YYYY-MM-DD.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Wire renders the date in the DD-MM-YYYY wire form.
func (d Date) Wire() string {
	return d.Format(wireDateLayout)
}

// ISO renders the date in the YYYY-MM-DD storage form.
func (d Date) ISO() string {
	return d.Format(isoDateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
