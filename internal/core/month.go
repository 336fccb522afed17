// Package core holds the ledger domain model and the calendar arithmetic
// the reporting queries are built on.
//
// This file implements the month token handling: parsing "YYYY-MM",
// resolving a month to its half-open date window, and stepping to
// adjacent months across year boundaries.
package core

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Month is a calendar month, the bucket key for all monthly reports.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" token. Anything else fails with
// ErrInvalidMonth.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentMonth returns the month containing now, in UTC.
func CurrentMonth() Month {
	now := time.Now().UTC()
	return Month{Year: now.Year(), Month: now.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Bounds returns the half-open window [start, end) covering exactly the
// days of m: start is the first day of m, end the first day of the
// following month. time.Date normalizes month 13 to January of the next
// year, so the December rollover needs no special case.
func (m Month) Bounds() (start, end string) {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return first.Format(dateLayout), first.AddDate(0, 1, 0).Format(dateLayout)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding calendar month.
func (m Month) Prev() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseDate validates a "YYYY-MM-DD" business date and returns it in
// canonical form. Rejects impossible dates like 2024-02-30.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.Format(dateLayout), nil
}
