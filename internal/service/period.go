package service

import (
	"fmt"
	"strings"
	"time"
)

// PreviousPeriod returns the range of the same inclusive length that ends the
// day before r.Start.
func PreviousPeriod(r DateRange) DateRange {
	days := r.Days()
	prevEnd := r.Start.AddDate(0, 0, -1)
	return DateRange{
		Start: prevEnd.AddDate(0, 0, -(days - 1)),
		End:   prevEnd,
	}
}

type RangeMatch struct {
	Valid        bool
	ExpectedDays int
	ActualDays   int
	Message      string
}

// ValidateRangeMatch checks that other spans as many days as current.
func ValidateRangeMatch(current, other DateRange) RangeMatch {
	m := RangeMatch{
		ExpectedDays: current.Days(),
		ActualDays:   other.Days(),
	}
	m.Valid = m.ExpectedDays == m.ActualDays
	if !m.Valid {
		m.Message = fmt.Sprintf(
			"Comparison range must cover %d days to match the selected range, but covers %d days.",
			m.ExpectedDays, m.ActualDays)
	}
	return m
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns the UTC calendar day it falls on.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, newValidationError(ErrInvalidRequest, "Invalid date %q, expected YYYY-MM-DD.", s)
	}
	return TruncateDay(t), nil
}
