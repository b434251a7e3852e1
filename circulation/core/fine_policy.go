package core

import (
	"time"
)

// Amount is a money value in whole currency units.
type Amount = int64

const day = 24 * time.Hour

// FinePolicy holds the fine parameters. A MaxFine of zero or less means uncapped.
type FinePolicy struct {
	RatePerDay Amount
	MaxFine    Amount
}

// FineAssessment is the result of applying a FinePolicy to one return.
type FineAssessment struct {
	OverdueDays int
	Fine        Amount
}

// OverdueDays counts whole UTC calendar days from dueDate to returnDate, floored at zero.
// A return on the due date, at any time of day, is not overdue.
func OverdueDays(dueDate, returnDate time.Time) int {
	days := int(CalendarDay(returnDate).Sub(CalendarDay(dueDate)) / day)
	if days < 0 {
		return 0
	}

	return days
}

// ComputeFine is pure and deterministic.
func (p FinePolicy) ComputeFine(dueDate, returnDate time.Time) FineAssessment {
	overdueDays := OverdueDays(dueDate, returnDate)

	fine := Amount(overdueDays) * p.RatePerDay
	if p.MaxFine > 0 && fine > p.MaxFine {
		fine = p.MaxFine
	}

	return FineAssessment{OverdueDays: overdueDays, Fine: fine}
}

// CalendarDay truncates t to midnight of its UTC day. Loan dates compare by day, never by instant.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
