package core

import (
	"time"

	"github.com/jinzhu/now"
)

// Totals holds the per-kind sums for a user. Kinds with no transactions are zero.
type Totals struct {
	Income  Money
	Expense Money
}

// Savings is derived, never stored.
func (t Totals) Savings() Money {
	return t.Income.Sub(t.Expense)
}

// Report is the read-only summary rendered by front ends.
type Report struct {
	UserID  int64
	Income  Money
	Expense Money
	Savings Money
}

func NewReport(userID int64, t Totals) Report {
	return Report{
		UserID:  userID,
		Income:  t.Income,
		Expense: t.Expense,
		Savings: t.Savings(),
	}
}

// Overage is the advisory signal raised when month-to-date spend in a
// category exceeds its budget.
type Overage struct {
	Category string
	Month    string // YYYY-MM
	Spent    Money
	Limit    Money
	Amount   Money // Spent - Limit, always positive
}

// MonthWindow is an inclusive calendar-month range.
type MonthWindow struct {
	Start Date
	End   Date
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) MonthWindow {
	n := now.With(t)
	return MonthWindow{
		Start: DateOf(n.BeginningOfMonth()),
		End:   DateOf(n.EndOfMonth()),
	}
}

// Key returns the year-month label, e.g. "2026-10".
func (w MonthWindow) Key() string {
	return w.Start.Format("2006-01")
}

// Contains reports whether d falls within the window.
func (w MonthWindow) Contains(d Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// EvaluateBudget compares month-to-date spend against a limit.
func EvaluateBudget(b Budget, w MonthWindow, spent Money) (Overage, bool) {
	if spent.Cents <= b.Limit.Cents {
		return Overage{}, false
	}
	return Overage{
		Category: b.Category,
		Month:    w.Key(),
		Spent:    spent,
		Limit:    b.Limit,
		Amount:   spent.Sub(b.Limit),
	}, true
}
