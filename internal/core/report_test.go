package core

import (
	"testing"
	"time"
)

func TestTotalsSavings(t *testing.T) {
	totals := Totals{Income: Money{Cents: 10000}, Expense: Money{Cents: 4000}}
	r := NewReport(7, totals)
	if r.Savings.Cents != 6000 || r.Income.Cents != 10000 || r.Expense.Cents != 4000 {
		t.Fatalf("unexpected report: %+v", r)
	}
	if (Totals{Expense: Money{Cents: 500}}).Savings().Cents != -500 {
		t.Fatalf("savings should go negative when expenses exceed income")
	}
}

func TestMonthOf(t *testing.T) {
	w := MonthOf(time.Date(2024, 2, 14, 18, 30, 0, 0, time.UTC))
	if w.Start.String() != "2024-02-01" || w.End.String() != "2024-02-29" {
		t.Fatalf("unexpected window: %s..%s", w.Start, w.End)
	}
	if w.Key() != "2024-02" {
		t.Fatalf("unexpected key %q", w.Key())
	}
	if !w.Contains(NewDate(2024, 2, 29)) || w.Contains(NewDate(2024, 3, 1)) || w.Contains(NewDate(2024, 1, 31)) {
		t.Fatalf("Contains does not respect month boundaries")
	}
}

func TestEvaluateBudget(t *testing.T) {
	w := MonthOf(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	b := Budget{UserID: 1, Category: "Food", Limit: Money{Cents: 20000}}

	o, over := EvaluateBudget(b, w, Money{Cents: 25000})
	if !over || o.Amount.Cents != 5000 || o.Month != "2025-06" {
		t.Fatalf("expected overage of 50.00, got %+v (over=%v)", o, over)
	}

	if _, over := EvaluateBudget(b, w, Money{Cents: 20000}); over {
		t.Fatalf("spending exactly the limit is not an overage")
	}
}
