package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"income", Income, true},
		{"expense", Expense, true},
		{" Expense ", Expense, true},
		{"INCOME", Income, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-02-28" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	for _, bad := range []string{"", "28/02/2025", "2025-02-30", "2025-13-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:   1,
		Amount:   Money{Cents: 100},
		Category: "Food",
		Kind:     Expense,
		Date:     NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{UserID: 0, Amount: Money{Cents: 1}, Category: "c", Kind: Income, Date: NewDate(2025, 1, 1)},
		{UserID: 1, Amount: Money{Cents: 0}, Category: "c", Kind: Income, Date: NewDate(2025, 1, 1)},
		{UserID: 1, Amount: Money{Cents: MaxCents + 1}, Category: "c", Kind: Income, Date: NewDate(2025, 1, 1)},
		{UserID: 1, Amount: Money{Cents: 1}, Category: " ", Kind: Income, Date: NewDate(2025, 1, 1)},
		{UserID: 1, Amount: Money{Cents: 1}, Category: "c", Kind: "gift", Date: NewDate(2025, 1, 1)},
		{UserID: 1, Amount: Money{Cents: 1}, Category: "c", Kind: Income, Date: Date{Time: time.Time{}}},
	}
	for i, tx := range bads {
		var verr *ValidationError
		if err := tx.Validate(); !errors.As(err, &verr) {
			t.Fatalf("case %d expected ValidationError, got %v", i, err)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{UserID: 1, Category: "Food", Limit: Money{}}).Validate(); err != nil {
		t.Fatalf("zero limit should be valid, got %v", err)
	}
	if err := (Budget{UserID: 1, Category: "Food", Limit: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if err := (Budget{UserID: 1, Category: "Food", Limit: Money{Cents: MaxCents + 1}}).Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit above the cap, got %v", err)
	}
	if err := (Budget{UserID: 1, Category: ""}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}
