package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"100", 10000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
		{"1000000000", MaxCents, true},
		{"1000000000.01", 0, false},
		{"50000000000000000", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmountReturnsValidationError(t *testing.T) {
	_, err := ParseAmount("ten")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "amount" || !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseLimit(t *testing.T) {
	if m, err := ParseLimit("0"); err != nil || m.Cents != 0 {
		t.Fatalf("zero limit should be accepted, got %v %v", m, err)
	}
	if m, err := ParseLimit("200"); err != nil || m.Cents != 20000 {
		t.Fatalf("expected 20000 cents, got %v %v", m, err)
	}
	if _, err := ParseLimit("-5"); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := ParseLimit("1000000000.01"); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit above the cap, got %v", err)
	}
}

func TestMoneyCheckedAdd(t *testing.T) {
	sum, err := Money{Cents: MaxCents}.CheckedAdd(Money{Cents: MaxCents})
	if err != nil || sum.Cents != 2*MaxCents {
		t.Fatalf("unexpected sum %v err=%v", sum, err)
	}
	if _, err := (Money{Cents: math.MaxInt64 - 1}).CheckedAdd(Money{Cents: 2}); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
	if _, err := (Money{Cents: math.MinInt64 + 1}).CheckedAdd(Money{Cents: -2}); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		6000:  "60.00",
		-1250: "-12.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}
