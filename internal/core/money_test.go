package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.001", "0.001", true},
		{" 2.50 ", "2.5", true},
		{"-50", "-50", true},
		{"+7", "7", true},
		{"0", "0", true},
		{"1e3", "1000", true},
		{"abc", "", false},
		{"12abc", "", false},
		{"1.2.3", "", false},
		{"1,000.50", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"", "", false},
		{"   ", "", false},
		{"999999999999999", "999999999999999", true},
		{"0.000000000000001", "0.000000000000001", true},
		{"1e14", "100000000000000", true},
		{"1000000000000000", "", false},
		{"1e15", "", false},
		{"1e400", "", false},
		{"1e50000000", "", false},
		{"1e-50000000", "", false},
		{"0e50000000", "", false},
		{"0.0000000000000001", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q expected ErrInvalidInput, got %v", tc.in, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":       "0.00",
		"1.5":     "1.50",
		"-60":     "-60.00",
		"10.005":  "10.01",
		"3.14159": "3.14",
	}
	for in, want := range cases {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got := FormatAmount(d); got != want {
			t.Fatalf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestJournalEntryValidateRange(t *testing.T) {
	valid := func() JournalEntry {
		return JournalEntry{
			SessionID: "s1",
			Transaction: Transaction{
				ID:          "tx-1",
				Description: "salary",
				Amount:      decimal.RequireFromString("100"),
				Category:    Income,
			},
			BalanceAfter: decimal.RequireFromString("-100"),
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}

	cases := map[string]func(*JournalEntry){
		"huge amount":     func(e *JournalEntry) { e.Transaction.Amount = decimal.New(1, 400) },
		"amount bomb":     func(e *JournalEntry) { e.Transaction.Amount = decimal.New(1, 50000000) },
		"tiny amount":     func(e *JournalEntry) { e.Transaction.Amount = decimal.New(1, -50000000) },
		"huge balance":    func(e *JournalEntry) { e.BalanceAfter = decimal.New(-1, 400) },
		"negative amount": func(e *JournalEntry) { e.Transaction.Amount = decimal.NewFromInt(-5) },
	}
	for name, mutate := range cases {
		entry := valid()
		mutate(&entry)
		if err := entry.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrInvalidAmount, got %v", name, err)
		}
	}
}
