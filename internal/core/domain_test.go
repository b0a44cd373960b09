package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"income", Income, true},
		{"Expense", Expense, true},
		{" INCOME ", Income, true},
		{"all", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrUnknownCategory) {
			t.Fatalf("%q expected ErrUnknownCategory, got %v", tc.in, err)
		}
	}
}

func TestCategorySigned(t *testing.T) {
	amount := decimal.NewFromInt(50)
	if got := Income.Signed(amount); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("income signed = %s", got)
	}
	if got := Expense.Signed(amount); !got.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("expense signed = %s", got)
	}
	if got := Category(42).Signed(amount); !got.IsZero() {
		t.Fatalf("unknown category signed = %s", got)
	}
}

func TestParseFilter(t *testing.T) {
	cases := []struct {
		in   string
		want Filter
		ok   bool
	}{
		{"", All, true},
		{"all", All, true},
		{"income", IncomeOnly, true},
		{"EXPENSE", ExpenseOnly, true},
		{"recent", All, false},
	}
	for _, tc := range cases {
		got, err := ParseFilter(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFilterCategory(t *testing.T) {
	if c, ok := IncomeOnly.Category(); !ok || c != Income {
		t.Fatalf("IncomeOnly -> %v %v", c, ok)
	}
	if c, ok := ExpenseOnly.Category(); !ok || c != Expense {
		t.Fatalf("ExpenseOnly -> %v %v", c, ok)
	}
	if _, ok := All.Category(); ok {
		t.Fatalf("All must not point at a category")
	}
}

func TestTransactionJSON(t *testing.T) {
	tx := Transaction{ID: "a", Description: "salary", Amount: decimal.RequireFromString("100.50"), Category: Income}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"a","description":"salary","amount":"100.5","category":"income"}`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}

	var back Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Category != Income || !back.Amount.Equal(tx.Amount) {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}

func TestTotalsBalance(t *testing.T) {
	tot := Totals{Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(140)}
	if got := tot.Balance(); !got.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("balance = %s", got)
	}
}
