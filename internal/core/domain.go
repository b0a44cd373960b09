// Package core holds the ledger's domain types: categories, view filters,
// transactions, totals and the journal entry, plus amount parsing and the
// error taxonomy shared by every layer.
//
// Amounts are kept as decimal.Decimal so that sums over a ledger stay exact;
// floats only appear at the chart boundary.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  Category = iota + 1
	Expense
)

const (
	All Filter = iota
	IncomeOnly
	ExpenseOnly
)

type (
	// Category classifies a transaction. It is fixed at creation.
	Category int

	// Filter selects which transactions a read view returns.
	Filter int

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"` // magnitude, never negative
		Category    Category        `json:"category"`
	}

	// Totals holds the per-category sums of a ledger.
	Totals struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}
)

var (
	// ErrInvalidInput is the root of every rejection returned for bad user input.
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrUnknownCategory  = fmt.Errorf("%w: unknown category", ErrInvalidInput)
	ErrUnknownFilter    = fmt.Errorf("%w: unknown filter", ErrInvalidInput)
)

type categoryInfo struct {
	name string
	sign int64
}

var categories = map[Category]categoryInfo{
	Income:  {name: "income", sign: 1},
	Expense: {name: "expense", sign: -1},
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Signed returns the contribution of amount to the balance: +amount for
// income, -amount for expense.
func (c Category) Signed(amount decimal.Decimal) decimal.Decimal {
	info, ok := categories[c]
	if !ok {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromInt(info.sign))
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrUnknownCategory
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory accepts "income" or "expense", case-insensitive.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, info := range categories {
		if info.name == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

var filterNames = map[Filter]string{
	All:         "all",
	IncomeOnly:  "income",
	ExpenseOnly: "expense",
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// Category returns the category a filter points at. All has none.
func (f Filter) Category() (Category, bool) {
	switch f {
	case IncomeOnly:
		return Income, true
	case ExpenseOnly:
		return Expense, true
	default:
		return 0, false
	}
}

func (f Filter) MarshalText() ([]byte, error) {
	if _, ok := filterNames[f]; !ok {
		return nil, ErrUnknownFilter
	}
	return []byte(f.String()), nil
}

func (f *Filter) UnmarshalText(text []byte) error {
	parsed, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFilter accepts "all", "income" or "expense". An empty string means All.
func ParseFilter(s string) (Filter, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return All, nil
	}
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return All, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Balance is income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Signed returns the transaction's contribution to the balance.
func (t Transaction) Signed() decimal.Decimal {
	return t.Category.Signed(t.Amount)
}
