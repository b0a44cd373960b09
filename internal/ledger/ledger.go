// Package ledger keeps the categorized transaction sequences of one session
// together with the running balance derived from them.
//
// A Ledger has a single owner and is not safe for concurrent use. It only
// ever appends: transactions are never edited or removed.
package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"moneyflow/internal/core"
)

type Ledger struct {
	ids     IDGenerator
	entries map[core.Category][]core.Transaction
	balance decimal.Decimal
}

type Option func(*Ledger)

// WithIDGenerator replaces the default UUID id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) {
		if g != nil {
			l.ids = g
		}
	}
}

// New returns an empty ledger with a zero balance.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		ids: UUIDGenerator{},
		entries: map[core.Category][]core.Transaction{
			core.Income:  nil,
			core.Expense: nil,
		},
		balance: decimal.Zero,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add records a transaction in the sequence of its category and moves the
// balance by its signed amount. The stored amount is the magnitude of the
// parsed text, so "-50" and "50" record the same thing.
//
// Invalid input returns an error wrapping core.ErrInvalidInput and leaves the
// ledger untouched.
func (l *Ledger) Add(description, amountText string, category core.Category) (core.Transaction, error) {
	if strings.TrimSpace(description) == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	parsed, err := core.ParseAmount(amountText)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", amountText, err)
	}
	if !category.Valid() {
		return core.Transaction{}, fmt.Errorf("%w: %v", core.ErrUnknownCategory, category)
	}

	tx := core.Transaction{
		ID:          l.ids.NewID(),
		Description: description,
		Amount:      parsed.Abs(),
		Category:    category,
	}
	l.entries[category] = append(l.entries[category], tx)
	l.balance = l.balance.Add(tx.Signed())
	return tx, nil
}

// Filter returns the transactions selected by f. All lists income first,
// then expense, each in insertion order. The result is a fresh slice.
func (l *Ledger) Filter(f core.Filter) []core.Transaction {
	switch f {
	case core.IncomeOnly:
		return l.Income()
	case core.ExpenseOnly:
		return l.Expenses()
	default:
		return slices.Concat(l.entries[core.Income], l.entries[core.Expense])
	}
}

// Income returns a copy of the income sequence.
func (l *Ledger) Income() []core.Transaction {
	return slices.Clone(l.entries[core.Income])
}

// Expenses returns a copy of the expense sequence.
func (l *Ledger) Expenses() []core.Transaction {
	return slices.Clone(l.entries[core.Expense])
}

// Totals sums each category afresh at full precision. Rounding for display
// is left to the caller.
func (l *Ledger) Totals() core.Totals {
	return core.Totals{
		Income:  sum(l.entries[core.Income]),
		Expense: sum(l.entries[core.Expense]),
	}
}

func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

// Len is the number of stored transactions across both categories.
func (l *Ledger) Len() int {
	return len(l.entries[core.Income]) + len(l.entries[core.Expense])
}

func sum(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
