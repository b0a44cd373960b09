package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the outbound record of one accepted transaction, as written
// to the journal sinks.
type JournalEntry struct {
	SessionID    string
	Transaction  Transaction
	BalanceAfter decimal.Decimal
	RecordedAt   time.Time
}

// Validate checks that an entry identifies its session and carries a
// well-formed transaction.
func (e JournalEntry) Validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("%w: journal entry without session id", ErrInvalidInput)
	}
	if e.Transaction.ID == "" {
		return fmt.Errorf("%w: journal entry without transaction id", ErrInvalidInput)
	}
	if !e.Transaction.Category.Valid() {
		return ErrUnknownCategory
	}
	if e.Transaction.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, e.Transaction.Amount)
	}
	if !inRange(e.Transaction.Amount, maxAmountDigits) {
		return fmt.Errorf("%w: amount out of range", ErrInvalidAmount)
	}
	if !inRange(e.BalanceAfter, maxBalanceDigits) {
		return fmt.Errorf("%w: balance out of range", ErrInvalidAmount)
	}
	return nil
}
