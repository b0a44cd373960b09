package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"moneyflow/internal/core"
)

// TransactionRecordedMessage carries one accepted transaction to the journal
// worker. Amounts travel as decimal strings so no precision is lost.
type TransactionRecordedMessage struct {
	SessionID     string    `json:"session_id"`
	TransactionID string    `json:"transaction_id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	Category      string    `json:"category"`
	Balance       string    `json:"balance"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(entry core.JournalEntry) *TransactionRecordedMessage {
	ts := entry.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &TransactionRecordedMessage{
		SessionID:     entry.SessionID,
		TransactionID: entry.Transaction.ID,
		Description:   entry.Transaction.Description,
		Amount:        entry.Transaction.Amount.String(),
		Category:      entry.Transaction.Category.String(),
		Balance:       entry.BalanceAfter.String(),
		Timestamp:     ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToJournalEntry validates the message and converts it back to a domain entry.
func (m *TransactionRecordedMessage) ToJournalEntry() (core.JournalEntry, error) {
	if m.SessionID == "" || m.TransactionID == "" {
		return core.JournalEntry{}, fmt.Errorf("%w: message without session or transaction id", core.ErrInvalidInput)
	}
	category, err := core.ParseCategory(m.Category)
	if err != nil {
		return core.JournalEntry{}, err
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("%w: amount %q", core.ErrInvalidAmount, m.Amount)
	}
	balance, err := decimal.NewFromString(m.Balance)
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("%w: balance %q", core.ErrInvalidAmount, m.Balance)
	}
	entry := core.JournalEntry{
		SessionID: m.SessionID,
		Transaction: core.Transaction{
			ID:          m.TransactionID,
			Description: m.Description,
			Amount:      amount,
			Category:    category,
		},
		BalanceAfter: balance,
		RecordedAt:   m.Timestamp,
	}
	if err := entry.Validate(); err != nil {
		return core.JournalEntry{}, err
	}
	return entry, nil
}
