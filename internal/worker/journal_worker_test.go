package worker

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyflow/internal/amqp"
	"moneyflow/internal/backend"
	"moneyflow/internal/core"
	"moneyflow/internal/journal/memory"
	applog "moneyflow/internal/log"
)

type failingWriter struct{ err error }

func (f failingWriter) Append(context.Context, core.JournalEntry) (string, error) {
	return "", f.err
}

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func testMessage() *amqp.TransactionRecordedMessage {
	return amqp.NewTransactionRecordedMessage(core.JournalEntry{
		SessionID: "s-1",
		Transaction: core.Transaction{
			ID:          "tx-1",
			Description: "salary",
			Amount:      decimal.NewFromInt(100),
			Category:    core.Income,
		},
		BalanceAfter: decimal.NewFromInt(100),
		RecordedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestHandleTransactionRecordedFansOut(t *testing.T) {
	a, b := memory.New(), memory.New()
	w := NewJournalWorker([]backend.Sink{{Name: "a", Writer: a}, {Name: "b", Writer: b}}, testLogger())
	ctx := context.Background()

	require.NoError(t, w.HandleTransactionRecorded(ctx, testMessage()))

	for _, s := range []*memory.Store{a, b} {
		entries, err := s.ListEntries(ctx, "s-1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "tx-1", entries[0].Transaction.ID)
		assert.True(t, decimal.NewFromInt(100).Equal(entries[0].BalanceAfter))
	}
	assert.Equal(t, Stats{Processed: 1}, w.Stats())
}

func TestHandleTransactionRecordedRedeliveryIsHarmless(t *testing.T) {
	store := memory.New()
	w := NewJournalWorker([]backend.Sink{{Name: "memory", Writer: store}}, testLogger())
	ctx := context.Background()

	require.NoError(t, w.HandleTransactionRecorded(ctx, testMessage()))
	require.NoError(t, w.HandleTransactionRecorded(ctx, testMessage()))

	assert.Equal(t, 1, store.Len())
}

func TestHandleTransactionRecordedSinkFailure(t *testing.T) {
	store := memory.New()
	w := NewJournalWorker([]backend.Sink{
		{Name: "memory", Writer: store},
		{Name: "sheets", Writer: failingWriter{err: errors.New("quota exceeded")}},
	}, testLogger())

	err := w.HandleTransactionRecorded(context.Background(), testMessage())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "sheets: quota exceeded"), err.Error())
	assert.Equal(t, int64(1), w.Stats().Failed)
}

func TestHandleTransactionRecordedDropsMalformed(t *testing.T) {
	store := memory.New()
	w := NewJournalWorker([]backend.Sink{{Name: "memory", Writer: store}}, testLogger())

	msg := testMessage()
	msg.Amount = "a lot"

	require.NoError(t, w.HandleTransactionRecorded(context.Background(), msg))
	assert.Zero(t, store.Len())
	assert.Equal(t, int64(1), w.Stats().Dropped)
}

func TestWriteWithoutSinks(t *testing.T) {
	w := NewJournalWorker(nil, testLogger())
	assert.Error(t, w.HandleTransactionRecorded(context.Background(), testMessage()))
}
