package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"moneyflow/internal/amqp"
	"moneyflow/internal/backend"
	"moneyflow/internal/core"
	applog "moneyflow/internal/log"
)

// JournalWorker writes every TransactionRecorded event to all configured sinks
type JournalWorker struct {
	sinks  []backend.Sink
	logger *applog.Logger
	events *applog.StructuredLogger

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewJournalWorker(sinks []backend.Sink, logger *applog.Logger) *JournalWorker {
	logger = logger.WithComponent(applog.ComponentWorker)
	return &JournalWorker{
		sinks:  sinks,
		logger: logger,
		events: applog.NewStructuredLogger(logger),
	}
}

// HandleTransactionRecorded appends the message to every sink concurrently.
// A sink failure is returned so the message is requeued; sinks that already
// succeeded ignore the redelivery. A message that cannot be decoded is
// dropped, since redelivering it would fail forever.
func (w *JournalWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	entry, err := msg.ToJournalEntry()
	if err != nil {
		w.dropped.Add(1)
		w.logger.ErrorContext(ctx, "Dropping malformed transaction message",
			applog.FieldSessionID, msg.SessionID,
			applog.FieldTransactionID, msg.TransactionID,
			applog.FieldError, err)
		return nil
	}

	if err := w.Write(ctx, entry); err != nil {
		w.failed.Add(1)
		w.events.LogError(ctx, "Journal write failed, message will be redelivered", err,
			applog.ComponentWorker, applog.OpConsume,
			applog.NewFields().WithSession(entry.SessionID).WithTransaction(entry.Transaction))
		return err
	}
	w.processed.Add(1)
	return nil
}

// Write appends entry to all sinks and joins their errors.
func (w *JournalWorker) Write(ctx context.Context, entry core.JournalEntry) error {
	if len(w.sinks) == 0 {
		return errors.New("no journal sinks configured")
	}

	errs := make([]error, len(w.sinks))
	g, gctx := errgroup.WithContext(ctx)
	for i, sink := range w.sinks {
		g.Go(func() error {
			ref, err := sink.Writer.Append(gctx, entry)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", sink.Name, err)
				return errs[i]
			}
			w.logger.DebugContext(gctx, "Journal entry written",
				"sink", sink.Name,
				applog.FieldSessionID, entry.SessionID,
				applog.FieldTransactionID, entry.Transaction.ID,
				applog.FieldJournalRef, ref)
			return nil
		})
	}
	if g.Wait() != nil {
		return fmt.Errorf("journal transaction %s: %w", entry.Transaction.ID, errors.Join(errs...))
	}

	w.logger.InfoContext(ctx, "Transaction journaled",
		applog.FieldSessionID, entry.SessionID,
		applog.FieldTransactionID, entry.Transaction.ID,
		"sinks", len(w.sinks))
	return nil
}

// Stats holds message counters since start
type Stats struct {
	Processed int64
	Failed    int64
	Dropped   int64
}

func (w *JournalWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
		Dropped:   w.dropped.Load(),
	}
}
