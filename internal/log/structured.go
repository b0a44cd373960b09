package log

import (
	"context"
	"log/slog"
	"net/http"

	"moneyflow/internal/core"
)

// StructuredLogger provides event-shaped logging helpers on top of Logger
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, requestID, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
		WithRequestID(requestID).
		WithClientIP(clientIP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs request completion; 4xx is a warning and 5xx an error
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, requestID string, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, durationMs).
		WithRequestID(requestID).
		WithClientIP(clientIP)

	sl.logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogTransactionRecorded logs an accepted ledger entry
func (sl *StructuredLogger) LogTransactionRecorded(ctx context.Context, sessionID string, tx core.Transaction, balance string) {
	fields := NewFields().
		WithSession(sessionID).
		WithTransaction(tx).
		WithOperation(OpAppend)
	fields[FieldBalance] = balance

	sl.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)
}

// LogRejected logs input the ledger declined
func (sl *StructuredLogger) LogRejected(ctx context.Context, sessionID string, err error) {
	fields := NewFields().
		WithSession(sessionID).
		WithOperation(OpValidate).
		WithError(err)

	sl.logger.WarnContext(ctx, "Transaction rejected", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
