// Package observability provides structured logging helpers for the
// assistant: handler setup and a per-turn context carrying a request ID.
package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for the per-turn request ID.
	LogFieldRequestID = "request_id"
	// LogFieldAction is the field name for the dispatched intent action.
	LogFieldAction = "action"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for the structured error code.
	LogFieldErrorCode = "error_code"
	// LogFieldTurnCount is the field name for the conversation length.
	LogFieldTurnCount = "turn_count"
)

// Setup installs a slog default handler. Verbose mode enables debug logs.
func Setup(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// TurnContext carries logging context for one user turn.
type TurnContext struct {
	RequestID string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewTurnContext creates a turn context with a generated request ID.
func NewTurnContext(logger *slog.Logger) *TurnContext {
	if logger == nil {
		logger = slog.Default()
	}
	requestID := uuid.NewString()
	return &TurnContext{
		RequestID: requestID,
		StartTime: time.Now(),
		Logger:    logger.With(LogFieldRequestID, requestID),
	}
}

// Elapsed returns milliseconds since the turn started.
func (t *TurnContext) Elapsed() int64 {
	return time.Since(t.StartTime).Milliseconds()
}

// Completed logs the end of a turn with its duration.
func (t *TurnContext) Completed(action string) {
	t.Logger.Info("turn completed",
		LogFieldAction, action,
		LogFieldDuration, t.Elapsed(),
	)
}

// Failed logs a failed turn with its error code and duration.
func (t *TurnContext) Failed(action, errorCode string, err error) {
	t.Logger.Warn("turn failed",
		LogFieldAction, action,
		LogFieldErrorCode, errorCode,
		LogFieldDuration, t.Elapsed(),
		"error", err,
	)
}
