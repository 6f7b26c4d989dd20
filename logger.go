package xapiand

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with xapiand-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithEndpoint adds an endpoint field to the logger.
func (l *Logger) WithEndpoint(ep Endpoint) *Logger {
	return &Logger{
		Logger: l.Logger.With("endpoint", ep.String()),
	}
}

// WithEndpoints adds the endpoints of a composite to the logger.
func (l *Logger) WithEndpoints(set EndpointSet) *Logger {
	return &Logger{
		Logger: l.Logger.With("endpoints", set.String()),
	}
}

// LogOpen logs opening or connecting to a shard.
func (l *Logger) LogOpen(ctx context.Context, ep Endpoint, writable bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"endpoint", ep.String(),
			"writable", writable,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "shard opened",
			"endpoint", ep.String(),
			"kind", ep.Kind().String(),
			"writable", writable,
		)
	}
}

// LogReopen logs a refresh of a composite database.
func (l *Logger) LogReopen(ctx context.Context, set EndpointSet, state ReopenState, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "reopen failed",
			"endpoints", set.String(),
			"state", state.String(),
			"error", err,
		)
	case state == ReopenFresh:
		l.DebugContext(ctx, "reopen completed",
			"endpoints", set.String(),
		)
	default:
		l.WarnContext(ctx, "reopen recovered",
			"endpoints", set.String(),
			"state", state.String(),
		)
	}
}

// LogSlotRecovery logs rerunning the opener of one shard in a composite.
func (l *Logger) LogSlotRecovery(ctx context.Context, ep Endpoint, slot int, cause, err error) {
	if err != nil {
		l.ErrorContext(ctx, "shard recovery failed",
			"endpoint", ep.String(),
			"slot", slot,
			"cause", cause,
			"error", err,
		)
	} else {
		l.WarnContext(ctx, "shard recovered",
			"endpoint", ep.String(),
			"slot", slot,
			"cause", cause,
		)
	}
}

// LogSkipped logs a write that was not applied because its shard is
// unavailable.
func (l *Logger) LogSkipped(ctx context.Context, op string, ep Endpoint, err error) {
	l.ErrorContext(ctx, "database unavailable, "+op+" skipped",
		"endpoint", ep.String(),
		"error", err,
	)
}

// LogField logs a document field dropped during translation.
func (l *Logger) LogField(ctx context.Context, warning error) {
	l.WarnContext(ctx, "document field ignored",
		"reason", warning.Error(),
	)
}

// LogIndex logs an index operation.
func (l *Logger) LogIndex(ctx context.Context, ep Endpoint, id DocumentID, docid uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index failed",
			"endpoint", ep.String(),
			"id", id.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index completed",
			"endpoint", ep.String(),
			"id", id.String(),
			"docid", docid,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, ep Endpoint, id DocumentID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"endpoint", ep.String(),
			"id", id.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"endpoint", ep.String(),
			"id", id.String(),
		)
	}
}

// LogCommit logs a commit.
func (l *Logger) LogCommit(ctx context.Context, ep Endpoint, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"endpoint", ep.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "commit completed",
			"endpoint", ep.String(),
		)
	}
}
