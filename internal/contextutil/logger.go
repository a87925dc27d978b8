package contextutil

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	ownerKey  contextKey = "owner_id"
)

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts a logger from context if available, otherwise returns the default logger.
// This helper can be used by any package that needs to extract a logger from context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctxLogger := ctx.Value(loggerKey); ctxLogger != nil {
		if l, ok := ctxLogger.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

// WithOwner returns a context carrying the requesting owner ID.
// The owner ID is only transported here; core packages always receive it as
// an explicit parameter.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerFromContext extracts the requesting owner ID from context.
// Returns an empty string if no owner is set.
func OwnerFromContext(ctx context.Context) string {
	if v := ctx.Value(ownerKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
