package logger

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	runIDKey contextKey = iota
	factorKey
)

// NewRunID generates a new evaluation run ID
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithFactor adds a factor name to the context
func WithFactor(ctx context.Context, factor string) context.Context {
	return context.WithValue(ctx, factorKey, factor)
}

// GetFactor retrieves the factor name from context
func GetFactor(ctx context.Context) string {
	if factor, ok := ctx.Value(factorKey).(string); ok {
		return factor
	}
	return ""
}
