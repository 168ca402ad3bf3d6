package storage

import (
	"context"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
)

// BarStorage defines the interface for daily bar storage operations
type BarStorage interface {
	// WriteBars upserts bars keyed by (symbol, date)
	WriteBars(ctx context.Context, bars []*models.Bar) error

	// GetBars retrieves bars for a symbol within [start, end], oldest first
	GetBars(ctx context.Context, symbol string, start, end time.Time) ([]*models.Bar, error)

	// GetSessions returns the distinct session dates within [start, end], oldest first
	GetSessions(ctx context.Context, start, end time.Time) ([]time.Time, error)

	// GetSessionsBefore returns up to limit session dates on or before end, oldest first
	GetSessionsBefore(ctx context.Context, end time.Time, limit int) ([]time.Time, error)

	// Close closes the storage connection
	Close() error
}
