package data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/internal/storage"
	"golang.org/x/sync/errgroup"
)

// defaultFetchConcurrency bounds parallel per-symbol reads
const defaultFetchConcurrency = 8

// StorageProvider reads windows from a BarStorage
type StorageProvider struct {
	store       storage.BarStorage
	concurrency int
}

// NewStorageProvider creates a provider over store
func NewStorageProvider(store storage.BarStorage) *StorageProvider {
	return &StorageProvider{store: store, concurrency: defaultFetchConcurrency}
}

// Window implements WindowProvider
func (p *StorageProvider) Window(ctx context.Context, date time.Time, assets []string, length int) (*Frame, error) {
	if err := validateLength(length); err != nil {
		return nil, err
	}

	date = models.SessionDate(date)
	sessions, err := p.store.GetSessionsBefore(ctx, date, length)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions before %s: %w", date.Format(models.DateLayout), err)
	}
	if len(sessions) == 0 {
		return BuildFrame(date, assets, nil, nil), nil
	}

	start, end := sessions[0], sessions[len(sessions)-1]
	var mu sync.Mutex
	barsBySymbol := make(map[string][]*models.Bar, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, symbol := range assets {
		symbol := symbol
		g.Go(func() error {
			bars, err := p.store.GetBars(gctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("failed to load bars for %s: %w", symbol, err)
			}
			mu.Lock()
			barsBySymbol[symbol] = bars
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildFrame(date, assets, sessions, barsBySymbol), nil
}

// Sessions implements WindowProvider
func (p *StorageProvider) Sessions(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	return p.store.GetSessions(ctx, start, end)
}
