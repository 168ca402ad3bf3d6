package data

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/internal/storage"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
)

// MemoryProvider keeps per-symbol bar history in memory
type MemoryProvider struct {
	mu      sync.RWMutex
	bars    map[string][]*models.Bar // sorted by date
	maxBars int                      // per symbol; 0 keeps everything
}

// NewMemoryProvider creates an in-memory provider keeping at most maxBars per symbol
func NewMemoryProvider(maxBars int) *MemoryProvider {
	return &MemoryProvider{
		bars:    make(map[string][]*models.Bar),
		maxBars: maxBars,
	}
}

// Add inserts bars, replacing any existing bar of the same symbol and date
func (p *MemoryProvider) Add(bars ...*models.Bar) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			return fmt.Errorf("invalid bar for %q: %w", bar.Symbol, err)
		}
		b := *bar
		b.Date = models.SessionDate(b.Date)

		history := p.bars[b.Symbol]
		i := sort.Search(len(history), func(i int) bool { return !history[i].Date.Before(b.Date) })
		if i < len(history) && history[i].Date.Equal(b.Date) {
			history[i] = &b
			continue
		}
		history = append(history, nil)
		copy(history[i+1:], history[i:])
		history[i] = &b

		if p.maxBars > 0 && len(history) > p.maxBars {
			// drop the oldest
			history = append(history[:0], history[len(history)-p.maxBars:]...)
		}
		p.bars[b.Symbol] = history
	}
	return nil
}

// Rehydrate loads the history of symbols within [start, end] from store
func (p *MemoryProvider) Rehydrate(ctx context.Context, store storage.BarStorage, symbols []string, start, end time.Time) error {
	total := 0
	for _, symbol := range symbols {
		bars, err := store.GetBars(ctx, symbol, start, end)
		if err != nil {
			return fmt.Errorf("failed to rehydrate %s: %w", symbol, err)
		}
		if err := p.Add(bars...); err != nil {
			return err
		}
		total += len(bars)
	}

	logger.Info("Rehydrated bar history",
		logger.Int("symbols", len(symbols)),
		logger.Int("bars", total),
	)
	return nil
}

// Window implements WindowProvider
func (p *MemoryProvider) Window(ctx context.Context, date time.Time, assets []string, length int) (*Frame, error) {
	if err := validateLength(length); err != nil {
		return nil, err
	}

	date = models.SessionDate(date)
	sessions := p.sessionsBetween(time.Time{}, date)
	if len(sessions) > length {
		sessions = sessions[len(sessions)-length:]
	}

	p.mu.RLock()
	barsBySymbol := make(map[string][]*models.Bar, len(assets))
	for _, symbol := range assets {
		barsBySymbol[symbol] = p.bars[symbol]
	}
	p.mu.RUnlock()

	return BuildFrame(date, assets, sessions, barsBySymbol), nil
}

// Sessions implements WindowProvider
func (p *MemoryProvider) Sessions(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	return p.sessionsBetween(models.SessionDate(start), models.SessionDate(end)), nil
}

// sessionsBetween returns the union of bar dates within [start, end]
func (p *MemoryProvider) sessionsBetween(start, end time.Time) []time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := make(map[time.Time]struct{})
	var sessions []time.Time
	for _, history := range p.bars {
		for _, bar := range history {
			if bar.Date.Before(start) || bar.Date.After(end) {
				continue
			}
			if _, ok := seen[bar.Date]; ok {
				continue
			}
			seen[bar.Date] = struct{}{}
			sessions = append(sessions, bar.Date)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Before(sessions[j]) })
	return sessions
}
