package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
)

// MockBarStorage is a mock implementation of BarStorage for testing
type MockBarStorage struct {
	mu          sync.Mutex
	Bars        []*models.Bar
	WriteErr    error
	GetErr      error
	SessionsErr error
	GetCalls    int
}

func (m *MockBarStorage) WriteBars(ctx context.Context, bars []*models.Bar) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bars = append(m.Bars, bars...)
	return nil
}

func (m *MockBarStorage) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]*models.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var result []*models.Bar
	for _, bar := range m.Bars {
		if bar.Symbol == symbol && !bar.Date.Before(start) && !bar.Date.After(end) {
			result = append(result, bar)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *MockBarStorage) GetSessions(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	if m.SessionsErr != nil {
		return nil, m.SessionsErr
	}
	var sessions []time.Time
	for _, d := range m.sessions() {
		if !d.Before(start) && !d.After(end) {
			sessions = append(sessions, d)
		}
	}
	return sessions, nil
}

func (m *MockBarStorage) GetSessionsBefore(ctx context.Context, end time.Time, limit int) ([]time.Time, error) {
	if m.SessionsErr != nil {
		return nil, m.SessionsErr
	}
	var sessions []time.Time
	for _, d := range m.sessions() {
		if !d.After(end) {
			sessions = append(sessions, d)
		}
	}
	if len(sessions) > limit {
		sessions = sessions[len(sessions)-limit:]
	}
	return sessions, nil
}

func (m *MockBarStorage) Close() error {
	return nil
}

// sessions returns every distinct bar date, oldest first
func (m *MockBarStorage) sessions() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, bar := range m.Bars {
		d := models.SessionDate(bar.Date)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
