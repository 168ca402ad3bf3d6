package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBars(n int) []*models.Bar {
	bars := make([]*models.Bar, n)
	for i := range bars {
		bars[i] = &models.Bar{
			Symbol: "AAPL",
			Date:   time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
			Open:   10,
			High:   11,
			Low:    9,
			Close:  10,
		}
	}
	return bars
}

func TestWriteBatches(t *testing.T) {
	store := &storage.MockBarStorage{}
	written, err := writeBatches(context.Background(), store, testBars(7), 3)
	require.NoError(t, err)
	assert.Equal(t, 7, written)
	assert.Len(t, store.Bars, 7)
}

func TestWriteBatches_Error(t *testing.T) {
	store := &storage.MockBarStorage{WriteErr: errors.New("disk full")}
	written, err := writeBatches(context.Background(), store, testBars(4), 2)
	require.Error(t, err)
	assert.Zero(t, written)
}
