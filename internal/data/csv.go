package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
)

// ErrMissingColumn is returned when a bar CSV lacks a required header
var ErrMissingColumn = errors.New("missing csv column")

var requiredColumns = []string{"symbol", "date", "open", "high", "low", "close"}

// ReadBarsCSV parses daily bars from a CSV with the headers
// symbol, date (YYYY-MM-DD), open, high, low, close and optionally volume.
// Header names are case-insensitive and may appear in any order.
func ReadBarsCSV(r io.Reader) ([]*models.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var bars []*models.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar, err := parseBarRecord(rec, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRecord(rec []string, index map[string]int) (*models.Bar, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := time.Parse(models.DateLayout, get("date"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidDate, err)
	}

	bar := &models.Bar{
		Symbol: strings.ToUpper(get("symbol")),
		Date:   date,
	}
	prices := []struct {
		col string
		dst *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	}
	for _, p := range prices {
		v, err := strconv.ParseFloat(get(p.col), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrInvalidPrice, p.col, err)
		}
		*p.dst = v
	}

	if raw := get("volume"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidVolume, err)
		}
		bar.Volume = v
	}

	if err := bar.Validate(); err != nil {
		return nil, err
	}
	return bar, nil
}
