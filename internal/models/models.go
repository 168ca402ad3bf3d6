package models

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for session dates in keys and configuration
const DateLayout = "2006-01-02"

// SessionDate truncates t to midnight UTC of its calendar day
func SessionDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Bar represents one daily OHLCV observation of a symbol
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if b.Symbol == "" {
		return ErrInvalidSymbol
	}
	if b.Date.IsZero() {
		return ErrInvalidDate
	}
	if b.Close <= 0 {
		return ErrInvalidPrice
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// FactorResult is the cross-section of one factor on one session
type FactorResult struct {
	RunID   string               `json:"run_id,omitempty"`
	Factor  string               `json:"factor"`
	Date    time.Time            `json:"date"`
	Assets  []string             `json:"assets"`
	Outputs []string             `json:"outputs"` // positional order of Values
	Values  map[string][]float64 `json:"values"`
}

// Validate checks that every output has one value per asset
func (r *FactorResult) Validate() error {
	if r.Factor == "" {
		return fmt.Errorf("%w: missing factor name", ErrInvalidResult)
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	for _, name := range r.Outputs {
		values, ok := r.Values[name]
		if !ok {
			return fmt.Errorf("%w: output %q has no values", ErrInvalidResult, name)
		}
		if len(values) != len(r.Assets) {
			return fmt.Errorf("%w: output %q has %d values for %d assets", ErrInvalidResult, name, len(values), len(r.Assets))
		}
	}
	return nil
}

// Value returns the named output of one asset
func (r *FactorResult) Value(output, symbol string) (float64, bool) {
	values, ok := r.Values[output]
	if !ok {
		return 0, false
	}
	for i, s := range r.Assets {
		if s == symbol {
			return values[i], true
		}
	}
	return 0, false
}
