package indicator

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// BollingerBands computes bands k population standard deviations
// around the mean close of the window.
//
//	middle = mean(close)
//	upper  = middle + k * std(close)
//	lower  = middle - k * std(close)
//
// Missing closes are ignored; an all-missing column yields NaN bands.
type BollingerBands struct {
	windowLength int
	k            float64
	name         string
}

// NewBollingerBands creates Bollinger Bands over windowLength closes
func NewBollingerBands(windowLength int, k float64) (*BollingerBands, error) {
	if err := validateWindowLength("window_length", windowLength, 1); err != nil {
		return nil, err
	}
	if err := validatePositive("k", k); err != nil {
		return nil, err
	}

	return &BollingerBands{
		windowLength: windowLength,
		k:            k,
		name:         fmt.Sprintf("bbands_%d_%s", windowLength, formatMultiplier(k)),
	}, nil
}

func (b *BollingerBands) Name() string          { return b.name }
func (b *BollingerBands) WindowLength() int     { return b.windowLength }
func (b *BollingerBands) K() float64            { return b.k }
func (b *BollingerBands) Inputs() []Series      { return []Series{Close} }
func (b *BollingerBands) OutputNames() []string { return append([]string(nil), bandsNames...) }
func (b *BollingerBands) NewOutput(n int) Output {
	return NewBandsOutput(n)
}

// Compute writes the lower, middle and upper bands of every asset into out
func (b *BollingerBands) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	bands, ok := out.(*BandsOutput)
	if !ok {
		return outputTypeError(b.name, out)
	}
	if len(assets) == 0 {
		return nil
	}
	if err := checkShape(b.name, assets, out, windows, 1, 1, b.windowLength); err != nil {
		return err
	}

	closes := windows[0]
	rows, _ := closes.Dims()
	col := make([]float64, rows)
	valid := make([]float64, 0, rows)

	for j := range assets {
		valid = dropNaN(valid, column(closes, j, col))
		if len(valid) == 0 {
			bands.SetMissing(j)
			continue
		}

		middle, std := stat.PopMeanStdDev(valid, nil)
		difference := b.k * std
		bands.Middle[j] = middle
		bands.Upper[j] = middle + difference
		bands.Lower[j] = middle - difference
	}
	return nil
}
