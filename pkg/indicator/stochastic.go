package indicator

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// DefaultFastStochasticWindow is the conventional %K lookback
const DefaultFastStochasticWindow = 14

// FastStochasticOscillator computes the fast %K line:
//
//	%K = 100 * (last close - lowest low) / (highest high - lowest low)
//
// The result is not clamped to [0, 100]. A window whose highest high equals
// its lowest low has no range and yields NaN. The kernel uses every row it
// is given, so the supplied window size is the effective lookback.
type FastStochasticOscillator struct {
	windowLength int
	name         string
}

// NewFastStochasticOscillator creates a fast stochastic oscillator
func NewFastStochasticOscillator(windowLength int) (*FastStochasticOscillator, error) {
	if err := validateWindowLength("window_length", windowLength, 1); err != nil {
		return nil, err
	}

	return &FastStochasticOscillator{
		windowLength: windowLength,
		name:         fmt.Sprintf("fso_%d", windowLength),
	}, nil
}

func (f *FastStochasticOscillator) Name() string          { return f.name }
func (f *FastStochasticOscillator) WindowLength() int     { return f.windowLength }
func (f *FastStochasticOscillator) Inputs() []Series      { return []Series{Close, Low, High} }
func (f *FastStochasticOscillator) OutputNames() []string { return []string{DefaultOutput} }
func (f *FastStochasticOscillator) NewOutput(n int) Output {
	return NewVector(n)
}

// Compute expects close, low and high windows, in that order
func (f *FastStochasticOscillator) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	k, ok := out.(Vector)
	if !ok {
		return outputTypeError(f.name, out)
	}
	if len(assets) == 0 {
		return nil
	}
	if err := checkShape(f.name, assets, out, windows, 3, 1, 0); err != nil {
		return err
	}

	closes, lows, highs := windows[0], windows[1], windows[2]
	rows, _ := closes.Dims()
	lowCol := make([]float64, rows)
	highCol := make([]float64, rows)

	for j := range assets {
		lowest := nanMin(column(lows, j, lowCol))
		highest := nanMax(column(highs, j, highCol))
		spread := highest - lowest
		if spread == 0 || math.IsNaN(spread) {
			k[j] = math.NaN()
			continue
		}
		k[j] = (closes.At(rows-1, j) - lowest) / spread * 100
	}
	return nil
}
