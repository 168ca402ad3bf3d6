package indicator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFastStochasticOscillator_New(t *testing.T) {
	fso, err := NewFastStochasticOscillator(DefaultFastStochasticWindow)
	require.NoError(t, err)
	assert.Equal(t, "fso_14", fso.Name())
	assert.Equal(t, []Series{Close, Low, High}, fso.Inputs())

	_, err = NewFastStochasticOscillator(0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFastStochasticOscillator_Unclamped(t *testing.T) {
	const rows, cols = 50, 3
	fso, err := NewFastStochasticOscillator(rows)
	require.NoError(t, err)

	highs := windowOf(rows, cols, func(int, int) float64 { return 3 })
	lows := windowOf(rows, cols, func(int, int) float64 { return 2 })
	closes := windowOf(rows, cols, func(int, int) float64 { return 4 })

	out := fso.NewOutput(cols).(Vector)
	require.NoError(t, fso.Compute(testDate, symbols(cols), out, closes, lows, highs))
	for _, v := range out {
		assert.Equal(t, 200.0, v)
	}
}

func TestFastStochasticOscillator_MatchesTALib(t *testing.T) {
	const rows, cols, w = 40, 3, 14
	highs, lows, closes := randomBars(11, rows, cols)
	assets := symbols(cols)

	fso, err := NewFastStochasticOscillator(w)
	require.NoError(t, err)

	for j := 0; j < cols; j++ {
		fastK, _ := talib.StochF(mat.Col(nil, j, highs), mat.Col(nil, j, lows), mat.Col(nil, j, closes), w, 1, talib.SMA)
		for end := w; end <= rows; end++ {
			out := fso.NewOutput(cols).(Vector)
			require.NoError(t, fso.Compute(testDate, assets, out,
				rowsOf(closes, end-w, end), rowsOf(lows, end-w, end), rowsOf(highs, end-w, end)))
			assert.InDelta(t, fastK[end-1], out[j], 1e-9)
		}
	}
}

func TestFastStochasticOscillator_ZeroRange(t *testing.T) {
	fso, err := NewFastStochasticOscillator(3)
	require.NoError(t, err)

	out := fso.NewOutput(1).(Vector)
	require.NoError(t, fso.Compute(testDate, symbols(1), out,
		columnWindow(5, 5, 5), columnWindow(5, 5, 5), columnWindow(5, 5, 5)))
	assert.True(t, math.IsNaN(out[0]))
}

func TestFastStochasticOscillator_UsesSuppliedRows(t *testing.T) {
	fso, err := NewFastStochasticOscillator(14)
	require.NoError(t, err)

	// fewer rows than the nominal window
	out := fso.NewOutput(1).(Vector)
	require.NoError(t, fso.Compute(testDate, symbols(1), out,
		columnWindow(1, 2, 3), columnWindow(0, 1, 2), columnWindow(2, 3, 4)))
	assert.InDelta(t, 75.0, out[0], 1e-12)
}
