package indicator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAroon_New(t *testing.T) {
	a, err := NewAroon(25)
	require.NoError(t, err)
	assert.Equal(t, "aroon_25", a.Name())
	assert.Equal(t, []Series{Low, High}, a.Inputs())
	assert.Equal(t, []string{"down", "up"}, a.OutputNames())

	_, err = NewAroon(1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestAroon_Compute(t *testing.T) {
	const w = 10
	tests := []struct {
		name     string
		lows     []float64
		highs    []float64
		wantDown float64
		wantUp   float64
	}{
		{
			name:     "rising",
			lows:     []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			highs:    []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			wantDown: 0,
			wantUp:   100,
		},
		{
			name:     "falling",
			lows:     []float64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
			highs:    []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
			wantDown: 100,
			wantUp:   0,
		},
		{
			name:     "interior extremes",
			lows:     []float64{10, 10, 10, 1, 10, 10, 10, 10, 10, 10},
			highs:    []float64{1, 1, 1, 1, 1, 10, 1, 1, 1, 1},
			wantDown: 100.0 * 3 / 9,
			wantUp:   100.0 * 5 / 9,
		},
		{
			name:     "ties pick the newest row",
			lows:     []float64{5, 1, 5, 5, 1, 5, 5, 5, 5, 5},
			highs:    []float64{9, 9, 9, 9, 9, 9, 9, 9, 9, 9},
			wantDown: 100.0 * 4 / 9,
			wantUp:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAroon(w)
			require.NoError(t, err)

			// three identical assets
			lows := windowOf(w, 3, func(i, _ int) float64 { return tt.lows[i] })
			highs := windowOf(w, 3, func(i, _ int) float64 { return tt.highs[i] })

			out := a.NewOutput(3).(AroonOutput)
			require.NoError(t, a.Compute(testDate, symbols(3), out, lows, highs))
			for _, r := range out {
				assert.InDelta(t, tt.wantDown, r.Down, 1e-9)
				assert.InDelta(t, tt.wantUp, r.Up, 1e-9)
			}
		})
	}
}

func TestAroon_MatchesTALib(t *testing.T) {
	const rows, cols, w = 60, 4, 25
	highs, lows, _ := randomBars(7, rows, cols)
	assets := symbols(cols)

	a, err := NewAroon(w)
	require.NoError(t, err)

	for j := 0; j < cols; j++ {
		down, up := talib.Aroon(mat.Col(nil, j, highs), mat.Col(nil, j, lows), w-1)
		for end := w; end <= rows; end++ {
			out := a.NewOutput(cols).(AroonOutput)
			require.NoError(t, a.Compute(testDate, assets, out, rowsOf(lows, end-w, end), rowsOf(highs, end-w, end)))
			assert.InDelta(t, down[end-1], out[j].Down, 1e-9)
			assert.InDelta(t, up[end-1], out[j].Up, 1e-9)
		}
	}
}

func TestAroon_MaskedAsset(t *testing.T) {
	a, err := NewAroon(5)
	require.NoError(t, err)

	lows := maskColumn(windowOf(5, 2, func(i, j int) float64 { return float64(i + j) }), 1)
	highs := maskColumn(windowOf(5, 2, func(i, j int) float64 { return float64(i + j + 1) }), 1)

	out := a.NewOutput(2).(AroonOutput)
	require.NoError(t, a.Compute(testDate, symbols(2), out, lows, highs))
	assert.Equal(t, 0.0, out[0].Down)
	assert.Equal(t, 100.0, out[0].Up)
	assert.True(t, math.IsNaN(out[1].Down))
	assert.True(t, math.IsNaN(out[1].Up))

	down, ok := out.Field("down")
	require.True(t, ok)
	assert.Equal(t, 0.0, down[0])
	_, ok = out.Field("sideways")
	assert.False(t, ok)
}
