package indicator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRateOfChangePercentage_New(t *testing.T) {
	rocp, err := NewRateOfChangePercentage(10)
	require.NoError(t, err)
	assert.Equal(t, "rocp_10", rocp.Name())
	assert.Equal(t, []Series{Close}, rocp.Inputs())

	_, err = NewRateOfChangePercentage(1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRateOfChangePercentage_Compute(t *testing.T) {
	const w = 10
	tests := []struct {
		name  string
		price func(i int) float64
		want  float64
	}{
		{"constant", func(int) float64 { return 1 }, 0},
		{"step down", func(i int) float64 {
			if i == 0 {
				return 2
			}
			return 1
		}, -50},
		{"linear", func(i int) float64 { return 2 + float64(i) }, 450},
		{"quadratic", func(i int) float64 { return 2 + float64(i*i) }, 4050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rocp, err := NewRateOfChangePercentage(w)
			require.NoError(t, err)

			closes := windowOf(w, 3, func(i, _ int) float64 { return tt.price(i) })
			out := rocp.NewOutput(3).(Vector)
			require.NoError(t, rocp.Compute(testDate, symbols(3), out, closes))
			for _, v := range out {
				assert.InDelta(t, tt.want, v, 1e-9)
			}
		})
	}
}

func TestRateOfChangePercentage_MatchesTALib(t *testing.T) {
	const rows, cols, w = 30, 3, 10
	_, _, closes := randomBars(3, rows, cols)
	assets := symbols(cols)

	rocp, err := NewRateOfChangePercentage(w)
	require.NoError(t, err)

	for j := 0; j < cols; j++ {
		// TA-Lib reports a ratio over period rows back
		ratio := talib.Rocp(mat.Col(nil, j, closes), w-1)
		for end := w; end <= rows; end++ {
			out := rocp.NewOutput(cols).(Vector)
			require.NoError(t, rocp.Compute(testDate, assets, out, rowsOf(closes, end-w, end)))
			assert.InDelta(t, ratio[end-1]*100, out[j], 1e-9)
		}
	}
}

func TestRateOfChangePercentage_Missing(t *testing.T) {
	rocp, err := NewRateOfChangePercentage(3)
	require.NoError(t, err)

	closes := windowOf(3, 3, func(i, j int) float64 {
		switch {
		case j == 0 && i == 0:
			return 0
		case j == 1 && i == 2:
			return math.NaN()
		}
		return float64(i + 1)
	})

	out := rocp.NewOutput(3).(Vector)
	require.NoError(t, rocp.Compute(testDate, symbols(3), out, closes))
	assert.True(t, math.IsNaN(out[0]), "zero first close")
	assert.True(t, math.IsNaN(out[1]), "missing last close")
	assert.InDelta(t, 200.0, out[2], 1e-12)
}
