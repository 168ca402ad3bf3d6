package indicator

import (
	"fmt"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBollingerBands_New(t *testing.T) {
	bb, err := NewBollingerBands(20, 2)
	require.NoError(t, err)
	assert.Equal(t, "bbands_20_2.0", bb.Name())
	assert.Equal(t, 20, bb.WindowLength())
	assert.Equal(t, 2.0, bb.K())
	assert.Equal(t, []Series{Close}, bb.Inputs())
	assert.Equal(t, []string{"lower", "middle", "upper"}, bb.OutputNames())

	_, err = NewBollingerBands(0, 2)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	for _, k := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err = NewBollingerBands(20, k)
		assert.ErrorIs(t, err, ErrInvalidParameter, "k=%v", k)
	}
}

func TestBollingerBands_MatchesTALib(t *testing.T) {
	const rows, cols = 24, 5
	assets := symbols(cols)
	closes := windowOf(rows, cols, func(i, j int) float64 { return float64(i + 100*j) })
	masked := maskColumn(closes, cols-1)

	for _, w := range []int{5, 10, 20} {
		for _, k := range []float64{1.5, 2, 2.5} {
			for _, mask := range []bool{false, true} {
				t.Run(fmt.Sprintf("w=%d/k=%.1f/mask=%v", w, k, mask), func(t *testing.T) {
					bb, err := NewBollingerBands(w, k)
					require.NoError(t, err)

					input := closes
					if mask {
						input = masked
					}

					for end := w; end <= rows; end++ {
						out := bb.NewOutput(cols).(*BandsOutput)
						require.NoError(t, bb.Compute(testDate, assets, out, rowsOf(input, end-w, end)))

						for j := 0; j < cols; j++ {
							if mask && j == cols-1 {
								assert.True(t, math.IsNaN(out.Lower[j]))
								assert.True(t, math.IsNaN(out.Middle[j]))
								assert.True(t, math.IsNaN(out.Upper[j]))
								continue
							}
							upper, middle, lower := talib.BBands(mat.Col(nil, j, closes), w, k, k, talib.SMA)
							assert.InDelta(t, upper[end-1], out.Upper[j], 1e-6)
							assert.InDelta(t, middle[end-1], out.Middle[j], 1e-6)
							assert.InDelta(t, lower[end-1], out.Lower[j], 1e-6)
						}
					}
				})
			}
		}
	}
}

func TestBollingerBands_UnpackSharesStorage(t *testing.T) {
	bb, err := NewBollingerBands(3, 2)
	require.NoError(t, err)

	out := bb.NewOutput(2).(*BandsOutput)
	require.NoError(t, bb.Compute(testDate, symbols(2), out, windowOf(3, 2, func(i, j int) float64 {
		return float64(i*(j+1) + 1)
	})))

	lower, middle, upper := out.Unpack()
	assert.Same(t, &out.Lower[0], &lower[0])
	assert.Same(t, &out.Middle[0], &middle[0])
	assert.Same(t, &out.Upper[0], &upper[0])

	byName, ok := out.Field("middle")
	require.True(t, ok)
	assert.Equal(t, middle, byName)
	assert.Equal(t, [][]float64{lower, middle, upper}, out.Columns())

	for j := range middle {
		assert.LessOrEqual(t, lower[j], middle[j])
		assert.LessOrEqual(t, middle[j], upper[j])
	}
}

func TestBollingerBands_ConstantCloses(t *testing.T) {
	bb, err := NewBollingerBands(4, 2)
	require.NoError(t, err)

	out := bb.NewOutput(1).(*BandsOutput)
	require.NoError(t, bb.Compute(testDate, symbols(1), out, columnWindow(7, 7, 7, 7)))
	assert.Equal(t, 7.0, out.Lower[0])
	assert.Equal(t, 7.0, out.Middle[0])
	assert.Equal(t, 7.0, out.Upper[0])
}

func TestBollingerBands_IgnoresMissingCloses(t *testing.T) {
	bb, err := NewBollingerBands(4, 1)
	require.NoError(t, err)

	out := bb.NewOutput(1).(*BandsOutput)
	require.NoError(t, bb.Compute(testDate, symbols(1), out, columnWindow(1, math.NaN(), 3, math.NaN())))
	assert.InDelta(t, 2.0, out.Middle[0], 1e-12)
	assert.InDelta(t, 3.0, out.Upper[0], 1e-12)
	assert.InDelta(t, 1.0, out.Lower[0], 1e-12)
}
