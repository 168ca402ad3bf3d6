package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// allFactors returns one instance of every kernel with small windows
func allFactors(t *testing.T) []Factor {
	t.Helper()

	bb, err := NewBollingerBands(5, 2)
	require.NoError(t, err)
	aroon, err := NewAroon(5)
	require.NoError(t, err)
	fso, err := NewFastStochasticOscillator(5)
	require.NoError(t, err)
	ichimoku, err := NewIchimokuKinkoHyo(IchimokuParams{WindowLength: 5, TenkanSenLength: 2, KijunSenLength: 3, ChikouSpanLength: 3})
	require.NoError(t, err)
	rocp, err := NewRateOfChangePercentage(5)
	require.NoError(t, err)
	lwma, err := NewLinearWeightedMovingAverage(5)
	require.NoError(t, err)
	tr, err := NewTrueRange()
	require.NoError(t, err)

	return []Factor{bb, aroon, fso, ichimoku, rocp, lwma, tr}
}

// inputsFor slices the random bars each factor declares
func inputsFor(f Factor, highs, lows, closes *mat.Dense) []*mat.Dense {
	rows, _ := closes.Dims()
	start := rows - f.WindowLength()
	windows := make([]*mat.Dense, 0, len(f.Inputs()))
	for _, s := range f.Inputs() {
		var src *mat.Dense
		switch s {
		case High:
			src = highs
		case Low:
			src = lows
		default:
			src = closes
		}
		windows = append(windows, rowsOf(src, start, rows))
	}
	return windows
}

func TestFactors_OutputNamesMatchBuffer(t *testing.T) {
	for _, f := range allFactors(t) {
		out := f.NewOutput(3)
		assert.Equal(t, f.OutputNames(), out.Names(), f.Name())
		assert.Len(t, out.Columns(), len(f.OutputNames()), f.Name())
		assert.Equal(t, 3, out.Len(), f.Name())
	}
}

func TestFactors_DoNotModifyInputs(t *testing.T) {
	highs, lows, closes := randomBars(17, 10, 4)
	assets := symbols(4)

	for _, f := range allFactors(t) {
		windows := inputsFor(f, highs, lows, closes)
		before := make([]*mat.Dense, len(windows))
		for i, w := range windows {
			before[i] = mat.DenseCopyOf(w)
		}

		require.NoError(t, f.Compute(testDate, assets, f.NewOutput(len(assets)), windows...), f.Name())
		for i := range windows {
			assert.True(t, mat.Equal(before[i], windows[i]), "%s modified window %d", f.Name(), i)
		}
	}
}

func TestFactors_CrossSectionalIndependence(t *testing.T) {
	highs, lows, closes := randomBars(19, 10, 4)
	assets := symbols(4)

	for _, f := range allFactors(t) {
		full := f.NewOutput(len(assets))
		require.NoError(t, f.Compute(testDate, assets, full, inputsFor(f, highs, lows, closes)...))

		// evaluate asset 2 on its own
		sub := func(w *mat.Dense) *mat.Dense {
			r, _ := w.Dims()
			return w.Slice(0, r, 2, 3).(*mat.Dense)
		}
		single := f.NewOutput(1)
		require.NoError(t, f.Compute(testDate, assets[2:3], single, inputsFor(f, sub(highs), sub(lows), sub(closes))...))

		fullCols, singleCols := full.Columns(), single.Columns()
		for c := range fullCols {
			assert.Equal(t, fullCols[c][2], singleCols[c][0], "%s output %d", f.Name(), c)
		}
	}
}

func TestFactors_MaskedAssetIsNaN(t *testing.T) {
	highs, lows, closes := randomBars(23, 10, 3)
	highs, lows, closes = maskColumn(highs, 1), maskColumn(lows, 1), maskColumn(closes, 1)
	assets := symbols(3)

	for _, f := range allFactors(t) {
		out := f.NewOutput(len(assets))
		require.NoError(t, f.Compute(testDate, assets, out, inputsFor(f, highs, lows, closes)...))
		for c, col := range out.Columns() {
			assert.True(t, math.IsNaN(col[1]), "%s output %d", f.Name(), c)
			assert.False(t, math.IsNaN(col[0]), "%s output %d", f.Name(), c)
		}
	}
}

func TestFactors_EmptyCrossSection(t *testing.T) {
	for _, f := range allFactors(t) {
		assert.NoError(t, f.Compute(testDate, nil, f.NewOutput(0)), f.Name())
	}
}

func TestFactors_ShapeErrors(t *testing.T) {
	highs, lows, closes := randomBars(29, 10, 3)
	assets := symbols(3)

	for _, f := range allFactors(t) {
		windows := inputsFor(f, highs, lows, closes)

		t.Run(f.Name()+"/window count", func(t *testing.T) {
			err := f.Compute(testDate, assets, f.NewOutput(3), windows[:len(windows)-1]...)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})

		t.Run(f.Name()+"/asset count", func(t *testing.T) {
			err := f.Compute(testDate, assets[:2], f.NewOutput(2), windows...)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})

		t.Run(f.Name()+"/output length", func(t *testing.T) {
			err := f.Compute(testDate, assets, f.NewOutput(2), windows...)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})

		t.Run(f.Name()+"/nil window", func(t *testing.T) {
			bad := append([]*mat.Dense(nil), windows...)
			bad[0] = nil
			err := f.Compute(testDate, assets, f.NewOutput(3), bad...)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})

		t.Run(f.Name()+"/too few rows", func(t *testing.T) {
			short := make([]*mat.Dense, len(windows))
			for i, w := range windows {
				short[i] = rowsOf(w, 0, 1)
			}
			err := f.Compute(testDate, assets, f.NewOutput(3), short...)
			if _, ok := f.(*FastStochasticOscillator); ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})

		t.Run(f.Name()+"/output type", func(t *testing.T) {
			var wrong Output = NewAroonOutput(3)
			if _, ok := f.(*Aroon); ok {
				wrong = NewVector(3)
			}
			err := f.Compute(testDate, assets, wrong, windows...)
			assert.ErrorIs(t, err, ErrOutputType)
		})
	}
}
