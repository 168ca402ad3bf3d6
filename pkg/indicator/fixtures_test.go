package indicator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

// windowOf builds a rows x cols window from fn(row, col)
func windowOf(rows, cols int, fn func(i, j int) float64) *mat.Dense {
	w := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w.Set(i, j, fn(i, j))
		}
	}
	return w
}

// columnWindow builds a single-asset window from values
func columnWindow(values ...float64) *mat.Dense {
	return mat.NewDense(len(values), 1, append([]float64(nil), values...))
}

// rowsOf returns rows [start, end) of w
func rowsOf(w *mat.Dense, start, end int) *mat.Dense {
	_, c := w.Dims()
	return w.Slice(start, end, 0, c).(*mat.Dense)
}

// maskColumn returns a copy of w with column j set to NaN
func maskColumn(w *mat.Dense, j int) *mat.Dense {
	out := mat.DenseCopyOf(w)
	r, _ := out.Dims()
	for i := 0; i < r; i++ {
		out.Set(i, j, math.NaN())
	}
	return out
}

func symbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("SYM%d", i)
	}
	return out
}

// randomBars returns high, low and close windows of a random walk.
// Every bar satisfies low < close < high.
func randomBars(seed int64, rows, cols int) (highs, lows, closes *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	highs = mat.NewDense(rows, cols, nil)
	lows = mat.NewDense(rows, cols, nil)
	closes = mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		price := 50 + 10*rng.Float64()
		for i := 0; i < rows; i++ {
			price += rng.NormFloat64()
			low := price - 0.1 - rng.Float64()
			high := price + 0.1 + rng.Float64()
			lows.Set(i, j, low)
			highs.Set(i, j, high)
			closes.Set(i, j, low+(high-low)*rng.Float64())
		}
	}
	return highs, lows, closes
}
