package indicator

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// TrueRange is the largest of today's high-low range and the gaps between
// today's extremes and the previous close:
//
//	tr = max(h[t] - l[t], |h[t] - c[t-1]|, |l[t] - c[t-1]|)
//
// Missing terms are skipped; NaN only when all three are missing.
type TrueRange struct{}

const trueRangeWindow = 2

// NewTrueRange creates a true range indicator. It has no parameters and
// never fails; the error is kept for symmetry with the other constructors.
func NewTrueRange() (*TrueRange, error) {
	return &TrueRange{}, nil
}

func (tr *TrueRange) Name() string          { return "true_range" }
func (tr *TrueRange) WindowLength() int     { return trueRangeWindow }
func (tr *TrueRange) Inputs() []Series      { return []Series{High, Low, Close} }
func (tr *TrueRange) OutputNames() []string { return []string{DefaultOutput} }
func (tr *TrueRange) NewOutput(n int) Output {
	return NewVector(n)
}

// Compute expects high, low and close windows of at least two rows.
// Only the last two rows are read.
func (tr *TrueRange) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	v, ok := out.(Vector)
	if !ok {
		return outputTypeError(tr.Name(), out)
	}
	if len(assets) == 0 {
		return nil
	}
	if err := checkShape(tr.Name(), assets, out, windows, 3, trueRangeWindow, 0); err != nil {
		return err
	}

	highs, lows, closes := windows[0], windows[1], windows[2]
	rows, _ := highs.Dims()
	cur, prev := rows-1, rows-2

	terms := make([]float64, 3)
	for j := range assets {
		h := highs.At(cur, j)
		l := lows.At(cur, j)
		prevClose := closes.At(prev, j)

		terms[0] = h - l
		terms[1] = math.Abs(h - prevClose)
		terms[2] = math.Abs(l - prevClose)
		v[j] = nanMax(terms)
	}
	return nil
}
