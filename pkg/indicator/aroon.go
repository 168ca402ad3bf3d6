package indicator

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Aroon measures how recently the window's extreme low and high occurred.
// With idx counted from the oldest row (0) to the newest (W-1):
//
//	down = 100 * idx(min low)  / (W - 1)
//	up   = 100 * idx(max high) / (W - 1)
//
// Ties pick the most recent extreme.
type Aroon struct {
	windowLength int
	name         string
}

// NewAroon creates an Aroon indicator; windowLength must be at least 2
func NewAroon(windowLength int) (*Aroon, error) {
	if err := validateWindowLength("window_length", windowLength, 2); err != nil {
		return nil, err
	}

	return &Aroon{
		windowLength: windowLength,
		name:         fmt.Sprintf("aroon_%d", windowLength),
	}, nil
}

func (a *Aroon) Name() string          { return a.name }
func (a *Aroon) WindowLength() int     { return a.windowLength }
func (a *Aroon) Inputs() []Series      { return []Series{Low, High} }
func (a *Aroon) OutputNames() []string { return append([]string(nil), aroonNames...) }
func (a *Aroon) NewOutput(n int) Output {
	return NewAroonOutput(n)
}

// Compute expects the low window followed by the high window
func (a *Aroon) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	records, ok := out.(AroonOutput)
	if !ok {
		return outputTypeError(a.name, out)
	}
	if len(assets) == 0 {
		return nil
	}
	if err := checkShape(a.name, assets, out, windows, 2, 2, a.windowLength); err != nil {
		return err
	}

	lows, highs := windows[0], windows[1]
	span := float64(a.windowLength - 1)
	lowCol := make([]float64, a.windowLength)
	highCol := make([]float64, a.windowLength)

	for j := range assets {
		records[j] = AroonRecord{
			Down: aroonLine(lastArgMin(column(lows, j, lowCol)), span),
			Up:   aroonLine(lastArgMax(column(highs, j, highCol)), span),
		}
	}
	return nil
}

func aroonLine(idx int, span float64) float64 {
	if idx < 0 {
		return math.NaN()
	}
	return 100 * float64(idx) / span
}
