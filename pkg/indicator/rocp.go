package indicator

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// RateOfChangePercentage measures the change between the oldest and the
// newest close of the window, in percent:
//
//	rocp = 100 * (last - first) / first
//
// A first close of zero has no defined rate and yields NaN.
type RateOfChangePercentage struct {
	windowLength int
	name         string
}

// NewRateOfChangePercentage creates a ROCP indicator; windowLength must be at least 2
func NewRateOfChangePercentage(windowLength int) (*RateOfChangePercentage, error) {
	if err := validateWindowLength("window_length", windowLength, 2); err != nil {
		return nil, err
	}

	return &RateOfChangePercentage{
		windowLength: windowLength,
		name:         fmt.Sprintf("rocp_%d", windowLength),
	}, nil
}

func (r *RateOfChangePercentage) Name() string          { return r.name }
func (r *RateOfChangePercentage) WindowLength() int     { return r.windowLength }
func (r *RateOfChangePercentage) Inputs() []Series      { return []Series{Close} }
func (r *RateOfChangePercentage) OutputNames() []string { return []string{DefaultOutput} }
func (r *RateOfChangePercentage) NewOutput(n int) Output {
	return NewVector(n)
}

// Compute expects a single close window
func (r *RateOfChangePercentage) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	v, ok := out.(Vector)
	if !ok {
		return outputTypeError(r.name, out)
	}
	if len(assets) == 0 {
		return nil
	}
	if err := checkShape(r.name, assets, out, windows, 1, 2, r.windowLength); err != nil {
		return err
	}

	closes := windows[0]
	last := r.windowLength - 1
	for j := range assets {
		first := closes.At(0, j)
		if first == 0 {
			v[j] = math.NaN()
			continue
		}
		v[j] = (closes.At(last, j) - first) / first * 100
	}
	return nil
}
