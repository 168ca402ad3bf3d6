package indicator

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LinearWeightedMovingAverage weights the i-th oldest close by i:
//
//	lwma = sum(i * p_i) / sum(i),  i = 1..W
//
// Any missing close in the window makes the result NaN.
type LinearWeightedMovingAverage struct {
	windowLength int
	weights      []float64 // 1..W
	weightSum    float64
	name         string
}

// NewLinearWeightedMovingAverage creates an LWMA over windowLength closes
func NewLinearWeightedMovingAverage(windowLength int) (*LinearWeightedMovingAverage, error) {
	if err := validateWindowLength("window_length", windowLength, 1); err != nil {
		return nil, err
	}

	weights := make([]float64, windowLength)
	for i := range weights {
		weights[i] = float64(i + 1)
	}

	// divide once after the dot product so integer inputs stay exact
	return &LinearWeightedMovingAverage{
		windowLength: windowLength,
		weights:      weights,
		weightSum:    floats.Sum(weights),
		name:         fmt.Sprintf("lwma_%d", windowLength),
	}, nil
}

func (l *LinearWeightedMovingAverage) Name() string          { return l.name }
func (l *LinearWeightedMovingAverage) WindowLength() int     { return l.windowLength }
func (l *LinearWeightedMovingAverage) Inputs() []Series      { return []Series{Close} }
func (l *LinearWeightedMovingAverage) OutputNames() []string { return []string{DefaultOutput} }
func (l *LinearWeightedMovingAverage) NewOutput(n int) Output {
	return NewVector(n)
}

// Compute expects a single close window
func (l *LinearWeightedMovingAverage) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	v, ok := out.(Vector)
	if !ok {
		return outputTypeError(l.name, out)
	}
	if len(assets) == 0 {
		return nil
	}
	if err := checkShape(l.name, assets, out, windows, 1, 1, l.windowLength); err != nil {
		return err
	}

	closes := windows[0]
	col := make([]float64, l.windowLength)
	for j := range assets {
		v[j] = floats.Dot(l.weights, column(closes, j, col)) / l.weightSum
	}
	return nil
}
