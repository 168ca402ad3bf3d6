package indicator

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// formatMultiplier formats a float parameter for use in factor names
func formatMultiplier(k float64) string {
	return strconv.FormatFloat(k, 'f', 1, 64)
}

// column copies column j of w into buf (allocating when buf is nil)
func column(w *mat.Dense, j int, buf []float64) []float64 {
	return mat.Col(buf, j, w)
}

// nanMax returns the largest non-NaN value, or NaN when there is none
func nanMax(s []float64) float64 {
	out := math.NaN()
	for _, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(out) || v > out {
			out = v
		}
	}
	return out
}

// nanMin returns the smallest non-NaN value, or NaN when there is none
func nanMin(s []float64) float64 {
	out := math.NaN()
	for _, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(out) || v < out {
			out = v
		}
	}
	return out
}

// lastArgMax returns the index of the largest non-NaN value.
// Ties resolve to the largest index. Returns -1 when every value is NaN.
func lastArgMax(s []float64) int {
	idx := -1
	for i, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if idx < 0 || v >= s[idx] {
			idx = i
		}
	}
	return idx
}

// lastArgMin returns the index of the smallest non-NaN value.
// Ties resolve to the largest index. Returns -1 when every value is NaN.
func lastArgMin(s []float64) int {
	idx := -1
	for i, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if idx < 0 || v <= s[idx] {
			idx = i
		}
	}
	return idx
}

// dropNaN returns the non-NaN values of s, reusing dst's storage
func dropNaN(dst, s []float64) []float64 {
	dst = dst[:0]
	for _, v := range s {
		if !math.IsNaN(v) {
			dst = append(dst, v)
		}
	}
	return dst
}
