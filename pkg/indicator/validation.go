package indicator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is wrapped by every construction-time validation error
var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError reports a sub-window length that exceeds the window length
type ParamError struct {
	Param        string
	Value        int
	WindowLength int
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s must be <= the window_length: %d > %d", e.Param, e.Value, e.WindowLength)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

func validateWindowLength(name string, n, min int) error {
	if n < min {
		return fmt.Errorf("%w: %s must be at least %d, got %d", ErrInvalidParameter, name, min, n)
	}
	return nil
}

// validateSubWindow checks min <= value <= windowLength for a named sub-window
func validateSubWindow(name string, value, windowLength int) error {
	if value > windowLength {
		return &ParamError{Param: name, Value: value, WindowLength: windowLength}
	}
	return validateWindowLength(name, value, 1)
}

func validatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive finite number, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}
