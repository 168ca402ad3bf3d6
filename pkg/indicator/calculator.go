package indicator

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Series identifies one price series of a bar
type Series string

const (
	Open   Series = "open"
	High   Series = "high"
	Low    Series = "low"
	Close  Series = "close"
	Volume Series = "volume"
)

var (
	// ErrShapeMismatch is returned when windows, assets and output disagree in shape.
	// It always points at a defect in the caller.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrOutputType is returned when Compute receives an output buffer of the wrong type
	ErrOutputType = errors.New("unexpected output type")
)

// Factor is the interface for windowed cross-sectional indicators.
// Each indicator type implements this interface
type Factor interface {
	// Name returns the unique name of this factor (e.g., "bbands_20_2.0", "aroon_25")
	Name() string

	// WindowLength returns the number of trailing rows the factor expects per window
	WindowLength() int

	// Inputs returns the price series Compute expects, in argument order
	Inputs() []Series

	// OutputNames returns the declared output names in positional order
	OutputNames() []string

	// NewOutput allocates an output buffer for a cross-section of n assets
	NewOutput(n int) Output

	// Compute fills out for the evaluation date today.
	// windows holds one (rows x len(assets)) matrix per entry of Inputs().
	// Missing observations are NaN. The windows are never modified.
	Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error
}

// checkShape verifies the caller contract shared by every kernel.
// minRows is the smallest number of rows the kernel can work with and
// exactRows, when positive, pins the row count.
func checkShape(name string, assets []string, out Output, windows []*mat.Dense, want, minRows, exactRows int) error {
	if len(windows) != want {
		return fmt.Errorf("%w: %s expects %d windows, got %d", ErrShapeMismatch, name, want, len(windows))
	}
	if out.Len() != len(assets) {
		return fmt.Errorf("%w: %s output length %d != %d assets", ErrShapeMismatch, name, out.Len(), len(assets))
	}

	rows := -1
	for i, w := range windows {
		if w == nil {
			return fmt.Errorf("%w: %s window %d is nil", ErrShapeMismatch, name, i)
		}
		r, c := w.Dims()
		if c != len(assets) {
			return fmt.Errorf("%w: %s window %d has %d columns for %d assets", ErrShapeMismatch, name, i, c, len(assets))
		}
		if rows >= 0 && r != rows {
			return fmt.Errorf("%w: %s windows have %d and %d rows", ErrShapeMismatch, name, rows, r)
		}
		rows = r
	}

	if rows < minRows {
		return fmt.Errorf("%w: %s needs at least %d rows, got %d", ErrShapeMismatch, name, minRows, rows)
	}
	if exactRows > 0 && rows != exactRows {
		return fmt.Errorf("%w: %s expects %d rows, got %d", ErrShapeMismatch, name, exactRows, rows)
	}
	return nil
}

func outputTypeError(name string, out Output) error {
	return fmt.Errorf("%w: %s cannot write into %T", ErrOutputType, name, out)
}
