package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/pkg/indicator"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidLength is returned when a window of fewer than one row is requested
	ErrInvalidLength = errors.New("window length must be at least 1")
)

// WindowProvider supplies trailing windows of bar data to the evaluation engine
type WindowProvider interface {
	// Window returns the last length sessions on or before date for assets.
	// The frame holds fewer rows when history is shorter.
	Window(ctx context.Context, date time.Time, assets []string, length int) (*Frame, error)

	// Sessions returns the trading sessions within [start, end], oldest first
	Sessions(ctx context.Context, start, end time.Time) ([]time.Time, error)
}

// allSeries lists every series a frame carries
var allSeries = []indicator.Series{
	indicator.Open,
	indicator.High,
	indicator.Low,
	indicator.Close,
	indicator.Volume,
}

// Frame is a block of trailing sessions x assets for every bar series.
// Missing observations are NaN.
type Frame struct {
	Date     time.Time
	Assets   []string
	Sessions []time.Time // row dates, oldest first
	Exists   []bool      // asset has a bar on Date

	series map[indicator.Series]*mat.Dense
}

// Rows returns the number of sessions in the frame
func (f *Frame) Rows() int {
	return len(f.Sessions)
}

// Series returns the full window of one series, or nil for an empty frame
func (f *Frame) Series(s indicator.Series) *mat.Dense {
	return f.series[s]
}

// Tail returns a view of the last n rows of a series.
// ok is false when the frame holds fewer than n rows.
func (f *Frame) Tail(s indicator.Series, n int) (*mat.Dense, bool) {
	w := f.series[s]
	if w == nil || n < 1 {
		return nil, false
	}
	rows, cols := w.Dims()
	if rows < n {
		return nil, false
	}
	return w.Slice(rows-n, rows, 0, cols).(*mat.Dense), true
}

// BuildFrame lays bars out on the given sessions.
// barsBySymbol may miss symbols and may hold bars outside sessions; both are ignored.
func BuildFrame(date time.Time, assets []string, sessions []time.Time, barsBySymbol map[string][]*models.Bar) *Frame {
	date = models.SessionDate(date)
	f := &Frame{
		Date:     date,
		Assets:   assets,
		Sessions: sessions,
		Exists:   make([]bool, len(assets)),
		series:   make(map[indicator.Series]*mat.Dense, len(allSeries)),
	}
	if len(sessions) == 0 || len(assets) == 0 {
		return f
	}

	rowOf := make(map[time.Time]int, len(sessions))
	for i, s := range sessions {
		rowOf[models.SessionDate(s)] = i
	}

	for _, s := range allSeries {
		data := make([]float64, len(sessions)*len(assets))
		for i := range data {
			data[i] = math.NaN()
		}
		f.series[s] = mat.NewDense(len(sessions), len(assets), data)
	}

	for j, symbol := range assets {
		for _, bar := range barsBySymbol[symbol] {
			i, ok := rowOf[models.SessionDate(bar.Date)]
			if !ok {
				continue
			}
			f.series[indicator.Open].Set(i, j, bar.Open)
			f.series[indicator.High].Set(i, j, bar.High)
			f.series[indicator.Low].Set(i, j, bar.Low)
			f.series[indicator.Close].Set(i, j, bar.Close)
			f.series[indicator.Volume].Set(i, j, float64(bar.Volume))
			if i == len(sessions)-1 && sessions[i].Equal(date) {
				f.Exists[j] = true
			}
		}
	}
	return f
}

func validateLength(length int) error {
	if length < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}
	return nil
}
