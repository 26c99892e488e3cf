// Package indicator computes technical indicator series over a price frame
// and resolves the minimal set of computations a strategy list requires.
package indicator

import (
	"math"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// Calculator computes the output series of one indicator family for a given
// parameterization and attaches them to the frame. Calculators are pure
// whole-series transforms; per-bar values may be NaN during warm-up.
type Calculator interface {
	// Name returns the indicator family this calculator computes.
	Name() types.IndicatorType
	// Compute attaches the indicator's output series to the frame.
	Compute(frame *series.Frame, params types.IndicatorParams) error
}

// nanSeries returns a series of n NaN values.
func nanSeries(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}

	return values
}

// emaSpan computes an exponential moving average with smoothing
// alpha = 2/(span+1), seeded at the first value.
func emaSpan(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}

	return out
}

// closes extracts the close column from a frame.
func closes(frame *series.Frame) []float64 {
	out := make([]float64, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		out[i] = frame.Bar(i).Close
	}

	return out
}
