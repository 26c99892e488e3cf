package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// WMA computes a weighted moving average of the close price with linearly
// increasing weights 1..period, the heaviest on the most recent bar.
type WMA struct{}

// NewWMA creates a new WMA calculator.
func NewWMA() Calculator {
	return &WMA{}
}

// Name returns the name of the indicator.
func (w *WMA) Name() types.IndicatorType {
	return types.IndicatorTypeWMA
}

// Compute implements Calculator.
func (w *WMA) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "wma period must be >= 1, got %d", params.Period)
	}

	n := frame.Len()
	out := nanSeries(n)
	weightSum := float64(params.Period) * float64(params.Period+1) / 2

	for i := params.Period - 1; i < n; i++ {
		var weighted float64
		for j := 0; j < params.Period; j++ {
			weighted += frame.Bar(i-params.Period+1+j).Close * float64(j+1)
		}

		out[i] = weighted / weightSum
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: w.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
