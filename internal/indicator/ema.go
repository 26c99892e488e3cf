package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// EMA computes an exponential moving average of the close price with
// smoothing alpha = 2/(period+1).
type EMA struct{}

// NewEMA creates a new EMA calculator.
func NewEMA() Calculator {
	return &EMA{}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Compute implements Calculator.
func (e *EMA) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "ema period must be >= 1, got %d", params.Period)
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: e.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, emaSpan(closes(frame), params.Period))
}
