package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// SMA computes a simple moving average of the close price.
type SMA struct{}

// NewSMA creates a new SMA calculator.
func NewSMA() Calculator {
	return &SMA{}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Compute implements Calculator.
func (s *SMA) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be >= 1, got %d", params.Period)
	}

	n := frame.Len()
	out := nanSeries(n)

	var sum float64

	for i := 0; i < n; i++ {
		sum += frame.Bar(i).Close
		if i >= params.Period {
			sum -= frame.Bar(i - params.Period).Close
		}

		if i >= params.Period-1 {
			out[i] = sum / float64(params.Period)
		}
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: s.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
