package indicator

import (
	"math"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// ATR computes the Average True Range with Wilder's smoothing.
type ATR struct{}

// NewATR creates a new ATR calculator.
func NewATR() Calculator {
	return &ATR{}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Compute implements Calculator.
func (a *ATR) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "atr period must be >= 1, got %d", params.Period)
	}

	n := frame.Len()
	out := nanSeries(n)

	trueRanges := make([]float64, n)
	for i := 0; i < n; i++ {
		bar := frame.Bar(i)
		if i == 0 {
			trueRanges[i] = bar.High - bar.Low
			continue
		}

		prevClose := frame.Bar(i - 1).Close
		trueRanges[i] = math.Max(bar.High-bar.Low,
			math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
	}

	if n < params.Period {
		return frame.SetSeries(types.SeriesKey{
			Indicator: a.Name(),
			Field:     types.SeriesFieldValue,
			Params:    params,
		}, out)
	}

	// Seed with the simple average of the first period, then smooth.
	var sum float64
	for i := 0; i < params.Period; i++ {
		sum += trueRanges[i]
	}

	atr := sum / float64(params.Period)
	out[params.Period-1] = atr

	for i := params.Period; i < n; i++ {
		atr = (atr*float64(params.Period-1) + trueRanges[i]) / float64(params.Period)
		out[i] = atr
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: a.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
