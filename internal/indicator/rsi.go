package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// RSI computes the Relative Strength Index using Wilder's recursive
// smoothing (alpha = 1/period). The first `period` bars are warm-up.
type RSI struct{}

// NewRSI creates a new RSI calculator.
func NewRSI() Calculator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Compute implements Calculator.
func (r *RSI) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "rsi period must be >= 1, got %d", params.Period)
	}

	n := frame.Len()
	out := nanSeries(n)
	alpha := 1.0 / float64(params.Period)

	var avgGain, avgLoss float64

	for i := 1; i < n; i++ {
		change := frame.Bar(i).Close - frame.Bar(i-1).Close

		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain = gain
			avgLoss = loss
		} else {
			avgGain += alpha * (gain - avgGain)
			avgLoss += alpha * (loss - avgLoss)
		}

		if i < params.Period {
			continue
		}

		if avgLoss == 0 {
			if avgGain == 0 {
				// Flat series, 0/0: no reading
				continue
			}

			// Perfect uptrend
			out[i] = 100
			continue
		}

		rs := avgGain / avgLoss
		out[i] = 100 - (100 / (1 + rs))
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: r.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
