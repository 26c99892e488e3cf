package indicator

import (
	"math"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// ParabolicSAR computes the Parabolic Stop-and-Reverse indicator. It emits
// two series: the bull series carries the SAR value while the trend is up
// (NaN otherwise) and the bear series carries it while the trend is down.
type ParabolicSAR struct{}

// NewParabolicSAR creates a new Parabolic SAR calculator.
func NewParabolicSAR() Calculator {
	return &ParabolicSAR{}
}

// Name returns the name of the indicator.
func (p *ParabolicSAR) Name() types.IndicatorType {
	return types.IndicatorTypeParabolicSAR
}

// Compute implements Calculator.
func (p *ParabolicSAR) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.AFStart <= 0 || params.AFIncrement <= 0 || params.AFMax < params.AFStart {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"psar acceleration factors must satisfy 0 < start <= max and increment > 0, got start=%f increment=%f max=%f",
			params.AFStart, params.AFIncrement, params.AFMax)
	}

	n := frame.Len()
	bull := nanSeries(n)
	bear := nanSeries(n)

	if n < 2 {
		if err := frame.SetSeries(types.SeriesKey{Indicator: p.Name(), Field: types.SeriesFieldBull, Params: params}, bull); err != nil {
			return err
		}

		return frame.SetSeries(types.SeriesKey{Indicator: p.Name(), Field: types.SeriesFieldBear, Params: params}, bear)
	}

	uptrend := frame.Bar(1).Close > frame.Bar(0).Close
	af := params.AFStart

	var sar, extreme float64
	if uptrend {
		sar = frame.Bar(0).Low
		extreme = frame.Bar(1).High
	} else {
		sar = frame.Bar(0).High
		extreme = frame.Bar(1).Low
	}

	for i := 1; i < n; i++ {
		bar := frame.Bar(i)

		sar += af * (extreme - sar)

		if uptrend {
			// SAR may never rise into the prior two bars' range.
			sar = math.Min(sar, frame.Bar(i-1).Low)
			if i >= 2 {
				sar = math.Min(sar, frame.Bar(i-2).Low)
			}

			if bar.Low < sar {
				uptrend = false
				sar = extreme
				extreme = bar.Low
				af = params.AFStart
			} else if bar.High > extreme {
				extreme = bar.High
				af = math.Min(af+params.AFIncrement, params.AFMax)
			}
		} else {
			sar = math.Max(sar, frame.Bar(i-1).High)
			if i >= 2 {
				sar = math.Max(sar, frame.Bar(i-2).High)
			}

			if bar.High > sar {
				uptrend = true
				sar = extreme
				extreme = bar.High
				af = params.AFStart
			} else if bar.Low < extreme {
				extreme = bar.Low
				af = math.Min(af+params.AFIncrement, params.AFMax)
			}
		}

		if uptrend {
			bull[i] = sar
		} else {
			bear[i] = sar
		}
	}

	for field, values := range map[types.SeriesField][]float64{
		types.SeriesFieldBull: bull,
		types.SeriesFieldBear: bear,
	} {
		key := types.SeriesKey{Indicator: p.Name(), Field: field, Params: params}
		if err := frame.SetSeries(key, values); err != nil {
			return err
		}
	}

	return nil
}
