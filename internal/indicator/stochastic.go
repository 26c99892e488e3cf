package indicator

import (
	"math"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// Stochastic computes the stochastic oscillator: %K over KPeriod bars and
// %D as the simple moving average of %K over DPeriod bars.
type Stochastic struct{}

// NewStochastic creates a new stochastic oscillator calculator.
func NewStochastic() Calculator {
	return &Stochastic{}
}

// Name returns the name of the indicator.
func (s *Stochastic) Name() types.IndicatorType {
	return types.IndicatorTypeStochastic
}

// Compute implements Calculator.
func (s *Stochastic) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.KPeriod < 1 || params.DPeriod < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"stochastic periods must be >= 1, got k=%d d=%d", params.KPeriod, params.DPeriod)
	}

	n := frame.Len()
	kValues := nanSeries(n)
	dValues := nanSeries(n)

	for i := params.KPeriod - 1; i < n; i++ {
		lowest := math.Inf(1)
		highest := math.Inf(-1)

		for j := i - params.KPeriod + 1; j <= i; j++ {
			bar := frame.Bar(j)
			lowest = math.Min(lowest, bar.Low)
			highest = math.Max(highest, bar.High)
		}

		if highest == lowest {
			// Flat range, neutral reading
			kValues[i] = 50

			continue
		}

		kValues[i] = 100 * (frame.Bar(i).Close - lowest) / (highest - lowest)
	}

	for i := params.KPeriod + params.DPeriod - 2; i < n; i++ {
		var sum float64
		for j := i - params.DPeriod + 1; j <= i; j++ {
			sum += kValues[j]
		}

		dValues[i] = sum / float64(params.DPeriod)
	}

	for field, values := range map[types.SeriesField][]float64{
		types.SeriesFieldK: kValues,
		types.SeriesFieldD: dValues,
	} {
		key := types.SeriesKey{Indicator: s.Name(), Field: field, Params: params}
		if err := frame.SetSeries(key, values); err != nil {
			return err
		}
	}

	return nil
}
