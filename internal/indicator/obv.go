package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// OBV computes On-Balance Volume: a running total that adds volume on up
// closes and subtracts it on down closes.
type OBV struct{}

// NewOBV creates a new OBV calculator.
func NewOBV() Calculator {
	return &OBV{}
}

// Name returns the name of the indicator.
func (o *OBV) Name() types.IndicatorType {
	return types.IndicatorTypeOBV
}

// Compute implements Calculator.
func (o *OBV) Compute(frame *series.Frame, params types.IndicatorParams) error {
	n := frame.Len()
	out := make([]float64, n)

	var obv float64

	for i := 0; i < n; i++ {
		if i > 0 {
			change := frame.Bar(i).Close - frame.Bar(i-1).Close
			switch {
			case change > 0:
				obv += frame.Bar(i).Volume
			case change < 0:
				obv -= frame.Bar(i).Volume
			}
		}

		out[i] = obv
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: o.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
