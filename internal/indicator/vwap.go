package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// VWAP computes the cumulative volume-weighted average price over the whole
// series, using the typical price (high+low+close)/3 per bar.
type VWAP struct{}

// NewVWAP creates a new VWAP calculator.
func NewVWAP() Calculator {
	return &VWAP{}
}

// Name returns the name of the indicator.
func (v *VWAP) Name() types.IndicatorType {
	return types.IndicatorTypeVWAP
}

// Compute implements Calculator.
func (v *VWAP) Compute(frame *series.Frame, params types.IndicatorParams) error {
	n := frame.Len()
	out := nanSeries(n)

	var cumulativePV, cumulativeVolume float64

	for i := 0; i < n; i++ {
		bar := frame.Bar(i)
		typical := (bar.High + bar.Low + bar.Close) / 3
		cumulativePV += typical * bar.Volume
		cumulativeVolume += bar.Volume

		if cumulativeVolume > 0 {
			out[i] = cumulativePV / cumulativeVolume
		}
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: v.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
