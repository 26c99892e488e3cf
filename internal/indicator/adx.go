package indicator

import (
	"math"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// ADX computes the Average Directional Index with Wilder's smoothing of the
// directional movement components. Values need 2*period bars of warm-up.
type ADX struct{}

// NewADX creates a new ADX calculator.
func NewADX() Calculator {
	return &ADX{}
}

// Name returns the name of the indicator.
func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

// Compute implements Calculator.
func (a *ADX) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "adx period must be >= 1, got %d", params.Period)
	}

	n := frame.Len()
	out := nanSeries(n)
	period := params.Period

	if n < 2*period {
		return frame.SetSeries(types.SeriesKey{
			Indicator: a.Name(),
			Field:     types.SeriesFieldValue,
			Params:    params,
		}, out)
	}

	trueRanges := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		bar := frame.Bar(i)
		prev := frame.Bar(i - 1)

		trueRanges[i] = math.Max(bar.High-bar.Low,
			math.Max(math.Abs(bar.High-prev.Close), math.Abs(bar.Low-prev.Close)))

		upMove := bar.High - prev.High
		downMove := prev.Low - bar.Low

		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}

		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// Wilder's smoothing: seed with the sum over the first period, then
	// subtract 1/period of the running value before adding each new bar.
	var smoothTR, smoothPlus, smoothMinus float64
	for i := 1; i <= period; i++ {
		smoothTR += trueRanges[i]
		smoothPlus += plusDM[i]
		smoothMinus += minusDM[i]
	}

	dx := nanSeries(n)

	computeDX := func(i int) float64 {
		if smoothTR == 0 {
			return 0
		}

		plusDI := 100 * smoothPlus / smoothTR
		minusDI := 100 * smoothMinus / smoothTR

		if plusDI+minusDI == 0 {
			return 0
		}

		return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	dx[period] = computeDX(period)

	for i := period + 1; i < n; i++ {
		smoothTR = smoothTR - smoothTR/float64(period) + trueRanges[i]
		smoothPlus = smoothPlus - smoothPlus/float64(period) + plusDM[i]
		smoothMinus = smoothMinus - smoothMinus/float64(period) + minusDM[i]
		dx[i] = computeDX(i)
	}

	var dxSum float64
	for i := period; i < 2*period; i++ {
		dxSum += dx[i]
	}

	adx := dxSum / float64(period)
	out[2*period-1] = adx

	for i := 2 * period; i < n; i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
		out[i] = adx
	}

	return frame.SetSeries(types.SeriesKey{
		Indicator: a.Name(),
		Field:     types.SeriesFieldValue,
		Params:    params,
	}, out)
}
