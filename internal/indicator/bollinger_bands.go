package indicator

import (
	"math"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// BollingerBands computes the middle band (SMA of close) and the upper and
// lower bands at StdDev standard deviations from it.
type BollingerBands struct{}

// NewBollingerBands creates a new Bollinger Bands calculator.
func NewBollingerBands() Calculator {
	return &BollingerBands{}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Compute implements Calculator.
func (b *BollingerBands) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.Period < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "bollinger period must be >= 1, got %d", params.Period)
	}

	if params.StdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "bollinger std_dev must be positive, got %f", params.StdDev)
	}

	n := frame.Len()
	upper := nanSeries(n)
	middle := nanSeries(n)
	lower := nanSeries(n)

	for i := params.Period - 1; i < n; i++ {
		var sum float64
		for j := i - params.Period + 1; j <= i; j++ {
			sum += frame.Bar(j).Close
		}

		mean := sum / float64(params.Period)

		var squaredDiffSum float64

		for j := i - params.Period + 1; j <= i; j++ {
			diff := frame.Bar(j).Close - mean
			squaredDiffSum += diff * diff
		}

		stdDev := math.Sqrt(squaredDiffSum / float64(params.Period))

		middle[i] = mean
		upper[i] = mean + params.StdDev*stdDev
		lower[i] = mean - params.StdDev*stdDev
	}

	for field, values := range map[types.SeriesField][]float64{
		types.SeriesFieldUpper:  upper,
		types.SeriesFieldMiddle: middle,
		types.SeriesFieldLower:  lower,
	} {
		key := types.SeriesKey{Indicator: b.Name(), Field: field, Params: params}
		if err := frame.SetSeries(key, values); err != nil {
			return err
		}
	}

	return nil
}
