package indicator

import (
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// MACD computes the MACD line (fast EMA minus slow EMA), its signal line,
// and the histogram (line minus signal).
type MACD struct{}

// NewMACD creates a new MACD calculator.
func NewMACD() Calculator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Compute implements Calculator.
func (m *MACD) Compute(frame *series.Frame, params types.IndicatorParams) error {
	if params.FastPeriod < 1 || params.SlowPeriod < 1 || params.SignalPeriod < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd periods must be >= 1, got fast=%d slow=%d signal=%d",
			params.FastPeriod, params.SlowPeriod, params.SignalPeriod)
	}

	prices := closes(frame)
	emaFast := emaSpan(prices, params.FastPeriod)
	emaSlow := emaSpan(prices, params.SlowPeriod)

	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = emaFast[i] - emaSlow[i]
	}

	signal := emaSpan(line, params.SignalPeriod)

	hist := make([]float64, len(prices))
	for i := range prices {
		hist[i] = line[i] - signal[i]
	}

	for field, values := range map[types.SeriesField][]float64{
		types.SeriesFieldValue:  line,
		types.SeriesFieldSignal: signal,
		types.SeriesFieldHist:   hist,
	} {
		key := types.SeriesKey{Indicator: m.Name(), Field: field, Params: params}
		if err := frame.SetSeries(key, values); err != nil {
			return err
		}
	}

	return nil
}
