package api

import (
	"math"
	"net/http"
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantly-lab/quantly/internal/indicator"
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// handleChartData serves daily closing prices with a 14-period RSI overlay
// for charting. Intraday bars are collapsed to the last close of each day.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		ticker = "SPY"
	}

	bars, err := s.store.ReadBars(ticker, optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if len(bars) == 0 {
		s.writeError(w, http.StatusNotFound, "No data found for ticker "+ticker)
		return
	}

	daily := dailyCloses(bars)

	frame := series.NewFrame(daily)
	params := types.DefaultParams(types.IndicatorTypeRSI)
	key := types.SeriesKey{Indicator: types.IndicatorTypeRSI, Field: types.SeriesFieldValue, Params: params}

	registry := indicator.NewRegistry()
	calculator, err := registry.GetCalculator(types.IndicatorTypeRSI)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if err := calculator.Compute(frame, params); err != nil {
		s.writeDomainError(w, err)
		return
	}

	rsi, _ := frame.Series(key)

	priceData := make([]ChartDataPoint, frame.Len())
	rsiData := make([]RSIDataPoint, 0, frame.Len())

	for i := 0; i < frame.Len(); i++ {
		bar := frame.Bar(i)
		date := bar.Time.Format("2006-01-02")
		priceData[i] = ChartDataPoint{Date: date, Price: bar.Close}

		if rsi != nil && !math.IsNaN(rsi[i]) {
			rsiData = append(rsiData, RSIDataPoint{Date: date, RSI: rsi[i]})
		}
	}

	metadata := ChartMetadata{
		Ticker:    ticker,
		TotalDays: len(priceData),
		RSIDays:   len(rsiData),
	}
	if len(priceData) > 0 {
		metadata.StartDate = priceData[0].Date
		metadata.EndDate = priceData[len(priceData)-1].Date
	}

	s.writeJSON(w, http.StatusOK, ChartDataResponse{
		PriceData: priceData,
		RSIData:   rsiData,
		Metadata:  metadata,
	})
}

// dailyCloses keeps the last bar of each UTC day, timestamped at the day
// boundary.
func dailyCloses(bars []types.Bar) []types.Bar {
	var daily []types.Bar

	for _, bar := range bars {
		day := types.FrequencyDay.Truncate(bar.Time)
		bar.Time = day

		if len(daily) > 0 && daily[len(daily)-1].Time.Equal(day) {
			daily[len(daily)-1] = bar
			continue
		}

		daily = append(daily, bar)
	}

	return daily
}
