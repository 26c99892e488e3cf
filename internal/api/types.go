package api

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantly-lab/quantly/internal/types"
)

// BacktestRequest is the body of POST /api/backtest.
type BacktestRequest struct {
	Ticker         string                 `json:"ticker" validate:"required"`
	StartingValue  float64                `json:"starting_value" validate:"required,gt=0"`
	BuyStrategies  []types.StrategyConfig `json:"buy_strategies"`
	SellStrategies []types.StrategyConfig `json:"sell_strategies"`
	// Frequency defaults to daily decision ticks when omitted.
	Frequency optional.Option[string]    `json:"frequency,omitempty"`
	StartDate optional.Option[time.Time] `json:"start_date,omitempty"`
	EndDate   optional.Option[time.Time] `json:"end_date,omitempty"`
}

type BacktestResponse struct {
	Status string               `json:"status"`
	BID    string               `json:"b_id"`
	Result types.BacktestResult `json:"result"`
}

// PriceData is one row of GET /api/prices.
type PriceData struct {
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

type ChartDataPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type RSIDataPoint struct {
	Date string  `json:"date"`
	RSI  float64 `json:"rsi"`
}

type ChartMetadata struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	TotalDays int    `json:"total_days"`
	RSIDays   int    `json:"rsi_days"`
}

type ChartDataResponse struct {
	PriceData []ChartDataPoint `json:"price_data"`
	RSIData   []RSIDataPoint   `json:"rsi_data"`
	Metadata  ChartMetadata    `json:"metadata"`
}

// StrategyInfo describes one rule family in GET /api/strategies.
type StrategyInfo struct {
	Name      string `json:"name"`
	Side      string `json:"side"`
	Indicator string `json:"indicator"`
}

type StrategiesResponse struct {
	Strategies   []StrategyInfo `json:"strategies"`
	ConfigSchema any            `json:"config_schema"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
