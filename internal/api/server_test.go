package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantly-lab/quantly/internal/backtest"
	"github.com/quantly-lab/quantly/internal/config"
	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// memStore is an in-memory stand-in for the DuckDB store.
type memStore struct {
	bars    map[string][]types.Bar
	readErr error
}

func newMemStore() *memStore {
	return &memStore{bars: make(map[string][]types.Bar)}
}

func (s *memStore) WriteBars(ticker string, bars []types.Bar) error {
	s.bars[ticker] = append(s.bars[ticker], bars...)
	return nil
}

func (s *memStore) ImportCSV(string, string) (int, error) { return 0, nil }

func (s *memStore) ReadBars(ticker string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}

	var out []types.Bar
	for _, bar := range s.bars[ticker] {
		if start.IsSome() && bar.Time.Before(start.Unwrap()) {
			continue
		}
		if end.IsSome() && bar.Time.After(end.Unwrap()) {
			continue
		}
		out = append(out, bar)
	}

	return out, nil
}

func (s *memStore) LastBar(ticker string) (types.Bar, error) {
	bars := s.bars[ticker]
	if len(bars) == 0 {
		return types.Bar{}, errors.Newf(errors.ErrCodeDataNotFound, "no bars for %s", ticker)
	}

	return bars[len(bars)-1], nil
}

func (s *memStore) CountBars(ticker string) (int, error) { return len(s.bars[ticker]), nil }

func (s *memStore) Tickers() ([]string, error) {
	tickers := make([]string, 0, len(s.bars))
	for ticker := range s.bars {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	return tickers, nil
}

func (s *memStore) Close() error { return nil }

type ServerTestSuite struct {
	suite.Suite

	store   *memStore
	handler http.Handler
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.store = newMemStore()

	log := logger.NewNopLogger()
	server := NewServer(config.DefaultConfig(), suite.store, backtest.NewEngine(log), log)
	suite.handler = server.Handler()
}

func (suite *ServerTestSuite) seedBars(ticker string, n int) {
	bars := make([]types.Bar, n)
	for i := range bars {
		close := 100 + float64(i)
		bars[i] = types.Bar{
			Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   close,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1000,
		}
	}

	suite.Require().NoError(suite.store.WriteBars(ticker, bars))
}

func (suite *ServerTestSuite) do(method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *ServerTestSuite) decodeError(rec *httptest.ResponseRecorder) string {
	var resp errorResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp.Detail
}

func backtestBody(ticker string) map[string]any {
	return map[string]any{
		"ticker":         ticker,
		"starting_value": 10000,
		"buy_strategies": []map[string]any{
			{"name": "rsi_oversold", "trade_percent": 0.5, "threshold": 30},
		},
		"sell_strategies": []map[string]any{
			{"name": "rsi_overbought", "trade_percent": 0.5, "threshold": 70},
		},
	}
}

func (suite *ServerTestSuite) TestHealth() {
	rec := suite.do(http.MethodGet, "/healthz", nil, nil)

	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (suite *ServerTestSuite) TestAPIKeyRequired() {
	cfg := config.DefaultConfig()
	cfg.APIKey = "secret"

	log := logger.NewNopLogger()
	server := NewServer(cfg, suite.store, backtest.NewEngine(log), log)
	suite.handler = server.Handler()

	rec := suite.do(http.MethodGet, "/api/strategies", nil, nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Equal("Invalid API key", suite.decodeError(rec))

	rec = suite.do(http.MethodGet, "/api/strategies", nil, map[string]string{"X-API-Key": "wrong"})
	suite.Equal(http.StatusUnauthorized, rec.Code)

	rec = suite.do(http.MethodGet, "/api/strategies", nil, map[string]string{"X-API-Key": "secret"})
	suite.Equal(http.StatusOK, rec.Code)

	// Health stays open for liveness checks even with auth enabled.
	rec = suite.do(http.MethodGet, "/healthz", nil, nil)
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *ServerTestSuite) TestBacktestHappyPath() {
	suite.seedBars("AAPL", 60)

	rec := suite.do(http.MethodPost, "/api/backtest", backtestBody("AAPL"), nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp BacktestResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	suite.Equal("completed", resp.Status)
	suite.True(strings.HasPrefix(resp.BID, "backtest"))
	suite.Equal(10000.0, resp.Result.StartingValue)
	// A monotonically rising series never dips into oversold territory.
	suite.Empty(resp.Result.Trades)
	suite.Equal(10000.0, resp.Result.FinalValue)
}

func (suite *ServerTestSuite) TestBacktestInsufficientData() {
	suite.seedBars("AAPL", 20)

	rec := suite.do(http.MethodPost, "/api/backtest", backtestBody("AAPL"), nil)
	suite.Equal(http.StatusUnprocessableEntity, rec.Code)
	suite.Contains(suite.decodeError(rec), "20")
}

func (suite *ServerTestSuite) TestBacktestValidation() {
	suite.seedBars("AAPL", 60)

	tests := []struct {
		name     string
		mutate   func(body map[string]any)
		wantCode int
		wantText string
	}{
		{
			name:     "missing ticker",
			mutate:   func(body map[string]any) { body["ticker"] = "" },
			wantCode: http.StatusBadRequest,
			wantText: "ticker is required",
		},
		{
			name: "unknown strategy",
			mutate: func(body map[string]any) {
				body["buy_strategies"] = []map[string]any{{"name": "astrology_buy", "trade_percent": 0.5}}
			},
			wantCode: http.StatusBadRequest,
			wantText: "astrology_buy",
		},
		{
			name: "sell rule on buy side",
			mutate: func(body map[string]any) {
				body["buy_strategies"] = []map[string]any{{"name": "macd_sell", "trade_percent": 0.5}}
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "no strategies",
			mutate: func(body map[string]any) {
				body["buy_strategies"] = []map[string]any{}
				body["sell_strategies"] = []map[string]any{}
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad frequency",
			mutate:   func(body map[string]any) { body["frequency"] = "2d" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero starting value",
			mutate:   func(body map[string]any) { body["starting_value"] = 0 },
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			body := backtestBody("AAPL")
			tc.mutate(body)

			rec := suite.do(http.MethodPost, "/api/backtest", body, nil)
			suite.Equal(tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantText != "" {
				suite.Contains(suite.decodeError(rec), tc.wantText)
			}
		})
	}
}

func (suite *ServerTestSuite) TestBacktestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/backtest", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *ServerTestSuite) TestPrices() {
	suite.seedBars("SPY", 10)

	rec := suite.do(http.MethodGet, "/api/prices?ticker=SPY", nil, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var rows []PriceData
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rows))
	suite.Len(rows, 10)
	suite.Equal("SPY", rows[0].Ticker)
	suite.Equal(100.0, rows[0].Close)
}

func (suite *ServerTestSuite) TestPricesBounds() {
	suite.seedBars("SPY", 10)

	rec := suite.do(http.MethodGet, "/api/prices?ticker=SPY&start=2024-01-03&end=2024-01-05", nil, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var rows []PriceData
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rows))
	suite.Len(rows, 3)
	suite.Equal(102.0, rows[0].Close)
}

func (suite *ServerTestSuite) TestPricesLimit() {
	suite.seedBars("SPY", 10)

	rec := suite.do(http.MethodGet, "/api/prices?ticker=SPY&limit=4", nil, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var rows []PriceData
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rows))
	suite.Len(rows, 4)
}

func (suite *ServerTestSuite) TestPricesErrors() {
	suite.seedBars("SPY", 10)

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{"missing ticker", "/api/prices", http.StatusBadRequest},
		{"unknown ticker", "/api/prices?ticker=NOPE", http.StatusNotFound},
		{"bad start", "/api/prices?ticker=SPY&start=yesterday", http.StatusBadRequest},
		{"bad limit", "/api/prices?ticker=SPY&limit=0", http.StatusBadRequest},
		{"non numeric limit", "/api/prices?ticker=SPY&limit=ten", http.StatusBadRequest},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			rec := suite.do(http.MethodGet, tc.target, nil, nil)
			suite.Equal(tc.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func (suite *ServerTestSuite) TestStrategiesCatalog() {
	rec := suite.do(http.MethodGet, "/api/strategies", nil, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Strategies   []StrategyInfo  `json:"strategies"`
		ConfigSchema json.RawMessage `json:"config_schema"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	suite.Len(resp.Strategies, 22)
	suite.NotEmpty(resp.ConfigSchema)

	byName := make(map[string]StrategyInfo, len(resp.Strategies))
	for _, info := range resp.Strategies {
		byName[info.Name] = info
	}

	suite.Equal("buy", byName["rsi_oversold"].Side)
	suite.Equal("sell", byName["macd_sell"].Side)
	suite.Equal(string(types.IndicatorTypeBollingerBands), byName["bb_lower_buy"].Indicator)
}

func (suite *ServerTestSuite) TestChartData() {
	suite.seedBars("SPY", 40)

	rec := suite.do(http.MethodGet, "/api/chart-data?ticker=SPY", nil, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var resp ChartDataResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	suite.Len(resp.PriceData, 40)
	suite.Equal("SPY", resp.Metadata.Ticker)
	suite.Equal(40, resp.Metadata.TotalDays)
	// RSI-14 produces values only once the warm-up window has filled.
	suite.Equal(40-14, resp.Metadata.RSIDays)
	for _, point := range resp.RSIData {
		suite.InDelta(100, point.RSI, 0.0001, fmt.Sprintf("rising series on %s", point.Date))
	}
}

func (suite *ServerTestSuite) TestChartDataNoData() {
	rec := suite.do(http.MethodGet, "/api/chart-data?ticker=EMPTY", nil, nil)
	suite.Equal(http.StatusNotFound, rec.Code)
}
