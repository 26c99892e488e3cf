package backtest

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func (suite *EngineTestSuite) SetupSuite() {
	suite.engine = NewEngine(logger.NewNopLogger())
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

// risingFrame builds n strictly rising daily bars at midnight UTC.
func risingFrame(n int) *series.Frame {
	return series.NewFrame(midnightBars(n))
}

func (suite *EngineTestSuite) TestRisingSeriesProducesNoTrades() {
	// A strictly rising series pins RSI at 100 after warm-up, so an
	// oversold buy rule never fires and an overbought sell rule has no
	// position to close.
	result, err := suite.engine.Run(RunParams{
		Frame:         risingFrame(60),
		StartingValue: 10000,
		BuyStrategies: []types.StrategyConfig{
			{Name: "rsi_oversold", TradePercent: 0.5, Period: optional.Some(14), Threshold: optional.Some(30.0)},
		},
		SellStrategies: []types.StrategyConfig{
			{Name: "rsi_overbought", TradePercent: 0.5, Period: optional.Some(14), Threshold: optional.Some(70.0)},
		},
		Frequency: types.FrequencyDay,
	})

	suite.Require().NoError(err)
	suite.Empty(result.Trades)
	suite.Equal(10000.0, result.StartingValue)
	suite.Equal(10000.0, result.FinalValue)
}

func (suite *EngineTestSuite) TestMACDCrossRoundTrip() {
	// The histogram series is injected directly: -1 until bar 30, +1 until
	// bar 45, -1 afterwards. The engine must buy at bar 30's close, sell
	// at bar 45's close, and return final = 1000 * close45/close30.
	frame := risingFrame(60)
	key := types.SeriesKey{
		Indicator: types.IndicatorTypeMACD,
		Field:     types.SeriesFieldHist,
		Params:    types.IndicatorParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
	}

	hist := make([]float64, 60)
	for i := range hist {
		switch {
		case i < 30:
			hist[i] = -1
		case i < 45:
			hist[i] = 1
		default:
			hist[i] = -1
		}
	}

	suite.Require().NoError(frame.SetSeries(key, hist))

	result, err := suite.engine.Run(RunParams{
		Frame:          frame,
		StartingValue:  1000,
		BuyStrategies:  []types.StrategyConfig{{Name: "macd_buy", TradePercent: 1.0}},
		SellStrategies: []types.StrategyConfig{{Name: "macd_sell", TradePercent: 1.0}},
		Frequency:      types.FrequencyDay,
	})

	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 2)

	buy, sell := result.Trades[0], result.Trades[1]
	suite.Equal(types.TradeActionBuy, buy.Action)
	suite.Equal(130.0, buy.Price, "bar 30 closes at 130")
	suite.Equal(frame.Bar(30).Time.Format(time.RFC3339), buy.Timestamp)

	suite.Equal(types.TradeActionSell, sell.Action)
	suite.Equal(145.0, sell.Price, "bar 45 closes at 145")
	suite.Equal(frame.Bar(45).Time.Format(time.RFC3339), sell.Timestamp)

	// 1000 * 145/130, rounded to currency precision.
	suite.Equal(1115.38, result.FinalValue)
}

func (suite *EngineTestSuite) TestInsufficientData() {
	_, err := suite.engine.Run(RunParams{
		Frame:          risingFrame(20),
		StartingValue:  10000,
		BuyStrategies:  []types.StrategyConfig{{Name: "rsi_oversold", TradePercent: 0.5}},
		SellStrategies: []types.StrategyConfig{{Name: "rsi_overbought", TradePercent: 0.5}},
		Frequency:      types.FrequencyDay,
	})

	suite.Require().Error(err)
	suite.True(errors.IsInsufficientDataError(err))

	var insufficient *errors.InsufficientDataError
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal(MinBarCount, insufficient.Required)
	suite.Equal(20, insufficient.Actual)
}

func (suite *EngineTestSuite) TestInsufficientDataAfterDateFilter() {
	frame := risingFrame(60)
	start := frame.Bar(40).Time

	_, err := suite.engine.Run(RunParams{
		Frame:          frame,
		StartingValue:  10000,
		BuyStrategies:  []types.StrategyConfig{{Name: "rsi_oversold", TradePercent: 0.5}},
		SellStrategies: []types.StrategyConfig{{Name: "rsi_overbought", TradePercent: 0.5}},
		Frequency:      types.FrequencyDay,
		StartDate:      optional.Some(start),
	})

	suite.True(errors.IsInsufficientDataError(err), "the 50-bar minimum applies after date filtering")
}

func (suite *EngineTestSuite) TestFirstListedRuleWinsTieBreak() {
	// Both buy rules trigger on every tick once defined; only the
	// first-listed rule's evidence may appear on the trade.
	frame := risingFrame(60)

	bbKey := types.SeriesKey{
		Indicator: types.IndicatorTypeBollingerBands,
		Field:     types.SeriesFieldLower,
		Params:    types.IndicatorParams{Period: 20, StdDev: 2.0},
	}

	lower := make([]float64, 60)
	for i := range lower {
		lower[i] = frame.Bar(i).Close + 10 // close always at or below the band
	}

	suite.Require().NoError(frame.SetSeries(bbKey, lower))

	result, err := suite.engine.Run(RunParams{
		Frame:         frame,
		StartingValue: 10000,
		BuyStrategies: []types.StrategyConfig{
			{Name: "bb_lower_buy", TradePercent: 0.5},
			{Name: "rsi_oversold", TradePercent: 0.5, Threshold: optional.Some(200.0)},
		},
		SellStrategies: []types.StrategyConfig{
			{Name: "rsi_overbought", TradePercent: 0.5, Threshold: optional.Some(200.0)},
		},
		Frequency: types.FrequencyDay,
	})

	suite.Require().NoError(err)
	suite.Require().NotEmpty(result.Trades)
	suite.Equal(types.TradeActionBuy, result.Trades[0].Action)
	suite.Equal("bb_lower_buy", result.Trades[0].Evidence.Strategy)
}

func (suite *EngineTestSuite) TestSinglePositionInvariantAndTerminalClosure() {
	// Alternating histogram: repeated buys and sells. The running
	// buy-minus-sell count must stay within [0, 1] and any open position
	// is closed at the last bar.
	frame := risingFrame(60)
	key := types.SeriesKey{
		Indicator: types.IndicatorTypeMACD,
		Field:     types.SeriesFieldHist,
		Params:    types.IndicatorParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
	}

	hist := make([]float64, 60)
	for i := range hist {
		if (i/5)%2 == 0 {
			hist[i] = -1
		} else {
			hist[i] = 1
		}
	}

	suite.Require().NoError(frame.SetSeries(key, hist))

	result, err := suite.engine.Run(RunParams{
		Frame:          frame,
		StartingValue:  1000,
		BuyStrategies:  []types.StrategyConfig{{Name: "macd_buy", TradePercent: 0.5}},
		SellStrategies: []types.StrategyConfig{{Name: "macd_sell", TradePercent: 0.5}},
		Frequency:      types.FrequencyDay,
	})

	suite.Require().NoError(err)
	suite.Require().NotEmpty(result.Trades)

	open := 0
	for _, trade := range result.Trades {
		if trade.Action == types.TradeActionBuy {
			open++
		} else {
			open--
		}

		suite.GreaterOrEqual(open, 0)
		suite.LessOrEqual(open, 1)
	}

	suite.Equal(0, open, "every position is closed by the end of the run")

	last := result.Trades[len(result.Trades)-1]
	suite.Equal(types.TradeActionSell, last.Action)
}

func (suite *EngineTestSuite) TestValidationErrors() {
	frame := risingFrame(60)

	testCases := []struct {
		name   string
		params RunParams
		code   errors.ErrorCode
	}{
		{
			name: "no strategies",
			params: RunParams{
				Frame:         frame,
				StartingValue: 1000,
				Frequency:     types.FrequencyDay,
			},
			code: errors.ErrCodeBacktestNoStrategies,
		},
		{
			name: "non-positive starting value",
			params: RunParams{
				Frame:         frame,
				StartingValue: 0,
				BuyStrategies: []types.StrategyConfig{{Name: "macd_buy", TradePercent: 0.5}},
				Frequency:     types.FrequencyDay,
			},
			code: errors.ErrCodeBacktestConfigError,
		},
		{
			name: "unknown strategy name",
			params: RunParams{
				Frame:         frame,
				StartingValue: 1000,
				BuyStrategies: []types.StrategyConfig{{Name: "alpha_blend", TradePercent: 0.5}},
				Frequency:     types.FrequencyDay,
			},
			code: errors.ErrCodeUnknownStrategy,
		},
		{
			name: "sell rule on the buy side",
			params: RunParams{
				Frame:         frame,
				StartingValue: 1000,
				BuyStrategies: []types.StrategyConfig{{Name: "macd_sell", TradePercent: 0.5}},
				Frequency:     types.FrequencyDay,
			},
			code: errors.ErrCodeStrategyConfigError,
		},
		{
			name: "invalid trade percent",
			params: RunParams{
				Frame:         frame,
				StartingValue: 1000,
				BuyStrategies: []types.StrategyConfig{{Name: "macd_buy", TradePercent: 1.5}},
				Frequency:     types.FrequencyDay,
			},
			code: errors.ErrCodeStrategyConfigError,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.engine.Run(tc.params)
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *EngineTestSuite) TestRunsAreIndependent() {
	// Two consecutive runs over the same engine must not share state.
	params := RunParams{
		Frame:          risingFrame(60),
		StartingValue:  10000,
		BuyStrategies:  []types.StrategyConfig{{Name: "rsi_oversold", TradePercent: 0.5}},
		SellStrategies: []types.StrategyConfig{{Name: "rsi_overbought", TradePercent: 0.5}},
		Frequency:      types.FrequencyDay,
	}

	first, err := suite.engine.Run(params)
	suite.Require().NoError(err)

	second, err := suite.engine.Run(params)
	suite.Require().NoError(err)

	suite.Equal(first, second)
}
