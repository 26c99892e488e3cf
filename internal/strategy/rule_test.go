package strategy

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

type RuleTestSuite struct {
	suite.Suite
}

func TestRuleSuite(t *testing.T) {
	suite.Run(t, new(RuleTestSuite))
}

func (suite *RuleTestSuite) TestParseRuleKindRoundTrip() {
	for _, kind := range Kinds() {
		parsed, err := ParseRuleKind(kind.String())
		suite.NoError(err)
		suite.Equal(kind, parsed)
	}
}

func (suite *RuleTestSuite) TestParseUnknownNameIsLoud() {
	_, err := ParseRuleKind("quantum_momentum")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownStrategy))
}

func (suite *RuleTestSuite) TestNewRuleUnknownName() {
	_, err := NewRule(types.StrategyConfig{Name: "definitely_not_a_rule", TradePercent: 0.5})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownStrategy))
}

func (suite *RuleTestSuite) TestSides() {
	testCases := []struct {
		kind RuleKind
		side Side
	}{
		{KindRSIOversold, SideBuy},
		{KindRSIOverbought, SideSell},
		{KindMACDBuy, SideBuy},
		{KindMACDSell, SideSell},
		{KindBBLowerBuy, SideBuy},
		{KindBBUpperSell, SideSell},
		{KindOBVRisingBuy, SideBuy},
		{KindPSARSell, SideSell},
	}

	for _, tc := range testCases {
		suite.Run(tc.kind.String(), func() {
			suite.Equal(tc.side, tc.kind.Side())
		})
	}
}

func (suite *RuleTestSuite) TestDefaultThresholds() {
	rule, err := NewRule(types.StrategyConfig{Name: "rsi_oversold", TradePercent: 0.5})
	suite.NoError(err)
	suite.Equal(20.0, rule.Threshold.Unwrap())

	rule, err = NewRule(types.StrategyConfig{Name: "rsi_overbought", TradePercent: 0.5})
	suite.NoError(err)
	suite.Equal(80.0, rule.Threshold.Unwrap())

	rule, err = NewRule(types.StrategyConfig{Name: "adx_strong_trend_buy", TradePercent: 0.5})
	suite.NoError(err)
	suite.Equal(25.0, rule.Threshold.Unwrap())

	rule, err = NewRule(types.StrategyConfig{Name: "macd_buy", TradePercent: 0.5})
	suite.NoError(err)
	suite.True(rule.Threshold.IsNone())
}

func (suite *RuleTestSuite) TestConfiguredThresholdWins() {
	rule, err := NewRule(types.StrategyConfig{
		Name:         "rsi_oversold",
		TradePercent: 0.5,
		Threshold:    optional.Some(30.0),
	})
	suite.NoError(err)
	suite.Equal(30.0, rule.Threshold.Unwrap())
}

func (suite *RuleTestSuite) TestNewRulesPreservesOrder() {
	configs := []types.StrategyConfig{
		{Name: "macd_buy", TradePercent: 0.5},
		{Name: "rsi_oversold", TradePercent: 0.3},
		{Name: "bb_lower_buy", TradePercent: 0.2},
	}

	rules, err := NewRules(configs)
	suite.NoError(err)
	suite.Require().Len(rules, 3)
	suite.Equal(KindMACDBuy, rules[0].Kind)
	suite.Equal(KindRSIOversold, rules[1].Kind)
	suite.Equal(KindBBLowerBuy, rules[2].Kind)
}

func (suite *RuleTestSuite) TestNewRulesFailsFast() {
	configs := []types.StrategyConfig{
		{Name: "macd_buy", TradePercent: 0.5},
		{Name: "not_a_rule", TradePercent: 0.5},
	}

	_, err := NewRules(configs)
	suite.Error(err)
}

func (suite *RuleTestSuite) TestRuleParams() {
	rule, err := NewRule(types.StrategyConfig{
		Name:         "rsi_oversold",
		TradePercent: 0.5,
		Period:       optional.Some(7),
	})
	suite.NoError(err)
	suite.Equal(7, rule.Params.Period)

	rule, err = NewRule(types.StrategyConfig{Name: "macd_sell", TradePercent: 0.5})
	suite.NoError(err)
	suite.Equal(types.IndicatorParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}, rule.Params)
}

func (suite *RuleTestSuite) TestWarmupKeys() {
	rule, err := NewRule(types.StrategyConfig{Name: "macd_buy", TradePercent: 0.5})
	suite.NoError(err)

	keys := rule.WarmupKeys()
	suite.Require().Len(keys, 1)
	suite.Equal(types.SeriesFieldHist, keys[0].Field)

	rule, err = NewRule(types.StrategyConfig{Name: "psar_buy", TradePercent: 0.5})
	suite.NoError(err)
	suite.Empty(rule.WarmupKeys(), "regime series impose no warm-up constraint")
}
