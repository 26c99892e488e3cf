// Package strategy defines the catalog of signal-evaluation rules. A rule is
// a pure function of a lookback window; the rule families form a closed set
// dispatched by an exhaustive switch, so an unknown rule name is a
// configuration error at parse time rather than a silent no-op at run time.
package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/quantly-lab/quantly/internal/indicator"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// Side tells whether a rule family opens or closes a position.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// RuleKind enumerates the rule families.
type RuleKind int

const (
	KindRSIOversold RuleKind = iota
	KindRSIOverbought
	KindMACDBuy
	KindMACDSell
	KindSMABuy
	KindSMASell
	KindEMABuy
	KindEMASell
	KindWMABuy
	KindWMASell
	KindBBLowerBuy
	KindBBUpperSell
	KindStochOversold
	KindStochOverbought
	KindADXStrongTrendBuy
	KindADXStrongTrendSell
	KindVWAPBuy
	KindVWAPSell
	KindOBVRisingBuy
	KindOBVFallingSell
	KindPSARBuy
	KindPSARSell
)

var kindNames = map[RuleKind]string{
	KindRSIOversold:        "rsi_oversold",
	KindRSIOverbought:      "rsi_overbought",
	KindMACDBuy:            "macd_buy",
	KindMACDSell:           "macd_sell",
	KindSMABuy:             "sma_buy",
	KindSMASell:            "sma_sell",
	KindEMABuy:             "ema_buy",
	KindEMASell:            "ema_sell",
	KindWMABuy:             "wma_buy",
	KindWMASell:            "wma_sell",
	KindBBLowerBuy:         "bb_lower_buy",
	KindBBUpperSell:        "bb_upper_sell",
	KindStochOversold:      "stoch_oversold",
	KindStochOverbought:    "stoch_overbought",
	KindADXStrongTrendBuy:  "adx_strong_trend_buy",
	KindADXStrongTrendSell: "adx_strong_trend_sell",
	KindVWAPBuy:            "vwap_buy",
	KindVWAPSell:           "vwap_sell",
	KindOBVRisingBuy:       "obv_rising_buy",
	KindOBVFallingSell:     "obv_falling_sell",
	KindPSARBuy:            "psar_buy",
	KindPSARSell:           "psar_sell",
}

var kindsByName = func() map[string]RuleKind {
	m := make(map[string]RuleKind, len(kindNames))
	for kind, name := range kindNames {
		m[name] = kind
	}

	return m
}()

// ParseRuleKind resolves a rule family by name. Unknown names are a loud
// configuration error.
func ParseRuleKind(name string) (RuleKind, error) {
	kind, ok := kindsByName[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy name %q", name)
	}

	return kind, nil
}

// Kinds lists every rule family in a stable order.
func Kinds() []RuleKind {
	kinds := make([]RuleKind, 0, len(kindNames))
	for kind := KindRSIOversold; kind <= KindPSARSell; kind++ {
		kinds = append(kinds, kind)
	}

	return kinds
}

func (k RuleKind) String() string {
	return kindNames[k]
}

// Indicator returns the indicator family the rule reads.
func (k RuleKind) Indicator() types.IndicatorType {
	switch k {
	case KindRSIOversold, KindRSIOverbought:
		return types.IndicatorTypeRSI
	case KindMACDBuy, KindMACDSell:
		return types.IndicatorTypeMACD
	case KindSMABuy, KindSMASell:
		return types.IndicatorTypeSMA
	case KindEMABuy, KindEMASell:
		return types.IndicatorTypeEMA
	case KindWMABuy, KindWMASell:
		return types.IndicatorTypeWMA
	case KindBBLowerBuy, KindBBUpperSell:
		return types.IndicatorTypeBollingerBands
	case KindStochOversold, KindStochOverbought:
		return types.IndicatorTypeStochastic
	case KindADXStrongTrendBuy, KindADXStrongTrendSell:
		return types.IndicatorTypeADX
	case KindVWAPBuy, KindVWAPSell:
		return types.IndicatorTypeVWAP
	case KindOBVRisingBuy, KindOBVFallingSell:
		return types.IndicatorTypeOBV
	case KindPSARBuy, KindPSARSell:
		return types.IndicatorTypeParabolicSAR
	default:
		return ""
	}
}

// Side returns whether the family is a buy or a sell rule.
func (k RuleKind) Side() Side {
	switch k {
	case KindRSIOversold, KindMACDBuy, KindSMABuy, KindEMABuy, KindWMABuy,
		KindBBLowerBuy, KindStochOversold, KindADXStrongTrendBuy,
		KindVWAPBuy, KindOBVRisingBuy, KindPSARBuy:
		return SideBuy
	default:
		return SideSell
	}
}

// defaultThreshold returns the family's default threshold, if it uses one.
func (k RuleKind) defaultThreshold() optional.Option[float64] {
	switch k {
	case KindRSIOversold, KindStochOversold:
		return optional.Some(20.0)
	case KindRSIOverbought, KindStochOverbought:
		return optional.Some(80.0)
	case KindADXStrongTrendBuy, KindADXStrongTrendSell:
		return optional.Some(25.0)
	default:
		return optional.None[float64]()
	}
}

// Rule is one configured, immutable rule instance.
type Rule struct {
	Kind         RuleKind
	Name         string
	TradePercent float64
	Threshold    optional.Option[float64]
	Params       types.IndicatorParams
}

// NewRule builds a rule from a strategy config. The config must already be
// structurally valid; an unknown name fails here.
func NewRule(config types.StrategyConfig) (Rule, error) {
	kind, err := ParseRuleKind(config.Name)
	if err != nil {
		return Rule{}, err
	}

	threshold := kind.defaultThreshold()
	if config.Threshold.IsSome() {
		threshold = config.Threshold
	}

	return Rule{
		Kind:         kind,
		Name:         config.Name,
		TradePercent: config.TradePercent,
		Threshold:    threshold,
		Params:       indicator.NormalizeParams(kind.Indicator(), config),
	}, nil
}

// NewRules builds rules for an ordered config list, preserving order.
func NewRules(configs []types.StrategyConfig) ([]Rule, error) {
	rules := make([]Rule, 0, len(configs))

	for _, config := range configs {
		rule, err := NewRule(config)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// key returns the series key for one of the rule's indicator outputs.
func (r Rule) key(field types.SeriesField) types.SeriesKey {
	return types.SeriesKey{
		Indicator: r.Kind.Indicator(),
		Field:     field,
		Params:    r.Params,
	}
}
