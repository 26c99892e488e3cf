package indicator

import (
	"strings"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// Requirement is one resolved indicator computation: a family plus its
// normalized parameter tuple.
type Requirement struct {
	Indicator types.IndicatorType
	Params    types.IndicatorParams
}

// Resolver determines the minimal set of indicator computations a strategy
// list requires and attaches the resulting series to a frame.
type Resolver struct {
	registry Registry
}

// NewResolver creates a resolver over the built-in calculator registry.
func NewResolver() *Resolver {
	return &Resolver{registry: NewRegistry()}
}

// familyOf infers the indicator family from a strategy name. Unknown names
// resolve to no family; they are rejected earlier, at rule construction.
func familyOf(name string) (types.IndicatorType, bool) {
	switch {
	case strings.Contains(name, "rsi"):
		return types.IndicatorTypeRSI, true
	case strings.Contains(name, "macd"):
		return types.IndicatorTypeMACD, true
	case strings.Contains(name, "bb"), strings.Contains(name, "bollinger"):
		return types.IndicatorTypeBollingerBands, true
	case strings.Contains(name, "stoch"):
		return types.IndicatorTypeStochastic, true
	case strings.Contains(name, "adx"):
		return types.IndicatorTypeADX, true
	case strings.Contains(name, "vwap"):
		return types.IndicatorTypeVWAP, true
	case strings.Contains(name, "obv"):
		return types.IndicatorTypeOBV, true
	case strings.Contains(name, "psar"):
		return types.IndicatorTypeParabolicSAR, true
	case strings.Contains(name, "atr"):
		return types.IndicatorTypeATR, true
	case strings.Contains(name, "sma"):
		return types.IndicatorTypeSMA, true
	case strings.Contains(name, "ema"):
		return types.IndicatorTypeEMA, true
	case strings.Contains(name, "wma"):
		return types.IndicatorTypeWMA, true
	default:
		return "", false
	}
}

// NormalizeParams builds the parameter tuple for a family from a strategy
// config, filling family-specific defaults for absent fields and zeroing
// everything the family does not use. Identical requests therefore collapse
// to equal values.
func NormalizeParams(family types.IndicatorType, config types.StrategyConfig) types.IndicatorParams {
	defaults := types.DefaultParams(family)
	params := types.IndicatorParams{}

	switch family {
	case types.IndicatorTypeRSI, types.IndicatorTypeSMA, types.IndicatorTypeEMA,
		types.IndicatorTypeWMA, types.IndicatorTypeATR, types.IndicatorTypeADX:
		params.Period = config.Period.TakeOr(defaults.Period)
	case types.IndicatorTypeMACD:
		params.FastPeriod = config.FastPeriod.TakeOr(defaults.FastPeriod)
		params.SlowPeriod = config.SlowPeriod.TakeOr(defaults.SlowPeriod)
		params.SignalPeriod = config.SignalPeriod.TakeOr(defaults.SignalPeriod)
	case types.IndicatorTypeBollingerBands:
		params.Period = config.Period.TakeOr(defaults.Period)
		params.StdDev = config.StdDev.TakeOr(defaults.StdDev)
	case types.IndicatorTypeStochastic:
		params.KPeriod = config.KPeriod.TakeOr(defaults.KPeriod)
		params.DPeriod = config.DPeriod.TakeOr(defaults.DPeriod)
	case types.IndicatorTypeParabolicSAR:
		params.AFStart = config.AFStart.TakeOr(defaults.AFStart)
		params.AFIncrement = config.AFIncrement.TakeOr(defaults.AFIncrement)
		params.AFMax = config.AFMax.TakeOr(defaults.AFMax)
	case types.IndicatorTypeVWAP, types.IndicatorTypeOBV:
		// No parameters.
	}

	return params
}

// Resolve maps the requested strategies to the deduplicated set of
// computations needed to evaluate them, in first-seen order.
func (r *Resolver) Resolve(configs []types.StrategyConfig) []Requirement {
	seen := make(map[Requirement]struct{}, len(configs))
	requirements := make([]Requirement, 0, len(configs))

	for _, config := range configs {
		family, ok := familyOf(config.Name)
		if !ok {
			continue
		}

		requirement := Requirement{
			Indicator: family,
			Params:    NormalizeParams(family, config),
		}

		if _, dup := seen[requirement]; dup {
			continue
		}

		seen[requirement] = struct{}{}

		requirements = append(requirements, requirement)
	}

	return requirements
}

// primaryField is the output series checked to decide whether a requirement
// has already been computed on a frame.
func primaryField(family types.IndicatorType) types.SeriesField {
	switch family {
	case types.IndicatorTypeMACD:
		return types.SeriesFieldHist
	case types.IndicatorTypeBollingerBands:
		return types.SeriesFieldLower
	case types.IndicatorTypeStochastic:
		return types.SeriesFieldK
	case types.IndicatorTypeParabolicSAR:
		return types.SeriesFieldBull
	default:
		return types.SeriesFieldValue
	}
}

// Augment attaches every resolved series to the frame in place. Series that
// are already present are left untouched, so repeated augmentation with the
// same strategies yields the same column set. Strategy configs are never
// mutated.
func (r *Resolver) Augment(frame *series.Frame, configs []types.StrategyConfig) error {
	for _, requirement := range r.Resolve(configs) {
		key := types.SeriesKey{
			Indicator: requirement.Indicator,
			Field:     primaryField(requirement.Indicator),
			Params:    requirement.Params,
		}
		if frame.HasSeries(key) {
			continue
		}

		calculator, err := r.registry.GetCalculator(requirement.Indicator)
		if err != nil {
			return err
		}

		if err := calculator.Compute(frame, requirement.Params); err != nil {
			return err
		}
	}

	return nil
}
