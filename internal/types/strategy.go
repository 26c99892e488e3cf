package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// StrategyConfig is one requested rule configuration, as supplied by the
// caller. Only the parameter subset relevant to the named rule family is
// meaningful; unused fields are ignored. Immutable once a run starts.
type StrategyConfig struct {
	Name         string  `json:"name" validate:"required"`
	TradePercent float64 `json:"trade_percent" validate:"required,gt=0,lte=1"`

	Threshold    optional.Option[float64] `json:"threshold,omitempty"`
	Period       optional.Option[int]     `json:"period,omitempty"`
	FastPeriod   optional.Option[int]     `json:"fast_period,omitempty"`
	SlowPeriod   optional.Option[int]     `json:"slow_period,omitempty"`
	SignalPeriod optional.Option[int]     `json:"signal_period,omitempty"`
	StdDev       optional.Option[float64] `json:"std_dev,omitempty"`
	KPeriod      optional.Option[int]     `json:"k_period,omitempty"`
	DPeriod      optional.Option[int]     `json:"d_period,omitempty"`
	AFStart      optional.Option[float64] `json:"af_start,omitempty"`
	AFIncrement  optional.Option[float64] `json:"af_increment,omitempty"`
	AFMax        optional.Option[float64] `json:"af_max,omitempty"`
}

// Validate validates the StrategyConfig struct.
func (c *StrategyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	// Numeric periods, when present, must be at least 1.
	periods := map[string]optional.Option[int]{
		"period":        c.Period,
		"fast_period":   c.FastPeriod,
		"slow_period":   c.SlowPeriod,
		"signal_period": c.SignalPeriod,
		"k_period":      c.KPeriod,
		"d_period":      c.DPeriod,
	}

	for name, p := range periods {
		if p.IsSome() && p.Unwrap() < 1 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be >= 1, got %d for strategy %q", name, p.Unwrap(), c.Name)
		}
	}

	if c.StdDev.IsSome() && c.StdDev.Unwrap() <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "std_dev must be positive, got %f for strategy %q", c.StdDev.Unwrap(), c.Name)
	}

	return nil
}
