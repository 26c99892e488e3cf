package backtest

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quantly-lab/quantly/internal/indicator"
	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/strategy"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// MinBarCount is the minimum number of bars a run must cover after date
// filtering. Shorter histories cannot satisfy indicator warm-up and produce
// meaningless results.
const MinBarCount = 50

// RunParams describes one simulation run. All fields except the date bounds
// are required.
type RunParams struct {
	Frame          *series.Frame
	StartingValue  float64
	BuyStrategies  []types.StrategyConfig
	SellStrategies []types.StrategyConfig
	Frequency      types.Frequency
	StartDate      optional.Option[time.Time]
	EndDate        optional.Option[time.Time]
}

// Engine drives a simulation run end to end. It holds no per-run state, so a
// single engine can serve concurrent runs.
type Engine struct {
	logger   *logger.Logger
	resolver *indicator.Resolver
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		logger:   log,
		resolver: indicator.NewResolver(),
	}
}

// Run executes one simulation: it validates the configuration, augments the
// frame with every indicator the rules require, schedules decision ticks at
// the requested frequency and walks them with a fresh ledger. Any position
// still open after the last tick is closed at the final bar's close.
func (e *Engine) Run(params RunParams) (types.BacktestResult, error) {
	if params.StartingValue <= 0 {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestConfigError, "starting value must be positive")
	}
	if len(params.BuyStrategies) == 0 && len(params.SellStrategies) == 0 {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestNoStrategies, "at least one strategy is required")
	}

	buyRules, err := e.buildRules(params.BuyStrategies, strategy.SideBuy)
	if err != nil {
		return types.BacktestResult{}, err
	}
	sellRules, err := e.buildRules(params.SellStrategies, strategy.SideSell)
	if err != nil {
		return types.BacktestResult{}, err
	}

	configs := make([]types.StrategyConfig, 0, len(params.BuyStrategies)+len(params.SellStrategies))
	configs = append(configs, params.BuyStrategies...)
	configs = append(configs, params.SellStrategies...)
	if err := e.resolver.Augment(params.Frame, configs); err != nil {
		return types.BacktestResult{}, err
	}

	frame := params.Frame.Slice(params.StartDate, params.EndDate)
	if frame.Len() < MinBarCount {
		return types.BacktestResult{}, errors.NewInsufficientDataErrorf(
			MinBarCount, frame.Len(), "",
			"insufficient data: %d bars available, %d required", frame.Len(), MinBarCount)
	}

	required := warmupKeys(buyRules, sellRules)
	ticks := Schedule(frame, params.Frequency, required)

	ledger := NewLedger(params.StartingValue)
	for _, tick := range ticks {
		bar := frame.Bar(tick.BarIndex)
		window := frame.Window(tick.BarIndex)

		if !ledger.IsOpen() {
			for _, rule := range buyRules {
				triggered, evidence := rule.Evaluate(window)
				if !triggered {
					continue
				}
				if ledger.Buy(bar.Close, bar.Time, rule.TradePercent, evidence) {
					e.logger.Debug("opened position",
						zap.String("strategy", rule.Name),
						zap.Float64("price", bar.Close),
						zap.Time("time", bar.Time))
				}
				break
			}
			continue
		}

		for _, rule := range sellRules {
			triggered, evidence := rule.Evaluate(window)
			if !triggered {
				continue
			}
			ledger.Sell(bar.Close, bar.Time, evidence)
			e.logger.Debug("closed position",
				zap.String("strategy", rule.Name),
				zap.Float64("price", bar.Close),
				zap.Time("time", bar.Time))
			break
		}
	}

	if ledger.IsOpen() {
		last := frame.Bar(frame.Len() - 1)
		ledger.ForceClose(last.Close, last.Time)
		e.logger.Debug("force closed position at end of data",
			zap.Float64("price", last.Close),
			zap.Time("time", last.Time))
	}

	result := types.BacktestResult{
		StartingValue: roundCurrency(params.StartingValue),
		FinalValue:    roundCurrency(ledger.PortfolioValue()),
		Trades:        roundTrades(ledger.Trades()),
	}
	e.logger.Info("backtest finished",
		zap.Int("bars", frame.Len()),
		zap.Int("ticks", len(ticks)),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("finalValue", result.FinalValue))
	return result, nil
}

// buildRules parses strategy configs into rules and rejects any rule whose
// side does not match the list it was supplied in.
func (e *Engine) buildRules(configs []types.StrategyConfig, side strategy.Side) ([]strategy.Rule, error) {
	for _, config := range configs {
		if err := config.Validate(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "invalid strategy config %q", config.Name)
		}
	}
	rules, err := strategy.NewRules(configs)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if rule.Kind.Side() != side {
			return nil, errors.Newf(errors.ErrCodeStrategyConfigError,
				"strategy %q is a %s rule and cannot be used on the %s side", rule.Name, rule.Kind.Side(), side)
		}
	}
	return rules, nil
}

// warmupKeys collects the deduplicated warm-up series constraints of every
// rule on both sides, preserving first-seen order.
func warmupKeys(buyRules, sellRules []strategy.Rule) []types.SeriesKey {
	seen := make(map[types.SeriesKey]struct{})
	var keys []types.SeriesKey
	for _, rules := range [][]strategy.Rule{buyRules, sellRules} {
		for _, rule := range rules {
			for _, key := range rule.WarmupKeys() {
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// roundCurrency rounds a monetary value to two decimal places using decimal
// arithmetic to avoid float artifacts at the boundary.
func roundCurrency(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}

func roundTrades(trades []types.TradeRecord) []types.TradeRecord {
	if trades == nil {
		return []types.TradeRecord{}
	}
	rounded := make([]types.TradeRecord, len(trades))
	for i, trade := range trades {
		trade.Price = roundCurrency(trade.Price)
		rounded[i] = trade
	}
	return rounded
}
