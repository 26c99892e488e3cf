package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/quantly-lab/quantly/internal/backtest"
	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/store"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/internal/version"
)

// runConfig is the YAML layout of a backtest run definition. Strategy
// parameters use plain pointers here because the optional wrapper used on
// the wire types only round-trips through JSON.
type runConfig struct {
	Ticker         string           `yaml:"ticker"`
	StartingValue  float64          `yaml:"starting_value"`
	Frequency      string           `yaml:"frequency"`
	StartDate      string           `yaml:"start_date"`
	EndDate        string           `yaml:"end_date"`
	BuyStrategies  []strategyConfig `yaml:"buy_strategies"`
	SellStrategies []strategyConfig `yaml:"sell_strategies"`
}

type strategyConfig struct {
	Name         string   `yaml:"name"`
	TradePercent float64  `yaml:"trade_percent"`
	Threshold    *float64 `yaml:"threshold"`
	Period       *int     `yaml:"period"`
	FastPeriod   *int     `yaml:"fast_period"`
	SlowPeriod   *int     `yaml:"slow_period"`
	SignalPeriod *int     `yaml:"signal_period"`
	StdDev       *float64 `yaml:"std_dev"`
	KPeriod      *int     `yaml:"k_period"`
	DPeriod      *int     `yaml:"d_period"`
	AFStart      *float64 `yaml:"af_start"`
	AFIncrement  *float64 `yaml:"af_increment"`
	AFMax        *float64 `yaml:"af_max"`
}

func toStrategyConfigs(configs []strategyConfig) []types.StrategyConfig {
	out := make([]types.StrategyConfig, len(configs))
	for i, c := range configs {
		out[i] = types.StrategyConfig{
			Name:         c.Name,
			TradePercent: c.TradePercent,
			Threshold:    optional.FromNillable(c.Threshold),
			Period:       optional.FromNillable(c.Period),
			FastPeriod:   optional.FromNillable(c.FastPeriod),
			SlowPeriod:   optional.FromNillable(c.SlowPeriod),
			SignalPeriod: optional.FromNillable(c.SignalPeriod),
			StdDev:       optional.FromNillable(c.StdDev),
			KPeriod:      optional.FromNillable(c.KPeriod),
			DPeriod:      optional.FromNillable(c.DPeriod),
			AFStart:      optional.FromNillable(c.AFStart),
			AFIncrement:  optional.FromNillable(c.AFIncrement),
			AFMax:        optional.FromNillable(c.AFMax),
		}
	}

	return out
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read run config: %w", err)
	}

	var run runConfig
	if err := yaml.Unmarshal(data, &run); err != nil {
		return fmt.Errorf("failed to parse run config: %w", err)
	}

	frequency := types.FrequencyDay
	if run.Frequency != "" {
		frequency, err = types.ParseFrequency(run.Frequency)
		if err != nil {
			return err
		}
	}

	startDate, err := parseDate(run.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}

	endDate, err := parseDate(run.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	priceStore, err := store.NewDuckDBStore(cmd.String("data"), appLogger)
	if err != nil {
		return err
	}
	defer priceStore.Close()

	bars, err := priceStore.ReadBars(run.Ticker, optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		return err
	}

	engine := backtest.NewEngine(appLogger)

	result, err := engine.Run(backtest.RunParams{
		Frame:          series.NewFrame(bars),
		StartingValue:  run.StartingValue,
		BuyStrategies:  toStrategyConfigs(run.BuyStrategies),
		SellStrategies: toStrategyConfigs(run.SellStrategies),
		Frequency:      frequency,
		StartDate:      startDate,
		EndDate:        endDate,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(result)
}

func parseDate(raw string) (optional.Option[time.Time], error) {
	if raw == "" {
		return optional.None[time.Time](), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return optional.Some(t.UTC()), nil
		}
	}

	return optional.None[time.Time](), fmt.Errorf("unrecognized date %q", raw)
}

func main() {
	cmd := &cli.Command{
		Name:    "quantly-backtest",
		Version: version.GetVersion(),
		Usage:   "Run a backtest from a YAML run definition against the local price store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML run definition",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB price database",
				Value:   "data/quantly.duckdb",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
