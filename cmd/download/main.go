package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/marketdata"
	"github.com/quantly-lab/quantly/internal/store"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/internal/version"
)

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	frequency, err := types.ParseFrequency(cmd.String("frequency"))
	if err != nil {
		return err
	}

	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("POLYGON_API_KEY is not set")
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

	provider, err := marketdata.NewPolygonProvider(apiKey, appLogger, true)
	if err != nil {
		return err
	}

	downloader := marketdata.NewDownloader(provider, priceStore, appLogger)

	count, err := downloader.Run(ctx, marketdata.DownloadParams{
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
		Frequency: frequency,
	})
	if err != nil {
		return err
	}

	log.Printf("Stored %d bars for %s", count, cmd.String("ticker"))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "quantly-download",
		Version: version.GetVersion(),
		Usage:   "Download historical bars from Polygon.io into the local price store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "frequency",
				Aliases: []string{"f"},
				Usage:   "Bar frequency (1m, 5m, 30m, 1h, 4h, 1d, 1w)",
				Value:   string(types.FrequencyDay),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB price database",
				Value:   "data/quantly.duckdb",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
