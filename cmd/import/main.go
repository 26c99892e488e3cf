package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/store"
	"github.com/quantly-lab/quantly/internal/version"
)

func importAction(ctx context.Context, cmd *cli.Command) error {
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

	ticker := cmd.String("ticker")

	count, err := priceStore.ImportCSV(ticker, cmd.String("file"))
	if err != nil {
		return err
	}

	log.Printf("Imported %d rows for %s", count, ticker)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "quantly-import",
		Version: version.GetVersion(),
		Usage:   "Import price bars from a CSV file into the local price store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol the rows belong to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the CSV file (time,open,high,low,close,volume)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB price database",
				Value:   "data/quantly.duckdb",
			},
		},
		Action: importAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
