package store

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantly-lab/quantly/internal/types"
)

// Store persists historical price bars keyed by ticker and bar time.
type Store interface {
	// WriteBars inserts bars for a ticker, replacing rows that share the
	// same bar time.
	WriteBars(ticker string, bars []types.Bar) error
	// ImportCSV loads bars for a ticker from a CSV file with
	// time,open,high,low,close,volume columns. Returns the number of rows
	// stored.
	ImportCSV(ticker string, path string) (int, error)
	// ReadBars returns the bars for a ticker within the optional time
	// bounds, ordered by time ascending.
	ReadBars(ticker string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error)
	// LastBar returns the most recent bar for a ticker.
	LastBar(ticker string) (types.Bar, error)
	// CountBars returns the number of bars stored for a ticker.
	CountBars(ticker string) (int, error)
	// Tickers returns all distinct tickers in the store, sorted.
	Tickers() ([]string, error)
	Close() error
}
