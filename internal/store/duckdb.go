package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// insertBatchSize bounds the number of rows per multi-value insert so large
// imports do not build unbounded SQL statements.
const insertBatchSize = 1000

type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens or creates a DuckDB database at path and ensures the
// bar table exists. Use ":memory:" for an ephemeral store in tests.
func NewDuckDBStore(path string, logger *logger.Logger) (Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %s: %w", path, err)
	}

	s := &DuckDBStore{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *DuckDBStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			ticker VARCHAR NOT NULL,
			time   TIMESTAMP NOT NULL,
			open   DOUBLE NOT NULL,
			high   DOUBLE NOT NULL,
			low    DOUBLE NOT NULL,
			close  DOUBLE NOT NULL,
			volume DOUBLE NOT NULL,
			PRIMARY KEY (ticker, time)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create bars table: %w", err)
	}

	return nil
}

// WriteBars implements Store.
func (s *DuckDBStore) WriteBars(ticker string, bars []types.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	s.logger.Debug("writing bars",
		zap.String("ticker", ticker),
		zap.Int("count", len(bars)))

	for offset := 0; offset < len(bars); offset += insertBatchSize {
		limit := offset + insertBatchSize
		if limit > len(bars) {
			limit = len(bars)
		}

		builder := s.sq.
			Insert("bars").
			Columns("ticker", "time", "open", "high", "low", "close", "volume")
		for _, bar := range bars[offset:limit] {
			builder = builder.Values(ticker, bar.Time.UTC(), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		}

		query, args, err := builder.
			Suffix("ON CONFLICT (ticker, time) DO UPDATE SET open = excluded.open, high = excluded.high, low = excluded.low, close = excluded.close, volume = excluded.volume").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert query: %w", err)
		}

		if _, err := s.db.Exec(query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert bars", err)
		}
	}

	return nil
}

// ImportCSV implements Store. The file is loaded inside DuckDB via
// read_csv_auto, so timestamps and numeric columns are parsed by the engine.
func (s *DuckDBStore) ImportCSV(ticker string, path string) (int, error) {
	s.logger.Info("importing csv",
		zap.String("ticker", ticker),
		zap.String("path", path))

	query := `
		INSERT OR REPLACE INTO bars (ticker, time, open, high, low, close, volume)
		SELECT $1, time, open, high, low, close, volume
		FROM read_csv_auto($2);
	`

	result, err := s.db.Exec(query, ticker, path)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeImportFailed, err, "failed to import %s", path)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected row count: %w", err)
	}

	return int(rows), nil
}

// ReadBars implements Store.
func (s *DuckDBStore) ReadBars(ticker string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	conditions := squirrel.And{squirrel.Eq{"ticker": ticker}}
	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"time": start.Unwrap().UTC()})
	}
	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"time": end.Unwrap().UTC()})
	}

	query, args, err := s.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		Where(conditions).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	bars := make([]types.Bar, 0, 1000)

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bars: %w", err)
	}

	return bars, nil
}

// LastBar implements Store.
func (s *DuckDBStore) LastBar(ticker string) (types.Bar, error) {
	query, args, err := s.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		Where(squirrel.Eq{"ticker": ticker}).
		OrderBy("time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return types.Bar{}, fmt.Errorf("failed to build query: %w", err)
	}

	var bar types.Bar

	err = s.db.QueryRow(query, args...).Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Bar{}, errors.Newf(errors.ErrCodeDataNotFound, "no data found for ticker %s", ticker)
		}

		return types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query last bar", err)
	}

	bar.Time = bar.Time.UTC()

	return bar, nil
}

// CountBars implements Store.
func (s *DuckDBStore) CountBars(ticker string) (int, error) {
	query, args, err := s.sq.
		Select("COUNT(*)").
		From("bars").
		Where(squirrel.Eq{"ticker": ticker}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// Tickers implements Store.
func (s *DuckDBStore) Tickers() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT ticker FROM bars ORDER BY ticker")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query tickers", err)
	}
	defer rows.Close()

	var tickers []string

	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}

		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}

// Close implements Store.
func (s *DuckDBStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}
