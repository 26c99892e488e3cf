package marketdata

import (
	"context"

	"go.uber.org/zap"

	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/store"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// Downloader fetches bars from a provider and persists them to the store.
type Downloader struct {
	provider Provider
	store    store.Store
	logger   *logger.Logger
}

func NewDownloader(provider Provider, store store.Store, logger *logger.Logger) *Downloader {
	return &Downloader{
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// Run downloads the requested range and writes it to the store. Returns the
// number of bars stored.
func (d *Downloader) Run(ctx context.Context, params DownloadParams) (int, error) {
	bars, err := d.provider.Download(ctx, params)
	if err != nil {
		return 0, err
	}

	if err := d.store.WriteBars(params.Ticker, bars); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
			"failed to persist %d bars for %s", len(bars), params.Ticker)
	}

	d.logger.Info("download complete",
		zap.String("ticker", params.Ticker),
		zap.Int("bars", len(bars)))

	return len(bars), nil
}
