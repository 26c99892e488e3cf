package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// PolygonProvider downloads aggregate bars from Polygon.io.
type PolygonProvider struct {
	client   *polygon.Client
	logger   *logger.Logger
	progress bool
}

// NewPolygonProvider creates a provider for the given API key. When progress
// is true a terminal progress bar tracks the day-by-day download.
func NewPolygonProvider(apiKey string, logger *logger.Logger, progress bool) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return &PolygonProvider{
		client:   polygon.New(apiKey),
		logger:   logger,
		progress: progress,
	}, nil
}

// Download implements Provider. The range is fetched one day at a time so
// long histories stay within per-request limits.
func (p *PolygonProvider) Download(ctx context.Context, params DownloadParams) ([]types.Bar, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	multiplier, timespan, err := aggregationFor(params.Frequency)
	if err != nil {
		return nil, err
	}

	p.logger.Info("downloading bars from polygon",
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
		zap.String("frequency", string(params.Frequency)))

	totalDays := int(params.EndDate.Sub(params.StartDate).Hours()/24) + 1

	var bar *progressbar.ProgressBar
	if p.progress {
		bar = progressbar.New(totalDays)
	}

	var bars []types.Bar

	for date := params.StartDate; !date.After(params.EndDate); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listParams := models.ListAggsParams{
			Ticker:     params.Ticker,
			From:       models.Millis(date),
			To:         models.Millis(date.Add(24*time.Hour - time.Second)),
			Multiplier: multiplier,
			Timespan:   timespan,
		}

		iter := p.client.ListAggs(ctx, &listParams)
		for iter.Next() {
			agg := iter.Item()
			bars = append(bars, types.Bar{
				Time:   time.Time(agg.Timestamp).UTC(),
				Open:   agg.Open,
				High:   agg.High,
				Low:    agg.Low,
				Close:  agg.Close,
				Volume: agg.Volume,
			})
		}

		if err := iter.Err(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
				"failed to download %s bars for %s", params.Ticker, date.Format("2006-01-02"))
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	return bars, nil
}
