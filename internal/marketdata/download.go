// Package marketdata downloads historical bars from external providers into
// the local price store.
package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// DownloadParams describes one download request.
type DownloadParams struct {
	Ticker    string          `json:"ticker" validate:"required"`
	StartDate time.Time       `json:"start_date" validate:"required"`
	EndDate   time.Time       `json:"end_date" validate:"required"`
	Frequency types.Frequency `json:"frequency" validate:"required"`
}

// Validate checks the params for completeness and ordering.
func (p *DownloadParams) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download params", err)
	}

	if !p.EndDate.After(p.StartDate) {
		return errors.New(errors.ErrCodeInvalidDateRange, "end date must be after start date")
	}

	if _, _, err := aggregationFor(p.Frequency); err != nil {
		return err
	}

	return nil
}

// Provider fetches historical bars from an external market data source.
type Provider interface {
	// Download fetches the bars for the requested ticker and range, ordered
	// by time ascending.
	Download(ctx context.Context, params DownloadParams) ([]types.Bar, error)
}

// aggregation maps a frequency onto provider aggregate units.
var aggregation = map[types.Frequency]struct {
	multiplier int
	timespan   models.Timespan
}{
	types.FrequencyMinute:   {1, models.Minute},
	types.Frequency5Minute:  {5, models.Minute},
	types.Frequency30Minute: {30, models.Minute},
	types.FrequencyHour:     {1, models.Hour},
	types.Frequency4Hour:    {4, models.Hour},
	types.FrequencyDay:      {1, models.Day},
	types.FrequencyWeek:     {1, models.Week},
}

func aggregationFor(frequency types.Frequency) (int, models.Timespan, error) {
	agg, ok := aggregation[frequency]
	if !ok {
		return 0, "", errors.Newf(errors.ErrCodeInvalidFrequency, "frequency %q cannot be downloaded", frequency)
	}

	return agg.multiplier, agg.timespan, nil
}
