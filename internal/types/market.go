package types

import (
	"time"

	"github.com/quantly-lab/quantly/pkg/errors"
)

// Bar is a single observed OHLCV bar. Bars are immutable once loaded;
// a series of bars is always sorted ascending by Time with no duplicates.
type Bar struct {
	Time   time.Time `json:"timestamp" csv:"time"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume float64   `json:"volume" csv:"volume"`
}

// Frequency is the resample frequency used to derive decision ticks
// from the continuous bar series.
type Frequency string

const (
	FrequencyMinute   Frequency = "1m"
	Frequency5Minute  Frequency = "5m"
	Frequency30Minute Frequency = "30m"
	FrequencyHour     Frequency = "1h"
	Frequency4Hour    Frequency = "4h"
	FrequencyDay      Frequency = "1d"
	FrequencyWeek     Frequency = "1w"
)

// ParseFrequency parses a frequency token.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyMinute, Frequency5Minute, Frequency30Minute,
		FrequencyHour, Frequency4Hour, FrequencyDay, FrequencyWeek:
		return Frequency(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency token %q", s)
	}
}

// Truncate returns the start of the bucket containing t. Sub-day
// frequencies truncate on absolute UTC boundaries; daily buckets start at
// midnight UTC and weekly buckets start on Monday midnight UTC.
func (f Frequency) Truncate(t time.Time) time.Time {
	t = t.UTC()

	switch f {
	case FrequencyMinute:
		return t.Truncate(time.Minute)
	case Frequency5Minute:
		return t.Truncate(5 * time.Minute)
	case Frequency30Minute:
		return t.Truncate(30 * time.Minute)
	case FrequencyHour:
		return t.Truncate(time.Hour)
	case Frequency4Hour:
		return t.Truncate(4 * time.Hour)
	case FrequencyDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case FrequencyWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday is Sunday-based
		offset := (int(day.Weekday()) + 6) % 7

		return day.AddDate(0, 0, -offset)
	default:
		return t
	}
}
