// Package series holds the time-indexed price frame a backtest runs over:
// an ordered, deduplicated bar sequence plus the indicator series computed
// on top of it, keyed by typed (indicator, field, params) keys.
package series

import (
	"math"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// Frame is an ordered bar series with aligned indicator columns. Bars are
// deduplicated (first occurrence wins) and sorted ascending at construction
// and are read-only afterwards; columns use NaN for warm-up gaps.
type Frame struct {
	bars    []types.Bar
	columns map[types.SeriesKey][]float64
}

// NewFrame builds a frame from raw bars. Duplicate timestamps keep the first
// occurrence; the result is sorted ascending by time.
func NewFrame(bars []types.Bar) *Frame {
	seen := make(map[time.Time]struct{}, len(bars))
	deduped := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		key := bar.Time.UTC()
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		deduped = append(deduped, bar)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Time.Before(deduped[j].Time)
	})

	return &Frame{
		bars:    deduped,
		columns: make(map[types.SeriesKey][]float64),
	}
}

// Len returns the number of bars.
func (f *Frame) Len() int {
	return len(f.bars)
}

// Bar returns the bar at index i.
func (f *Frame) Bar(i int) types.Bar {
	return f.bars[i]
}

// Bars returns the underlying bar slice. Callers must not mutate it.
func (f *Frame) Bars() []types.Bar {
	return f.bars
}

// SetSeries attaches an indicator series aligned 1:1 with the bars.
func (f *Frame) SetSeries(key types.SeriesKey, values []float64) error {
	if len(values) != len(f.bars) {
		return errors.Newf(errors.ErrCodeSeriesLengthMismatch,
			"series %s/%s has %d values for %d bars", key.Indicator, key.Field, len(values), len(f.bars))
	}

	f.columns[key] = values

	return nil
}

// HasSeries reports whether a series is already attached for the key.
func (f *Frame) HasSeries(key types.SeriesKey) bool {
	_, ok := f.columns[key]

	return ok
}

// Series returns the attached series for the key.
func (f *Frame) Series(key types.SeriesKey) ([]float64, bool) {
	values, ok := f.columns[key]

	return values, ok
}

// SeriesKeys lists the keys of all attached series.
func (f *Frame) SeriesKeys() []types.SeriesKey {
	keys := make([]types.SeriesKey, 0, len(f.columns))
	for key := range f.columns {
		keys = append(keys, key)
	}

	return keys
}

// AsOf returns the index of the latest bar at or before t, or false when no
// bar exists at or before t.
func (f *Frame) AsOf(t time.Time) (int, bool) {
	// First index strictly after t.
	idx := sort.Search(len(f.bars), func(i int) bool {
		return f.bars[i].Time.After(t)
	})
	if idx == 0 {
		return 0, false
	}

	return idx - 1, true
}

// Slice returns a view of the frame restricted to [start, end] (both
// inclusive when present). Bars and columns share the backing arrays.
func (f *Frame) Slice(start, end optional.Option[time.Time]) *Frame {
	lo := 0
	hi := len(f.bars)

	if start.IsSome() {
		s := start.Unwrap()
		lo = sort.Search(len(f.bars), func(i int) bool {
			return !f.bars[i].Time.Before(s)
		})
	}

	if end.IsSome() {
		e := end.Unwrap()
		hi = sort.Search(len(f.bars), func(i int) bool {
			return f.bars[i].Time.After(e)
		})
	}

	if lo > hi {
		lo = hi
	}

	sliced := &Frame{
		bars:    f.bars[lo:hi],
		columns: make(map[types.SeriesKey][]float64, len(f.columns)),
	}

	for key, values := range f.columns {
		sliced.columns[key] = values[lo:hi]
	}

	return sliced
}

// Window returns the lookback window ending at (and including) bar index end.
func (f *Frame) Window(end int) Window {
	return Window{frame: f, end: end}
}

// Window is the prefix of a frame up to and including one decision bar; the
// only data visible to a rule evaluated at that bar.
type Window struct {
	frame *Frame
	end   int
}

// Len returns the number of bars in the window.
func (w Window) Len() int {
	return w.end + 1
}

// Bar returns the bar `offset` positions before the decision bar;
// offset 0 is the decision bar itself.
func (w Window) Bar(offset int) types.Bar {
	return w.frame.bars[w.end-offset]
}

// Close returns the close price `offset` positions before the decision bar.
func (w Window) Close(offset int) float64 {
	return w.frame.bars[w.end-offset].Close
}

// Value returns the indicator value `offset` positions before the decision
// bar. The second return is false when the series is not attached, the
// offset falls outside the window, or the value is still in its warm-up gap.
func (w Window) Value(key types.SeriesKey, offset int) (float64, bool) {
	values, ok := w.frame.columns[key]
	if !ok {
		return 0, false
	}

	idx := w.end - offset
	if idx < 0 || idx >= len(values) {
		return 0, false
	}

	v := values[idx]
	if math.IsNaN(v) {
		return 0, false
	}

	return v, true
}
