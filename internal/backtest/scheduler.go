package backtest

import (
	"math"
	"time"

	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// Tick is a single decision point produced by the scheduler. Candidate is the
// resampling bucket label; BarIndex is the most recent bar at or before it,
// and is the only bar the engine may act on for this tick.
type Tick struct {
	Candidate time.Time
	BarIndex  int
}

// Schedule derives the ordered decision ticks for a run. Bars are grouped
// into buckets of the given frequency; each bucket contributes one candidate
// at the bucket start. A candidate is dropped when any required series is
// still NaN at the bucket's last bar, or when no bar exists at or before the
// candidate timestamp.
func Schedule(frame *series.Frame, frequency types.Frequency, required []types.SeriesKey) []Tick {
	n := frame.Len()
	if n == 0 {
		return nil
	}

	type bucket struct {
		start time.Time
		last  int
	}
	var buckets []bucket
	for i := 0; i < n; i++ {
		start := frequency.Truncate(frame.Bar(i).Time)
		if len(buckets) > 0 && buckets[len(buckets)-1].start.Equal(start) {
			buckets[len(buckets)-1].last = i
			continue
		}
		buckets = append(buckets, bucket{start: start, last: i})
	}

	ticks := make([]Tick, 0, len(buckets))
	for _, b := range buckets {
		if !requiredDefined(frame, required, b.last) {
			continue
		}
		idx, ok := frame.AsOf(b.start)
		if !ok {
			continue
		}
		ticks = append(ticks, Tick{Candidate: b.start, BarIndex: idx})
	}
	return ticks
}

// requiredDefined reports whether every required series that exists on the
// frame holds a defined value at bar i. Series the frame does not carry
// impose no constraint.
func requiredDefined(frame *series.Frame, required []types.SeriesKey, i int) bool {
	for _, key := range required {
		values, ok := frame.Series(key)
		if !ok {
			continue
		}
		if math.IsNaN(values[i]) {
			return false
		}
	}
	return true
}
