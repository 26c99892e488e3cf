package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

// Evaluate applies the rule to a lookback window. A missing series value or
// a window too short for the rule is a benign no-trigger, never an error.
func (r Rule) Evaluate(window series.Window) (bool, types.SignalEvidence) {
	switch r.Kind {
	case KindRSIOversold:
		return r.thresholdBelow(window, r.key(types.SeriesFieldValue))
	case KindRSIOverbought:
		return r.thresholdAbove(window, r.key(types.SeriesFieldValue))
	case KindMACDBuy:
		return r.histogramCross(window, false)
	case KindMACDSell:
		return r.histogramCross(window, true)
	case KindSMABuy, KindEMABuy, KindWMABuy:
		return r.priceCross(window, false)
	case KindSMASell, KindEMASell, KindWMASell:
		return r.priceCross(window, true)
	case KindBBLowerBuy:
		return r.bandTouch(window, r.key(types.SeriesFieldLower), false)
	case KindBBUpperSell:
		return r.bandTouch(window, r.key(types.SeriesFieldUpper), true)
	case KindStochOversold:
		return r.thresholdBelow(window, r.key(types.SeriesFieldK))
	case KindStochOverbought:
		return r.thresholdAbove(window, r.key(types.SeriesFieldK))
	case KindADXStrongTrendBuy:
		return r.strongTrend(window, true)
	case KindADXStrongTrendSell:
		return r.strongTrend(window, false)
	case KindVWAPBuy:
		return r.priceVsLine(window, r.key(types.SeriesFieldValue), false)
	case KindVWAPSell:
		return r.priceVsLine(window, r.key(types.SeriesFieldValue), true)
	case KindOBVRisingBuy:
		return r.volumeTrend(window, true)
	case KindOBVFallingSell:
		return r.volumeTrend(window, false)
	case KindPSARBuy:
		return r.sarPresent(window, r.key(types.SeriesFieldBull))
	case KindPSARSell:
		return r.sarPresent(window, r.key(types.SeriesFieldBear))
	default:
		return false, types.SignalEvidence{}
	}
}

// evidence builds the trade evidence for a triggered or observed value.
func (r Rule) evidence(value float64, withThreshold bool) types.SignalEvidence {
	threshold := optional.None[float64]()
	if withThreshold {
		threshold = r.Threshold
	}

	return types.SignalEvidence{
		Strategy:  r.Name,
		Value:     value,
		Threshold: threshold,
	}
}

// thresholdBelow triggers when the last indicator value is below the threshold.
func (r Rule) thresholdBelow(window series.Window, key types.SeriesKey) (bool, types.SignalEvidence) {
	value, ok := window.Value(key, 0)
	if !ok || r.Threshold.IsNone() {
		return false, types.SignalEvidence{}
	}

	return value < r.Threshold.Unwrap(), r.evidence(value, true)
}

// thresholdAbove triggers when the last indicator value is above the threshold.
func (r Rule) thresholdAbove(window series.Window, key types.SeriesKey) (bool, types.SignalEvidence) {
	value, ok := window.Value(key, 0)
	if !ok || r.Threshold.IsNone() {
		return false, types.SignalEvidence{}
	}

	return value > r.Threshold.Unwrap(), r.evidence(value, true)
}

// histogramCross triggers on a MACD histogram sign flip between the last two
// bars: negative to positive for a buy, positive to negative for a sell.
func (r Rule) histogramCross(window series.Window, sell bool) (bool, types.SignalEvidence) {
	if window.Len() < 2 {
		return false, types.SignalEvidence{}
	}

	key := r.key(types.SeriesFieldHist)

	prev, okPrev := window.Value(key, 1)
	curr, okCurr := window.Value(key, 0)

	if !okPrev || !okCurr {
		return false, types.SignalEvidence{}
	}

	triggered := prev < 0 && curr > 0
	if sell {
		triggered = prev > 0 && curr < 0
	}

	return triggered, r.evidence(curr, false)
}

// priceCross triggers when the close crosses the moving-average line between
// the last two bars.
func (r Rule) priceCross(window series.Window, sell bool) (bool, types.SignalEvidence) {
	if window.Len() < 2 {
		return false, types.SignalEvidence{}
	}

	key := r.key(types.SeriesFieldValue)

	line0, ok0 := window.Value(key, 1)
	line1, ok1 := window.Value(key, 0)

	if !ok0 || !ok1 {
		return false, types.SignalEvidence{}
	}

	price0 := window.Close(1)
	price1 := window.Close(0)

	triggered := price0 < line0 && price1 > line1
	if sell {
		triggered = price0 > line0 && price1 < line1
	}

	return triggered, r.evidence(price1, false)
}

// bandTouch triggers when the close reaches or passes through a Bollinger band.
func (r Rule) bandTouch(window series.Window, key types.SeriesKey, upper bool) (bool, types.SignalEvidence) {
	band, ok := window.Value(key, 0)
	if !ok {
		return false, types.SignalEvidence{}
	}

	price := window.Close(0)

	triggered := price <= band
	if upper {
		triggered = price >= band
	}

	return triggered, r.evidence(price, false)
}

// strongTrend triggers when ADX exceeds the threshold and the current bar
// moves in the rule's direction.
func (r Rule) strongTrend(window series.Window, up bool) (bool, types.SignalEvidence) {
	adx, ok := window.Value(r.key(types.SeriesFieldValue), 0)
	if !ok || r.Threshold.IsNone() {
		return false, types.SignalEvidence{}
	}

	bar := window.Bar(0)

	direction := bar.Close > bar.Open
	if !up {
		direction = bar.Close < bar.Open
	}

	return adx > r.Threshold.Unwrap() && direction, r.evidence(adx, true)
}

// priceVsLine triggers when the close is below (buy) or above (sell) a
// reference line such as VWAP.
func (r Rule) priceVsLine(window series.Window, key types.SeriesKey, above bool) (bool, types.SignalEvidence) {
	line, ok := window.Value(key, 0)
	if !ok {
		return false, types.SignalEvidence{}
	}

	price := window.Close(0)

	triggered := price < line
	if above {
		triggered = price > line
	}

	return triggered, r.evidence(price, false)
}

// volumeTrend triggers when OBV rose (buy) or fell (sell) versus the prior bar.
func (r Rule) volumeTrend(window series.Window, rising bool) (bool, types.SignalEvidence) {
	if window.Len() < 2 {
		return false, types.SignalEvidence{}
	}

	key := r.key(types.SeriesFieldValue)

	prev, okPrev := window.Value(key, 1)
	curr, okCurr := window.Value(key, 0)

	if !okPrev || !okCurr {
		return false, types.SignalEvidence{}
	}

	triggered := curr > prev
	if !rising {
		triggered = curr < prev
	}

	return triggered, r.evidence(curr, false)
}

// sarPresent triggers when the SAR regime series has a value at the current
// bar (bullish for buys, bearish for sells).
func (r Rule) sarPresent(window series.Window, key types.SeriesKey) (bool, types.SignalEvidence) {
	value, ok := window.Value(key, 0)
	if !ok {
		return false, types.SignalEvidence{}
	}

	return true, r.evidence(value, false)
}
