package strategy

import (
	"github.com/quantly-lab/quantly/internal/types"
)

// WarmupKeys returns the series whose warm-up gaps should exclude a decision
// tick from the schedule. The SAR regime series are absent by regime rather
// than warm-up, so PSAR rules impose no scheduling constraint.
func (r Rule) WarmupKeys() []types.SeriesKey {
	switch r.Kind {
	case KindMACDBuy, KindMACDSell:
		return []types.SeriesKey{r.key(types.SeriesFieldHist)}
	case KindBBLowerBuy:
		return []types.SeriesKey{r.key(types.SeriesFieldLower)}
	case KindBBUpperSell:
		return []types.SeriesKey{r.key(types.SeriesFieldUpper)}
	case KindStochOversold, KindStochOverbought:
		return []types.SeriesKey{r.key(types.SeriesFieldK)}
	case KindPSARBuy, KindPSARSell:
		return nil
	default:
		return []types.SeriesKey{r.key(types.SeriesFieldValue)}
	}
}
