package backtest

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantly-lab/quantly/internal/types"
)

// Ledger tracks capital and the single open position for one run. It moves
// between exactly two states, flat and long, and records every executed
// trade in order.
type Ledger struct {
	portfolioValue   float64
	committedCapital float64
	entryPrice       optional.Option[float64]
	trades           []types.TradeRecord
}

func NewLedger(startingValue float64) *Ledger {
	return &Ledger{
		portfolioValue: startingValue,
	}
}

// IsOpen reports whether a position is currently held.
func (l *Ledger) IsOpen() bool {
	return l.entryPrice.IsSome()
}

func (l *Ledger) PortfolioValue() float64 {
	return l.portfolioValue
}

func (l *Ledger) CommittedCapital() float64 {
	return l.committedCapital
}

func (l *Ledger) Trades() []types.TradeRecord {
	return l.trades
}

// Buy opens a position at price, committing tradePercent of the current
// portfolio value. The attempt is rejected without error when a position is
// already open or when the commitment would exceed uncommitted capital.
func (l *Ledger) Buy(price float64, ts time.Time, tradePercent float64, evidence types.SignalEvidence) bool {
	if l.IsOpen() {
		return false
	}
	amount := l.portfolioValue * tradePercent
	if amount > l.portfolioValue-l.committedCapital {
		return false
	}
	l.committedCapital += amount
	l.entryPrice = optional.Some(price)
	l.trades = append(l.trades, types.TradeRecord{
		Action:    types.TradeActionBuy,
		Price:     price,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Evidence:  evidence,
	})
	return true
}

// Sell closes the open position at price, realizing the proportional profit
// or loss on the committed capital. A sell with no open position is a no-op.
func (l *Ledger) Sell(price float64, ts time.Time, evidence types.SignalEvidence) bool {
	entry, err := l.entryPrice.Take()
	if err != nil {
		return false
	}
	profit := l.committedCapital * (price - entry) / entry
	l.portfolioValue += profit
	l.committedCapital = 0
	l.entryPrice = optional.None[float64]()
	l.trades = append(l.trades, types.TradeRecord{
		Action:    types.TradeActionSell,
		Price:     price,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Evidence:  evidence,
	})
	return true
}

// ForceClose liquidates any open position at the given price so the final
// portfolio value reflects no unrealized exposure.
func (l *Ledger) ForceClose(price float64, ts time.Time) bool {
	return l.Sell(price, ts, types.SignalEvidence{
		Strategy: "force_close",
	})
}
