package types

import (
	"github.com/moznion/go-optional"
)

type TradeAction string

const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)

// SignalEvidence records what a rule observed when it triggered. It is
// attached to the resulting trade for auditability.
type SignalEvidence struct {
	// Strategy is the name of the rule family that triggered.
	Strategy string `json:"strategy,omitempty"`
	// Value is the indicator or price value the rule observed.
	Value float64 `json:"value"`
	// Threshold is set for threshold-based rules only.
	Threshold optional.Option[float64] `json:"threshold,omitempty"`
}

// TradeRecord is one executed simulated trade. Records are append-only and
// ordered by emission during the run.
type TradeRecord struct {
	Action TradeAction `json:"action"`
	Price  float64     `json:"price"`
	// Timestamp is the bar time of the trade in ISO-8601.
	Timestamp string         `json:"timestamp"`
	Evidence  SignalEvidence `json:"evidence"`
}

// BacktestResult is the final output of one simulation run. Monetary values
// are rounded to currency precision at this boundary only.
type BacktestResult struct {
	StartingValue float64       `json:"starting_value"`
	FinalValue    float64       `json:"final_value"`
	Trades        []TradeRecord `json:"trades"`
}
