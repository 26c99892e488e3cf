package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantly-lab/quantly/internal/backtest"
	"github.com/quantly-lab/quantly/internal/series"
	"github.com/quantly-lab/quantly/internal/types"
)

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Ticker == "" {
		s.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	frequency := types.FrequencyDay
	if req.Frequency.IsSome() {
		parsed, err := types.ParseFrequency(req.Frequency.Unwrap())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}

		frequency = parsed
	}

	// The full history is loaded so indicator warm-up can use bars before
	// the requested start date; the engine applies the date filter itself.
	bars, err := s.store.ReadBars(req.Ticker, optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.engine.Run(backtest.RunParams{
		Frame:          series.NewFrame(bars),
		StartingValue:  req.StartingValue,
		BuyStrategies:  req.BuyStrategies,
		SellStrategies: req.SellStrategies,
		Frequency:      frequency,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	bid := newBacktestID()
	s.logger.Info("backtest completed",
		zap.String("b_id", bid),
		zap.String("ticker", req.Ticker),
		zap.Int("trades", len(result.Trades)))

	s.writeJSON(w, http.StatusOK, BacktestResponse{
		Status: "completed",
		BID:    bid,
		Result: result,
	})
}

// newBacktestID builds a sortable run identifier from the current UTC time
// and a short random suffix.
func newBacktestID() string {
	return fmt.Sprintf("backtest%s-%s",
		time.Now().UTC().Format("060102150405"),
		uuid.New().String()[:6])
}
