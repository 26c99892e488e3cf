package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
)

const defaultPriceLimit = 1000

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	ticker := query.Get("ticker")
	if ticker == "" {
		s.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	start, err := parseTimeParam(query.Get("start"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid start: "+err.Error())
		return
	}

	end, err := parseTimeParam(query.Get("end"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid end: "+err.Error())
		return
	}

	limit := defaultPriceLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}

		limit = parsed
	}

	bars, err := s.store.ReadBars(ticker, start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if len(bars) == 0 {
		s.writeError(w, http.StatusNotFound, "No data found for that range")
		return
	}

	if len(bars) > limit {
		bars = bars[:limit]
	}

	rows := make([]PriceData, len(bars))
	for i, bar := range bars {
		rows[i] = PriceData{
			Ticker:    ticker,
			Timestamp: bar.Time,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		}
	}

	s.writeJSON(w, http.StatusOK, rows)
}

func parseTimeParam(raw string) (optional.Option[time.Time], error) {
	if raw == "" {
		return optional.None[time.Time](), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return optional.Some(t.UTC()), nil
		}
	}

	_, err := time.Parse(time.RFC3339, raw)

	return optional.None[time.Time](), err
}
