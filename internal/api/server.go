// Package api exposes the backtest engine and price store over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/quantly-lab/quantly/internal/backtest"
	"github.com/quantly-lab/quantly/internal/config"
	"github.com/quantly-lab/quantly/internal/logger"
	"github.com/quantly-lab/quantly/internal/store"
	"github.com/quantly-lab/quantly/pkg/errors"
)

type Server struct {
	config config.ServerConfig
	store  store.Store
	engine *backtest.Engine
	logger *logger.Logger
}

func NewServer(config config.ServerConfig, store store.Store, engine *backtest.Engine, logger *logger.Logger) *Server {
	return &Server{
		config: config,
		store:  store,
		engine: engine,
		logger: logger,
	}
}

// Handler builds the full HTTP handler: routing, CORS and API key auth.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.apiKeyMiddleware)
	apiRouter.HandleFunc("/backtest", s.handleBacktest).Methods(http.MethodPost)
	apiRouter.HandleFunc("/prices", s.handlePrices).Methods(http.MethodGet)
	apiRouter.HandleFunc("/chart-data", s.handleChartData).Methods(http.MethodGet)
	apiRouter.HandleFunc("/strategies", s.handleStrategies).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-API-Key"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// apiKeyMiddleware rejects requests without the configured X-API-Key header.
// CORS preflight requests pass through unauthenticated.
func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if s.config.APIKey != "" && r.Header.Get("X-API-Key") != s.config.APIKey {
			s.writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsInsufficientDataError(err):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.HasCode(err, errors.ErrCodeDataNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.HasCode(err, errors.ErrCodeUnknownStrategy),
		errors.HasCode(err, errors.ErrCodeStrategyConfigError),
		errors.HasCode(err, errors.ErrCodeBacktestNoStrategies),
		errors.HasCode(err, errors.ErrCodeBacktestConfigError),
		errors.HasCode(err, errors.ErrCodeInvalidFrequency),
		errors.HasCode(err, errors.ErrCodeInvalidConfiguration),
		errors.HasCode(err, errors.ErrCodeInvalidDateRange):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
