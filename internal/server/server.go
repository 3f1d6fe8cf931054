// Package server exposes the HTTP API over the PnL and cohort services.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"crew-pnl-service/internal/challenge"
	"crew-pnl-service/internal/leaderboard"
	"crew-pnl-service/internal/season"
	"crew-pnl-service/internal/storage"
)

// Server is the HTTP front of the service.
type Server struct {
	leaderboards *leaderboard.Service
	seasons      *season.Service
	challenges   *challenge.Service
	logger       *zap.Logger
	http         *http.Server
}

// New builds the server and its routes.
func New(addr string, leaderboards *leaderboard.Service, seasons *season.Service, challenges *challenge.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		leaderboards: leaderboards,
		seasons:      seasons,
		challenges:   challenges,
		logger:       logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/users/{id}/pnl", s.handleUserPnL)
		r.Get("/leaderboard", s.handleUserLeaderboard)

		r.Get("/crews/{id}/pnl", s.handleCrewPnL)
		r.Get("/crews/leaderboard", s.handleCrewLeaderboard)

		r.Get("/seasons/{id}/leaderboard", s.handleSeasonLeaderboard)

		r.Post("/challenges", s.handleCreateChallenge)
		r.Get("/challenges/{id}", s.handleGetChallenge)
		r.Post("/challenges/{id}/accept", s.handleAcceptChallenge)
		r.Post("/challenges/{id}/decline", s.handleDeclineChallenge)
	})

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe runs the HTTP server until Shutdown.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps service errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, leaderboard.ErrInvalidMetric),
		errors.Is(err, leaderboard.ErrInvalidTimeframe),
		errors.Is(err, season.ErrInvalidMetric),
		errors.Is(err, challenge.ErrSameCrew),
		errors.Is(err, challenge.ErrInvalidDuration):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, challenge.ErrNotPending):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
