package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/leaderboard"
)

func (s *Server) handleUserPnL(w http.ResponseWriter, r *http.Request) {
	res, err := s.leaderboards.UserPnL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPnLResponse(res))
}

func (s *Server) handleCrewPnL(w http.ResponseWriter, r *http.Request) {
	res, err := s.leaderboards.CrewPnL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPnLResponse(res))
}

func (s *Server) handleUserLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := s.leaderboards.UserLeaderboard(r.Context(), leaderboardQuery(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(page))
}

func (s *Server) handleCrewLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := leaderboardQuery(r)
	if r.URL.Query().Get("metric") == "" {
		q.Metric = domain.MetricRealizedPnL
	}
	page, err := s.leaderboards.CrewLeaderboard(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCrewLeaderboardResponse(page))
}

func (s *Server) handleSeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	metric := query.Get("metric")
	if metric == "" {
		metric = domain.MetricRealizedPnL
	}
	page, err := s.seasons.Leaderboard(r.Context(),
		chi.URLParam(r, "id"),
		metric,
		intParam(query.Get("limit"), 50),
		intParam(query.Get("offset"), 0),
	)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(page))
}

type createChallengeRequest struct {
	ChallengerID  string `json:"challengerId"`
	OpponentID    string `json:"opponentId"`
	DurationHours int    `json:"durationHours"`
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	c, err := s.challenges.Create(r.Context(), req.ChallengerID, req.OpponentID, req.DurationHours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChallengeResponse(c))
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.challenges.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(c))
}

func (s *Server) handleAcceptChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.challenges.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(c))
}

func (s *Server) handleDeclineChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.challenges.Decline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(c))
}

// leaderboardQuery parses the shared leaderboard query parameters, leaving
// whitelist validation to the service.
func leaderboardQuery(r *http.Request) leaderboard.Query {
	query := r.URL.Query()

	metric := query.Get("metric")
	if metric == "" {
		metric = domain.MetricRealizedPnL
	}
	timeframe := query.Get("timeframe")
	if timeframe == "" {
		timeframe = domain.TimeframeAll
	}

	return leaderboard.Query{
		Metric:    metric,
		Timeframe: timeframe,
		Chain:     query.Get("chain"),
		Limit:     intParam(query.Get("limit"), 0),
		Offset:    intParam(query.Get("offset"), 0),
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
