package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoopsight/predictions-api/internal/logic"
)

// GetPredictionsByDate returns all predictions for one game date
// @Summary Predictions for a date
// @Produce json
// @Param date query string true "Game date (YYYY-MM-DD)"
// @Success 200 {array} models.Prediction
// @Router /predictions [get]
func (h *Handler) GetPredictionsByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(r.URL.Query().Get("date"))
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	preds, err := h.predictions.GetByDate(r.Context(), date)
	if err != nil {
		h.logger.Errorw("Failed to get predictions by date", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get predictions")
		return
	}
	h.jsonResponse(w, http.StatusOK, preds)
}

// GetPredictionsByGame returns every model's prediction for one game
// @Summary Predictions for a game
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200 {array} models.Prediction
// @Router /games/{gameID}/predictions [get]
func (h *Handler) GetPredictionsByGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	preds, err := h.predictions.GetByGame(r.Context(), gameID)
	if err != nil {
		h.logger.Errorw("Failed to get predictions by game", "game_id", gameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get predictions")
		return
	}
	h.jsonResponse(w, http.StatusOK, preds)
}

// GetFeatureVector returns the materialized feature vector for one game
// @Summary Feature vector for a game
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200 {object} models.FeatureVector
// @Failure 404 {object} map[string]string
// @Router /games/{gameID}/features [get]
func (h *Handler) GetFeatureVector(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	fv, err := h.features.GetVector(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No feature vector for game")
			return
		}
		h.logger.Errorw("Failed to get feature vector", "game_id", gameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get feature vector")
		return
	}
	h.jsonResponse(w, http.StatusOK, fv)
}

// GetTeamStat returns one team's form snapshot as of a date
// @Summary Team daily stat
// @Produce json
// @Param teamID path string true "Team ID"
// @Param date query string true "As-of date (YYYY-MM-DD)"
// @Success 200 {object} models.TeamDailyStat
// @Failure 404 {object} map[string]string
// @Router /teams/{teamID}/stats [get]
func (h *Handler) GetTeamStat(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	date, ok := dateParam(r.URL.Query().Get("date"))
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	stat, err := h.teamStats.GetStat(r.Context(), teamID, date)
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No snapshot for team and date")
			return
		}
		h.logger.Errorw("Failed to get team stat", "team_id", teamID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get team stat")
		return
	}
	h.jsonResponse(w, http.StatusOK, stat)
}

// GetHeadToHead returns the historical matchup record between two teams
// @Summary Head-to-head record
// @Produce json
// @Param teamID path string true "Team A"
// @Param opponentID path string true "Team B"
// @Param date query string true "As-of date (YYYY-MM-DD)"
// @Success 200 {object} models.HeadToHeadRecord
// @Router /teams/{teamID}/h2h/{opponentID} [get]
func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	opponentID := chi.URLParam(r, "opponentID")
	date, ok := dateParam(r.URL.Query().Get("date"))
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	rec, err := h.headToHead.Record(r.Context(), teamID, opponentID, date)
	if err != nil {
		h.logger.Errorw("Failed to get head-to-head record",
			"team_a", teamID, "team_b", opponentID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get head-to-head record")
		return
	}
	h.jsonResponse(w, http.StatusOK, rec)
}
