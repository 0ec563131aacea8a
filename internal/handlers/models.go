package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoopsight/predictions-api/internal/logic"
	"github.com/hoopsight/predictions-api/internal/models"
)

type registerModelRequest struct {
	ModelName           string                 `json:"model_name" validate:"required"`
	ModelVersion        string                 `json:"model_version" validate:"required"`
	ModelType           string                 `json:"model_type" validate:"required"`
	Hyperparameters     models.Hyperparameters `json:"hyperparameters"`
	TrainingDate        string                 `json:"training_date" validate:"required"`
	TrainingSampleCount int                    `json:"training_sample_count" validate:"gte=0"`
}

// RegisterModel registers a new model artifact, inactive until activated
// @Summary Register a model artifact
// @Accept json
// @Produce json
// @Success 201 {object} models.ModelArtifact
// @Failure 409 {object} map[string]string "Duplicate name/version"
// @Router /models [post]
func (h *Handler) RegisterModel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req registerModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Missing required fields: "+err.Error())
		return
	}
	trainingDate, err := time.Parse("2006-01-02", req.TrainingDate)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid training_date, expected YYYY-MM-DD")
		return
	}

	artifact, err := h.registry.Register(r.Context(), &models.ModelArtifact{
		ModelName:           req.ModelName,
		ModelVersion:        req.ModelVersion,
		ModelType:           req.ModelType,
		Hyperparameters:     req.Hyperparameters,
		TrainingDate:        trainingDate,
		TrainingSampleCount: req.TrainingSampleCount,
	})
	if err != nil {
		if errors.Is(err, logic.ErrDuplicateVersion) {
			h.errorResponse(w, http.StatusConflict, "Model name and version already registered")
			return
		}
		h.logger.Errorw("Failed to register model", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to register model")
		return
	}
	h.jsonResponse(w, http.StatusCreated, artifact)
}

// ActivateModel makes one registered model the active one
// @Summary Activate a model
// @Produce json
// @Param modelID path string true "Model ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /models/{modelID}/activate [post]
func (h *Handler) ActivateModel(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "modelID")

	if err := h.registry.Activate(r.Context(), modelID); err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Unknown model")
			return
		}
		h.logger.Errorw("Failed to activate model", "model_id", modelID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to activate model")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"active_model_id": modelID})
}

// ListModels returns every registered model artifact
// @Summary List model artifacts
// @Produce json
// @Success 200 {array} models.ModelArtifact
// @Router /models [get]
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list models", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list models")
		return
	}
	h.jsonResponse(w, http.StatusOK, artifacts)
}

// GetActiveModel returns the currently active model
// @Summary Active model
// @Produce json
// @Success 200 {object} models.ModelArtifact
// @Failure 404 {object} map[string]string
// @Router /models/active [get]
func (h *Handler) GetActiveModel(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.registry.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, logic.ErrNoActiveModel) {
			h.errorResponse(w, http.StatusNotFound, "No active model")
			return
		}
		h.logger.Errorw("Failed to get active model", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get active model")
		return
	}
	h.jsonResponse(w, http.StatusOK, artifact)
}

// GetModelMetrics returns metric rollups for one model
// @Summary Model metrics
// @Produce json
// @Param modelID path string true "Model ID"
// @Success 200 {array} models.ModelMetric
// @Router /models/{modelID}/metrics [get]
func (h *Handler) GetModelMetrics(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "modelID")

	metrics, err := h.metrics.GetModelMetrics(r.Context(), modelID)
	if err != nil {
		h.logger.Errorw("Failed to get model metrics", "model_id", modelID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get model metrics")
		return
	}
	h.jsonResponse(w, http.StatusOK, metrics)
}
