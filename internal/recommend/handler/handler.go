package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/recommend"
	apperrors "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/logger"
)

const maxBodyBytes = 1 << 20

type Recommender interface {
	RankJobsForSkills(ctx context.Context, skills []string) ([]recommend.RecommendedJob, error)
	ForceRefresh(ctx context.Context) error
	HealthStatus() recommend.Health
}

type Handler struct {
	svc    Recommender
	logger *slog.Logger
}

func New(svc Recommender) *Handler {
	return &Handler{
		svc:    svc,
		logger: slog.Default().With("component", "recommend-handler"),
	}
}

type predictRequest struct {
	Skills []string `json:"skills"`
}

type predictResponse struct {
	RecommendedJobs []recommend.RecommendedJob `json:"recommended_jobs"`
}

type refreshResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Predict answers POST /predict. A missing body or skills field is an empty
// query, not an error.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "request body too large")
		return
	}
	var req predictRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			log.Info("rejecting malformed predict body", "error", err)
			h.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	jobs, err := h.svc.RankJobsForSkills(r.Context(), req.Skills)
	if err != nil {
		if apperrors.IsDegradable(err) {
			h.writeJSON(w, http.StatusOK, predictResponse{RecommendedJobs: []recommend.RecommendedJob{}})
			return
		}
		log.Error("predict failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, predictResponse{RecommendedJobs: jobs})
}

// Refresh answers POST /refresh with an unconditional rebuild.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ForceRefresh(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("forced refresh failed", "error", err)
		status := apperrors.HTTPStatusCode(err)
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		h.writeJSON(w, status, refreshResponse{Status: "error", Message: err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, refreshResponse{Status: "success", Message: "Model refreshed successfully"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.HealthStatus())
}

func (h *Handler) refreshRateLimited(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusTooManyRequests, refreshResponse{Status: "error", Message: apperrors.ErrRateLimited.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
