package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/lenny-lens/utils"
	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// BannerResponse is the body of GET /
type BannerResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// LivenessResponse is the body of GET /healthz
type LivenessResponse struct {
	Status string `json:"status"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	corpus CorpusService
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(corpus CorpusService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		corpus: corpus,
		logger: logger,
	}
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, BannerResponse{Message: "The Lenny Lens API", Status: "healthy"})
}

// HandleLiveness handles GET /healthz
// Always returns 200 while the process is serving
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, LivenessResponse{Status: "ok"})
}

// HandleHealth handles GET /health
// Checks database connectivity and returns 503 when it is unreachable
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	health, err := h.corpus.Health(ctx)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, health); err != nil {
		h.logger.Error("failed to write health response", zap.Error(err))
	}
}
