package handlers

import (
	"context"
	"net/http"

	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services/corpus"
	"github.com/upb/lenny-lens/utils"
	"go.uber.org/zap"
)

// GuestsResponse is the body of GET /guests
type GuestsResponse struct {
	Guests []models.GuestSummary `json:"guests"`
}

// CorpusService defines the read-only corpus reports
type CorpusService interface {
	ListGuests(ctx context.Context) ([]models.GuestSummary, error)
	Stats(ctx context.Context) (*models.CorpusStats, error)
	Health(ctx context.Context) (*corpus.Health, error)
}

// CorpusHandler handles corpus report endpoints
type CorpusHandler struct {
	service CorpusService
	logger  *zap.Logger
}

// NewCorpusHandler creates a new CorpusHandler
func NewCorpusHandler(service CorpusService, logger *zap.Logger) *CorpusHandler {
	return &CorpusHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGuests handles GET /guests
func (h *CorpusHandler) HandleGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.service.ListGuests(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if guests == nil {
		guests = []models.GuestSummary{}
	}

	if err := utils.WriteOK(w, GuestsResponse{Guests: guests}); err != nil {
		h.logger.Error("failed to write guests", zap.Error(err))
	}
}

// HandleStats handles GET /stats
func (h *CorpusHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, stats); err != nil {
		h.logger.Error("failed to write stats", zap.Error(err))
	}
}
