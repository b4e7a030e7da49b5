package handlers

import (
	"context"
	"net/http"

	"github.com/upb/lenny-lens/middleware"
	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services/query"
	"github.com/upb/lenny-lens/utils"
	"go.uber.org/zap"
)

// SearchRequest is the body of POST /search-with-answer. Limit is accepted
// for compatibility; retrieval sizes are chosen from the query intent.
type SearchRequest struct {
	Query string `json:"query" validate:"max=2000"`
	Limit *int   `json:"limit,omitempty" validate:"omitempty,gte=1,lte=20"`
}

// ClearResponse is the body returned by POST /clear-conversation
type ClearResponse struct {
	Status string `json:"status"`
}

// QueryService defines the conversational query operations
type QueryService interface {
	// Submit runs one query through the pipeline for the requesting client
	Submit(ctx context.Context, req *query.Request) (*models.Answer, error)

	// Reset clears the client's conversation
	Reset(clientID string)
}

// QueryHandler handles the conversational search endpoints
type QueryHandler struct {
	service QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(service QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		service: service,
		logger:  logger,
	}
}

// HandleSearch handles POST /search-with-answer
func (h *QueryHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SearchRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	answer, err := h.service.Submit(ctx, &query.Request{
		Query:     req.Query,
		ClientID:  middleware.GetClientIDFromContext(ctx),
		RequestID: middleware.GetRequestIDFromContext(ctx),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, answer); err != nil {
		h.logger.Error("failed to write answer", zap.Error(err))
	}
}

// HandleClear handles POST /clear-conversation
func (h *QueryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.service.Reset(middleware.GetClientIDFromContext(r.Context()))

	if err := utils.WriteOK(w, ClearResponse{Status: "cleared"}); err != nil {
		h.logger.Error("failed to write clear response", zap.Error(err))
	}
}
