package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/lenny-lens/services"
	"github.com/upb/lenny-lens/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedError   string
		expectedMessage string
	}{
		{
			name:            "query too short",
			err:             services.NewQueryTooShortError(),
			expectedStatus:  http.StatusBadRequest,
			expectedError:   utils.CodeValidation,
			expectedMessage: "Query must be at least 3 characters",
		},
		{
			name:            "conversation full",
			err:             services.NewConversationLimitError(5),
			expectedStatus:  http.StatusBadRequest,
			expectedError:   utils.CodeConversationLimit,
			expectedMessage: "Conversation limit reached (5 messages)",
		},
		{
			name:            "daily limit",
			err:             services.NewRateLimitError(10, 10),
			expectedStatus:  http.StatusTooManyRequests,
			expectedError:   utils.CodeRateLimit,
			expectedMessage: "Daily query limit reached",
		},
		{
			name:            "embedding failure",
			err:             services.WrapExternal(services.MsgEmbeddingFailed, errors.New("401 invalid key")),
			expectedStatus:  http.StatusBadGateway,
			expectedError:   utils.CodeUpstream,
			expectedMessage: "Failed to embed query",
		},
		{
			name:            "search unavailable",
			err:             services.WrapUnavailable(services.MsgSearchUnavailable, errors.New("dial tcp")),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedError:   utils.CodeServiceUnavailable,
			expectedMessage: "Knowledge base unavailable",
		},
		{
			name:            "internal",
			err:             services.WrapInternal("boom", errors.New("nil map")),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   utils.CodeInternal,
			expectedMessage: "An internal error occurred",
		},
		{
			name:            "plain error",
			err:             errors.New("unexpected"),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   utils.CodeInternal,
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, tt.expectedMessage, response.Message)
		})
	}
}

func TestHandleServiceError_RateLimitDetails(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, services.NewRateLimitError(10, 10), zap.NewNop())

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, float64(10), response.Details["limit"])
	assert.Equal(t, float64(10), response.Details["queries_today"])
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	type payload struct {
		Limit int `json:"limit" validate:"lte=20"`
	}
	err := utils.ValidateStruct(payload{Limit: 99})
	require.Error(t, err)

	w := httptest.NewRecorder()
	HandleValidationError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, utils.CodeValidation, response.Error)
	assert.Contains(t, response.Details, "limit")
}
