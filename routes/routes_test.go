package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/lenny-lens/app"
	"github.com/upb/lenny-lens/config"
	"github.com/upb/lenny-lens/repositories/postgres"
	"github.com/upb/lenny-lens/utils"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Providers: config.ProvidersConfig{
			OpenAI: config.OpenAIConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:1/v1/"},
		},
		Pipeline: config.PipelineConfig{
			DailyQueryLimit:     10,
			MaxTurns:            5,
			SessionTTL:          24 * time.Hour,
			MaxClients:          100,
			SimilarityThreshold: 0.35,
			MinResults:          3,
			MaxContextChunks:    7,
		},
		Observability: config.ObservabilityConfig{LogLevel: "info", MetricsEnabled: true},
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger := zap.NewNop()
	factory := postgres.NewRepositoryFactoryFromDB(postgres.NewDBFromConn(conn, logger), logger)
	deps, err := app.NewDependenciesFromFactory(cfg, factory, logger)
	require.NoError(t, err)

	return SetupRoutes(deps), mock
}

func serve(h http.Handler, method, path, body, remoteAddr string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_Banner(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"The Lenny Lens API","status":"healthy"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/api/v1/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, utils.CodeNotFound, response.Error)
}

func TestRoutes_Stats(t *testing.T) {
	router, mock := newTestRouter(t, nil)
	mock.ExpectQuery("COUNT\\(DISTINCT episode_guest\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(12, 3))

	w := serve(router, http.MethodGet, "/stats", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_chunks":12,"unique_guests":3}`, w.Body.String())
}

func TestRoutes_QuotaIsConsumedByRejectedQueries(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for i := 0; i < 10; i++ {
		w := serve(router, http.MethodPost, "/search-with-answer", `{"query":"hi"}`, "203.0.113.7:5000")
		require.Equal(t, http.StatusBadRequest, w.Code)
	}

	// A different port on the same host is the same client
	w := serve(router, http.MethodPost, "/search-with-answer", `{"query":"hi"}`, "203.0.113.7:6000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Daily query limit reached", response.Message)

	// Another host still has its full quota
	w = serve(router, http.MethodPost, "/search-with-answer", `{"query":"hi"}`, "198.51.100.2:5000")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_ProxyHeaders(t *testing.T) {
	exhaust := func(h http.Handler, forwardedFor string) *httptest.ResponseRecorder {
		var w *httptest.ResponseRecorder
		for i := 0; i < 11; i++ {
			req := httptest.NewRequest(http.MethodPost, "/search-with-answer", strings.NewReader(`{"query":"hi"}`))
			req.RemoteAddr = "10.0.0.1:4000"
			req.Header.Set("X-Forwarded-For", forwardedFor)
			if i == 10 {
				req.Header.Set("X-Forwarded-For", "192.0.2.99")
			}
			w = httptest.NewRecorder()
			h.ServeHTTP(w, req)
		}
		return w
	}

	t.Run("ignored by default", func(t *testing.T) {
		router, _ := newTestRouter(t, nil)
		w := exhaust(router, "192.0.2.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("trusted when enabled", func(t *testing.T) {
		router, _ := newTestRouter(t, func(cfg *config.Config) {
			cfg.Server.TrustProxyHeaders = true
		})
		w := exhaust(router, "192.0.2.1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRoutes_ClearConversation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodPost, "/clear-conversation", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"cleared"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/clear-conversation", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRoutes_CORS(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/search-with-answer", nil)
	req.Header.Set("Origin", "https://lenny.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_Metrics(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		router, _ := newTestRouter(t, nil)
		_ = serve(router, http.MethodPost, "/search-with-answer", `{"query":"hi"}`, "")

		w := serve(router, http.MethodGet, "/metrics", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `lens_queries_total{intent="unclassified",outcome="rejected"} 1`)
	})

	t.Run("disabled", func(t *testing.T) {
		router, _ := newTestRouter(t, func(cfg *config.Config) {
			cfg.Observability.MetricsEnabled = false
		})
		w := serve(router, http.MethodGet, "/metrics", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
