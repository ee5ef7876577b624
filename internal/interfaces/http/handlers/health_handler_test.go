package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/pkg/errors"
)

func healthy(context.Context) error { return nil }

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("1.2.0", nil, CheckFunc("redis", func(context.Context) error {
		t.Fatal("liveness must not probe dependencies")
		return nil
	}))

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp LivenessResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.0", resp.Version)
}

func TestHealthHandler_Readiness_NoCheckers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler("dev", nil).Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHealthHandler_Readiness_AllHealthy(t *testing.T) {
	h := NewHealthHandler("dev", nil, CheckFunc("redis", healthy), CheckFunc("postgres", healthy))

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ReadinessResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ready", resp.Status)
	require.Len(t, resp.Components, 2)
	assert.Equal(t, "healthy", resp.Components["postgres"].Status)
}

func TestHealthHandler_Readiness_OneDown(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "hh"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(collector)

	h := NewHealthHandler("dev", m,
		CheckFunc("redis", healthy),
		CheckFunc("minio", func(context.Context) error {
			return errors.New(errors.ErrCodeServiceUnavailable, "bucket lienpilot-notices missing")
		}),
	)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ReadinessResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["minio"].Status)
	assert.Contains(t, resp.Components["minio"].Error, "bucket lienpilot-notices missing")
	assert.Equal(t, "healthy", resp.Components["redis"].Status)

	scrape := httptest.NewRecorder()
	collector.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `hh_health_check_status{component="minio"} 0`)
	assert.Contains(t, scrape.Body.String(), `hh_health_check_status{component="redis"} 1`)
}

//Personal.AI order the ending
