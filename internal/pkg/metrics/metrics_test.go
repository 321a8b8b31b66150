package metrics

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-backend/internal/pkg/ctxkey"
	"rpg-backend/internal/pkg/xerrors"
)

func TestHTTPMetrics_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegistry("test", reg)

	m.RecordRequest("game", "/api/v1/game/characters/:character_id", "GET", 200, 100*time.Millisecond)
	m.RecordRequest("game", "/api/v1/game/characters/:character_id", "GET", 200, 50*time.Millisecond)
	m.RecordRequest("game", "", "GET", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("game", "/api/v1/game/characters/:character_id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("game", "unknown", "GET", "404")))
}

func TestHTTPMetrics_InProgress(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegistry("test", reg)

	m.IncInProgress("game")
	m.IncInProgress("game")
	m.DecInProgress("game")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsInProgress.WithLabelValues("game")))
}

func TestIsHealthCheckEndpoint(t *testing.T) {
	assert.True(t, IsHealthCheckEndpoint("/health"))
	assert.True(t, IsHealthCheckEndpoint("/metrics"))
	assert.False(t, IsHealthCheckEndpoint("/api/v1/game/characters"))
}

func TestErrorMetrics_RecordError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewErrorMetricsWithRegistry("test", reg)

	appErr := xerrors.NewStageLockedError(2, 3)
	m.RecordError(appErr, http.StatusForbidden, "get", "game", 0.01)
	m.RecordError(nil, http.StatusInternalServerError, "GET", "game", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsByCode.WithLabelValues("game", "GET", "810002", "WARN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsByCategory.WithLabelValues("game", "game", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorResponses.WithLabelValues("game", "403")))
}

func TestResourceMetrics_RecordDBPoolStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResourceMetricsWithRegistry("test", reg)

	stats := sql.DBStats{MaxOpenConnections: 25, OpenConnections: 10, InUse: 4, Idle: 6, WaitCount: 3, WaitDuration: 2 * time.Second}
	m.RecordDBPoolStats("game", "postgres", stats)
	m.RecordDBPoolStats("game", "postgres", stats)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.DBConnections.WithLabelValues("game", "postgres", "open")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.DBConnections.WithLabelValues("game", "postgres", "in_use")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.DBMaxConnections.WithLabelValues("game", "postgres")))
	// 累计值重复采样不应叠加
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DBWaitCount.WithLabelValues("game", "postgres")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DBWaitDuration.WithLabelValues("game", "postgres")))
}

func TestResourceMetrics_RecordRedisOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResourceMetricsWithRegistry("test", reg)

	m.RecordRedisOperation("INCR", true, time.Millisecond, "game")
	m.RecordRedisOperation("INCR", false, time.Millisecond, "game")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RedisOperations.WithLabelValues("INCR", "success", "game")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RedisOperations.WithLabelValues("INCR", "error", "game")))
}

func TestGameMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGameMetricsWithRegistry("test", reg)

	m.RecordSessionIssued("boss", "game")
	m.RecordCompletion(CompletionAccepted, "game")
	m.RecordCompletion(CompletionAlreadyCompleted, "game")
	m.RecordItemDropped("epic", "game")
	m.RecordInventoryOverflow(0, "game")
	m.RecordInventoryOverflow(2, "game")
	m.RecordSessionsPurged(5, "game")
	m.ObserveSuspicion(0.5, "game")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsIssued.WithLabelValues("boss", "game")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues(CompletionAccepted, "game")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues(CompletionAlreadyCompleted, "game")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsDropped.WithLabelValues("epic", "game")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InventoryDropped.WithLabelValues("game")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SessionsPurged.WithLabelValues("game")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SuspicionScore))
}

func TestMiddleware_StoresMethodAndRecords(t *testing.T) {
	e := echo.New()
	var method string
	e.Use(Middleware("game-test"))
	e.GET("/api/v1/game/ping/:id", func(c echo.Context) error {
		method = ctxkey.GetString(c.Request().Context(), ctxkey.HTTPMethod)
		return c.NoContent(http.StatusNoContent)
	})

	before := testutil.ToFloat64(DefaultHTTPMetrics.RequestsTotal.WithLabelValues("game-test", "/api/v1/game/ping/:id", "GET", "204"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/game/ping/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.MethodGet, method)
	after := testutil.ToFloat64(DefaultHTTPMetrics.RequestsTotal.WithLabelValues("game-test", "/api/v1/game/ping/:id", "GET", "204"))
	assert.Equal(t, before+1, after)
}

func TestServiceName(t *testing.T) {
	previous := GetServiceName()
	t.Cleanup(func() { SetServiceName(previous) })

	SetServiceName("game")
	assert.Equal(t, "game", GetServiceName())
	assert.Equal(t, "game", normalizeServiceName(""))
	assert.Equal(t, "admin", normalizeServiceName("admin"))

	SetServiceName("")
	assert.Equal(t, defaultServiceName, GetServiceName())
}
