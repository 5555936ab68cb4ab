package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errorEnvelope mirrors the JSON error body returned by the API
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

func newRecoveryRouter(logBuffer *bytes.Buffer) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelError}))

	router := gin.New()
	router.Use(Recovery(logger))
	router.Use(CorrelationID())
	router.POST("/api/v1/webhooks/gateway", func(c *gin.Context) {
		panic("ledger unavailable")
	})
	router.GET("/api/v1/transactions/:trxn_id", func(c *gin.Context) {
		panic("nil transaction")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return router
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("WebhookPanicReturnsRetryableEnvelope", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)

		correlationID := uuid.New().String()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway?processor_id=7", bytes.NewBufferString(`{"data":{"id":"inv_1"}}`))
		req.Header.Set(CorrelationIDHeader, correlationID)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, correlationID, rr.Header().Get(CorrelationIDHeader))

		var body errorEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, InternalErrorCode, body.Error.Code)
		assert.Equal(t, InternalErrorMessage, body.Error.Message)
		assert.Equal(t, correlationID, body.CorrelationID)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &entry))
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "Panic recovered", entry["msg"])
		assert.Equal(t, "ledger unavailable", entry["error"])
		assert.Equal(t, "/api/v1/webhooks/gateway", entry["route"])
		assert.Equal(t, "7", entry["processor_id"])
		assert.Equal(t, correlationID, entry["correlation_id"])
		assert.NotEmpty(t, entry["stack"])
	})

	t.Run("RouteTemplateLoggedWithoutProcessor", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/inv_9", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var body errorEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, InternalErrorCode, body.Error.Code)
		// CorrelationID generates one when the header is absent
		assert.NotEmpty(t, body.CorrelationID)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &entry))
		assert.Equal(t, "/api/v1/transactions/:trxn_id", entry["route"])
		assert.Equal(t, "/api/v1/transactions/inv_9", entry["path"])
		assert.NotContains(t, entry, "processor_id")
	})

	t.Run("NoPanicPassesThrough", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
		assert.Empty(t, logBuffer.String())
	})
}
