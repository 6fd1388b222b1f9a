package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flight-search/live-search-gateway/internal/infrastructure/ratelimit"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func lastLogEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

// =====================================================
// Request ID Middleware Tests
// =====================================================

func TestRequestID_GeneratesNewID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/test")

	require.NoError(t, RequestID()(okHandler)(c))

	reqID := rec.Header().Get(RequestIDHeader)
	assert.Len(t, reqID, 36, "should be UUID format (36 chars)")
	assert.Equal(t, reqID, GetRequestID(c), "context ID should match header ID")
}

func TestRequestID_PropagatesExistingID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/test")
	c.Request().Header.Set(RequestIDHeader, "existing-request-id-12345")

	require.NoError(t, RequestID()(okHandler)(c))

	assert.Equal(t, "existing-request-id-12345", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "existing-request-id-12345", GetRequestID(c))
}

func TestRequestID_ReplacesOversizedID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/test")
	c.Request().Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))

	require.NoError(t, RequestID()(okHandler)(c))

	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestGetRequestID_ReturnsEmptyWhenNotSet(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/test")

	assert.Empty(t, GetRequestID(c))
}

// =====================================================
// Request Logging Middleware Tests
// =====================================================

func TestRequestLogger_LogsRequestDetails(t *testing.T) {
	var logBuf bytes.Buffer
	log := zerolog.New(&logBuf)

	c, _ := newContext(http.MethodPost, "/api/v1/flights/search")
	c.Request().Header.Set("User-Agent", "TestAgent/1.0")
	c.Request().Header.Set("X-Real-IP", "192.168.1.100")
	c.Set("request_id", "test-req-id-123")

	require.NoError(t, RequestLogger(log)(okHandler)(c))

	entry := lastLogEntry(t, &logBuf)
	assert.Equal(t, "test-req-id-123", entry["request_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/v1/flights/search", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "192.168.1.100", entry["client_ip"])
	assert.Equal(t, "TestAgent/1.0", entry["user_agent"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "duration_ms")
	assert.Equal(t, "HTTP request", entry["message"])
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{"success", "/api/v1/flights/search", http.StatusOK, "info"},
		{"redirect", "/booking-redirect", http.StatusFound, "info"},
		{"client error", "/booking-redirect", http.StatusBadRequest, "warn"},
		{"auth error", "/api/v1/flights/search", http.StatusServiceUnavailable, "error"},
		{"upstream error", "/api/v1/flights/search", http.StatusBadGateway, "error"},
		{"health probe", "/health", http.StatusOK, "debug"},
		{"metrics scrape", "/metrics", http.StatusOK, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			log := zerolog.New(&logBuf)
			c, _ := newContext(http.MethodGet, tt.path)

			handler := RequestLogger(log)(func(c echo.Context) error {
				return c.NoContent(tt.status)
			})
			require.NoError(t, handler(c))

			entry := lastLogEntry(t, &logBuf)
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, tt.wantLevel, entry["level"])
		})
	}
}

func TestRequestLogger_HandlesReturnedError(t *testing.T) {
	var logBuf bytes.Buffer
	log := zerolog.New(&logBuf)
	c, rec := newContext(http.MethodGet, "/missing")

	handler := RequestLogger(log)(func(c echo.Context) error {
		return echo.ErrNotFound
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(404), lastLogEntry(t, &logBuf)["status"])
}

// =====================================================
// Recovery Middleware Tests
// =====================================================

func TestRecover_Returns500OnPanic(t *testing.T) {
	var logBuf bytes.Buffer
	c, rec := newContext(http.MethodGet, "/panic")

	handler := Recover(zerolog.New(&logBuf))(func(c echo.Context) error {
		panic("test panic")
	})

	assert.NotPanics(t, func() { _ = handler(c) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "An unexpected error occurred", body["error"])
	assert.NotContains(t, rec.Body.String(), "test panic")
}

func TestRecover_LogsPanicWithStackTrace(t *testing.T) {
	var logBuf bytes.Buffer
	c, _ := newContext(http.MethodGet, "/panic")
	c.Set("request_id", "stack-test-id")

	handler := Recover(zerolog.New(&logBuf))(func(c echo.Context) error {
		panic("stack trace test panic")
	})
	_ = handler(c)

	entry := lastLogEntry(t, &logBuf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "stack-test-id", entry["request_id"])
	assert.Equal(t, "/panic", entry["path"])
	assert.Equal(t, "stack trace test panic", entry["panic"])
	stack, ok := entry["stack"].(string)
	require.True(t, ok)
	assert.Contains(t, stack, "goroutine")
	assert.Equal(t, "Panic recovered", entry["message"])
}

func TestRecover_HandlesErrorPanic(t *testing.T) {
	var logBuf bytes.Buffer
	c, rec := newContext(http.MethodGet, "/panic")

	handler := Recover(zerolog.New(&logBuf))(func(c echo.Context) error {
		var slice []int
		_ = slice[10]
		return nil
	})

	assert.NotPanics(t, func() { _ = handler(c) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, lastLogEntry(t, &logBuf)["panic"], "index out of range")
}

func TestRecover_PassesThroughNormalRequests(t *testing.T) {
	var logBuf bytes.Buffer
	c, rec := newContext(http.MethodGet, "/normal")

	require.NoError(t, Recover(zerolog.New(&logBuf))(okHandler)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, logBuf.String())
}

func TestRecoverWithConfig_DisableStackPrint(t *testing.T) {
	var logBuf bytes.Buffer
	c, _ := newContext(http.MethodGet, "/panic")

	handler := RecoverWithConfig(zerolog.New(&logBuf), RecoveryConfig{DisablePrintStack: true})(func(c echo.Context) error {
		panic("no stack test")
	})
	_ = handler(c)

	assert.NotContains(t, lastLogEntry(t, &logBuf), "stack")
}

// =====================================================
// Rate Limit Middleware Tests
// =====================================================

func TestRateLimit_RejectsWhenBucketEmpty(t *testing.T) {
	var logBuf bytes.Buffer
	limiter := ratelimit.NewKeyedLimiter(ratelimit.Config{RequestsPerSecond: 0.001, BurstSize: 2})
	mw := RateLimit(limiter, zerolog.New(&logBuf))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		c, rec := newContext(http.MethodPost, "/api/v1/flights/search")
		c.Request().Header.Set("X-Real-IP", "198.51.100.1")
		require.NoError(t, mw(okHandler)(c))
		codes = append(codes, rec.Code)
		if i == 2 {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			assert.Contains(t, rec.Body.String(), `"status":"ERROR"`)
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "198.51.100.1", lastLogEntry(t, &logBuf)["client_ip"])
}

func TestRateLimit_SeparateBucketsPerIP(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiter(ratelimit.Config{RequestsPerSecond: 0.001, BurstSize: 1})
	mw := RateLimit(limiter, zerolog.Nop())

	for _, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		c, rec := newContext(http.MethodGet, "/booking-redirect")
		c.Request().Header.Set("X-Real-IP", ip)
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
	assert.Equal(t, 2, limiter.Len())
}

// =====================================================
// Setup Tests
// =====================================================

func TestSetup_AppliesAllMiddleware(t *testing.T) {
	var logBuf bytes.Buffer
	e := echo.New()
	Setup(e, zerolog.New(&logBuf))
	e.GET("/test", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	reqID := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, reqID, lastLogEntry(t, &logBuf)["request_id"])
}

func TestSetup_RecoversPanicAndLogsRequest(t *testing.T) {
	var logBuf bytes.Buffer
	e := echo.New()
	Setup(e, zerolog.New(&logBuf))
	e.GET("/panic", func(c echo.Context) error {
		panic("setup panic test")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { e.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	entry := lastLogEntry(t, &logBuf)
	assert.Equal(t, "HTTP request", entry["message"])
	assert.Equal(t, float64(500), entry["status"])
}

func TestSetupWithConfig_AppliesCustomConfig(t *testing.T) {
	var logBuf bytes.Buffer
	e := echo.New()
	SetupWithConfig(e, zerolog.New(&logBuf), RecoveryConfig{DisablePrintStack: true})
	e.GET("/panic", func(c echo.Context) error {
		panic("config panic test")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var panicEntry map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(logBuf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err == nil && entry["message"] == "Panic recovered" {
			panicEntry = entry
			break
		}
	}
	require.NotNil(t, panicEntry)
	assert.NotContains(t, panicEntry, "stack")
}
