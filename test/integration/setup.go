// Package integration provides helpers and integration tests for the search gateway.
// Integration tests run the full echo stack (middleware, handlers, gateway,
// upstream client) against a fake upstream served over real HTTP.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	httpAdapter "github.com/flight-search/live-search-gateway/internal/adapter/http"
	"github.com/flight-search/live-search-gateway/internal/adapter/http/middleware"
	"github.com/flight-search/live-search-gateway/internal/adapter/http/response"
	"github.com/flight-search/live-search-gateway/internal/adapter/travelpayouts"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/metrics"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/ratelimit"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/retry"
	"github.com/flight-search/live-search-gateway/internal/redirect"
	"github.com/flight-search/live-search-gateway/internal/session"
	"github.com/flight-search/live-search-gateway/internal/usecase"
	"github.com/flight-search/live-search-gateway/test/mock"
	"github.com/flight-search/live-search-gateway/test/testutil"
)

const (
	testToken  = "integration-token"
	testMarker = "777"
)

// Options selects how the stack under test is wired.
type Options struct {
	// Upstream enables live mode against the given fake. Nil means demo mode.
	Upstream *mock.Upstream

	MaxClickResolutions int
	ClickTimeout        time.Duration

	// RateLimit enables the inbound per-IP limiter.
	RateLimit *ratelimit.Config
}

// TestServer wraps an Echo instance and provides helper methods for integration testing.
type TestServer struct {
	Echo     *echo.Echo
	Handler  *httpAdapter.FlightHandler
	Sessions *session.MemoryStore
	Metrics  *metrics.Metrics
}

// NewTestServer wires the gateway the same way the server binary does.
func NewTestServer(t *testing.T, opts Options) *TestServer {
	t.Helper()

	log := logger.Nop()
	m := metrics.New("integration", prometheus.NewRegistry())
	sessions := session.NewMemoryStore(time.Minute, nil)
	validator := redirect.NewValidator()

	gwCfg := &usecase.Config{
		MaxClickResolutions: opts.MaxClickResolutions,
		ClickTimeout:        opts.ClickTimeout,
	}
	deps := usecase.Deps{
		Sessions:  sessions,
		Validator: validator,
		Metrics:   m,
		Logger:    log,
	}
	mode := httpAdapter.ModeDemo
	if opts.Upstream != nil {
		gwCfg.LiveEnabled = true
		mode = httpAdapter.ModeLive
		deps.Upstream = travelpayouts.NewClient(travelpayouts.Config{
			Token:         testToken,
			Marker:        testMarker,
			APIBaseURL:    opts.Upstream.URL(),
			SearchBaseURL: opts.Upstream.URL(),
			Timeout:       2 * time.Second,
		},
			travelpayouts.WithMetrics(m),
			travelpayouts.WithRetryConfig(retry.PollFetchConfig.WithInitialDelay(time.Millisecond)),
		)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	middleware.Setup(e, log.Logger)

	var mw []echo.MiddlewareFunc
	if opts.RateLimit != nil {
		mw = append(mw, middleware.RateLimit(ratelimit.NewKeyedLimiter(*opts.RateLimit), log.Logger))
	}

	handler := httpAdapter.NewFlightHandler(usecase.NewSearchGateway(deps, gwCfg), validator, mode, log)
	httpAdapter.RegisterRoutes(e, handler, m.Handler(), mw...)

	return &TestServer{
		Echo:     e,
		Handler:  handler,
		Sessions: sessions,
		Metrics:  m,
	}
}

// Serve exposes the stack on a local listener for HTTP clients.
func (ts *TestServer) Serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(ts.Echo)
	t.Cleanup(srv.Close)
	return srv
}

// Request represents a test HTTP request configuration.
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	ContentType string
	RemoteAddr  string
}

// Response represents a test HTTP response.
type Response struct {
	Code    int
	Body    []byte
	Headers http.Header
}

// Do executes a test request and returns the response.
func (ts *TestServer) Do(req Request) Response {
	var bodyReader *bytes.Reader
	switch b := req.Body.(type) {
	case nil:
		bodyReader = bytes.NewReader(nil)
	case string:
		bodyReader = bytes.NewReader([]byte(b))
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, bodyReader)
	if req.RemoteAddr != "" {
		httpReq.RemoteAddr = req.RemoteAddr
	}

	if req.ContentType != "" {
		httpReq.Header.Set(echo.HeaderContentType, req.ContentType)
	} else if req.Body != nil {
		httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	ts.Echo.ServeHTTP(rec, httpReq)

	return Response{
		Code:    rec.Code,
		Body:    rec.Body.Bytes(),
		Headers: rec.Header(),
	}
}

// SearchRequest posts a gateway action.
func (ts *TestServer) SearchRequest(body interface{}) Response {
	return ts.Do(Request{
		Method: http.MethodPost,
		Path:   "/api/v1/flights/search",
		Body:   body,
	})
}

// HealthRequest makes a health check request.
func (ts *TestServer) HealthRequest() Response {
	return ts.Do(Request{
		Method: http.MethodGet,
		Path:   "/health",
	})
}

// RedirectRequest asks the gateway to redirect to target.
func (ts *TestServer) RedirectRequest(target string) Response {
	return ts.Do(Request{
		Method: http.MethodGet,
		Path:   "/booking-redirect?u=" + url.QueryEscape(target),
	})
}

// Envelope decodes the response as a gateway envelope.
func (r Response) Envelope(t *testing.T) response.Envelope {
	t.Helper()
	return testutil.DecodeJSON[response.Envelope](t, r.Body)
}

// CreateBody returns a valid create action for testing.
// Uses a date 30 days in the future.
func CreateBody() map[string]any {
	return map[string]any{
		"action":      "create",
		"origin":      "JFK",
		"destination": "LON",
		"departDate":  testutil.FutureDate(30),
		"adults":      1,
	}
}

// PollBody returns a poll action continuing from watermark.
func PollBody(searchID, resultsURL string, watermark int64) map[string]any {
	return map[string]any{
		"action":              "poll",
		"searchId":            searchID,
		"resultsUrl":          resultsURL,
		"lastUpdateTimestamp": watermark,
	}
}
