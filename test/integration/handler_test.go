package integration

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flight-search/live-search-gateway/internal/adapter/http/response"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/ratelimit"
	"github.com/flight-search/live-search-gateway/test/mock"
	"github.com/flight-search/live-search-gateway/test/testutil"
)

func startUpstream(t *testing.T, up *mock.Upstream) *mock.Upstream {
	t.Helper()
	up.Start()
	t.Cleanup(up.Close)
	return up
}

// TestHandler_LiveCreateAndPoll walks one search through create and two polls.
func TestHandler_LiveCreateAndPoll(t *testing.T) {
	up := startUpstream(t, mock.NewUpstream().
		WithBatch(mock.Batch{Tickets: mock.Tickets("a", 650, 420), Watermark: 100}).
		WithBatch(mock.Batch{Tickets: mock.Tickets("b", 380), Watermark: 200, Complete: true}))
	ts := NewTestServer(t, Options{Upstream: up})

	// Create
	resp := ts.SearchRequest(CreateBody())
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Body))

	created := resp.Envelope(t)
	assert.Equal(t, response.StatusOK, created.Status)
	assert.Equal(t, "search-1", created.SearchID)
	assert.Equal(t, up.URL(), created.ResultsURL)
	assert.False(t, created.IsDemo)

	headers := up.StartHeaders()
	assert.NotEmpty(t, headers.Get("x-signature"), "start call must be signed")
	assert.Equal(t, testToken, headers.Get("x-access-token"))
	assert.Equal(t, "192.0.2.1", headers.Get("x-user-ip"), "client IP is forwarded")

	// First poll
	resp = ts.SearchRequest(PollBody(created.SearchID, created.ResultsURL, 0))
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Body))

	first := resp.Envelope(t)
	require.Len(t, first.Flights, 2)
	assert.Equal(t, 420, first.Flights[0].Price, "cheapest first")
	assert.Equal(t, 650, first.Flights[1].Price)
	assert.False(t, first.IsComplete)
	assert.Equal(t, int64(100), first.LastUpdateTimestamp)
	for _, f := range first.Flights {
		assert.True(t, f.HasValidBookingURL)
		assert.True(t, strings.HasPrefix(f.BookingURL, "https://partner.example.com/book?offer=p-a"), f.BookingURL)
		assert.Equal(t, "search-1", f.SearchID)
	}

	// Second poll continues from the watermark
	resp = ts.SearchRequest(PollBody(created.SearchID, "", first.LastUpdateTimestamp))
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Body))

	second := resp.Envelope(t)
	require.Len(t, second.Flights, 1)
	assert.Equal(t, 380, second.Flights[0].Price)
	assert.True(t, second.IsComplete)
	assert.Equal(t, int64(200), second.LastUpdateTimestamp)

	stored, err := ts.Sessions.Get(t.Context(), "search-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), stored.LastUpdateTimestamp)
	assert.Equal(t, 3, up.ClickCalls())
}

// TestHandler_DropsUnresolvableOffers ensures only validated booking links reach the client.
func TestHandler_DropsUnresolvableOffers(t *testing.T) {
	up := startUpstream(t, mock.NewUpstream().
		WithBatch(mock.Batch{Tickets: mock.Tickets("", 300, 400, 500, 600), Complete: true, Watermark: 5}).
		WithClickURL(func(pid string) string {
			switch pid {
			case "p-1":
				return "https://www.aviasales.com/search/JFK0106LON1"
			case "p-2":
				return ""
			case "p-3":
				return "http://partner.example.com/book"
			}
			return "https://partner.example.com/book?offer=" + pid
		}))
	ts := NewTestServer(t, Options{Upstream: up})

	created := ts.SearchRequest(CreateBody()).Envelope(t)
	resp := ts.SearchRequest(PollBody(created.SearchID, created.ResultsURL, 0))
	require.Equal(t, http.StatusOK, resp.Code)

	poll := resp.Envelope(t)
	require.Len(t, poll.Flights, 1)
	assert.Equal(t, 300, poll.Flights[0].Price)
	assert.Equal(t, 3, poll.Dropped)
}

// TestHandler_ClickCap limits click resolutions per poll.
func TestHandler_ClickCap(t *testing.T) {
	up := startUpstream(t, mock.NewUpstream().
		WithBatch(mock.Batch{Tickets: mock.Tickets("", 900, 800, 700, 600, 500, 400), Complete: true}))
	ts := NewTestServer(t, Options{Upstream: up, MaxClickResolutions: 2})

	created := ts.SearchRequest(CreateBody()).Envelope(t)
	poll := ts.SearchRequest(PollBody(created.SearchID, created.ResultsURL, 0)).Envelope(t)

	require.Len(t, poll.Flights, 2)
	assert.Equal(t, 400, poll.Flights[0].Price)
	assert.Equal(t, 500, poll.Flights[1].Price)
	assert.Equal(t, 4, poll.Dropped)
	assert.Equal(t, 2, up.ClickCalls())
}

// TestHandler_ClickTimeout drops offers whose click resolution is too slow.
func TestHandler_ClickTimeout(t *testing.T) {
	up := mock.NewUpstream().
		WithBatch(mock.Batch{Tickets: mock.Tickets("", 300), Complete: true})
	startUpstream(t, up)
	ts := NewTestServer(t, Options{Upstream: up, ClickTimeout: 20 * time.Millisecond})

	created := ts.SearchRequest(CreateBody()).Envelope(t)
	up.WithDelay(200 * time.Millisecond)

	resp := ts.SearchRequest(PollBody(created.SearchID, created.ResultsURL, 0))
	require.Equal(t, http.StatusOK, resp.Code)
	poll := resp.Envelope(t)
	assert.Empty(t, poll.Flights)
	assert.NotNil(t, poll.Flights, "flights is always an array")
	assert.Equal(t, 1, poll.Dropped)
}

// TestHandler_UpstreamErrors maps upstream failures onto the response envelope.
func TestHandler_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		startStatus int
		wantCode    int
		wantStatus  string
		wantLive    bool
	}{
		{"unauthorized", http.StatusUnauthorized, http.StatusServiceUnavailable, response.StatusAuthError, true},
		{"forbidden", http.StatusForbidden, http.StatusServiceUnavailable, response.StatusAuthError, true},
		{"server error", http.StatusInternalServerError, http.StatusBadGateway, response.StatusError, false},
		{"bad request upstream", http.StatusBadRequest, http.StatusBadGateway, response.StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := startUpstream(t, mock.NewUpstream().WithStartStatus(tt.startStatus))
			ts := NewTestServer(t, Options{Upstream: up})

			resp := ts.SearchRequest(CreateBody())
			assert.Equal(t, tt.wantCode, resp.Code)

			env := resp.Envelope(t)
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Equal(t, tt.wantLive, env.LiveUnavailable)
			if !tt.wantLive {
				assert.Equal(t, tt.startStatus, env.UpstreamStatus)
			}
		})
	}
}

func TestHandler_PollAuthFailure(t *testing.T) {
	up := startUpstream(t, mock.NewUpstream().WithFetchStatus(http.StatusForbidden))
	ts := NewTestServer(t, Options{Upstream: up})

	created := ts.SearchRequest(CreateBody()).Envelope(t)
	resp := ts.SearchRequest(PollBody(created.SearchID, created.ResultsURL, 0))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.True(t, resp.Envelope(t).LiveUnavailable)
}

func TestHandler_PollUnknownSearch(t *testing.T) {
	up := startUpstream(t, mock.NewUpstream())
	ts := NewTestServer(t, Options{Upstream: up})

	resp := ts.SearchRequest(PollBody("never-created", "", 0))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, response.StatusBadRequest, resp.Envelope(t).Status)
	assert.Zero(t, up.FetchCalls())
}

// TestHandler_DemoMode serves a complete synthetic batch without an upstream.
func TestHandler_DemoMode(t *testing.T) {
	ts := NewTestServer(t, Options{})

	resp := ts.SearchRequest(CreateBody())
	require.Equal(t, http.StatusOK, resp.Code)

	created := resp.Envelope(t)
	assert.True(t, created.IsDemo)
	assert.True(t, created.IsComplete)
	require.NotEmpty(t, created.Flights)
	for _, f := range created.Flights {
		assert.False(t, f.HasValidBookingURL, "demo offers are never bookable")
		assert.True(t, f.IsDemo)
	}

	again := ts.SearchRequest(CreateBody()).Envelope(t)
	assert.Equal(t, created.SearchID, again.SearchID, "demo ids are deterministic")

	poll := ts.SearchRequest(PollBody(created.SearchID, "", 0))
	require.Equal(t, http.StatusOK, poll.Code)
	assert.Len(t, poll.Envelope(t).Flights, len(created.Flights))
}

func TestHandler_PollViewOptions(t *testing.T) {
	ts := NewTestServer(t, Options{})
	created := ts.SearchRequest(CreateBody()).Envelope(t)

	body := PollBody(created.SearchID, "", 0)
	body["sortBy"] = "duration"
	body["filters"] = map[string]any{"maxStops": 0}

	resp := ts.SearchRequest(body)
	require.Equal(t, http.StatusOK, resp.Code)

	flights := resp.Envelope(t).Flights
	for i, f := range flights {
		assert.Zero(t, f.Stops)
		if i > 0 {
			assert.LessOrEqual(t, flights[i-1].DurationMinutes, f.DurationMinutes)
		}
	}
}

func TestHandler_ValidationErrors(t *testing.T) {
	ts := NewTestServer(t, Options{})

	tests := []struct {
		name string
		body any
	}{
		{"unknown action", map[string]any{"action": "book"}},
		{"missing origin", map[string]any{"action": "create", "destination": "LON", "departDate": testutil.FutureDate(10)}},
		{"same airports", map[string]any{"action": "create", "origin": "LON", "destination": "LON", "departDate": testutil.FutureDate(10)}},
		{"too many passengers", map[string]any{"action": "create", "origin": "JFK", "destination": "LON", "departDate": testutil.FutureDate(10), "adults": 10}},
		{"poll without id", map[string]any{"action": "poll"}},
		{"malformed json", `{"action":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.SearchRequest(tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, response.StatusBadRequest, resp.Envelope(t).Status)
		})
	}
}

func TestHandler_BookingRedirect(t *testing.T) {
	ts := NewTestServer(t, Options{})

	t.Run("partner page", func(t *testing.T) {
		target := "https://partner.example.com/book?offer=42"
		resp := ts.RedirectRequest(target)

		assert.Equal(t, http.StatusFound, resp.Code)
		assert.Equal(t, target, resp.Headers.Get("Location"))
		assert.Equal(t, "no-store", resp.Headers.Get("Cache-Control"))
	})

	t.Run("aggregator search page", func(t *testing.T) {
		resp := ts.RedirectRequest("https://www.aviasales.com/search/JFK0106LON1")

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		body := testutil.DecodeJSON[response.RedirectRejection](t, resp.Body)
		assert.Equal(t, "invalid_redirect", body.Error)
		assert.Equal(t, "aggregator_search_page", body.Reason)
	})
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	ts := NewTestServer(t, Options{})
	ts.SearchRequest(CreateBody())

	health := ts.HealthRequest()
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "demo", testutil.DecodeJSON[response.HealthResponse](t, health.Body).Mode)

	metrics := ts.Do(Request{Method: http.MethodGet, Path: "/metrics"})
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, string(metrics.Body), `integration_searches_created_total{mode="demo"} 1`)
}

func TestHandler_RequestIDPropagated(t *testing.T) {
	ts := NewTestServer(t, Options{})

	resp := ts.HealthRequest()
	assert.NotEmpty(t, resp.Headers.Get("X-Request-ID"))
}

func TestHandler_RateLimited(t *testing.T) {
	ts := NewTestServer(t, Options{RateLimit: &ratelimit.Config{RequestsPerSecond: 0.001, BurstSize: 2}})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, ts.SearchRequest(CreateBody()).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	other := ts.Do(Request{Method: http.MethodPost, Path: "/api/v1/flights/search", Body: CreateBody(), RemoteAddr: "198.51.100.9:4000"})
	assert.Equal(t, http.StatusOK, other.Code, "limits are per client IP")

	assert.Equal(t, http.StatusOK, ts.HealthRequest().Code, "health is never limited")
}
