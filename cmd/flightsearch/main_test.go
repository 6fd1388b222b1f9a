package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

func fakeGateway(t *testing.T, status int, body map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/flights/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func demoFlight(id string, price int) map[string]any {
	return map[string]any{
		"id": id, "airlineCode": "BA", "airlineName": "British Airways",
		"flightNumber": "BA112", "origin": "JFK", "destination": "LHR",
		"price": price, "currency": "USD", "isDemo": true,
	}
}

func TestRun_DemoSearchJSON(t *testing.T) {
	srv := fakeGateway(t, http.StatusOK, map[string]any{
		"status":     "OK",
		"searchId":   "demo-1",
		"isDemo":     true,
		"isComplete": true,
		"flights":    []any{demoFlight("b", 500), demoFlight("a", 300)},
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-gateway", srv.URL, "-from", "jfk", "-to", "LON", "-depart", "2026-06-01", "-json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var flights []domain.NormalizedFlight
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &flights))
	require.Len(t, flights, 2)
	assert.Equal(t, 300, flights[0].Price)
	assert.Equal(t, 500, flights[1].Price)
}

func TestRun_TableOutput(t *testing.T) {
	srv := fakeGateway(t, http.StatusOK, map[string]any{
		"status":     "OK",
		"searchId":   "demo-1",
		"isDemo":     true,
		"isComplete": true,
		"flights":    []any{demoFlight("a", 300), demoFlight("b", 500), demoFlight("c", 700)},
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-gateway", srv.URL, "-from", "JFK", "-to", "LON", "-depart", "2026-06-01", "-limit", "2"}, &stdout, &stderr)
	require.Equal(t, 0, code)

	out := stdout.String()
	assert.Contains(t, out, "PRICE")
	assert.Contains(t, out, "300 USD")
	assert.Contains(t, out, "500 USD")
	assert.NotContains(t, out, "700 USD")
	assert.Contains(t, out, "demo results")
	assert.Contains(t, out, "3 offers from 1 airlines")
	assert.Contains(t, out, "Price 300-700 USD (avg 500)")
	assert.Contains(t, stderr.String(), "complete")
}

func TestRun_LiveUnavailable(t *testing.T) {
	srv := fakeGateway(t, http.StatusServiceUnavailable, map[string]any{
		"status":          "AUTH_ERROR",
		"liveUnavailable": true,
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-gateway", srv.URL, "-from", "JFK", "-to", "LON", "-depart", "2026-06-01"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "not available yet")
	assert.Empty(t, stdout.String())
}

func TestRun_NoResults(t *testing.T) {
	srv := fakeGateway(t, http.StatusOK, map[string]any{
		"status":     "OK",
		"searchId":   "demo-1",
		"isDemo":     true,
		"isComplete": true,
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-gateway", srv.URL, "-from", "JFK", "-to", "LON", "-depart", "2026-06-01"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "no flights found")
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing origin", []string{"-to", "LON", "-depart", "2026-06-01"}},
		{"same airports", []string{"-from", "LON", "-to", "LON", "-depart", "2026-06-01"}},
		{"bad date", []string{"-from", "JFK", "-to", "LON", "-depart", "01/06/2026"}},
		{"unknown class", []string{"-from", "JFK", "-to", "LON", "-depart", "2026-06-01", "-class", "luxury"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}
