package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		minutes  int
		expected string
	}{
		{"hours and minutes", 150, "2h 30m"},
		{"exact hours", 120, "2h"},
		{"minutes only", 45, "45m"},
		{"long haul", 785, "13h 5m"},
		{"zero is unknown", 0, ""},
		{"negative is unknown", -10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.minutes))
		})
	}
}

func TestHasBookingLinkage(t *testing.T) {
	tests := []struct {
		name                                  string
		searchID, resultsURL, proposal, sig string
		want                                  bool
	}{
		{"all present", "s1", "https://r.example.com", "p1", "sig", true},
		{"missing search id", "", "https://r.example.com", "p1", "sig", false},
		{"missing results url", "s1", "", "p1", "sig", false},
		{"missing proposal", "s1", "https://r.example.com", "", "sig", false},
		{"missing signature", "s1", "https://r.example.com", "p1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasBookingLinkage(tt.searchID, tt.resultsURL, tt.proposal, tt.sig))
		})
	}
}

func TestNormalizedFlight_Key(t *testing.T) {
	a := NormalizedFlight{ID: "1", Origin: "JFK", Destination: "LHR", DepartureTime: "08:30", Price: 400, AirlineCode: "BA"}
	b := NormalizedFlight{ID: "2", Origin: "JFK", Destination: "LHR", DepartureTime: "08:30", Price: 400, AirlineCode: "AA"}
	c := NormalizedFlight{ID: "3", Origin: "JFK", Destination: "LHR", DepartureTime: "08:30", Price: 401}

	assert.Equal(t, a.Key(), b.Key(), "key ignores fields outside the composite")
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestFlightID(t *testing.T) {
	assert.Equal(t, "p1:abc", FlightID("p1", "abc"))
	assert.NotEqual(t, FlightID("p1", "abc"), FlightID("p2", "abc"))
}
