// Package domain contains the core entities shared by the search gateway, the poll
// orchestrator and the HTTP layer. Nothing here talks to the network.
package domain

import "fmt"

// NormalizedFlight is the single stable record handed to presentation.
// Clock times and other optional strings use an empty string when unknown, never null.
type NormalizedFlight struct {
	// ID is derived from ProposalID and Signature and is unique within a session
	ID string `json:"id"`

	AirlineCode string `json:"airlineCode"`
	AirlineName string `json:"airlineName"`
	AirlineLogo string `json:"airlineLogo"`

	// FlightNumber is the marketing flight number of the first leg (e.g., "BA112")
	FlightNumber string `json:"flightNumber"`

	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// DepartureTime and ArrivalTime are local clock times in HH:MM format
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`

	Duration        string `json:"duration"`
	DurationMinutes int    `json:"durationMinutes"`

	Stops        int      `json:"stops"`
	StopAirports []string `json:"stopAirports"`

	// Price is a positive integer amount, rounded from the upstream value
	Price    int    `json:"price"`
	Currency string `json:"currency"`

	// Booking linkage
	SearchID   string `json:"searchId"`
	ResultsURL string `json:"resultsUrl"`
	ProposalID string `json:"proposalId"`
	Signature  string `json:"signature"`

	// HasValidBookingURL is true iff all four linkage fields are non-empty.
	HasValidBookingURL bool `json:"hasValidBookingUrl"`

	// BookingURL is the validated partner URL resolved by the gateway, if any
	BookingURL string `json:"bookingUrl,omitempty"`

	IsDemo bool `json:"isDemo,omitempty"`
}

// DedupKey is the composite key used to merge repeated offers across polls.
type DedupKey struct {
	Origin        string
	Destination   string
	DepartureTime string
	Price         int
}

// Key returns the deduplication key of the flight.
func (f NormalizedFlight) Key() DedupKey {
	return DedupKey{
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		Price:         f.Price,
	}
}

// Bookable reports whether the UI may render an actionable booking button.
func (f NormalizedFlight) Bookable() bool {
	return f.HasValidBookingURL
}

// HasBookingLinkage computes the booking-URL invariant from the four linkage fields.
func HasBookingLinkage(searchID, resultsURL, proposalID, signature string) bool {
	return searchID != "" && resultsURL != "" && proposalID != "" && signature != ""
}

// FlightID derives the session-unique identifier of an offer.
func FlightID(proposalID, signature string) string {
	return proposalID + ":" + signature
}

// FormatDuration renders minutes as "Xh Ym", "Xh" or "Ym".
// Non-positive values render as an empty string.
func FormatDuration(totalMinutes int) string {
	if totalMinutes <= 0 {
		return ""
	}

	hours := totalMinutes / 60
	mins := totalMinutes % 60

	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
