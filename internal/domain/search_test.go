package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() SearchRequest {
	return SearchRequest{
		Origin:      "JFK",
		Destination: "LON",
		DepartDate:  "2026-06-01",
		Adults:      1,
		TripClass:   CabinEconomy,
		Currency:    "USD",
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *SearchRequest)
		wantErr string
	}{
		{name: "valid one-way", mutate: func(r *SearchRequest) {}},
		{name: "valid round trip", mutate: func(r *SearchRequest) { r.ReturnDate = "2026-06-10" }},
		{name: "missing origin", mutate: func(r *SearchRequest) { r.Origin = "" }, wantErr: "origin is required"},
		{name: "missing destination", mutate: func(r *SearchRequest) { r.Destination = "" }, wantErr: "destination is required"},
		{name: "missing depart date", mutate: func(r *SearchRequest) { r.DepartDate = "" }, wantErr: "departDate is required"},
		{name: "lowercase origin", mutate: func(r *SearchRequest) { r.Origin = "jfk" }, wantErr: "3-letter IATA"},
		{name: "same airports", mutate: func(r *SearchRequest) { r.Destination = "JFK" }, wantErr: "must be different"},
		{name: "bad date format", mutate: func(r *SearchRequest) { r.DepartDate = "01/06/2026" }, wantErr: "YYYY-MM-DD"},
		{name: "impossible date", mutate: func(r *SearchRequest) { r.DepartDate = "2026-02-30" }, wantErr: "not a valid date"},
		{name: "return before depart", mutate: func(r *SearchRequest) { r.ReturnDate = "2026-05-01" }, wantErr: "returnDate must not be before"},
		{name: "no adults", mutate: func(r *SearchRequest) { r.Adults = 0 }, wantErr: "adults must be at least 1"},
		{name: "negative children", mutate: func(r *SearchRequest) { r.Children = -1 }, wantErr: "cannot be negative"},
		{name: "infants exceed adults", mutate: func(r *SearchRequest) { r.Infants = 2 }, wantErr: "infants cannot exceed adults"},
		{name: "too many passengers", mutate: func(r *SearchRequest) { r.Adults = 5; r.Children = 5 }, wantErr: "at most 9"},
		{name: "unknown cabin", mutate: func(r *SearchRequest) { r.TripClass = "luxury" }, wantErr: "tripClass"},
		{name: "bad currency", mutate: func(r *SearchRequest) { r.Currency = "dollars" }, wantErr: "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSearchRequest_WithDefaults(t *testing.T) {
	req := SearchRequest{Origin: " jfk", Destination: "lon ", DepartDate: "2026-06-01"}.WithDefaults()

	assert.Equal(t, "JFK", req.Origin)
	assert.Equal(t, "LON", req.Destination)
	assert.Equal(t, 1, req.Adults)
	assert.Equal(t, CabinEconomy, req.TripClass)
	assert.Equal(t, "USD", req.Currency)
	assert.NoError(t, req.Validate())
	assert.False(t, req.IsRoundTrip())
}

func TestParseCabinClass(t *testing.T) {
	tests := []struct {
		in   string
		want CabinClass
		code string
	}{
		{"", CabinEconomy, "Y"},
		{"Economy", CabinEconomy, "Y"},
		{"premium", CabinPremiumEconomy, "W"},
		{"C", CabinBusiness, "C"},
		{"first", CabinFirst, "F"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseCabinClass(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code, got.UpstreamCode())
		})
	}

	assert.False(t, ParseCabinClass("luxury").IsValid())
}
