package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

func sampleFlights() []domain.NormalizedFlight {
	return []domain.NormalizedFlight{
		{ID: "a", AirlineCode: "BA", Price: 500, DurationMinutes: 420, DepartureTime: "09:00", Stops: 0, HasValidBookingURL: true},
		{ID: "b", AirlineCode: "FI", Price: 380, DurationMinutes: 915, DepartureTime: "19:30", Stops: 1},
		{ID: "c", AirlineCode: "ba", Price: 380, DurationMinutes: 0, DepartureTime: "", Stops: 2, HasValidBookingURL: true},
		{ID: "d", AirlineCode: "DL", Price: 610, DurationMinutes: 400, DepartureTime: "06:15", Stops: 0},
	}
}

func ids(flights []domain.NormalizedFlight) []string {
	out := make([]string, len(flights))
	for i, f := range flights {
		out[i] = f.ID
	}
	return out
}

func TestSortFlights(t *testing.T) {
	tests := []struct {
		by   domain.SortOption
		want []string
	}{
		{domain.SortByPrice, []string{"b", "c", "a", "d"}},
		{domain.SortByDuration, []string{"d", "a", "b", "c"}},
		{domain.SortByDeparture, []string{"d", "a", "b", "c"}},
		{domain.SortByStops, []string{"a", "d", "b", "c"}},
		{domain.SortOption("unknown"), []string{"b", "c", "a", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			input := sampleFlights()
			sorted := SortFlights(input, tt.by)

			assert.Equal(t, tt.want, ids(sorted))
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids(input), "input is not modified")
		})
	}

	assert.Empty(t, SortFlights(nil, domain.SortByPrice))
}

func TestFilterFlights(t *testing.T) {
	maxPrice := 500
	input := sampleFlights()

	got := FilterFlights(input, &domain.FilterOptions{MaxPrice: &maxPrice, Airlines: []string{"BA"}})
	assert.Equal(t, []string{"a", "c"}, ids(got))
	assert.Len(t, input, 4)

	assert.Len(t, FilterFlights(input, nil), 4)
}

func TestGetFlightStats(t *testing.T) {
	stats := GetFlightStats(sampleFlights())

	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 380, stats.MinPrice)
	assert.Equal(t, 610, stats.MaxPrice)
	assert.Equal(t, 468, stats.AvgPrice)
	assert.Equal(t, 2, stats.DirectCount)
	assert.Equal(t, 2, stats.BookableCount)
	assert.Equal(t, []string{"BA", "DL", "FI"}, stats.Airlines)
}

func TestGetFlightStats_Empty(t *testing.T) {
	stats := GetFlightStats(nil)

	assert.Equal(t, 0, stats.Count)
	assert.NotNil(t, stats.Airlines)
}
