package normalizer

import (
	"sort"
	"strings"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// SortFlights returns a new slice ordered by the option. Ties keep input order.
// Unknown options sort by price.
func SortFlights(flights []domain.NormalizedFlight, by domain.SortOption) []domain.NormalizedFlight {
	result := make([]domain.NormalizedFlight, len(flights))
	copy(result, flights)

	var less func(a, b domain.NormalizedFlight) bool
	switch by {
	case domain.SortByDuration:
		less = func(a, b domain.NormalizedFlight) bool {
			return knownFirst(a.DurationMinutes, b.DurationMinutes)
		}
	case domain.SortByDeparture:
		less = func(a, b domain.NormalizedFlight) bool {
			if a.DepartureTime == "" || b.DepartureTime == "" {
				return a.DepartureTime != "" && b.DepartureTime == ""
			}
			return a.DepartureTime < b.DepartureTime
		}
	case domain.SortByStops:
		less = func(a, b domain.NormalizedFlight) bool {
			if a.Stops != b.Stops {
				return a.Stops < b.Stops
			}
			return a.Price < b.Price
		}
	default:
		less = func(a, b domain.NormalizedFlight) bool {
			return a.Price < b.Price
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i], result[j])
	})
	return result
}

// knownFirst orders positive values ascending and puts zero (unknown) last.
func knownFirst(a, b int) bool {
	if a <= 0 || b <= 0 {
		return a > 0 && b <= 0
	}
	return a < b
}

// FilterFlights returns a new slice with the flights matching opts.
func FilterFlights(flights []domain.NormalizedFlight, opts *domain.FilterOptions) []domain.NormalizedFlight {
	result := make([]domain.NormalizedFlight, 0, len(flights))
	for _, f := range flights {
		if opts.MatchesFlight(f) {
			result = append(result, f)
		}
	}
	return result
}

// FlightStats summarizes a result set for display.
type FlightStats struct {
	Count         int      `json:"count"`
	MinPrice      int      `json:"minPrice"`
	MaxPrice      int      `json:"maxPrice"`
	AvgPrice      int      `json:"avgPrice"`
	DirectCount   int      `json:"directCount"`
	BookableCount int      `json:"bookableCount"`
	Airlines      []string `json:"airlines"`
}

// GetFlightStats computes summary statistics without modifying the input.
func GetFlightStats(flights []domain.NormalizedFlight) FlightStats {
	stats := FlightStats{Airlines: []string{}}
	if len(flights) == 0 {
		return stats
	}

	seen := make(map[string]bool)
	total := 0
	stats.MinPrice = flights[0].Price

	for _, f := range flights {
		stats.Count++
		total += f.Price
		if f.Price < stats.MinPrice {
			stats.MinPrice = f.Price
		}
		if f.Price > stats.MaxPrice {
			stats.MaxPrice = f.Price
		}
		if f.Stops == 0 {
			stats.DirectCount++
		}
		if f.HasValidBookingURL {
			stats.BookableCount++
		}
		code := strings.ToUpper(f.AirlineCode)
		if code != "" && !seen[code] {
			seen[code] = true
			stats.Airlines = append(stats.Airlines, code)
		}
	}

	stats.AvgPrice = (total + stats.Count/2) / stats.Count
	sort.Strings(stats.Airlines)
	return stats
}
