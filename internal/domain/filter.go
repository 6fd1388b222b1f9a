package domain

import "strings"

// SortOption defines the available orderings for normalized offers.
type SortOption string

// Available sort options.
const (
	// SortByPrice sorts by price ascending (cheapest first, default)
	SortByPrice SortOption = "price"

	// SortByDuration sorts by total duration ascending
	SortByDuration SortOption = "duration"

	// SortByDeparture sorts by departure clock time ascending
	SortByDeparture SortOption = "departure"

	// SortByStops sorts by number of stops ascending
	SortByStops SortOption = "stops"
)

// IsValid checks if the sort option is a valid value.
func (s SortOption) IsValid() bool {
	switch s {
	case SortByPrice, SortByDuration, SortByDeparture, SortByStops:
		return true
	default:
		return false
	}
}

// FilterOptions defines optional client-side filters over normalized offers.
type FilterOptions struct {
	// MaxPrice filters out offers priced above this amount
	MaxPrice *int `json:"maxPrice,omitempty"`

	// MaxStops filters out offers with more stops (0 = direct only)
	MaxStops *int `json:"maxStops,omitempty"`

	// Airlines keeps only offers from these airline codes; empty means any
	Airlines []string `json:"airlines,omitempty"`

	// BookableOnly drops offers without a valid booking linkage
	BookableOnly bool `json:"bookableOnly,omitempty"`
}

// MatchesFlight checks if a flight matches all the filter criteria.
func (f *FilterOptions) MatchesFlight(flight NormalizedFlight) bool {
	if f == nil {
		return true
	}

	if f.MaxPrice != nil && flight.Price > *f.MaxPrice {
		return false
	}
	if f.MaxStops != nil && flight.Stops > *f.MaxStops {
		return false
	}
	if f.BookableOnly && !flight.HasValidBookingURL {
		return false
	}

	if len(f.Airlines) > 0 {
		for _, code := range f.Airlines {
			if strings.EqualFold(code, flight.AirlineCode) {
				return true
			}
		}
		return false
	}

	return true
}
