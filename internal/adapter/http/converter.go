package http

import (
	"strings"

	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/normalizer"
)

// ToSearchRequest converts a validated create action to a domain.SearchRequest.
func ToSearchRequest(req *SearchActionRequest, clientIP string) domain.SearchRequest {
	return domain.SearchRequest{
		Origin:      strings.ToUpper(req.Origin),
		Destination: strings.ToUpper(req.Destination),
		DepartDate:  req.DepartDate,
		ReturnDate:  req.ReturnDate,
		Adults:      req.Adults,
		Children:    req.Children,
		Infants:     req.Infants,
		TripClass:   domain.ParseCabinClass(req.TripClass),
		Currency:    req.Currency,
		UserIP:      clientIP,
	}.WithDefaults()
}

// ToPollRequest converts a validated poll action to a domain.PollRequest.
func ToPollRequest(req *SearchActionRequest) domain.PollRequest {
	return domain.PollRequest{
		SearchID:            strings.TrimSpace(req.SearchID),
		ResultsURL:          strings.TrimSpace(req.ResultsURL),
		LastUpdateTimestamp: req.LastUpdateTimestamp,
	}
}

// ToDomainFilters converts a FilterDTO to domain.FilterOptions.
func ToDomainFilters(dto *FilterDTO) *domain.FilterOptions {
	if dto == nil {
		return nil
	}
	return &domain.FilterOptions{
		MaxPrice: dto.MaxPrice,
		MaxStops: dto.MaxStops,
		Airlines: dto.Airlines,
	}
}

// ApplyView filters and sorts a batch for presentation. The input is not modified.
// Without a sortBy the gateway's price order is kept.
func ApplyView(flights []domain.NormalizedFlight, sortBy string, filters *FilterDTO) []domain.NormalizedFlight {
	out := flights
	if opts := ToDomainFilters(filters); opts != nil {
		out = normalizer.FilterFlights(out, opts)
	}
	if sortBy != "" {
		out = normalizer.SortFlights(out, domain.SortOption(strings.ToLower(sortBy)))
	}
	return out
}
