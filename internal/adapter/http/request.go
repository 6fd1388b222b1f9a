// Package http provides the HTTP handler layer for the search gateway.
// It handles request parsing, validation, response formatting, and error mapping.
package http

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// Gateway actions.
const (
	ActionCreate = "create"
	ActionPoll   = "poll"
)

// SearchActionRequest is the body of POST /api/v1/flights/search.
// Action selects which of the remaining fields are read.
type SearchActionRequest struct {
	// Action is "create" or "poll"
	Action string `json:"action" example:"create"`

	// Origin is the IATA code of the departure airport (e.g., "JFK")
	Origin string `json:"origin,omitempty" example:"JFK"`

	// Destination is the IATA code of the arrival airport (e.g., "LON")
	Destination string `json:"destination,omitempty" example:"LON"`

	// DepartDate is the outbound date in YYYY-MM-DD format
	DepartDate string `json:"departDate,omitempty" example:"2026-06-01"`

	// ReturnDate makes the search a round trip
	ReturnDate string `json:"returnDate,omitempty"`

	Adults   int `json:"adults,omitempty" example:"1"`
	Children int `json:"children,omitempty"`
	Infants  int `json:"infants,omitempty"`

	// TripClass is economy, premium_economy, business or first (or Y, W, C, F)
	TripClass string `json:"tripClass,omitempty" example:"economy"`

	// Currency is an ISO 4217 code, USD when empty
	Currency string `json:"currency,omitempty" example:"USD"`

	// SearchID identifies the search to poll
	SearchID string `json:"searchId,omitempty"`

	// ResultsURL is optional; the gateway remembers it from create
	ResultsURL string `json:"resultsUrl,omitempty"`

	// LastUpdateTimestamp is the watermark returned by the previous poll
	LastUpdateTimestamp int64 `json:"lastUpdateTimestamp,omitempty"`

	// SortBy orders the returned batch: price, duration, departure, stops
	SortBy string `json:"sortBy,omitempty" example:"price"`

	// Filters narrow the returned batch
	Filters *FilterDTO `json:"filters,omitempty"`
}

// FilterDTO represents optional filters applied to a poll batch.
type FilterDTO struct {
	// MaxPrice filters offers priced above this amount
	MaxPrice *int `json:"maxPrice,omitempty" example:"800"`

	// MaxStops filters offers with more stops than this value (0 = direct only)
	MaxStops *int `json:"maxStops,omitempty" example:"1"`

	// Airlines keeps only offers from these airline codes
	Airlines []string `json:"airlines,omitempty" example:"BA,DL"`
}

// Validation regex patterns.
var (
	airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	currencyPattern    = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	return v.Errors[0].Message
}

// Add adds a validation error.
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ToMap converts validation errors to a map for API response.
func (v *ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v.Errors))
	for _, e := range v.Errors {
		result[e.Field] = e.Message
	}
	return result
}

// Validate checks the fields required by the action and normalizes codes to uppercase.
func (r *SearchActionRequest) Validate() error {
	errs := &ValidationErrors{}

	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	switch r.Action {
	case ActionCreate:
		r.validateCreate(errs)
	case ActionPoll:
		r.validatePoll(errs)
	case "":
		errs.Add("action", "action is required")
	default:
		errs.Add("action", "action must be one of: create, poll")
	}

	r.validateView(errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (r *SearchActionRequest) validateCreate(errs *ValidationErrors) {
	r.Origin = r.validateAirport(errs, "origin", r.Origin)
	r.Destination = r.validateAirport(errs, "destination", r.Destination)
	if r.Origin != "" && r.Origin == r.Destination {
		errs.Add("destination", "origin and destination must be different")
	}

	depart, ok := validateDate(errs, "departDate", r.DepartDate, true)
	if r.ReturnDate != "" {
		ret, retOK := validateDate(errs, "returnDate", r.ReturnDate, false)
		if ok && retOK && ret.Before(depart) {
			errs.Add("returnDate", "returnDate must not be before departDate")
		}
	}

	r.validatePassengers(errs)

	if class := domain.ParseCabinClass(r.TripClass); !class.IsValid() {
		errs.Add("tripClass", "tripClass must be one of: economy, premium_economy, business, first")
	}

	if r.Currency != "" {
		r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
		if !currencyPattern.MatchString(r.Currency) {
			errs.Add("currency", "currency must be a 3-letter ISO code")
		}
	}
}

func (r *SearchActionRequest) validatePoll(errs *ValidationErrors) {
	if strings.TrimSpace(r.SearchID) == "" {
		errs.Add("searchId", "searchId is required")
	}
	if r.LastUpdateTimestamp < 0 {
		errs.Add("lastUpdateTimestamp", "lastUpdateTimestamp cannot be negative")
	}
}

func (r *SearchActionRequest) validateAirport(errs *ValidationErrors, field, value string) string {
	if value == "" {
		errs.Add(field, field+" is required")
		return ""
	}
	code := strings.ToUpper(strings.TrimSpace(value))
	if !airportCodePattern.MatchString(code) {
		errs.Add(field, field+" must be a valid 3-letter IATA airport code")
		return value
	}
	return code
}

func validateDate(errs *ValidationErrors, field, value string, required bool) (time.Time, bool) {
	if value == "" {
		if required {
			errs.Add(field, field+" is required")
		}
		return time.Time{}, false
	}
	if !datePattern.MatchString(value) {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		errs.Add(field, field+" is not a valid date")
		return time.Time{}, false
	}
	return t, true
}

func (r *SearchActionRequest) validatePassengers(errs *ValidationErrors) {
	adults := r.Adults
	if adults == 0 {
		adults = 1
	}
	if adults < 1 {
		errs.Add("adults", "adults must be at least 1")
	}
	if r.Children < 0 {
		errs.Add("children", "children cannot be negative")
	}
	if r.Infants < 0 {
		errs.Add("infants", "infants cannot be negative")
	}
	if r.Infants > adults {
		errs.Add("infants", "infants cannot exceed adults")
	}
	if adults+r.Children+r.Infants > 9 {
		errs.Add("adults", "at most 9 passengers per search")
	}
}

func (r *SearchActionRequest) validateView(errs *ValidationErrors) {
	if r.SortBy != "" && !domain.SortOption(strings.ToLower(r.SortBy)).IsValid() {
		errs.Add("sortBy", "sortBy must be one of: price, duration, departure, stops")
	}

	if r.Filters == nil {
		return
	}
	if r.Filters.MaxPrice != nil && *r.Filters.MaxPrice < 0 {
		errs.Add("filters.maxPrice", "maxPrice must be a positive number")
	}
	if r.Filters.MaxStops != nil && *r.Filters.MaxStops < 0 {
		errs.Add("filters.maxStops", "maxStops must be a non-negative number")
	}
	for i, airline := range r.Filters.Airlines {
		normalized := strings.ToUpper(strings.TrimSpace(airline))
		if len(normalized) < 2 || len(normalized) > 3 {
			errs.Add(fmt.Sprintf("filters.airlines[%d]", i), "airline code must be 2 or 3 characters")
		}
		r.Filters.Airlines[i] = normalized
	}
}
