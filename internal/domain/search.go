package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CabinClass is the requested travel class.
type CabinClass string

// Supported cabin classes.
const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// IsValid checks if the cabin class is a known value.
func (c CabinClass) IsValid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	default:
		return false
	}
}

// UpstreamCode maps the cabin class to the single-letter trip class used upstream.
func (c CabinClass) UpstreamCode() string {
	switch c {
	case CabinPremiumEconomy:
		return "W"
	case CabinBusiness:
		return "C"
	case CabinFirst:
		return "F"
	default:
		return "Y"
	}
}

// ParseCabinClass accepts both the long names and the upstream single-letter codes.
// Unknown values are returned as-is so Validate can reject them.
func ParseCabinClass(s string) CabinClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "economy", "y":
		return CabinEconomy
	case "premium_economy", "premium", "w":
		return CabinPremiumEconomy
	case "business", "c":
		return CabinBusiness
	case "first", "f":
		return CabinFirst
	default:
		return CabinClass(strings.ToLower(s))
	}
}

// DateLayout is the calendar date format used across the API.
const DateLayout = "2006-01-02"

// SearchRequest is one user search submission. It is immutable once built.
type SearchRequest struct {
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	DepartDate  string     `json:"departDate"`
	ReturnDate  string     `json:"returnDate,omitempty"`
	Adults      int        `json:"adults"`
	Children    int        `json:"children"`
	Infants     int        `json:"infants"`
	TripClass   CabinClass `json:"tripClass"`
	Currency    string     `json:"currency"`

	// UserIP is forwarded upstream for fraud scoring; it never leaves the server.
	UserIP string `json:"-"`
}

var (
	iataRegex     = regexp.MustCompile(`^[A-Z]{3}$`)
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// IsRoundTrip reports whether a return leg was requested.
func (r SearchRequest) IsRoundTrip() bool {
	return r.ReturnDate != ""
}

// Validate checks the request and returns a wrapped ErrInvalidRequest on failure.
func (r SearchRequest) Validate() error {
	if r.Origin == "" {
		return fmt.Errorf("%w: origin is required", ErrInvalidRequest)
	}
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	}
	if r.DepartDate == "" {
		return fmt.Errorf("%w: departDate is required", ErrInvalidRequest)
	}

	if !iataRegex.MatchString(r.Origin) {
		return fmt.Errorf("%w: origin must be a 3-letter IATA code, got %q", ErrInvalidRequest, r.Origin)
	}
	if !iataRegex.MatchString(r.Destination) {
		return fmt.Errorf("%w: destination must be a 3-letter IATA code, got %q", ErrInvalidRequest, r.Destination)
	}
	if r.Origin == r.Destination {
		return fmt.Errorf("%w: origin and destination must be different", ErrInvalidRequest)
	}

	depart, err := parseDate(r.DepartDate)
	if err != nil {
		return fmt.Errorf("%w: departDate %v", ErrInvalidRequest, err)
	}
	if r.ReturnDate != "" {
		ret, err := parseDate(r.ReturnDate)
		if err != nil {
			return fmt.Errorf("%w: returnDate %v", ErrInvalidRequest, err)
		}
		if ret.Before(depart) {
			return fmt.Errorf("%w: returnDate must not be before departDate", ErrInvalidRequest)
		}
	}

	if r.Adults < 1 {
		return fmt.Errorf("%w: adults must be at least 1", ErrInvalidRequest)
	}
	if r.Children < 0 || r.Infants < 0 {
		return fmt.Errorf("%w: passenger counts cannot be negative", ErrInvalidRequest)
	}
	if r.Adults+r.Children+r.Infants > 9 {
		return fmt.Errorf("%w: at most 9 passengers per search", ErrInvalidRequest)
	}
	if r.Infants > r.Adults {
		return fmt.Errorf("%w: infants cannot exceed adults", ErrInvalidRequest)
	}

	if !r.TripClass.IsValid() {
		return fmt.Errorf("%w: tripClass must be one of economy, premium_economy, business, first; got %q", ErrInvalidRequest, r.TripClass)
	}
	if !currencyRegex.MatchString(r.Currency) {
		return fmt.Errorf("%w: currency must be a 3-letter ISO code, got %q", ErrInvalidRequest, r.Currency)
	}

	return nil
}

// WithDefaults returns a copy with empty optional fields filled in.
func (r SearchRequest) WithDefaults() SearchRequest {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Adults == 0 {
		r.Adults = 1
	}
	if r.TripClass == "" {
		r.TripClass = CabinEconomy
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	return r
}

func parseDate(s string) (time.Time, error) {
	if !dateRegex.MatchString(s) {
		return time.Time{}, fmt.Errorf("must be in YYYY-MM-DD format, got %q", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("is not a valid date: %s", s)
	}
	return t, nil
}
