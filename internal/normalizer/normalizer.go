// Package normalizer turns heterogeneous upstream ticket/proposal/leg shapes
// into domain.NormalizedFlight records. Malformed data is skipped or degraded
// to empty sentinels; nothing here returns an error for bad data.
package normalizer

import (
	"math"
	"sort"
	"strings"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// TicketContext carries the per-search values every normalized record needs.
type TicketContext struct {
	SearchID           string
	ResultsURL         string
	DefaultOrigin      string
	DefaultDestination string
	Currency           string
	Airlines           AirlineDirectory
}

// maxPrice bounds a proposal price so it always fits the int record field.
const maxPrice = math.MaxInt32

// proposal is one priced quote inside a ticket.
type proposal struct {
	ID       string
	Price    float64
	Currency string
}

// NormalizeTicket returns one record per positively priced proposal of the ticket.
// A ticket without a signature or without proposals yields an empty slice.
func NormalizeTicket(ticket map[string]any, legs FlightInfoMap, tc TicketContext) []domain.NormalizedFlight {
	out := []domain.NormalizedFlight{}
	if ticket == nil {
		return out
	}

	sig := pickString(ticket, "signature", "sign")
	if sig == "" {
		return out
	}

	proposals := ticketProposals(ticket, tc.Currency)
	if len(proposals) == 0 {
		return out
	}

	route := ticketRoute(ticket, legs)
	base := buildBase(ticket, route, tc)

	for _, p := range proposals {
		price := math.Round(p.Price)
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 || price > maxPrice {
			continue
		}

		f := base
		f.StopAirports = append([]string(nil), base.StopAirports...)
		f.ID = domain.FlightID(p.ID, sig)
		f.ProposalID = p.ID
		f.Signature = sig
		f.Price = int(price)
		f.Currency = p.Currency
		f.HasValidBookingURL = domain.HasBookingLinkage(f.SearchID, f.ResultsURL, f.ProposalID, f.Signature)
		out = append(out, f)
	}

	return out
}

// Cheapest returns the lowest priced record, preferring the first on ties.
func Cheapest(flights []domain.NormalizedFlight) (domain.NormalizedFlight, bool) {
	if len(flights) == 0 {
		return domain.NormalizedFlight{}, false
	}
	best := flights[0]
	for _, f := range flights[1:] {
		if f.Price < best.Price {
			best = f
		}
	}
	return best, true
}

func buildBase(ticket map[string]any, route []FlightInfo, tc TicketContext) domain.NormalizedFlight {
	f := domain.NormalizedFlight{
		Origin:       tc.DefaultOrigin,
		Destination:  tc.DefaultDestination,
		SearchID:     tc.SearchID,
		ResultsURL:   tc.ResultsURL,
		StopAirports: []string{},
	}

	airlineCode := ""
	if len(route) > 0 {
		first, last := route[0], route[len(route)-1]

		if first.Origin != "" {
			f.Origin = first.Origin
		}
		if last.Destination != "" {
			f.Destination = last.Destination
		}
		f.DepartureTime = first.DepartureTime
		f.ArrivalTime = last.ArrivalTime
		f.DurationMinutes = routeDuration(route)

		airlineCode = first.AirlineCode
		f.FlightNumber = flightNumber(first.AirlineCode, first.FlightNumber)

		f.Stops = len(route) - 1
		for i := 0; i < len(route)-1; i++ {
			stop := route[i].Destination
			if stop == "" {
				stop = route[i+1].Origin
			}
			if stop != "" {
				f.StopAirports = append(f.StopAirports, stop)
			}
		}
	}

	if f.DurationMinutes == 0 {
		if d, ok := pickNumber(ticket, "duration", "total_duration"); ok && d > 0 {
			f.DurationMinutes = int(d)
		}
	}
	f.Duration = domain.FormatDuration(f.DurationMinutes)

	if airlineCode == "" {
		airlineCode = strings.ToUpper(pickString(ticket, "validating_carrier", "carrier"))
		if airlineCode == "" {
			if carriers := pickList(ticket, "carriers"); len(carriers) > 0 {
				code, _ := asString(carriers[0])
				airlineCode = strings.ToUpper(code)
			}
		}
	}
	if airlineCode != "" {
		a := tc.Airlines.Lookup(airlineCode)
		f.AirlineCode = a.Code
		f.AirlineName = a.Name
		f.AirlineLogo = a.Logo
	}

	return f
}

// ticketRoute resolves the legs of the first segment, in order.
func ticketRoute(ticket map[string]any, legs FlightInfoMap) []FlightInfo {
	segments := pickList(ticket, "segments", "segment")
	if len(segments) == 0 {
		return nil
	}
	seg, ok := segments[0].(map[string]any)
	if !ok {
		return nil
	}

	refs := pickList(seg, "flights", "flight", "flight_legs", "legs")
	route := make([]FlightInfo, 0, len(refs))
	for _, ref := range refs {
		switch r := ref.(type) {
		case map[string]any:
			route = append(route, parseLeg(r))
		default:
			if idx, ok := asInt(r); ok {
				route = append(route, legs[idx])
			}
		}
	}
	return route
}

// routeDuration prefers the wall-clock span between first departure and last
// arrival, then the sum of leg durations.
func routeDuration(route []FlightInfo) int {
	first, last := route[0], route[len(route)-1]
	if first.DepartureUnix > 0 && last.ArrivalUnix > first.DepartureUnix {
		return int((last.ArrivalUnix - first.DepartureUnix) / 60)
	}

	total := 0
	for _, leg := range route {
		total += leg.DurationMinutes
	}
	return total
}

func flightNumber(carrier, number string) string {
	if number == "" {
		return ""
	}
	if carrier == "" || strings.HasPrefix(strings.ToUpper(number), carrier) {
		return number
	}
	return carrier + number
}

// ticketProposals reads either a proposals array or a legacy terms map keyed
// by proposal id.
func ticketProposals(ticket map[string]any, defaultCurrency string) []proposal {
	var out []proposal

	for _, item := range pickList(ticket, "proposals", "offers") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, parseProposal(pickString(m, "id", "proposal_id", "gate_id"), m, defaultCurrency))
	}

	if len(out) == 0 {
		terms := pickObject(ticket, "terms")
		keys := make([]string, 0, len(terms))
		for k := range terms {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if m, ok := terms[k].(map[string]any); ok {
				id := pickString(m, "id", "proposal_id")
				if id == "" {
					id = k
				}
				out = append(out, parseProposal(id, m, defaultCurrency))
			}
		}
	}

	return out
}

func parseProposal(id string, m map[string]any, defaultCurrency string) proposal {
	p := proposal{ID: id, Currency: strings.ToUpper(defaultCurrency)}

	if price := pickObject(m, "price", "unified_price", "total_price"); price != nil {
		p.Price, _ = pickNumber(price, "value", "amount")
		if c := pickString(price, "currency_code", "currency"); c != "" {
			p.Currency = strings.ToUpper(c)
		}
	} else {
		p.Price, _ = pickNumber(m, "price", "unified_price", "amount", "value")
		if c := pickString(m, "currency", "currency_code"); c != "" {
			p.Currency = strings.ToUpper(c)
		}
	}

	return p
}
