// Package demo synthesizes clearly labeled sample offers when live search is
// disabled. Output is a pure function of the search request, so create and
// every later poll of the same search return the same batch.
package demo

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// namespace scopes demo search IDs so they never collide with upstream UUIDs.
var namespace = uuid.MustParse("6f1c3c2e-6a52-4b8e-9d0e-5d7a4b1f9c11")

// SearchIDPrefix marks every demo search ID.
const SearchIDPrefix = "demo-"

type carrier struct {
	code string
	name string
	// base is the carrier's typical one-way fare in USD.
	base int
}

var carriers = []carrier{
	{"AA", "American Airlines", 380},
	{"BA", "British Airways", 420},
	{"DL", "Delta Air Lines", 395},
	{"UA", "United Airlines", 370},
	{"LH", "Lufthansa", 410},
	{"AF", "Air France", 400},
	{"KL", "KLM", 390},
	{"FI", "Icelandair", 310},
	{"TK", "Turkish Airlines", 335},
	{"EK", "Emirates", 520},
}

var hubs = []string{"KEF", "AMS", "FRA", "CDG", "IST", "DUB", "ORD", "ATL"}

// Generator produces deterministic demo offers.
type Generator struct {
	offers int
}

// NewGenerator creates a generator returning n offers per search (12 when n <= 0).
func NewGenerator(n int) *Generator {
	if n <= 0 {
		n = 12
	}
	return &Generator{offers: n}
}

// SearchID derives a stable demo search ID from the request.
func (g *Generator) SearchID(req domain.SearchRequest) string {
	return SearchIDPrefix + uuid.NewSHA1(namespace, []byte(requestKey(req))).String()
}

// IsDemoSearchID reports whether id was produced by SearchID.
func IsDemoSearchID(id string) bool {
	return strings.HasPrefix(id, SearchIDPrefix)
}

// Flights returns the demo batch for req, sorted by ascending price.
// Demo offers carry no results URL, so they are never bookable.
func (g *Generator) Flights(searchID string, req domain.SearchRequest) []domain.NormalizedFlight {
	rng := rand.New(rand.NewSource(seed(searchID)))
	multiplier := cabinMultiplier(req.TripClass) * float64(max(req.Adults, 1))
	if req.IsRoundTrip() {
		multiplier *= 1.8
	}

	flights := make([]domain.NormalizedFlight, 0, g.offers)
	for i := 0; i < g.offers; i++ {
		c := carriers[rng.Intn(len(carriers))]
		stops := rng.Intn(3)
		if stops == 2 && rng.Intn(2) == 0 {
			stops = 1
		}

		depMinutes := 5*60 + rng.Intn(18*12)*5
		duration := 360 + rng.Intn(240) + stops*(90+rng.Intn(120))
		price := int(float64(c.base+rng.Intn(260)-stops*45) * multiplier)
		if price < 49 {
			price = 49
		}

		stopAirports := make([]string, 0, stops)
		for _, idx := range rng.Perm(len(hubs))[:stops] {
			stopAirports = append(stopAirports, hubs[idx])
		}

		proposalID := fmt.Sprintf("demo-proposal-%02d", i+1)
		signature := fmt.Sprintf("demo-%08x", rng.Uint32())

		f := domain.NormalizedFlight{
			ID:              domain.FlightID(proposalID, signature),
			AirlineCode:     c.code,
			AirlineName:     c.name,
			AirlineLogo:     fmt.Sprintf("https://pics.avs.io/200/200/%s.png", c.code),
			FlightNumber:    fmt.Sprintf("%s%d", c.code, 100+rng.Intn(1800)),
			Origin:          req.Origin,
			Destination:     req.Destination,
			DepartureTime:   clock(depMinutes),
			ArrivalTime:     clock(depMinutes + duration),
			Duration:        domain.FormatDuration(duration),
			DurationMinutes: duration,
			Stops:           stops,
			StopAirports:    stopAirports,
			Price:           price,
			Currency:        req.Currency,
			SearchID:        searchID,
			ProposalID:      proposalID,
			Signature:       signature,
			IsDemo:          true,
		}
		f.HasValidBookingURL = domain.HasBookingLinkage(f.SearchID, f.ResultsURL, f.ProposalID, f.Signature)
		flights = append(flights, f)
	}

	sort.SliceStable(flights, func(i, j int) bool { return flights[i].Price < flights[j].Price })
	return flights
}

func requestKey(req domain.SearchRequest) string {
	return strings.Join([]string{
		req.Origin, req.Destination, req.DepartDate, req.ReturnDate,
		fmt.Sprint(req.Adults), fmt.Sprint(req.Children), fmt.Sprint(req.Infants),
		string(req.TripClass), req.Currency,
	}, "|")
}

func seed(searchID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(searchID))
	return int64(h.Sum64())
}

func cabinMultiplier(c domain.CabinClass) float64 {
	switch c {
	case domain.CabinPremiumEconomy:
		return 1.6
	case domain.CabinBusiness:
		return 3.2
	case domain.CabinFirst:
		return 5.5
	default:
		return 1
	}
}

// clock formats minutes past midnight as HH:MM, wrapping past 24h.
func clock(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
