package orchestrator

import (
	"sync"

	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/normalizer"
)

// Accumulator merges poll batches into one deduplicated set of offers.
// Offers are keyed by origin, destination, departure time and price.
type Accumulator struct {
	mu      sync.Mutex
	index   map[domain.DedupKey]int
	flights []domain.NormalizedFlight
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[domain.DedupKey]int)}
}

// Add merges flights and returns how many new keys were added.
// A repeated key keeps the first offer unless only the newcomer is bookable.
func (a *Accumulator) Add(flights []domain.NormalizedFlight) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for _, f := range flights {
		key := f.Key()
		if i, ok := a.index[key]; ok {
			if !a.flights[i].Bookable() && f.Bookable() {
				a.flights[i] = f
			}
			continue
		}
		a.index[key] = len(a.flights)
		a.flights = append(a.flights, f)
		added++
	}
	return added
}

// Len returns the number of distinct offers.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.flights)
}

// Flights returns a new slice of the accumulated offers, cheapest first.
func (a *Accumulator) Flights() []domain.NormalizedFlight {
	a.mu.Lock()
	defer a.mu.Unlock()
	return normalizer.SortFlights(a.flights, domain.SortByPrice)
}

// Reset drops every accumulated offer.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.index = make(map[domain.DedupKey]int)
	a.flights = nil
}
