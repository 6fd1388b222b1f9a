// Package mock provides test doubles for the flight search gateway.
// Upstream is a configurable fake of the flight-pricing API for integration
// tests that need real HTTP, signing headers and incremental batches.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Ticket is one offer in a fake result batch.
type Ticket struct {
	Signature  string
	ProposalID string
	Price      int
	Carrier    string
	Number     string
}

// Batch is the answer to one results fetch.
type Batch struct {
	Tickets   []Ticket
	Complete  bool
	Watermark int64
}

// Upstream is a fake upstream API. Configure it with the With* methods and
// call Start before use. Results fetches walk the configured batches in
// order; once exhausted an empty complete batch is served.
type Upstream struct {
	mu sync.Mutex

	searchID    string
	batches     []Batch
	startStatus int
	fetchStatus int
	clickURL    func(proposalID string) string
	delay       time.Duration

	startCalls   int
	fetchCalls   int
	clickCalls   int
	startHeaders http.Header

	server *httptest.Server
}

// NewUpstream creates a fake that answers every call with 200.
func NewUpstream() *Upstream {
	return &Upstream{
		searchID:    "search-1",
		startStatus: http.StatusOK,
		fetchStatus: http.StatusOK,
		clickURL: func(proposalID string) string {
			return "https://partner.example.com/book?offer=" + proposalID
		},
	}
}

// WithSearchID sets the id returned by the start call.
func (u *Upstream) WithSearchID(id string) *Upstream {
	u.searchID = id
	return u
}

// WithBatch appends a results batch.
func (u *Upstream) WithBatch(b Batch) *Upstream {
	u.batches = append(u.batches, b)
	return u
}

// WithStartStatus makes the start call answer with status.
func (u *Upstream) WithStartStatus(status int) *Upstream {
	u.startStatus = status
	return u
}

// WithFetchStatus makes every results fetch answer with status.
func (u *Upstream) WithFetchStatus(status int) *Upstream {
	u.fetchStatus = status
	return u
}

// WithClickURL overrides the booking URL returned per proposal. Returning
// an empty string makes the click answer without a url.
func (u *Upstream) WithClickURL(fn func(proposalID string) string) *Upstream {
	u.clickURL = fn
	return u
}

// WithDelay delays every answer. It may be changed while the fake is running.
func (u *Upstream) WithDelay(d time.Duration) *Upstream {
	u.mu.Lock()
	u.delay = d
	u.mu.Unlock()
	return u
}

// Start serves the fake on a local listener.
func (u *Upstream) Start() *Upstream {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/affiliate/start", u.handleStart)
	mux.HandleFunc("/v1/flight_search_results", u.handleResults)
	mux.HandleFunc("/search/affiliate/results", u.handleResults)
	mux.HandleFunc("/searches/", u.handleClick)
	u.server = httptest.NewServer(mux)
	return u
}

// URL returns the base URL of the running fake.
func (u *Upstream) URL() string {
	return u.server.URL
}

// Close stops the fake.
func (u *Upstream) Close() {
	if u.server != nil {
		u.server.Close()
	}
}

// StartCalls returns the number of start calls.
func (u *Upstream) StartCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.startCalls
}

// FetchCalls returns the number of results fetches.
func (u *Upstream) FetchCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.fetchCalls
}

// ClickCalls returns the number of click resolutions.
func (u *Upstream) ClickCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.clickCalls
}

// StartHeaders returns the headers of the last start call.
func (u *Upstream) StartHeaders() http.Header {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.startHeaders.Clone()
}

func (u *Upstream) handleStart(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.startCalls++
	u.startHeaders = r.Header.Clone()
	status := u.startStatus
	u.mu.Unlock()

	u.wait(r)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, map[string]any{
		"search_id":   u.searchID,
		"results_url": u.server.URL,
	})
}

func (u *Upstream) handleResults(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	idx := u.fetchCalls
	u.fetchCalls++
	status := u.fetchStatus
	batch := Batch{Complete: true}
	if idx < len(u.batches) {
		batch = u.batches[idx]
	} else if n := len(u.batches); n > 0 {
		batch.Watermark = u.batches[n-1].Watermark
	}
	u.mu.Unlock()

	u.wait(r)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, batch.payload())
}

func (u *Upstream) handleClick(w http.ResponseWriter, r *http.Request) {
	// /searches/{searchID}/clicks/{proposalID}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[2] != "clicks" {
		http.NotFound(w, r)
		return
	}

	u.mu.Lock()
	u.clickCalls++
	fn := u.clickURL
	u.mu.Unlock()

	u.wait(r)
	target := fn(parts[3])
	if target == "" {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, map[string]any{"url": target, "method": "GET"})
}

func (u *Upstream) wait(r *http.Request) {
	u.mu.Lock()
	d := u.delay
	u.mu.Unlock()
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-r.Context().Done():
	}
}

// payload renders the batch in the upstream results shape. All tickets share
// one direct leg per carrier and flight number.
func (b Batch) payload() map[string]any {
	legs := make([]any, 0, len(b.Tickets))
	tickets := make([]any, 0, len(b.Tickets))
	for i, t := range b.Tickets {
		carrier, number := t.Carrier, t.Number
		if carrier == "" {
			carrier = "BA"
		}
		if number == "" {
			number = fmt.Sprintf("%d", 100+i)
		}
		legs = append(legs, map[string]any{
			"origin":                    "JFK",
			"destination":               "LHR",
			"local_departure_date_time": "2026-06-01T08:30:00",
			"duration":                  420,
			"marketing_carrier_designator": map[string]any{
				"carrier": carrier,
				"number":  number,
			},
		})
		tickets = append(tickets, map[string]any{
			"signature": t.Signature,
			"segments":  []any{map[string]any{"flights": []int{i}}},
			"proposals": []any{map[string]any{
				"id":    t.ProposalID,
				"price": map[string]any{"value": t.Price, "currency_code": "usd"},
			}},
		})
	}
	return map[string]any{
		"is_over":               b.Complete,
		"last_update_timestamp": b.Watermark,
		"flight_legs":           legs,
		"tickets":               tickets,
	}
}

// Tickets builds tickets sig-<prefix><i>/p-<prefix><i> with the given prices.
func Tickets(prefix string, prices ...int) []Ticket {
	out := make([]Ticket, len(prices))
	for i, p := range prices {
		out[i] = Ticket{
			Signature:  fmt.Sprintf("sig-%s%d", prefix, i),
			ProposalID: fmt.Sprintf("p-%s%d", prefix, i),
			Price:      p,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
