package domain

import "time"

// SearchSession tracks one upstream search for the duration of a user search.
type SearchSession struct {
	SearchID   string        `json:"searchId"`
	ResultsURL string        `json:"resultsUrl,omitempty"`
	Request    SearchRequest `json:"request"`
	IsDemo     bool          `json:"isDemo"`

	// LastUpdateTimestamp is the watermark for incremental polling.
	LastUpdateTimestamp int64     `json:"lastUpdateTimestamp"`
	CreatedAt           time.Time `json:"createdAt"`
}

// CreateResult is returned by a successful create.
// In demo mode the full synthetic batch is attached and IsComplete is true.
type CreateResult struct {
	SearchID   string             `json:"searchId"`
	ResultsURL string             `json:"resultsUrl,omitempty"`
	IsDemo     bool               `json:"isDemo,omitempty"`
	IsComplete bool               `json:"isComplete,omitempty"`
	Flights    []NormalizedFlight `json:"flights,omitempty"`
}

// PollRequest asks for offers that arrived after LastUpdateTimestamp.
type PollRequest struct {
	SearchID            string `json:"searchId"`
	ResultsURL          string `json:"resultsUrl,omitempty"`
	LastUpdateTimestamp int64  `json:"lastUpdateTimestamp"`
}

// PollResult is one incremental batch of normalized offers.
type PollResult struct {
	Flights             []NormalizedFlight `json:"flights"`
	IsComplete          bool               `json:"isComplete"`
	LastUpdateTimestamp int64              `json:"lastUpdateTimestamp"`
	IsDemo              bool               `json:"isDemo,omitempty"`

	// Dropped counts offers removed because their booking URL could not be resolved or validated.
	Dropped int `json:"dropped,omitempty"`
}

// NewPollResult creates a PollResult, never returning a nil flights slice.
func NewPollResult(flights []NormalizedFlight, complete bool, watermark int64) *PollResult {
	if flights == nil {
		flights = []NormalizedFlight{}
	}
	return &PollResult{
		Flights:             flights,
		IsComplete:          complete,
		LastUpdateTimestamp: watermark,
	}
}
