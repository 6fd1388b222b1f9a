package travelpayouts

// startRequest is the body of POST /search/affiliate/start. Field order does
// not matter for signing; the signature walks keys alphabetically.
type startRequest struct {
	Marker       string       `json:"marker"`
	Locale       string       `json:"locale"`
	CurrencyCode string       `json:"currency_code"`
	MarketCode   string       `json:"market_code"`
	SearchParams searchParams `json:"search_params"`
}

type searchParams struct {
	TripClass  string      `json:"trip_class"`
	Passengers passengers  `json:"passengers"`
	Directions []direction `json:"directions"`
}

type passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type direction struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
}

// resultsRequest is the signed body of the POST results fallback.
type resultsRequest struct {
	SearchID            string `json:"search_id"`
	Limit               int    `json:"limit"`
	LastUpdateTimestamp int64  `json:"last_update_timestamp"`
}
