package normalizer

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// FlightInfo is one upstream flight leg reduced to the fields the UI needs.
// Missing values stay at their zero value.
type FlightInfo struct {
	Origin          string
	Destination     string
	DepartureTime   string
	ArrivalTime     string
	DepartureUnix   int64
	ArrivalUnix     int64
	DurationMinutes int
	AirlineCode     string
	FlightNumber    string
}

// FlightInfoMap indexes flight legs by the position tickets reference them with.
type FlightInfoMap map[int]FlightInfo

// BuildFlightInfoMap indexes the raw flight legs. It accepts a JSON array
// (index = position) or an object keyed by numeric index. Anything else
// yields an empty map.
func BuildFlightInfoMap(raw any) FlightInfoMap {
	out := FlightInfoMap{}

	switch legs := raw.(type) {
	case []any:
		for i, item := range legs {
			if m, ok := item.(map[string]any); ok {
				out[i] = parseLeg(m)
			}
		}
	case map[string]any:
		for key, item := range legs {
			idx, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			if m, ok := item.(map[string]any); ok {
				out[idx] = parseLeg(m)
			}
		}
	}

	return out
}

// Indices returns the map keys in ascending order.
func (m FlightInfoMap) Indices() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func parseLeg(m map[string]any) FlightInfo {
	info := FlightInfo{
		Origin:        strings.ToUpper(pickString(m, "origin", "departure_airport", "departure", "from")),
		Destination:   strings.ToUpper(pickString(m, "destination", "arrival_airport", "arrival", "to")),
		DepartureUnix: pickInt64(m, "departure_unix_timestamp", "departure_timestamp", "local_departure_timestamp"),
		ArrivalUnix:   pickInt64(m, "arrival_unix_timestamp", "arrival_timestamp", "local_arrival_timestamp"),
	}

	info.DepartureTime = clockTime(pickString(m, "local_departure_date_time", "departure_date_time", "departure_time", "departure_at"), info.DepartureUnix)
	info.ArrivalTime = clockTime(pickString(m, "local_arrival_date_time", "arrival_date_time", "arrival_time", "arrival_at"), info.ArrivalUnix)

	if d, ok := pickNumber(m, "duration", "duration_minutes", "flight_duration"); ok && d > 0 {
		info.DurationMinutes = int(d)
	}

	carrier := pickObject(m, "marketing_carrier_designator", "operating_carrier_designator")
	if carrier != nil {
		info.AirlineCode = strings.ToUpper(pickString(carrier, "carrier", "airline_id", "code"))
		info.FlightNumber = pickString(carrier, "number", "flight_number")
	}
	if info.AirlineCode == "" {
		info.AirlineCode = strings.ToUpper(pickString(m, "marketing_carrier", "operating_carrier", "carrier", "airline"))
	}
	if info.FlightNumber == "" {
		info.FlightNumber = pickString(m, "number", "flight_number")
	}

	return info
}

// clockTime extracts HH:MM from a local date-time string, falling back to the
// unix timestamp in UTC. Unknown values return an empty string.
func clockTime(s string, unix int64) string {
	if s != "" {
		if i := strings.IndexAny(s, "T "); i >= 0 {
			s = s[i+1:]
		}
		if len(s) >= 5 && s[2] == ':' {
			if _, err := time.Parse("15:04", s[:5]); err == nil {
				return s[:5]
			}
		}
	}
	if unix > 0 {
		return time.Unix(unix, 0).UTC().Format("15:04")
	}
	return ""
}
