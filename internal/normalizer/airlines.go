package normalizer

import (
	"fmt"
	"strings"
)

// LogoURLTemplate builds an airline logo URL from its IATA code.
const LogoURLTemplate = "https://pics.avs.io/200/200/%s.png"

// Airline is a display entry for an airline code.
type Airline struct {
	Code string
	Name string
	Logo string
}

// AirlineDirectory maps airline codes to display entries.
type AirlineDirectory map[string]Airline

// BuildAirlineDirectory reads the upstream airlines map. Both
// {"BA": {"name": "British Airways"}} and [{"iata": "BA", "name": ...}] are accepted.
func BuildAirlineDirectory(raw any) AirlineDirectory {
	dir := AirlineDirectory{}

	add := func(code string, m map[string]any) {
		code = strings.ToUpper(code)
		if code == "" {
			return
		}
		dir[code] = Airline{
			Code: code,
			Name: pickString(m, "name", "title", "airline_name"),
			Logo: pickString(m, "logo", "logo_url"),
		}
	}

	switch v := raw.(type) {
	case map[string]any:
		for code, item := range v {
			m, _ := item.(map[string]any)
			add(code, m)
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				add(pickString(m, "iata", "code", "id"), m)
			}
		}
	}

	return dir
}

// Merge copies entries from other that are not already present.
func (d AirlineDirectory) Merge(other AirlineDirectory) {
	for code, a := range other {
		if _, ok := d[code]; !ok {
			d[code] = a
		}
	}
}

// Lookup returns the display entry for code, filling name and logo defaults.
func (d AirlineDirectory) Lookup(code string) Airline {
	code = strings.ToUpper(code)
	a := d[code]
	a.Code = code
	if a.Name == "" {
		a.Name = code
	}
	if a.Logo == "" && code != "" {
		a.Logo = fmt.Sprintf(LogoURLTemplate, code)
	}
	return a
}
