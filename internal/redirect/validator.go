// Package redirect decides whether an outbound booking URL may be used as a
// redirect target. Users must land on a partner booking page, never on an
// aggregator search or results page.
package redirect

import (
	"net/url"
	"strings"
)

// Rejection reasons.
const (
	ReasonInvalidURL       = "invalid_url"
	ReasonNotHTTPS         = "non_https_scheme"
	ReasonAggregatorSearch = "aggregator_search_page"
	ReasonMockMarker       = "mock_placeholder_marker"
	ReasonAggregatorPage   = "aggregator_non_final_page"
	ReasonSearchSubdomain  = "aggregator_search_subdomain"
)

// DefaultAggregatorDomains are the upstream aggregator's own domains.
var DefaultAggregatorDomains = []string{"aviasales.com", "aviasales.ru"}

// mockMarkers are query keys or values that flag a placeholder link.
var mockMarkers = map[string]bool{
	"mock":        true,
	"placeholder": true,
	"demo":        true,
	"fake":        true,
}

// nonFinalSubdomains are aggregator hosts that only serve search UI.
var nonFinalSubdomains = map[string]bool{
	"search":  true,
	"tickets": true,
	"results": true,
}

// Result is the outcome of a validation. Reason is empty when Valid is true.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func reject(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// Validator checks candidate redirect URLs. It is stateless after construction
// and safe for concurrent use.
type Validator struct {
	domains []string
}

// NewValidator creates a Validator for the given aggregator domains.
// With no domains, DefaultAggregatorDomains is used.
func NewValidator(domains ...string) *Validator {
	if len(domains) == 0 {
		domains = DefaultAggregatorDomains
	}

	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &Validator{domains: normalized}
}

// Validate applies the rules in order and returns the first rejection.
func (v *Validator) Validate(raw string) Result {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return reject(ReasonInvalidURL)
	}

	if !strings.EqualFold(u.Scheme, "https") {
		return reject(ReasonNotHTTPS)
	}

	host := strings.ToLower(u.Hostname())
	paths := []string{strings.ToLower(u.Path), strings.ToLower(u.EscapedPath())}
	aggregator := v.isAggregatorHost(host)

	if aggregator && pathContains(paths, "/search") {
		return reject(ReasonAggregatorSearch)
	}

	if hasMockMarker(u.Query()) {
		return reject(ReasonMockMarker)
	}

	if aggregator && (isRootPath(paths[0]) ||
		pathContains(paths, "/results") || pathContains(paths, "/tickets")) {
		return reject(ReasonAggregatorPage)
	}

	if v.isNonFinalSubdomain(host) {
		return reject(ReasonSearchSubdomain)
	}

	return Result{Valid: true}
}

// IsValid is a shorthand for Validate(raw).Valid.
func (v *Validator) IsValid(raw string) bool {
	return v.Validate(raw).Valid
}

func (v *Validator) isAggregatorHost(host string) bool {
	for _, d := range v.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// isNonFinalSubdomain matches search.<domain>, tickets.<domain> and
// results.<domain>, including deeper prefixes such as api.results.<domain>.
func (v *Validator) isNonFinalSubdomain(host string) bool {
	for _, d := range v.domains {
		if !strings.HasSuffix(host, "."+d) {
			continue
		}
		labels := strings.Split(strings.TrimSuffix(host, "."+d), ".")
		for _, label := range labels {
			if nonFinalSubdomains[label] {
				return true
			}
		}
	}
	return false
}

// pathContains checks both the decoded and the escaped path so that
// percent-encoded segments cannot hide a search or results page.
func pathContains(paths []string, segment string) bool {
	for _, p := range paths {
		if strings.Contains(p, segment) {
			return true
		}
	}
	return false
}

func isRootPath(p string) bool {
	return strings.Trim(p, "/") == ""
}

func hasMockMarker(q url.Values) bool {
	for key, values := range q {
		if mockMarkers[strings.ToLower(key)] {
			return true
		}
		for _, value := range values {
			if mockMarkers[strings.ToLower(value)] {
				return true
			}
		}
	}
	return false
}
