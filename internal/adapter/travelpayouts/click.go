package travelpayouts

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrNoClickURL is returned when a click response carries no usable URL.
var ErrNoClickURL = errors.New("click response has no url")

// ErrNotRedirectable is returned for click responses that require a form POST.
var ErrNotRedirectable = errors.New("click response is not redirectable")

// ClickExtractor pulls the final booking URL out of a decoded click response.
// The response shape is not stable upstream, so it is pluggable.
type ClickExtractor func(body map[string]any) (string, error)

// DefaultClickExtractor probes url, deeplink, link, redirect_url and data.url.
// GET params are appended to the query string; a POST method is rejected.
func DefaultClickExtractor(body map[string]any) (string, error) {
	src := body
	raw := firstString(src, "url", "deeplink", "link", "redirect_url")
	if raw == "" {
		if data, ok := body["data"].(map[string]any); ok {
			src = data
			raw = firstString(src, "url", "deeplink", "link", "redirect_url")
		}
	}
	if raw == "" {
		return "", ErrNoClickURL
	}

	if method := strings.ToUpper(firstString(src, "method")); method != "" && method != "GET" {
		return "", ErrNotRedirectable
	}

	params, ok := src["params"].(map[string]any)
	if !ok || len(params) == 0 {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := scalarString(params[k]); ok {
			q.Set(k, s)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
