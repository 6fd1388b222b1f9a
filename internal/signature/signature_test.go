package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_KnownVectors(t *testing.T) {
	// RFC 1321 test suite.
	tests := []struct {
		input string
		want  string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"a", "0cc175b9c0f1b6a831c399e269772661"},
		{"abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"message digest", "f96b697d7cb7938d525a2f31aaf161d0"},
		{"abcdefghijklmnopqrstuvwxyz", "c3fcd3d76192e4007dfb496cca67e13b"},
		{"12345678901234567890123456789012345678901234567890123456789012345678901234567890", "57edf4a22be3c955ac49da2e2107b67a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Digest(tt.input))
		})
	}
}

func TestCanonicalValues_Ordering(t *testing.T) {
	request := map[string]any{
		"marker":    "12345",
		"signature": "ignored",
		"locale":    "en",
		"search_params": map[string]any{
			"trip_class": "Y",
			"passengers": map[string]any{"infants": 0, "adults": 1, "children": 0},
			"directions": []any{
				map[string]any{"origin": "JFK", "destination": "LON", "date": "2026-06-01"},
				map[string]any{"origin": "LON", "destination": "JFK", "date": "2026-06-10"},
			},
		},
		"currency_code": "usd",
	}

	values, err := CanonicalValues(request)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"usd",
		"en",
		"2026-06-01", "LON", "JFK",
		"2026-06-10", "JFK", "LON",
		"1", "0", "0",
		"Y",
	}, values)
}

func TestSign_MatchesManualConcatenation(t *testing.T) {
	request := map[string]any{
		"search_id":             "abc",
		"limit":                 100,
		"last_update_timestamp": 0,
	}

	got, err := Sign("token", "marker", request)
	require.NoError(t, err)

	assert.Equal(t, Digest("token:marker:0:100:abc"), got)
	assert.Len(t, got, 32)
}

func TestSign_Deterministic(t *testing.T) {
	type passengers struct {
		Adults   int `json:"adults"`
		Children int `json:"children"`
	}
	type request struct {
		Marker     string     `json:"marker"`
		Origin     string     `json:"origin"`
		Passengers passengers `json:"passengers"`
	}

	req := request{Marker: "m", Origin: "JFK", Passengers: passengers{Adults: 2}}

	first := MustSign("t", "m", req)
	second := MustSign("t", "m", req)
	assert.Equal(t, first, second)

	// Same values expressed as a map with a different literal key order.
	asMap := map[string]any{
		"passengers": map[string]any{"children": 0, "adults": 2},
		"origin":     "JFK",
		"marker":     "m",
	}
	assert.Equal(t, first, MustSign("t", "m", asMap))
}

func TestSign_AnyValueChangeChangesDigest(t *testing.T) {
	base := map[string]any{
		"origin":      "JFK",
		"destination": "LON",
		"passengers":  map[string]any{"adults": 1},
		"flags":       []any{true, "x"},
	}
	baseSig := MustSign("t", "m", base)

	variants := map[string]map[string]any{
		"origin":     {"origin": "EWR", "destination": "LON", "passengers": map[string]any{"adults": 1}, "flags": []any{true, "x"}},
		"nested":     {"origin": "JFK", "destination": "LON", "passengers": map[string]any{"adults": 2}, "flags": []any{true, "x"}},
		"array item": {"origin": "JFK", "destination": "LON", "passengers": map[string]any{"adults": 1}, "flags": []any{false, "x"}},
		"array order": {"origin": "JFK", "destination": "LON", "passengers": map[string]any{"adults": 1}, "flags": []any{"x", true}},
	}

	for name, v := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, baseSig, MustSign("t", "m", v))
		})
	}

	assert.NotEqual(t, baseSig, MustSign("other", "m", base), "token is part of the key")
	assert.NotEqual(t, baseSig, MustSign("t", "other", base), "marker is part of the key")
}

func TestSign_MarkerFieldExcludedOnlyAtTopLevel(t *testing.T) {
	withMarker := map[string]any{"marker": "m", "a": "1"}
	withoutMarker := map[string]any{"a": "1"}
	assert.Equal(t, MustSign("t", "m", withoutMarker), MustSign("t", "m", withMarker))

	nested := map[string]any{"a": "1", "inner": map[string]any{"marker": "x"}}
	assert.NotEqual(t, MustSign("t", "m", withoutMarker), MustSign("t", "m", nested))
}

func TestSign_NonSerializableInput(t *testing.T) {
	_, err := Sign("t", "m", map[string]any{"callback": func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not serializable")

	assert.Panics(t, func() {
		MustSign("t", "m", make(chan int))
	})
}

func TestCanonicalValues_Scalars(t *testing.T) {
	values, err := CanonicalValues(map[string]any{"b": nil, "a": 1.5, "c": false})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5", "", "false"}, values)
}

func BenchmarkSign(b *testing.B) {
	request := map[string]any{
		"marker": "12345",
		"locale": "en",
		"search_params": map[string]any{
			"trip_class": "Y",
			"passengers": map[string]any{"adults": 2, "children": 1, "infants": 0},
			"directions": []any{
				map[string]any{"origin": "JFK", "destination": "LON", "date": "2026-06-01"},
			},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Sign("token", "12345", request)
	}
}
