// Package signature computes the keyed request signature required by the
// Travelpayouts flight search API.
//
// The signature is the lowercase hex MD5 of
//
//	token:marker:value1:value2:...
//
// where the values are every leaf scalar of the request, collected after sorting
// object keys alphabetically at each nesting level and keeping array order. The
// top-level "marker" and "signature" fields are excluded.
package signature

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Separator joins the token, marker and values.
const Separator = ":"

// excludedKeys are skipped at the top level of the request object.
var excludedKeys = map[string]bool{
	"marker":    true,
	"signature": true,
}

// Sign returns the hex digest for the request. The request may be any
// JSON-serializable value (struct, map, slice). Non-serializable input
// (channels, funcs, cyclic values) is reported as an error.
func Sign(token, marker string, request any) (string, error) {
	values, err := CanonicalValues(request)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(values)+2)
	parts = append(parts, token, marker)
	parts = append(parts, values...)

	return Digest(strings.Join(parts, Separator)), nil
}

// MustSign is Sign for requests built from known-good literals. It panics on error.
func MustSign(token, marker string, request any) string {
	sig, err := Sign(token, marker, request)
	if err != nil {
		panic(err)
	}
	return sig
}

// Digest returns the lowercase hex MD5 of s.
func Digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CanonicalValues returns the leaf values of request in canonical order.
func CanonicalValues(request any) ([]string, error) {
	tree, err := toTree(request)
	if err != nil {
		return nil, err
	}

	var values []string
	if obj, ok := tree.(map[string]any); ok {
		for _, key := range sortedKeys(obj) {
			if excludedKeys[key] {
				continue
			}
			values = collect(obj[key], values)
		}
		return values, nil
	}

	return collect(tree, values), nil
}

// toTree round-trips the request through JSON so structs, maps and
// pre-decoded trees are all walked the same way. Numbers keep their
// exact textual form.
func toTree(request any) (any, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("signature: request is not serializable: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("signature: decode request: %w", err)
	}
	return tree, nil
}

func collect(node any, values []string) []string {
	switch v := node.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			values = collect(v[key], values)
		}
	case []any:
		for _, item := range v {
			values = collect(item, values)
		}
	case string:
		values = append(values, v)
	case json.Number:
		values = append(values, v.String())
	case bool:
		if v {
			values = append(values, "true")
		} else {
			values = append(values, "false")
		}
	case nil:
		values = append(values, "")
	}
	return values
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
