// Package testutil provides test helper functions for unit and integration tests.
package testutil

import (
	"encoding/json"
	"testing"
	"time"
)

// DateLayout matches the API calendar date format.
const DateLayout = "2006-01-02"

// FutureDate returns a date string the given number of days from now in YYYY-MM-DD format.
func FutureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(DateLayout)
}

// MustParseDate parses a date string in YYYY-MM-DD format.
// It fails the test if parsing fails.
func MustParseDate(t *testing.T, dateStr string) time.Time {
	t.Helper()
	parsed, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", dateStr, err)
	}
	return parsed
}

// DecodeJSON unmarshals data into a T and fails the test on error.
func DecodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("Failed to decode %q: %v", truncate(string(data), 200), err)
	}
	return v
}

// Ptr returns a pointer to the given value.
// Useful for creating pointers to literals in tests.
func Ptr[T any](v T) *T {
	return &v
}

// IntPtr returns a pointer to an int.
// Convenience function for filter option tests.
func IntPtr(i int) *int {
	return &i
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
