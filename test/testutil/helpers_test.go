package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureDate(t *testing.T) {
	got := MustParseDate(t, FutureDate(30))
	today := MustParseDate(t, time.Now().Format(DateLayout))

	assert.Equal(t, 30, int(got.Sub(today).Hours()/24))
}

func TestMustParseDate(t *testing.T) {
	tests := []struct {
		name      string
		dateStr   string
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{
			name:      "valid date",
			dateStr:   "2025-12-15",
			wantYear:  2025,
			wantMonth: time.December,
			wantDay:   15,
		},
		{
			name:      "leap year date",
			dateStr:   "2024-02-29",
			wantYear:  2024,
			wantMonth: time.February,
			wantDay:   29,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustParseDate(t, tt.dateStr)
			assert.Equal(t, tt.wantYear, result.Year())
			assert.Equal(t, tt.wantMonth, result.Month())
			assert.Equal(t, tt.wantDay, result.Day())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}

	got := DecodeJSON[body](t, []byte(`{"status":"OK","count":3}`))
	assert.Equal(t, body{Status: "OK", Count: 3}, got)

	m := DecodeJSON[map[string]any](t, []byte(`{"a":1}`))
	assert.Equal(t, 1.0, m["a"])
}

func TestPtr(t *testing.T) {
	t.Run("int value", func(t *testing.T) {
		intVal := Ptr(42)
		require.NotNil(t, intVal)
		assert.Equal(t, 42, *intVal)
	})

	t.Run("string value", func(t *testing.T) {
		strVal := Ptr("hello")
		require.NotNil(t, strVal)
		assert.Equal(t, "hello", *strVal)
	})
}

func TestIntPtr(t *testing.T) {
	for _, v := range []int{5, 0, -10} {
		ptr := IntPtr(v)
		require.NotNil(t, ptr)
		assert.Equal(t, v, *ptr)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
