package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBatch_CurrentShape(t *testing.T) {
	raw := decode(t, `{
		"search_id": "abc",
		"last_update_timestamp": 1717000000,
		"is_over": false,
		"airlines": {"BA": {"name": "British Airways"}},
		"flight_legs": [{"origin": "JFK", "destination": "LHR"}],
		"tickets": [
			{"signature": "s1", "segments": [{"flights": [0]}], "proposals": [{"id": "p1", "price": {"value": 400}}]},
			"garbage"
		]
	}`)

	batch := ExtractBatch(raw)

	assert.False(t, batch.IsComplete)
	assert.True(t, batch.HasWatermark)
	assert.Equal(t, int64(1717000000), batch.LastUpdateTimestamp)
	assert.Equal(t, 1, batch.TicketCount())
	require.Len(t, batch.Groups, 1)
	assert.Equal(t, "JFK", batch.Groups[0].Legs[0].Origin)
	assert.Equal(t, "British Airways", batch.Airlines.Lookup("ba").Name)
}

func TestExtractBatch_CompletionFlags(t *testing.T) {
	flags := []string{"is_over", "isOver", "is_complete", "isComplete", "search_completed", "completed", "finished"}

	for _, flag := range flags {
		t.Run(flag, func(t *testing.T) {
			batch := ExtractBatch(map[string]any{flag: true})
			assert.True(t, batch.IsComplete)
		})
	}

	assert.True(t, ExtractBatch(map[string]any{"completed": "true"}).IsComplete)
	assert.False(t, ExtractBatch(map[string]any{"is_over": false}).IsComplete)
	assert.False(t, ExtractBatch(map[string]any{}).HasWatermark)
}

func TestExtractBatch_LegacyChunks(t *testing.T) {
	raw := decode(t, `[
		{
			"search_id": "abc",
			"airlines": {"SU": {"name": "Aeroflot"}},
			"proposals": [{"sign": "a", "terms": {"1": {"price": 100}}}]
		},
		{
			"search_id": "abc",
			"airlines_info": [{"iata": "TK", "name": "Turkish Airlines"}],
			"proposals": [{"sign": "b", "terms": {"2": {"price": 200}}}, {"sign": "c", "terms": {"3": {"price": 300}}}]
		},
		{"search_id": "abc"}
	]`)

	batch := ExtractBatch(raw)

	assert.True(t, batch.IsComplete, "search_id-only chunk marks the end")
	assert.Len(t, batch.Groups, 2)
	assert.Equal(t, 3, batch.TicketCount())
	assert.Equal(t, "Aeroflot", batch.Airlines.Lookup("SU").Name)
	assert.Equal(t, "Turkish Airlines", batch.Airlines.Lookup("TK").Name)
}

func TestExtractBatch_WatermarkTakesMaximum(t *testing.T) {
	raw := decode(t, `[
		{"last_update_timestamp": 20, "tickets": []},
		{"lastUpdateTimestamp": 15}
	]`)

	batch := ExtractBatch(raw)
	assert.Equal(t, int64(20), batch.LastUpdateTimestamp)
}

func TestExtractBatch_UnknownShapes(t *testing.T) {
	for _, raw := range []any{nil, "text", 42.0} {
		batch := ExtractBatch(raw)
		assert.Empty(t, batch.Groups)
		assert.False(t, batch.IsComplete)
	}
}

func TestAirlineDirectory_Lookup(t *testing.T) {
	dir := BuildAirlineDirectory(map[string]any{
		"lh": map[string]any{"name": "Lufthansa", "logo": "https://cdn.example.com/lh.svg"},
	})

	lh := dir.Lookup("LH")
	assert.Equal(t, "LH", lh.Code)
	assert.Equal(t, "Lufthansa", lh.Name)
	assert.Equal(t, "https://cdn.example.com/lh.svg", lh.Logo)

	unknown := dir.Lookup("zz")
	assert.Equal(t, "ZZ", unknown.Name)
	assert.Equal(t, "https://pics.avs.io/200/200/ZZ.png", unknown.Logo)

	assert.Equal(t, "", AirlineDirectory{}.Lookup("").Logo)
}
