package normalizer

// TicketGroup is a set of tickets together with the legs they index into.
// Legacy responses arrive as several chunks, each with its own leg indices.
type TicketGroup struct {
	Tickets []map[string]any
	Legs    FlightInfoMap
}

// RawBatch is one upstream poll response, reduced to the parts we normalize.
type RawBatch struct {
	Groups              []TicketGroup
	Airlines            AirlineDirectory
	IsComplete          bool
	LastUpdateTimestamp int64
	HasWatermark        bool
}

// TicketCount returns the number of tickets across all groups.
func (b RawBatch) TicketCount() int {
	n := 0
	for _, g := range b.Groups {
		n += len(g.Tickets)
	}
	return n
}

// completionKeys lists every completion flag the upstream has used.
var completionKeys = []string{"is_over", "isOver", "is_complete", "isComplete", "search_completed", "completed", "finished"}

// ExtractBatch reads a decoded poll response. An object is treated as a single
// chunk; an array is treated as a sequence of legacy chunks, where a chunk
// holding only "search_id" marks the end of the search.
func ExtractBatch(raw any) RawBatch {
	batch := RawBatch{Airlines: AirlineDirectory{}}

	switch v := raw.(type) {
	case map[string]any:
		batch.addChunk(v)
	case []any:
		for _, item := range v {
			chunk, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if len(chunk) == 1 && chunk["search_id"] != nil {
				batch.IsComplete = true
				continue
			}
			batch.addChunk(chunk)
		}
	}

	return batch
}

func (b *RawBatch) addChunk(chunk map[string]any) {
	if pickBool(chunk, completionKeys...) {
		b.IsComplete = true
	}

	if ts, ok := pickNumber(chunk, "last_update_timestamp", "lastUpdateTimestamp"); ok {
		if !b.HasWatermark || int64(ts) > b.LastUpdateTimestamp {
			b.LastUpdateTimestamp = int64(ts)
		}
		b.HasWatermark = true
	}

	b.Airlines.Merge(BuildAirlineDirectory(firstPresent(chunk, "airlines", "airlines_info", "airline_info")))

	var tickets []map[string]any
	for _, item := range pickList(chunk, "tickets", "proposals", "results") {
		if t, ok := item.(map[string]any); ok {
			tickets = append(tickets, t)
		}
	}
	if len(tickets) == 0 {
		return
	}

	b.Groups = append(b.Groups, TicketGroup{
		Tickets: tickets,
		Legs:    BuildFlightInfoMap(firstPresent(chunk, "flight_legs", "flights", "legs")),
	})
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
