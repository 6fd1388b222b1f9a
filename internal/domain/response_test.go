package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPollResult(t *testing.T) {
	res := NewPollResult(nil, true, 42)

	assert.NotNil(t, res.Flights, "flights must serialize as [] not null")
	assert.Empty(t, res.Flights)
	assert.True(t, res.IsComplete)
	assert.Equal(t, int64(42), res.LastUpdateTimestamp)
}
