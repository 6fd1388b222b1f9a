// Package response provides standardized HTTP response builders for the
// search gateway API. Every gateway answer carries a status discriminator.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// Gateway status values.
const (
	StatusOK         = "OK"
	StatusBadRequest = "BAD_REQUEST"
	StatusAuthError  = "AUTH_ERROR"
	StatusError      = "ERROR"
)

// CreateBody is the answer to a create action.
type CreateBody struct {
	Status     string                    `json:"status" example:"OK"`
	SearchID   string                    `json:"searchId" example:"4b4b0e4e-3f6a-4c4e-9d0a-0f4f5d7c2a11"`
	ResultsURL string                    `json:"resultsUrl,omitempty" example:"https://results.example.com"`
	IsDemo     bool                      `json:"isDemo,omitempty"`
	IsComplete bool                      `json:"isComplete,omitempty"`
	Flights    []domain.NormalizedFlight `json:"flights,omitempty"`
}

// PollBody is the answer to a poll action. Flights is never null.
type PollBody struct {
	Status              string                    `json:"status" example:"OK"`
	Flights             []domain.NormalizedFlight `json:"flights"`
	IsComplete          bool                      `json:"isComplete"`
	LastUpdateTimestamp int64                     `json:"lastUpdateTimestamp" example:"1717000000"`
	IsDemo              bool                      `json:"isDemo,omitempty"`
	Dropped             int                       `json:"dropped,omitempty"`
}

// ErrorBody is the answer to a failed action.
type ErrorBody struct {
	Status          string            `json:"status" example:"ERROR"`
	Error           string            `json:"error,omitempty"`
	Kind            string            `json:"kind,omitempty" example:"UPSTREAM_ERROR"`
	Details         map[string]string `json:"details,omitempty"`
	LiveUnavailable bool              `json:"liveUnavailable,omitempty"`
	UpstreamStatus  int               `json:"upstreamStatus,omitempty" example:"502"`
}

// Envelope is the union of every gateway body, used to decode answers.
type Envelope struct {
	Status              string                    `json:"status"`
	SearchID            string                    `json:"searchId"`
	ResultsURL          string                    `json:"resultsUrl"`
	Flights             []domain.NormalizedFlight `json:"flights"`
	IsComplete          bool                      `json:"isComplete"`
	LastUpdateTimestamp int64                     `json:"lastUpdateTimestamp"`
	IsDemo              bool                      `json:"isDemo"`
	Dropped             int                       `json:"dropped"`
	Error               string                    `json:"error"`
	Kind                string                    `json:"kind"`
	Details             map[string]string         `json:"details"`
	LiveUnavailable     bool                      `json:"liveUnavailable"`
	UpstreamStatus      int                       `json:"upstreamStatus"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}

// OK writes a 200 OK response with the given data.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}
