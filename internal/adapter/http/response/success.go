package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode,omitempty"`
}

// Health writes a health check response.
func Health(c echo.Context, mode string) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status: "ok",
		Mode:   mode,
	})
}

// Created writes the answer to a successful create.
func Created(c echo.Context, res *domain.CreateResult) error {
	return c.JSON(http.StatusOK, &CreateBody{
		Status:     StatusOK,
		SearchID:   res.SearchID,
		ResultsURL: res.ResultsURL,
		IsDemo:     res.IsDemo,
		IsComplete: res.IsComplete,
		Flights:    res.Flights,
	})
}

// Polled writes one poll batch. flights replaces res.Flights so the caller
// can apply a view (sort, filter) without mutating the result.
func Polled(c echo.Context, res *domain.PollResult, flights []domain.NormalizedFlight) error {
	if flights == nil {
		flights = []domain.NormalizedFlight{}
	}
	return c.JSON(http.StatusOK, &PollBody{
		Status:              StatusOK,
		Flights:             flights,
		IsComplete:          res.IsComplete,
		LastUpdateTimestamp: res.LastUpdateTimestamp,
		IsDemo:              res.IsDemo,
		Dropped:             res.Dropped,
	})
}

// Redirect writes a 302 to a validated booking URL.
func Redirect(c echo.Context, target string) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Redirect(http.StatusFound, target)
}
