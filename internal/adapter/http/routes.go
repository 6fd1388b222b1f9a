package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes registers all gateway routes. A nil metrics handler skips /metrics.
func RegisterRoutes(e *echo.Echo, h *FlightHandler, metrics http.Handler, middleware ...echo.MiddlewareFunc) {
	// Operational endpoints (no version prefix, no extra middleware)
	e.GET("/health", h.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/booking-redirect", h.BookingRedirect, middleware...)

	api := e.Group("/api/v1", middleware...)
	flights := api.Group("/flights")
	flights.POST("/search", h.SearchFlights)
}
