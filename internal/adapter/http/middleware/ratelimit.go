package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flight-search/live-search-gateway/internal/adapter/http/response"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/ratelimit"
)

// RateLimit returns middleware that admits requests through a token bucket
// per client IP and answers 429 when the bucket is empty.
func RateLimit(limiter *ratelimit.KeyedLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if limiter.Allow(ip) {
				return next(c)
			}

			log.Warn().
				Str("request_id", GetRequestID(c)).
				Str("client_ip", ip).
				Str("path", c.Request().URL.Path).
				Msg("rate limit exceeded")
			c.Response().Header().Set("Retry-After", "1")
			return response.TooManyRequests(c)
		}
	}
}
