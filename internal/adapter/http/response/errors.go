package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// Messages used in API responses.
const (
	MsgInvalidRequestBody = "Failed to parse request body"
	MsgValidationFailed   = "Request validation failed"
	MsgLiveUnavailable    = "Live flight search is not available yet"
	MsgUpstreamFailed     = "Flight search provider failed, please try again"
	MsgTimeout            = "Request timed out"
	MsgInternalError      = "An unexpected error occurred"
	MsgRateLimited        = "Too many requests, slow down"
	MsgRedirectRejected   = "The booking link is not a valid partner page"
)

// RedirectRejection is the body of a refused booking redirect.
type RedirectRejection struct {
	Error   string `json:"error" example:"invalid_redirect"`
	Reason  string `json:"reason" example:"aggregator_search_page"`
	Message string `json:"message"`
}

// InvalidRequestBody writes a 400 response for malformed request bodies.
func InvalidRequestBody(c echo.Context) error {
	return BadRequest(c, MsgInvalidRequestBody, nil)
}

// ValidationError writes a 400 response with field-level details.
func ValidationError(c echo.Context, details map[string]string) error {
	return BadRequest(c, MsgValidationFailed, details)
}

// BadRequest writes a 400 BAD_REQUEST response.
func BadRequest(c echo.Context, message string, details map[string]string) error {
	return c.JSON(http.StatusBadRequest, &ErrorBody{
		Status:  StatusBadRequest,
		Error:   message,
		Details: details,
	})
}

// LiveUnavailable writes a 503 AUTH_ERROR response.
func LiveUnavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, &ErrorBody{
		Status:          StatusAuthError,
		Error:           MsgLiveUnavailable,
		LiveUnavailable: true,
	})
}

// UpstreamFailure writes a 502 ERROR response for upstream, network and parse failures.
func UpstreamFailure(c echo.Context, err error) error {
	body := &ErrorBody{
		Status:         StatusError,
		Error:          MsgUpstreamFailed,
		Kind:           string(domain.KindUpstream),
		UpstreamStatus: domain.UpstreamStatus(err),
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		body.Kind = string(ue.Kind)
	}
	return c.JSON(http.StatusBadGateway, body)
}

// GatewayTimeout writes a 504 ERROR response.
func GatewayTimeout(c echo.Context) error {
	return c.JSON(http.StatusGatewayTimeout, &ErrorBody{
		Status: StatusError,
		Error:  MsgTimeout,
		Kind:   string(domain.KindNetwork),
	})
}

// InternalServerError writes a 500 ERROR response.
func InternalServerError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, &ErrorBody{
		Status: StatusError,
		Error:  MsgInternalError,
	})
}

// TooManyRequests writes a 429 ERROR response.
func TooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, &ErrorBody{
		Status: StatusError,
		Error:  MsgRateLimited,
	})
}

// RedirectRejected writes a 400 response for a booking URL the validator refused.
func RedirectRejected(c echo.Context, reason string) error {
	return c.JSON(http.StatusBadRequest, &RedirectRejection{
		Error:   "invalid_redirect",
		Reason:  reason,
		Message: MsgRedirectRejected,
	})
}
