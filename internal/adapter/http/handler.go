package http

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/flight-search/live-search-gateway/internal/adapter/http/response"
	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
	"github.com/flight-search/live-search-gateway/internal/redirect"
)

// Gateway modes reported by /health.
const (
	ModeLive = "live"
	ModeDemo = "demo"
)

// FlightHandler handles the gateway and redirect endpoints.
type FlightHandler struct {
	gateway   domain.SearchGateway
	validator *redirect.Validator
	mode      string
	log       *logger.Logger
}

// NewFlightHandler creates a new FlightHandler. A nil validator uses the default aggregator domains.
func NewFlightHandler(gw domain.SearchGateway, validator *redirect.Validator, mode string, log *logger.Logger) *FlightHandler {
	if validator == nil {
		validator = redirect.NewValidator()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FlightHandler{
		gateway:   gw,
		validator: validator,
		mode:      mode,
		log:       log.WithComponent("http"),
	}
}

// SearchFlights handles POST /api/v1/flights/search
//
// @Summary Create or poll a live flight search
// @Description With action "create" starts an upstream search and returns its searchId.
// @Description With action "poll" returns offers newer than lastUpdateTimestamp, each with a validated booking URL.
// @Tags flights
// @Accept json
// @Produce json
// @Param request body SearchActionRequest true "Gateway action"
// @Success 200 {object} response.PollBody "Poll batch (create answers with response.CreateBody)"
// @Failure 400 {object} response.ErrorBody "BAD_REQUEST"
// @Failure 502 {object} response.ErrorBody "ERROR from the upstream"
// @Failure 503 {object} response.ErrorBody "AUTH_ERROR, live search not active"
// @Router /flights/search [post]
func (h *FlightHandler) SearchFlights(c echo.Context) error {
	var req SearchActionRequest

	if err := c.Bind(&req); err != nil {
		return response.InvalidRequestBody(c)
	}

	if err := req.Validate(); err != nil {
		return h.handleValidationError(c, err)
	}

	ctx := domain.ContextWithClientIP(c.Request().Context(), c.RealIP())

	switch req.Action {
	case ActionCreate:
		result, err := h.gateway.Create(ctx, ToSearchRequest(&req, c.RealIP()))
		if err != nil {
			return h.handleError(c, err)
		}
		return response.Created(c, result)

	default:
		result, err := h.gateway.Poll(ctx, ToPollRequest(&req))
		if err != nil {
			return h.handleError(c, err)
		}
		return response.Polled(c, result, ApplyView(result.Flights, req.SortBy, req.Filters))
	}
}

// BookingRedirect handles GET /booking-redirect
//
// @Summary Redirect to a partner booking page
// @Description Redirects with 302 only when the target passes the redirect validator.
// @Tags booking
// @Produce json
// @Param u query string true "URL-encoded booking target"
// @Success 302 "Redirect to the partner"
// @Failure 400 {object} response.RedirectRejection
// @Router /booking-redirect [get]
func (h *FlightHandler) BookingRedirect(c echo.Context) error {
	target := c.QueryParam("u")
	result := h.validator.Validate(target)
	if !result.Valid {
		h.log.Warn().
			Str("reason", result.Reason).
			Str("target", logger.Truncate(target, 256)).
			Msg("booking redirect rejected")
		return response.RedirectRejected(c, result.Reason)
	}
	return response.Redirect(c, target)
}

// handleValidationError handles validation errors and returns a 400 response.
func (h *FlightHandler) handleValidationError(c echo.Context, err error) error {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return response.ValidationError(c, validationErrs.ToMap())
	}

	return response.BadRequest(c, err.Error(), nil)
}

// handleError maps domain errors to gateway responses.
func (h *FlightHandler) handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrSessionNotFound):
		return response.BadRequest(c, err.Error(), nil)

	case domain.IsLiveUnavailable(err):
		return response.LiveUnavailable(c)

	case errors.Is(err, domain.ErrUpstream):
		return response.UpstreamFailure(c, err)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return response.GatewayTimeout(c)
	}

	h.log.Error().Err(err).Msg("unexpected gateway error")
	return response.InternalServerError(c)
}

// Health handles GET /health
func (h *FlightHandler) Health(c echo.Context) error {
	return response.Health(c, h.mode)
}
