// Package client implements domain.SearchGateway over HTTP, so the poll
// orchestrator can drive a remote gateway exactly like the in-process one.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flight-search/live-search-gateway/internal/adapter/http/response"
	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
)

// SearchPath is the gateway endpoint relative to the base URL.
const SearchPath = "/api/v1/flights/search"

// DefaultTimeout bounds one gateway call.
const DefaultTimeout = 30 * time.Second

// maxLoggedBody bounds how much of an undecodable answer is logged.
const maxLoggedBody = 512

// maxBodyBytes caps how much of a gateway response is read.
const maxBodyBytes = 10 << 20

// Client calls a remote search gateway.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the gateway at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createAction struct {
	Action      string `json:"action"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"departDate"`
	ReturnDate  string `json:"returnDate,omitempty"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	Infants     int    `json:"infants"`
	TripClass   string `json:"tripClass,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type pollAction struct {
	Action              string `json:"action"`
	SearchID            string `json:"searchId"`
	ResultsURL          string `json:"resultsUrl,omitempty"`
	LastUpdateTimestamp int64  `json:"lastUpdateTimestamp"`
}

// Create starts a search on the remote gateway.
func (c *Client) Create(ctx context.Context, req domain.SearchRequest) (*domain.CreateResult, error) {
	env, err := c.do(ctx, "create", createAction{
		Action:      "create",
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartDate:  req.DepartDate,
		ReturnDate:  req.ReturnDate,
		Adults:      req.Adults,
		Children:    req.Children,
		Infants:     req.Infants,
		TripClass:   string(req.TripClass),
		Currency:    req.Currency,
	})
	if err != nil {
		return nil, err
	}

	return &domain.CreateResult{
		SearchID:   env.SearchID,
		ResultsURL: env.ResultsURL,
		IsDemo:     env.IsDemo,
		IsComplete: env.IsComplete,
		Flights:    env.Flights,
	}, nil
}

// Poll fetches one batch from the remote gateway.
func (c *Client) Poll(ctx context.Context, req domain.PollRequest) (*domain.PollResult, error) {
	env, err := c.do(ctx, "poll", pollAction{
		Action:              "poll",
		SearchID:            req.SearchID,
		ResultsURL:          req.ResultsURL,
		LastUpdateTimestamp: req.LastUpdateTimestamp,
	})
	if err != nil {
		return nil, err
	}

	res := domain.NewPollResult(env.Flights, env.IsComplete, env.LastUpdateTimestamp)
	res.IsDemo = env.IsDemo
	res.Dropped = env.Dropped
	return res, nil
}

// do posts one action and maps the answer's status back to domain errors.
// The body is decoded for every HTTP status.
func (c *Client) do(ctx context.Context, op string, payload any) (*response.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SearchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewNetworkError(op, err)
	}

	c.log.Debug().
		Str("action", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("gateway call")

	var env response.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Status == "" {
		if err == nil {
			err = errors.New("missing status")
		}
		c.log.Warn().
			Str("action", op).
			Int("status", resp.StatusCode).
			Str("body", logger.Truncate(string(raw), maxLoggedBody)).
			Msg("undecodable gateway answer")
		return nil, domain.NewParseError(op, resp.StatusCode, err)
	}

	if err := statusError(op, resp.StatusCode, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func statusError(op string, httpStatus int, env *response.Envelope) error {
	switch env.Status {
	case response.StatusOK:
		return nil
	case response.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, env.Error)
	case response.StatusAuthError:
		return fmt.Errorf("%w: %s", domain.ErrLiveUnavailable, env.Error)
	}

	kind := domain.UpstreamErrorKind(env.Kind)
	if kind == "" {
		kind = domain.KindUpstream
	}
	status := env.UpstreamStatus
	if status == 0 {
		status = httpStatus
	}
	return &domain.UpstreamError{
		Kind:       kind,
		StatusCode: status,
		Op:         op,
		Err:        errors.New(env.Error),
	}
}

var _ domain.SearchGateway = (*Client)(nil)
