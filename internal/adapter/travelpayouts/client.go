// Package travelpayouts is the HTTP client for the upstream flight-pricing API:
// search creation, incremental result fetches and per-proposal click resolution.
package travelpayouts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/metrics"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/ratelimit"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/retry"
	"github.com/flight-search/live-search-gateway/internal/signature"
)

// Endpoint names used in logs, metrics and error ops.
const (
	EndpointStart       = "start"
	EndpointResultsGet  = "results_get"
	EndpointResultsPost = "results_post"
	EndpointClick       = "click"
)

const (
	maxBodyBytes  = 10 << 20
	maxLoggedBody = 512
)

// Config holds the upstream connection settings.
type Config struct {
	Token         string
	Marker        string
	APIBaseURL    string
	SearchBaseURL string
	RealHost      string
	Locale        string
	Market        string
	Timeout       time.Duration
	ResultsLimit  int
}

// DefaultConfig returns production endpoints without credentials.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:    "https://api.travelpayouts.com",
		SearchBaseURL: "https://tickets-api.travelpayouts.com",
		Locale:        "en",
		Market:        "us",
		Timeout:       15 * time.Second,
		ResultsLimit:  100,
	}
}

// Client talks to the upstream API. It is safe for concurrent use.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *ratelimit.KeyedLimiter
	metrics  *metrics.Metrics
	log      *logger.Logger
	extract  ClickExtractor
	retryCfg retry.Config
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter throttles calls per upstream host.
func WithLimiter(l *ratelimit.KeyedLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics records every upstream call.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClickExtractor replaces DefaultClickExtractor.
func WithClickExtractor(fn ClickExtractor) Option {
	return func(c *Client) { c.extract = fn }
}

// WithRetryConfig overrides the retry policy for result fetches.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// NewClient creates a Client. Empty config fields fall back to DefaultConfig.
func NewClient(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = def.APIBaseURL
	}
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = def.SearchBaseURL
	}
	if cfg.Locale == "" {
		cfg.Locale = def.Locale
	}
	if cfg.Market == "" {
		cfg.Market = def.Market
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ResultsLimit <= 0 {
		cfg.ResultsLimit = def.ResultsLimit
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.SearchBaseURL = strings.TrimRight(cfg.SearchBaseURL, "/")

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      logger.Nop(),
		extract:  DefaultClickExtractor,
		retryCfg: retry.PollFetchConfig,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSearch starts an upstream search. It is never retried.
func (c *Client) CreateSearch(ctx context.Context, req domain.SearchRequest) (*domain.CreateResult, error) {
	if req.UserIP != "" {
		ctx = domain.ContextWithClientIP(ctx, req.UserIP)
	}

	payload := c.startPayload(req)
	sig, err := signature.Sign(c.cfg.Token, c.cfg.Marker, payload)
	if err != nil {
		return nil, fmt.Errorf("sign start request: %w", err)
	}

	body, status, err := c.call(ctx, EndpointStart, http.MethodPost, c.cfg.SearchBaseURL+"/search/affiliate/start", payload, sig)
	if err != nil {
		return nil, err
	}

	var resp struct {
		SearchID   string `json:"search_id"`
		ResultsURL string `json:"results_url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.parseError(EndpointStart, status, body, err)
	}
	if resp.SearchID == "" {
		return nil, c.parseError(EndpointStart, status, body, errors.New("missing search_id"))
	}

	return &domain.CreateResult{SearchID: resp.SearchID, ResultsURL: resp.ResultsURL}, nil
}

// FetchResults returns the decoded result batch for a search. It tries the
// per-search GET endpoint first and falls back to the signed POST endpoint on
// the results host when the GET answers 404 or 405.
func (c *Client) FetchResults(ctx context.Context, searchID, resultsURL string, watermark int64) (any, error) {
	raw, err := c.fetchGet(ctx, searchID)
	if err == nil {
		return raw, nil
	}
	if st := domain.UpstreamStatus(err); st == http.StatusNotFound || st == http.StatusMethodNotAllowed {
		c.log.Debug().Str("search_id", searchID).Int("status", st).Msg("results GET unsupported, falling back to POST")
		return c.fetchPost(ctx, searchID, resultsURL, watermark)
	}
	return nil, err
}

func (c *Client) fetchGet(ctx context.Context, searchID string) (any, error) {
	endpoint := c.cfg.APIBaseURL + "/v1/flight_search_results?uuid=" + url.QueryEscape(searchID)
	return c.fetchWithRetry(ctx, EndpointResultsGet, http.MethodGet, endpoint, nil, "")
}

func (c *Client) fetchPost(ctx context.Context, searchID, resultsURL string, watermark int64) (any, error) {
	payload := resultsRequest{
		SearchID:            searchID,
		Limit:               c.cfg.ResultsLimit,
		LastUpdateTimestamp: watermark,
	}
	sig, err := signature.Sign(c.cfg.Token, c.cfg.Marker, payload)
	if err != nil {
		return nil, fmt.Errorf("sign results request: %w", err)
	}

	endpoint := c.resultsOrigin(resultsURL) + "/search/affiliate/results"
	return c.fetchWithRetry(ctx, EndpointResultsPost, http.MethodPost, endpoint, payload, sig)
}

// fetchWithRetry retries transport failures only. Status and parse errors are permanent.
func (c *Client) fetchWithRetry(ctx context.Context, endpoint, method, rawURL string, payload any, sig string) (any, error) {
	cfg := c.retryCfg.WithOnRetry(func(attempt int, err error) {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Int("attempt", attempt).Msg("retrying upstream fetch")
	})

	raw, err := retry.DoWithResult(ctx, func() (any, error) {
		body, status, err := c.call(ctx, endpoint, method, rawURL, payload, sig)
		if err != nil {
			var ue *domain.UpstreamError
			if errors.As(err, &ue) && ue.Kind == domain.KindNetwork {
				return nil, err
			}
			return nil, retry.NewPermanent(err)
		}
		v, err := decodeBody(body)
		if err != nil {
			return nil, retry.NewPermanent(c.parseError(endpoint, status, body, err))
		}
		return v, nil
	}, cfg)

	return raw, retry.Unwrap(err)
}

// ResolveClick asks the upstream for the final partner URL of one proposal.
func (c *Client) ResolveClick(ctx context.Context, searchID, resultsURL, proposalID string) (string, error) {
	endpoint := fmt.Sprintf("%s/searches/%s/clicks/%s",
		c.resultsOrigin(resultsURL), url.PathEscape(searchID), url.PathEscape(proposalID))

	body, status, err := c.call(ctx, EndpointClick, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return "", err
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", c.parseError(EndpointClick, status, body, err)
	}
	return c.extract(resp)
}

// call performs one HTTP exchange and maps the status code onto the domain
// error taxonomy. It returns the raw body of 2xx responses.
func (c *Client) call(ctx context.Context, endpoint, method, rawURL string, payload any, sig string) ([]byte, int, error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, hostOf(rawURL)); err != nil {
			c.metrics.ObserveUpstream(endpoint, metrics.OutcomeRateLimited, time.Since(start))
			return nil, 0, domain.NewNetworkError(endpoint, fmt.Errorf("rate limiter: %w", err))
		}
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	c.setHeaders(ctx, req, sig, payload != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, metrics.OutcomeNetwork, 0, start)
		return nil, 0, domain.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(endpoint, metrics.OutcomeNetwork, resp.StatusCode, start)
		return nil, resp.StatusCode, domain.NewNetworkError(endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.observe(endpoint, metrics.OutcomeAuth, resp.StatusCode, start)
		return nil, resp.StatusCode, fmt.Errorf("%w: %s returned %d", domain.ErrLiveUnavailable, endpoint, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(endpoint, metrics.OutcomeStatus, resp.StatusCode, start)
		return nil, resp.StatusCode, domain.NewUpstreamStatusError(endpoint, resp.StatusCode)
	}

	c.observe(endpoint, metrics.OutcomeOK, resp.StatusCode, start)
	return body, resp.StatusCode, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request, sig string, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("x-affiliate-user-id", c.cfg.Token)
		req.Header.Set("x-access-token", c.cfg.Token)
	}
	if c.cfg.RealHost != "" {
		req.Header.Set("x-real-host", c.cfg.RealHost)
	}
	if ip := domain.ClientIPFrom(ctx); ip != "" {
		req.Header.Set("x-user-ip", ip)
	}
	if sig != "" {
		req.Header.Set("x-signature", sig)
	}
}

func (c *Client) observe(endpoint, outcome string, status int, start time.Time) {
	elapsed := time.Since(start)
	c.metrics.ObserveUpstream(endpoint, outcome, elapsed)
	c.log.Debug().
		Str("endpoint", endpoint).
		Str("outcome", outcome).
		Int("status", status).
		Dur("latency", elapsed).
		Msg("upstream call")
}

func (c *Client) parseError(endpoint string, status int, body []byte, err error) error {
	c.metrics.ObserveUpstream(endpoint, metrics.OutcomeParse, 0)
	c.log.Warn().
		Err(err).
		Str("endpoint", endpoint).
		Int("status", status).
		Str("body", logger.Truncate(string(body), maxLoggedBody)).
		Msg("unparseable upstream response")
	return domain.NewParseError(endpoint, status, err)
}

// resultsOrigin returns scheme://host of resultsURL, or the search base URL
// when resultsURL is empty or not absolute.
func (c *Client) resultsOrigin(resultsURL string) string {
	u, err := url.Parse(resultsURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return c.cfg.SearchBaseURL
	}
	return u.Scheme + "://" + u.Host
}

func (c *Client) startPayload(req domain.SearchRequest) startRequest {
	dirs := []direction{{Origin: req.Origin, Destination: req.Destination, Date: req.DepartDate}}
	if req.IsRoundTrip() {
		dirs = append(dirs, direction{Origin: req.Destination, Destination: req.Origin, Date: req.ReturnDate})
	}

	return startRequest{
		Marker:       c.cfg.Marker,
		Locale:       c.cfg.Locale,
		CurrencyCode: strings.ToLower(req.Currency),
		MarketCode:   c.cfg.Market,
		SearchParams: searchParams{
			TripClass: req.TripClass.UpstreamCode(),
			Passengers: passengers{
				Adults:   req.Adults,
				Children: req.Children,
				Infants:  req.Infants,
			},
			Directions: dirs,
		},
	}
}

// decodeBody decodes a results body. An empty body means no new results yet.
func decodeBody(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}

var _ domain.UpstreamClient = (*Client)(nil)
