// Package usecase contains the search gateway: the server-side owner of the
// upstream search lifecycle, demo fallback and booking URL resolution.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/flight-search/live-search-gateway/internal/demo"
	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/metrics"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/timeutil"
	"github.com/flight-search/live-search-gateway/internal/normalizer"
	"github.com/flight-search/live-search-gateway/internal/redirect"
	"github.com/flight-search/live-search-gateway/internal/session"
)

// Default gateway policy values.
const (
	DefaultMaxClickResolutions = 10
	DefaultClickTimeout        = 5 * time.Second
	DefaultDemoOffers          = 12
)

// Reasons an offer is dropped before reaching the client, besides the
// redirect validator's own reasons.
const (
	DropClickFailed = "click_failed"
	DropOverCap     = "over_cap"
)

// Config contains gateway policy.
type Config struct {
	// LiveEnabled selects the upstream API; false serves demo offers only.
	LiveEnabled bool

	// MaxClickResolutions caps both the offers returned per poll and the
	// number of concurrent click calls.
	MaxClickResolutions int

	// ClickTimeout bounds each click resolution.
	ClickTimeout time.Duration

	// DemoOffers is the size of the synthetic batch.
	DemoOffers int
}

// DefaultConfig returns demo mode with default limits.
func DefaultConfig() Config {
	return Config{
		MaxClickResolutions: DefaultMaxClickResolutions,
		ClickTimeout:        DefaultClickTimeout,
		DemoOffers:          DefaultDemoOffers,
	}
}

// Deps are the collaborators of the gateway. Only Upstream is required in live mode.
type Deps struct {
	Upstream  domain.UpstreamClient
	Sessions  session.Store
	Validator *redirect.Validator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Clock     timeutil.Clock
}

// searchGateway implements domain.SearchGateway.
type searchGateway struct {
	upstream  domain.UpstreamClient
	sessions  session.Store
	validator *redirect.Validator
	demo      *demo.Generator
	metrics   *metrics.Metrics
	log       *logger.Logger
	clock     timeutil.Clock
	cfg       Config
}

// NewSearchGateway creates the gateway. A nil config uses DefaultConfig.
func NewSearchGateway(deps Deps, config *Config) domain.SearchGateway {
	cfg := DefaultConfig()
	if config != nil {
		cfg.LiveEnabled = config.LiveEnabled
		if config.MaxClickResolutions > 0 {
			cfg.MaxClickResolutions = config.MaxClickResolutions
		}
		if config.ClickTimeout > 0 {
			cfg.ClickTimeout = config.ClickTimeout
		}
		if config.DemoOffers > 0 {
			cfg.DemoOffers = config.DemoOffers
		}
	}

	g := &searchGateway{
		upstream:  deps.Upstream,
		sessions:  deps.Sessions,
		validator: deps.Validator,
		demo:      demo.NewGenerator(cfg.DemoOffers),
		metrics:   deps.Metrics,
		log:       deps.Logger,
		clock:     deps.Clock,
		cfg:       cfg,
	}
	if g.sessions == nil {
		g.sessions = session.NewMemoryStore(session.DefaultTTL, deps.Clock)
	}
	if g.validator == nil {
		g.validator = redirect.NewValidator()
	}
	if g.log == nil {
		g.log = logger.Nop()
	}
	if g.clock == nil {
		g.clock = timeutil.NewRealClock()
	}
	return g
}

func (g *searchGateway) live() bool {
	return g.cfg.LiveEnabled && g.upstream != nil
}

// Create starts a search, or synthesizes a complete demo batch when live mode is off.
func (g *searchGateway) Create(ctx context.Context, req domain.SearchRequest) (*domain.CreateResult, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !g.live() {
		return g.createDemo(ctx, req)
	}

	res, err := g.upstream.CreateSearch(ctx, req)
	if err != nil {
		g.log.Warn().Err(err).
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Bool("live_unavailable", domain.IsLiveUnavailable(err)).
			Msg("create search failed")
		return nil, err
	}
	g.metrics.SearchCreated("live")

	g.saveSession(ctx, domain.SearchSession{
		SearchID:   res.SearchID,
		ResultsURL: res.ResultsURL,
		Request:    req,
		CreatedAt:  g.clock.Now(),
	})

	g.log.WithSearchID(res.SearchID).Info().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Str("depart_date", req.DepartDate).
		Bool("round_trip", req.IsRoundTrip()).
		Msg("search created")

	return &domain.CreateResult{SearchID: res.SearchID, ResultsURL: res.ResultsURL}, nil
}

func (g *searchGateway) createDemo(ctx context.Context, req domain.SearchRequest) (*domain.CreateResult, error) {
	id := g.demo.SearchID(req)
	flights := g.demo.Flights(id, req)
	g.metrics.SearchCreated("demo")

	g.saveSession(ctx, domain.SearchSession{
		SearchID:  id,
		Request:   req,
		IsDemo:    true,
		CreatedAt: g.clock.Now(),
	})

	return &domain.CreateResult{
		SearchID:   id,
		IsDemo:     true,
		IsComplete: true,
		Flights:    flights,
	}, nil
}

// Poll fetches one incremental batch. Only offers whose booking URL resolved
// and passed the redirect validator are returned.
func (g *searchGateway) Poll(ctx context.Context, req domain.PollRequest) (*domain.PollResult, error) {
	if req.SearchID == "" {
		return nil, fmt.Errorf("%w: searchId is required", domain.ErrInvalidRequest)
	}
	start := time.Now()

	sess, err := g.sessions.Get(ctx, req.SearchID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		g.log.Warn().Err(err).Str("search_id", req.SearchID).Msg("session lookup failed")
	}
	if err != nil {
		sess = nil
	}

	if !g.live() || demo.IsDemoSearchID(req.SearchID) {
		return g.pollDemo(req, sess)
	}

	resultsURL := req.ResultsURL
	if resultsURL == "" && sess != nil {
		resultsURL = sess.ResultsURL
	}
	if resultsURL == "" {
		return nil, fmt.Errorf("%w: no results url for search %s", domain.ErrSessionNotFound, req.SearchID)
	}

	raw, err := g.upstream.FetchResults(ctx, req.SearchID, resultsURL, req.LastUpdateTimestamp)
	if err != nil {
		g.log.WithSearchID(req.SearchID).Warn().Err(err).Msg("fetch results failed")
		return nil, err
	}

	batch := normalizer.ExtractBatch(raw)
	candidates := g.cheapestPerTicket(batch, req.SearchID, resultsURL, sess)

	dropped := 0
	if len(candidates) > g.cfg.MaxClickResolutions {
		over := len(candidates) - g.cfg.MaxClickResolutions
		dropped += over
		for i := 0; i < over; i++ {
			g.metrics.OfferDropped(DropOverCap)
		}
		candidates = candidates[:g.cfg.MaxClickResolutions]
	}

	flights := g.resolveBookingURLs(ctx, candidates)
	dropped += len(candidates) - len(flights)

	watermark := req.LastUpdateTimestamp
	if batch.HasWatermark && batch.LastUpdateTimestamp > watermark {
		watermark = batch.LastUpdateTimestamp
	}
	if sess != nil {
		if err := g.sessions.UpdateWatermark(ctx, req.SearchID, watermark); err != nil {
			g.log.Debug().Err(err).Str("search_id", req.SearchID).Msg("watermark not stored")
		}
	}

	result := domain.NewPollResult(flights, batch.IsComplete, watermark)
	result.Dropped = dropped

	elapsed := time.Since(start)
	g.metrics.PollServed(len(flights), elapsed)
	g.log.WithSearchID(req.SearchID).Debug().
		Int("tickets", batch.TicketCount()).
		Int("returned", len(flights)).
		Int("dropped", dropped).
		Bool("complete", batch.IsComplete).
		Int64("watermark", watermark).
		Dur("elapsed", elapsed).
		Msg("poll served")

	return result, nil
}

// A demo search whose session has expired still polls as an empty, complete
// batch since the full result set was already returned by create.
func (g *searchGateway) pollDemo(req domain.PollRequest, sess *domain.SearchSession) (*domain.PollResult, error) {
	if sess == nil || !sess.IsDemo {
		if !demo.IsDemoSearchID(req.SearchID) {
			return nil, fmt.Errorf("%w: unknown demo search %s", domain.ErrSessionNotFound, req.SearchID)
		}
		result := domain.NewPollResult(nil, true, req.LastUpdateTimestamp)
		result.IsDemo = true
		return result, nil
	}

	result := domain.NewPollResult(g.demo.Flights(req.SearchID, sess.Request), true, req.LastUpdateTimestamp)
	result.IsDemo = true
	return result, nil
}

// cheapestPerTicket normalizes every ticket, keeps its cheapest bookable
// proposal and returns the survivors by ascending price.
func (g *searchGateway) cheapestPerTicket(batch normalizer.RawBatch, searchID, resultsURL string, sess *domain.SearchSession) []domain.NormalizedFlight {
	tc := normalizer.TicketContext{
		SearchID:   searchID,
		ResultsURL: resultsURL,
		Airlines:   batch.Airlines,
	}
	if sess != nil {
		tc.DefaultOrigin = sess.Request.Origin
		tc.DefaultDestination = sess.Request.Destination
		tc.Currency = sess.Request.Currency
	}

	var out []domain.NormalizedFlight
	for _, group := range batch.Groups {
		for _, ticket := range group.Tickets {
			cheapest, ok := normalizer.Cheapest(normalizer.NormalizeTicket(ticket, group.Legs, tc))
			if ok && cheapest.HasValidBookingURL {
				out = append(out, cheapest)
			}
		}
	}
	return normalizer.SortFlights(out, domain.SortByPrice)
}

// resolveBookingURLs resolves click URLs concurrently, bounded by the
// semaphore, and keeps input order for the offers that survive.
func (g *searchGateway) resolveBookingURLs(ctx context.Context, candidates []domain.NormalizedFlight) []domain.NormalizedFlight {
	resolved := make([]*domain.NormalizedFlight, len(candidates))
	sem := semaphore.NewWeighted(int64(g.cfg.MaxClickResolutions))
	var wg sync.WaitGroup

	for i, f := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, f domain.NormalizedFlight) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					g.log.Error().Interface("panic", r).Str("proposal_id", f.ProposalID).Msg("click resolution panicked")
					g.metrics.OfferDropped(DropClickFailed)
				}
			}()

			bookingURL, reason := g.resolveOne(ctx, f)
			if reason != "" {
				g.metrics.OfferDropped(reason)
				g.log.Debug().
					Str("search_id", f.SearchID).
					Str("proposal_id", f.ProposalID).
					Str("reason", reason).
					Msg("offer dropped")
				return
			}
			f.BookingURL = bookingURL
			resolved[i] = &f
		}(i, f)
	}
	wg.Wait()

	out := make([]domain.NormalizedFlight, 0, len(candidates))
	for _, f := range resolved {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// resolveOne returns the validated booking URL, or the reason the offer is dropped.
func (g *searchGateway) resolveOne(ctx context.Context, f domain.NormalizedFlight) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ClickTimeout)
	defer cancel()

	bookingURL, err := g.upstream.ResolveClick(ctx, f.SearchID, f.ResultsURL, f.ProposalID)
	if err != nil {
		return "", DropClickFailed
	}
	if res := g.validator.Validate(bookingURL); !res.Valid {
		return "", res.Reason
	}
	return bookingURL, ""
}

func (g *searchGateway) saveSession(ctx context.Context, s domain.SearchSession) {
	if err := g.sessions.Save(ctx, s); err != nil {
		g.log.Warn().Err(err).Str("search_id", s.SearchID).Msg("session not saved")
	}
}
