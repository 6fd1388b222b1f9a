// Package orchestrator drives one flight search at a time through the
// gateway's create and poll operations and accumulates the offers.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
)

// State is the lifecycle state of a search.
type State string

// Search states. Complete, Error and NoResults are terminal.
const (
	StateIdle      State = "idle"
	StateCreating  State = "creating"
	StatePolling   State = "polling"
	StateComplete  State = "complete"
	StateError     State = "error"
	StateNoResults State = "no_results"
)

// IsTerminal reports whether no further transitions happen without a new search.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateError || s == StateNoResults
}

// Default polling policy.
const (
	DefaultPollInterval = 1500 * time.Millisecond
	DefaultMaxAttempts  = 20
	DefaultTimeout      = 60 * time.Second

	// Progress climbs toward the ceiling by a fraction of the remaining gap
	// on every poll and only reaches 100 when the search is finalized.
	DefaultCreatingProgress = 5.0
	DefaultProgressCeiling  = 95.0
	DefaultProgressStep     = 0.15
)

// LiveUnavailableMessage is shown when the upstream rejects our credentials.
const LiveUnavailableMessage = "Live flight search is not available yet. Please try again later."

// Config contains the polling policy. Timeout and MaxAttempts are enforced independently.
type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
	Timeout      time.Duration

	CreatingProgress float64
	ProgressCeiling  float64
	ProgressStep     float64
}

// DefaultConfig returns the default polling policy.
func DefaultConfig() Config {
	return Config{
		PollInterval:     DefaultPollInterval,
		MaxAttempts:      DefaultMaxAttempts,
		Timeout:          DefaultTimeout,
		CreatingProgress: DefaultCreatingProgress,
		ProgressCeiling:  DefaultProgressCeiling,
		ProgressStep:     DefaultProgressStep,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CreatingProgress <= 0 {
		c.CreatingProgress = d.CreatingProgress
	}
	if c.ProgressCeiling <= 0 || c.ProgressCeiling >= 100 {
		c.ProgressCeiling = d.ProgressCeiling
	}
	if c.ProgressStep <= 0 || c.ProgressStep >= 1 {
		c.ProgressStep = d.ProgressStep
	}
	return c
}

// Snapshot is an immutable view of the orchestrator state.
type Snapshot struct {
	State    State
	SearchID string

	// Flights are the accumulated offers, cheapest first once complete.
	Flights  []domain.NormalizedFlight
	Progress float64
	Attempts int

	ErrorMessage    string
	LiveUnavailable bool
	IsDemo          bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithOnChange registers a callback invoked after every state change, in order.
// The callback must not call Start, Cancel or Run.
func WithOnChange(fn func(Snapshot)) Option {
	return func(o *Orchestrator) {
		o.onChange = fn
	}
}

// Orchestrator runs at most one search at a time. Starting a new search
// cancels and discards the previous one.
type Orchestrator struct {
	gateway  domain.SearchGateway
	cfg      Config
	log      *logger.Logger
	onChange func(Snapshot)

	mu         sync.Mutex
	snap       Snapshot
	generation uint64
	cancelRun  context.CancelFunc
	done       chan struct{}

	notifyMu sync.Mutex
	acc      *Accumulator
}

// New creates an idle orchestrator.
func New(gateway domain.SearchGateway, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway: gateway,
		cfg:     cfg.withDefaults(),
		snap:    Snapshot{State: StateIdle, Flights: []domain.NormalizedFlight{}},
		acc:     NewAccumulator(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	o.log = o.log.WithComponent("orchestrator")
	return o
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Start begins a new search in the background, cancelling any search in flight.
func (o *Orchestrator) Start(ctx context.Context, req domain.SearchRequest) {
	o.stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.cancelRun = cancel
	o.done = done
	o.acc.Reset()
	o.mu.Unlock()

	go o.run(runCtx, gen, req, done)
}

// Run starts a search and blocks until it reaches a terminal state or ctx ends.
func (o *Orchestrator) Run(ctx context.Context, req domain.SearchRequest) (Snapshot, error) {
	o.Start(ctx, req)
	return o.Wait(ctx)
}

// Wait blocks until the current search stops.
func (o *Orchestrator) Wait(ctx context.Context) (Snapshot, error) {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return o.Snapshot(), ctx.Err()
		}
	}
	return o.Snapshot(), nil
}

// Cancel stops the current search and returns the orchestrator to idle.
// No gateway call is issued after Cancel returns.
func (o *Orchestrator) Cancel() {
	if !o.stop() {
		return
	}

	o.mu.Lock()
	if o.snap.State == StateCreating || o.snap.State == StatePolling {
		o.snap = Snapshot{State: StateIdle, Flights: []domain.NormalizedFlight{}}
	}
	snap := o.snap
	o.mu.Unlock()

	o.notify(snap)
}

// stop cancels the running search and waits for its goroutine to exit.
// It reports whether a search was running.
func (o *Orchestrator) stop() bool {
	o.mu.Lock()
	cancel, done := o.cancelRun, o.done
	o.generation++
	o.cancelRun = nil
	o.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, req domain.SearchRequest, done chan struct{}) {
	defer close(done)

	searchCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	o.update(gen, func(s *Snapshot) {
		*s = Snapshot{State: StateCreating, Flights: []domain.NormalizedFlight{}, Progress: o.cfg.CreatingProgress}
	})

	created, err := o.gateway.Create(searchCtx, req)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		o.fail(gen, "", err)
		return
	}

	log := o.log.WithSearchID(created.SearchID)
	o.update(gen, func(s *Snapshot) {
		s.State = StatePolling
		s.SearchID = created.SearchID
		s.IsDemo = created.IsDemo
	})

	if len(created.Flights) > 0 {
		o.acc.Add(created.Flights)
	}
	if created.IsComplete {
		o.finalize(gen)
		return
	}

	watermark := int64(0)
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if !sleep(searchCtx, o.cfg.PollInterval) {
			break
		}

		res, err := o.gateway.Poll(searchCtx, domain.PollRequest{
			SearchID:            created.SearchID,
			ResultsURL:          created.ResultsURL,
			LastUpdateTimestamp: watermark,
		})
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			if isTerminal(err) {
				o.fail(gen, created.SearchID, err)
				return
			}
			if searchCtx.Err() != nil {
				break
			}
			log.Warn().Err(err).Int("attempt", attempt).Msg("poll attempt failed, continuing")
			o.update(gen, func(s *Snapshot) {
				s.Attempts = attempt
				s.Progress = o.advance(s.Progress)
			})
			continue
		}

		added := o.acc.Add(res.Flights)
		if res.LastUpdateTimestamp > watermark {
			watermark = res.LastUpdateTimestamp
		}
		flights := o.acc.Flights()
		o.update(gen, func(s *Snapshot) {
			s.Attempts = attempt
			s.Progress = o.advance(s.Progress)
			s.Flights = flights
		})
		log.Debug().
			Int("attempt", attempt).
			Int("received", len(res.Flights)).
			Int("added", added).
			Bool("complete", res.IsComplete).
			Msg("poll merged")

		if res.IsComplete {
			break
		}
	}

	if ctx.Err() != nil {
		return
	}
	o.finalize(gen)
}

func (o *Orchestrator) finalize(gen uint64) {
	flights := o.acc.Flights()
	o.update(gen, func(s *Snapshot) {
		s.Flights = flights
		if len(flights) == 0 {
			s.State = StateNoResults
		} else {
			s.State = StateComplete
		}
		s.Progress = 100
	})
}

func (o *Orchestrator) fail(gen uint64, searchID string, err error) {
	live := domain.IsLiveUnavailable(err)
	msg := err.Error()
	if live {
		msg = LiveUnavailableMessage
	}

	o.log.Warn().Err(err).Str("search_id", searchID).Bool("live_unavailable", live).Msg("search failed")
	o.update(gen, func(s *Snapshot) {
		s.State = StateError
		s.ErrorMessage = msg
		s.LiveUnavailable = live
	})
}

// update applies fn to the snapshot unless the search has been superseded.
func (o *Orchestrator) update(gen uint64, fn func(*Snapshot)) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	fn(&o.snap)
	snap := o.snap
	o.mu.Unlock()

	o.notify(snap)
}

func (o *Orchestrator) notify(snap Snapshot) {
	if o.onChange == nil {
		return
	}
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	o.onChange(snap)
}

func (o *Orchestrator) advance(p float64) float64 {
	return p + (o.cfg.ProgressCeiling-p)*o.cfg.ProgressStep
}

// isTerminal reports whether a poll error ends the search instead of being retried.
func isTerminal(err error) bool {
	return domain.IsLiveUnavailable(err) ||
		errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrSessionNotFound)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
