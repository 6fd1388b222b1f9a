// Package main is the entry point for the live flight search gateway.
//
//	@title						Live Flight Search Gateway API
//	@version					1.0.0
//	@description				Server-side gateway for an asynchronous flight meta-search API. It signs upstream requests, normalizes offers and resolves booking links.
//
//	@contact.name				API Support
//	@contact.url				https://github.com/flight-search/live-search-gateway/issues
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@schemes					http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	// Import generated docs for swagger
	_ "github.com/flight-search/live-search-gateway/docs"

	flighthttp "github.com/flight-search/live-search-gateway/internal/adapter/http"
	"github.com/flight-search/live-search-gateway/internal/adapter/http/middleware"
	"github.com/flight-search/live-search-gateway/internal/adapter/travelpayouts"
	"github.com/flight-search/live-search-gateway/internal/config"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/metrics"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/ratelimit"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/timeutil"
	"github.com/flight-search/live-search-gateway/internal/redirect"
	"github.com/flight-search/live-search-gateway/internal/session"
	"github.com/flight-search/live-search-gateway/internal/usecase"
)

const (
	shutdownTimeout  = 10 * time.Second
	janitorInterval  = time.Minute
	limiterIdleAfter = 10 * time.Minute
	metricsNamespace = "flight_gateway"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg)

	log.Info().
		Str("env", cfg.App.Env).
		Str("mode", cfg.Mode()).
		Int("port", cfg.Server.Port).
		Str("session_store", cfg.Session.Store).
		Msg("Configuration loaded")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metricsNamespace, reg)

	clock := timeutil.NewRealClock()
	sessions, err := newSessionStore(ctx, cfg, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer sessions.Close()

	upstreamLimiter := ratelimit.NewKeyedLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.Upstream.RateLimitRPS,
		BurstSize:         cfg.Upstream.RateLimitBurst,
	})
	upstream := travelpayouts.NewClient(travelpayouts.Config{
		Token:         cfg.Upstream.Token,
		Marker:        cfg.Upstream.Marker,
		APIBaseURL:    cfg.Upstream.APIBaseURL,
		SearchBaseURL: cfg.Upstream.SearchBaseURL,
		RealHost:      cfg.Upstream.RealHost,
		Locale:        cfg.Upstream.Locale,
		Market:        cfg.Upstream.Market,
		Timeout:       cfg.Upstream.Timeout,
		ResultsLimit:  cfg.Gateway.PollResultsLimit,
	},
		travelpayouts.WithLimiter(upstreamLimiter),
		travelpayouts.WithMetrics(m),
		travelpayouts.WithLogger(log.WithComponent("travelpayouts")),
	)

	validator := redirect.NewValidator(cfg.Redirect.AggregatorDomains...)
	gateway := usecase.NewSearchGateway(usecase.Deps{
		Upstream:  upstream,
		Sessions:  sessions,
		Validator: validator,
		Metrics:   m,
		Logger:    log.WithComponent("gateway"),
		Clock:     clock,
	}, &usecase.Config{
		LiveEnabled:         cfg.Upstream.LiveEnabled,
		MaxClickResolutions: cfg.Gateway.MaxClickResolutions,
		ClickTimeout:        cfg.Gateway.ClickTimeout,
		DemoOffers:          cfg.Gateway.DemoOffers,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupWithConfig(e, log.Logger, middleware.RecoveryConfig{
		DisablePrintStack: cfg.IsProduction(),
	})

	var inboundLimiter *ratelimit.KeyedLimiter
	var routeMiddleware []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		inboundLimiter = ratelimit.NewKeyedLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RPS,
			BurstSize:         cfg.RateLimit.Burst,
		})
		routeMiddleware = append(routeMiddleware, middleware.RateLimit(inboundLimiter, log.Logger))
	}

	handler := flighthttp.NewFlightHandler(gateway, validator, cfg.Mode(), log.WithComponent("http"))
	flighthttp.RegisterRoutes(e, handler, m.Handler(), routeMiddleware...)

	go runJanitor(ctx, log, sessions, upstreamLimiter, inboundLimiter)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info().Str("address", addr).Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	gracefulShutdown(e, log, stop)
}

// setupLogger builds the service logger from config and installs it globally.
func setupLogger(cfg *config.Config) *logger.Logger {
	lcfg := logger.DefaultConfig()
	lcfg.Level = cfg.Logging.Level
	lcfg.Format = cfg.Logging.Format
	lcfg.EnableCaller = cfg.IsDevelopment()

	l := logger.New(lcfg)
	logger.SetGlobal(l)
	return l
}

func newSessionStore(ctx context.Context, cfg *config.Config, clock timeutil.Clock) (session.Store, error) {
	if cfg.Session.Store == config.SessionStoreRedis {
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
			TTL:      cfg.Session.TTL,
		})
	}
	return session.NewMemoryStore(cfg.Session.TTL, clock), nil
}

// runJanitor evicts expired in-memory sessions and idle limiters until ctx is done.
// Redis expires its own keys.
func runJanitor(ctx context.Context, log *logger.Logger, sessions session.Store, limiters ...*ratelimit.KeyedLimiter) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	mem, _ := sessions.(*session.MemoryStore)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := 0
			if mem != nil {
				evicted = mem.Sweep()
			}
			pruned := 0
			for _, l := range limiters {
				if l != nil {
					pruned += l.Prune(limiterIdleAfter)
				}
			}
			if evicted > 0 || pruned > 0 {
				log.Debug().Int("sessions_evicted", evicted).Int("limiters_pruned", pruned).Msg("Janitor pass")
			}
		}
	}
}

// gracefulShutdown handles graceful server shutdown on interrupt signals.
func gracefulShutdown(e *echo.Echo, log *logger.Logger, stop context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
