// Command flightsearch runs one live search against a gateway and prints
// progress followed by the accumulated offers, cheapest first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/flight-search/live-search-gateway/internal/client"
	"github.com/flight-search/live-search-gateway/internal/config"
	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/logger"
	"github.com/flight-search/live-search-gateway/internal/normalizer"
	"github.com/flight-search/live-search-gateway/internal/orchestrator"
)

type options struct {
	gatewayURL string
	request    domain.SearchRequest
	poll       config.PollConfig
	limit      int
	asJSON     bool
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	lcfg := logger.DefaultConfig()
	lcfg.Format = "console"
	lcfg.Level = "warn"
	if opts.verbose {
		lcfg.Level = "debug"
	}
	log := logger.NewWithOutput(lcfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := client.New(opts.gatewayURL, client.WithLogger(log))
	orch := orchestrator.New(gw, orchestrator.Config{
		PollInterval: opts.poll.Interval,
		MaxAttempts:  opts.poll.MaxAttempts,
		Timeout:      opts.poll.Timeout,
	},
		orchestrator.WithLogger(log),
		orchestrator.WithOnChange(func(s orchestrator.Snapshot) {
			if !opts.asJSON {
				fmt.Fprintf(stderr, "\r%-10s %3.0f%%  offers: %d  polls: %d", s.State, s.Progress, len(s.Flights), s.Attempts)
			}
		}),
	)

	snap, err := orch.Run(ctx, opts.request)
	if !opts.asJSON {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		orch.Cancel()
		fmt.Fprintln(stderr, "search interrupted:", err)
		return 130
	}

	switch snap.State {
	case orchestrator.StateError:
		fmt.Fprintln(stderr, "search failed:", snap.ErrorMessage)
		return 1
	case orchestrator.StateNoResults:
		fmt.Fprintln(stderr, "no flights found")
		return 0
	}

	flights := snap.Flights
	if opts.limit > 0 && len(flights) > opts.limit {
		flights = flights[:opts.limit]
	}
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(flights); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}
	printTable(stdout, flights, snap.IsDemo)
	printStats(stdout, normalizer.GetFlightStats(snap.Flights), snap.Flights[0].Currency)
	return 0
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	// POLL_* from the environment seed the flag defaults.
	_ = godotenv.Load()
	var poll config.PollConfig
	if err := env.Parse(&poll); err != nil {
		return nil, fmt.Errorf("parse poll config: %w", err)
	}

	opts := &options{poll: poll}
	var class string

	fs := flag.NewFlagSet("flightsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.gatewayURL, "gateway", envOr("GATEWAY_URL", "http://localhost:8080"), "gateway base URL")
	fs.StringVar(&opts.request.Origin, "from", "", "origin IATA code (required)")
	fs.StringVar(&opts.request.Destination, "to", "", "destination IATA code (required)")
	fs.StringVar(&opts.request.DepartDate, "depart", "", "departure date YYYY-MM-DD (required)")
	fs.StringVar(&opts.request.ReturnDate, "return", "", "return date YYYY-MM-DD")
	fs.IntVar(&opts.request.Adults, "adults", 1, "adult passengers")
	fs.IntVar(&opts.request.Children, "children", 0, "child passengers")
	fs.IntVar(&opts.request.Infants, "infants", 0, "infant passengers")
	fs.StringVar(&class, "class", "economy", "economy, premium_economy, business or first")
	fs.StringVar(&opts.request.Currency, "currency", "USD", "ISO currency code")
	fs.DurationVar(&opts.poll.Interval, "interval", poll.Interval, "delay between polls")
	fs.IntVar(&opts.poll.MaxAttempts, "attempts", poll.MaxAttempts, "maximum polls")
	fs.DurationVar(&opts.poll.Timeout, "timeout", poll.Timeout, "overall search timeout")
	fs.IntVar(&opts.limit, "limit", 20, "print at most this many offers (0 for all)")
	fs.BoolVar(&opts.asJSON, "json", false, "print offers as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.request.TripClass = domain.ParseCabinClass(class)
	opts.request = opts.request.WithDefaults()
	if err := opts.request.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func printTable(w io.Writer, flights []domain.NormalizedFlight, demo bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRICE\tAIRLINE\tFLIGHT\tDEPART\tARRIVE\tDURATION\tSTOPS\tBOOKING")
	for _, f := range flights {
		booking := f.BookingURL
		if !f.HasValidBookingURL {
			booking = "-"
		}
		fmt.Fprintf(tw, "%d %s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			f.Price, f.Currency, f.AirlineName, f.FlightNumber,
			f.DepartureTime, f.ArrivalTime, f.Duration, f.Stops, booking)
	}
	tw.Flush()
	if demo {
		fmt.Fprintln(w, "(demo results, not bookable)")
	}
}

func printStats(w io.Writer, st normalizer.FlightStats, currency string) {
	fmt.Fprintf(w, "\n%d offers from %d airlines, %d direct, %d bookable. Price %d-%d %s (avg %d)\n",
		st.Count, len(st.Airlines), st.DirectCount, st.BookableCount, st.MinPrice, st.MaxPrice, currency, st.AvgPrice)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
