package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"calendar-scraper/calurl"
	"calendar-scraper/config"
	"calendar-scraper/fetcher"
	"calendar-scraper/filter"
	"calendar-scraper/governor"
	"calendar-scraper/models"
	"calendar-scraper/notify"
	"calendar-scraper/overlay"
	"calendar-scraper/parser"
	"calendar-scraper/runner"
	"calendar-scraper/session"
	"calendar-scraper/writer"
)

func main() {
	// Parse command line arguments
	mode := flag.String("mode", "all", "Run mode: calendar (listing only), details (overlay extraction from a seed CSV), all")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	eventsPath := flag.String("events", "", "Seed CSV with the event list (details mode)")
	dateParam := flag.String("date-param", "", "Calendar date query override, e.g. day=oct22.2025")
	outDir := flag.String("out", "", "Output directory override")
	verbose := flag.Bool("verbose", false, "Verbose navigation logging")
	flag.Parse()

	// Load .env if present (Telegram credentials live there)
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := loadConfig(*configPath)
	if *dateParam != "" {
		cfg.Scraper.DateParam = *dateParam
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "calendar":
		runCalendar(ctx, cfg)
	case "details":
		if *eventsPath == "" {
			log.Fatalf("details mode requires -events\n")
		}
		events, err := readSeedCSV(*eventsPath)
		if err != nil {
			log.Fatalf("Failed to read seed CSV: %v\n", err)
		}
		runDetails(ctx, cfg, events, *verbose)
	case "all":
		events := runCalendar(ctx, cfg)
		runDetails(ctx, cfg, events, *verbose)
	default:
		log.Fatalf("Unknown mode %q (want calendar, details or all)\n", *mode)
	}
}

// loadConfig loads configuration, falling back to defaults when the file is
// absent.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Config file %s not found, using defaults\n", path)
			return config.DefaultConfig()
		}
		log.Fatalf("Failed to load config: %v\n", err)
	}
	return cfg
}

// runCalendar fetches the calendar listing for the configured date, filters
// it and writes the seed CSV.
func runCalendar(ctx context.Context, cfg *config.Config) []models.EventRef {
	url := calurl.Calendar(cfg.Scraper.BaseURL, cfg.Scraper.DateParam)
	log.Printf("Fetching calendar listing: %s\n", url)

	html, err := fetchListing(ctx, cfg, url)
	if err != nil {
		log.Fatalf("Failed to fetch calendar: %v\n", err)
	}

	events, err := parser.NewListingParser().Parse(html)
	if err != nil {
		log.Fatalf("Failed to parse calendar: %v\n", err)
	}
	log.Printf("Found %d events before filtering\n", len(events))

	filtered := filter.NewFilter(cfg).Apply(events)
	log.Printf("Found %d events after filtering\n", len(filtered))

	out := writer.NewWriter(cfg.Output.Dir, cfg.Scraper.DateParam, cfg.Output.DetailFormat)
	if err := out.WriteCalendar(filtered); err != nil {
		log.Fatalf("Failed to write calendar CSV: %v\n", err)
	}
	return filtered
}

// fetchListing fetches the calendar page with the configured engine. The
// colly engine is plain HTTP; rod drives a headless browser and is the
// default since the listing table is rendered client-side.
func fetchListing(ctx context.Context, cfg *config.Config, url string) (string, error) {
	if cfg.Scraper.Engine == config.EngineColly {
		return fetcher.NewCollyFetcher().Fetch(ctx, url)
	}

	provisioner, err := session.NewProvisioner()
	if err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}
	defer provisioner.Close()

	return fetcher.NewRodFetcher(provisioner, cfg.Scraper.NavigationTimeout).Fetch(ctx, url)
}

// runDetails opens the detail overlay for every seed event and writes the
// details, history and news CSVs.
func runDetails(ctx context.Context, cfg *config.Config, events []models.EventRef, verbose bool) {
	if len(events) == 0 {
		log.Println("No events to process")
		return
	}

	provisioner, err := session.NewProvisioner()
	if err != nil {
		log.Fatalf("Failed to start browser: %v\n", err)
	}
	defer provisioner.Close()

	navigator := &overlay.Navigator{
		BaseURL:   cfg.Scraper.BaseURL,
		DateParam: cfg.Scraper.DateParam,
		Timeout:   cfg.Scraper.NavigationTimeout,
		Verbose:   verbose,
	}
	opener := runner.NewBrowserOpener(provisioner, navigator)
	gov := governor.New(cfg.Pacing.EventPause, cfg.Pacing.BatchSize, cfg.Pacing.BatchPause, cfg.Pacing.Retries)
	out := writer.NewWriter(cfg.Output.Dir, cfg.Scraper.DateParam, cfg.Output.DetailFormat)

	r := runner.New(opener, gov, out)
	r.Verbose = verbose

	log.Printf("Processing %d events\n", len(events))
	runErr := r.Run(ctx, events)
	if runErr != nil {
		log.Printf("Run stopped early: %v\n", runErr)
	}

	// Partial output is still flushed after an aborted run
	if err := out.Flush(); err != nil {
		log.Fatalf("Failed to write output CSVs: %v\n", err)
	}

	outcomes := out.Outcomes()
	var success, partial, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case models.OutcomeSuccess:
			success++
		case models.OutcomePartialFailure:
			partial++
		case models.OutcomeSkipped:
			skipped++
		}
	}
	log.Printf("Done: %d events (%d success, %d partial, %d skipped)\n", len(outcomes), success, partial, skipped)

	notifier, err := notify.NewFromEnv()
	if err != nil {
		log.Printf("Warning: Telegram notifier disabled: %v\n", err)
	} else {
		notifier.SendRunSummary(cfg.Scraper.DateParam, outcomes)
	}

	if errors.Is(runErr, session.ErrEnvironment) {
		log.Fatalf("Browser environment fault, run aborted: %v\n", runErr)
	}
}

// readSeedCSV reads an event list previously written by calendar mode.
// Column order matches the calendar CSV: date, time, currency, impact,
// event, actual, forecast, previous, detail.
func readSeedCSV(path string) ([]models.EventRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed CSV: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("seed CSV %s has no event rows", path)
	}

	var events []models.EventRef
	for _, row := range rows[1:] {
		if len(row) < 9 {
			log.Printf("Warning: Skipping short seed row: %v\n", row)
			continue
		}
		events = append(events, models.EventRef{
			Date:     row[0],
			Time:     row[1],
			Currency: row[2],
			Impact:   row[3],
			Name:     row[4],
			Actual:   row[5],
			Forecast: row[6],
			Previous: row[7],
			DetailID: row[8],
		})
	}
	return events, nil
}
