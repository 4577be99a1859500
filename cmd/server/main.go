package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
	"github.com/narulaskaran/pi-zero/internal/config"
	"github.com/narulaskaran/pi-zero/internal/finance"
	"github.com/narulaskaran/pi-zero/internal/history"
	"github.com/narulaskaran/pi-zero/internal/mta"
	"github.com/narulaskaran/pi-zero/internal/presence"
	"github.com/narulaskaran/pi-zero/internal/refresh"
	"github.com/narulaskaran/pi-zero/internal/render"
	"github.com/narulaskaran/pi-zero/internal/server"
	"github.com/narulaskaran/pi-zero/internal/weather"
)

func main() {
	log.Println("Starting dashboard server...")

	// Load .env from the working directory; real environment wins for
	// anything already set
	_ = godotenv.Load()

	cfg := config.Load()
	log.Printf("Config loaded: poll_interval=%v, retention=%dh", cfg.PollInterval, cfg.RetentionHours)

	// ═══════════════════════════════════════════════════════
	// PHASE 1: Station Configuration
	// ═══════════════════════════════════════════════════════
	groups, err := config.LoadStations(cfg.StationsPath)
	if err != nil {
		log.Fatalf("Failed to load stations config: %v", err)
	}
	log.Printf("Loaded %d stop groups from %s", len(groups), cfg.StationsPath)

	// ═══════════════════════════════════════════════════════
	// PHASE 2: Initialize History Store
	// ═══════════════════════════════════════════════════════
	store, err := history.Open(context.Background(), cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer store.Close()
	log.Println("History store initialized")

	// ═══════════════════════════════════════════════════════
	// PHASE 3: Initialize Clients
	// ═══════════════════════════════════════════════════════
	feedClient := mta.NewClient(cfg.FeedTimeout, cfg.MTAAPIKey)
	detector := presence.NewDetector(cfg.PresenceMACs, cfg.PresenceCacheTTL)
	scheduler := refresh.NewScheduler(cfg, detector)

	renderer, err := render.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load fonts: %v", err)
	}

	holder := &server.Holder{}
	p := &poller{
		aggregator: arrivals.NewAggregator(feedClient),
		groups:     groups,
		weather:    weather.NewClient(cfg.WeatherLat, cfg.WeatherLon),
		finance:    finance.NewClient(),
		tickers:    cfg.FinanceTickers,
		holder:     holder,
		store:      store,
	}

	// ═══════════════════════════════════════════════════════
	// PHASE 4: Start Polling Loops
	// ═══════════════════════════════════════════════════════
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial poll immediately
	log.Println("Running initial poll...")
	p.pollOnce(ctx)

	// Arrivals polling goroutine
	go func() {
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.pollOnce(ctx)
			case <-ctx.Done():
				log.Println("Polling loop stopped")
				return
			}
		}
	}()

	// Hourly retention cleanup goroutine
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		retention := time.Duration(cfg.RetentionHours) * time.Hour
		for {
			select {
			case <-ticker.C:
				if err := store.Cleanup(ctx, retention); err != nil {
					log.Printf("Cleanup error: %v", err)
				}
			case <-ctx.Done():
				log.Println("Cleanup loop stopped")
				return
			}
		}
	}()

	// ═══════════════════════════════════════════════════════
	// PHASE 5: Start HTTP Server
	// ═══════════════════════════════════════════════════════
	srv := server.New(holder, scheduler, renderer, store)
	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: srv.Router(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	log.Printf("Dashboard server running on :%d", cfg.Port)
	log.Println("Display endpoints:")
	log.Println("  GET /refresh-rate")
	log.Println("  GET /display.bmp")
	log.Println("  GET /display.png")
	log.Println("API endpoints:")
	log.Println("  GET /api/arrivals")
	log.Println("  GET /api/history")
	log.Println("Health:")
	log.Println("  GET /health (with database check)")

	// ═══════════════════════════════════════════════════════
	// PHASE 6: Graceful Shutdown
	// ═══════════════════════════════════════════════════════
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Goodbye!")
}

// poller runs one poll cycle: aggregate arrivals, refresh the weather and
// finance caches, publish the snapshot, and persist it.
type poller struct {
	aggregator *arrivals.Aggregator
	groups     []config.StopGroup
	weather    *weather.Client
	finance    *finance.Client
	tickers    []string
	holder     *server.Holder
	store      history.Store
}

func (p *poller) pollOnce(ctx context.Context) {
	now := time.Now()
	boards := p.aggregator.Aggregate(ctx, p.groups, now)

	snap := &server.Snapshot{
		Boards:   boards,
		PolledAt: now,
	}

	report, err := p.weather.Fetch(ctx)
	if err != nil {
		log.Printf("Weather fetch error: %v", err)
		// Keep showing the last report through an outage
		if last := p.holder.Latest(); last != nil {
			report = last.Weather
		}
	}
	snap.Weather = report
	snap.Quotes = p.finance.Quotes(ctx, p.tickers)

	p.holder.Publish(snap)

	if _, err := p.store.SaveSnapshot(ctx, now, boards); err != nil {
		log.Printf("Snapshot save error: %v", err)
	}
}
