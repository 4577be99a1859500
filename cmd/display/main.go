package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/narulaskaran/pi-zero/internal/config"
	"github.com/narulaskaran/pi-zero/internal/epd"
	"github.com/narulaskaran/pi-zero/internal/presence"
	"github.com/narulaskaran/pi-zero/internal/refresh"
	"github.com/narulaskaran/pi-zero/internal/render"
	"github.com/narulaskaran/pi-zero/internal/sysmon"
)

func main() {
	configPath := flag.String("config", "", "env file to load before reading configuration")
	once := flag.Bool("once", false, "paint a single frame and exit")
	clearPanel := flag.Bool("clear", false, "clear the panel and exit")
	interval := flag.Duration("interval", 0, "fixed repaint interval, overriding the presence schedule")
	flag.Parse()

	log.Println("Starting display daemon...")

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config file %s: %v", *configPath, err)
		}
	} else {
		_ = godotenv.Load()
	}
	cfg := config.Load()

	device, err := epd.OpenWaveshare()
	if err != nil {
		log.Fatalf("Failed to open e-paper display: %v", err)
	}
	screen := epd.NewScreen(device, epd.NewPolicy(cfg.MaxPartialRefreshes, !cfg.DisablePartial))
	if err := screen.Open(); err != nil {
		log.Fatalf("Failed to init e-paper display: %v", err)
	}

	// From here on, never os.Exit: the panel must be put to sleep on every
	// exit path. Failures log and return so the defers run.
	defer func() {
		if err := screen.Close(); err != nil {
			log.Printf("Display: sleep failed: %v", err)
		}
		if err := device.Halt(); err != nil {
			log.Printf("Display: halt failed: %v", err)
		}
		log.Println("Goodbye!")
	}()

	if *clearPanel {
		log.Println("Clearing panel...")
		if err := screen.Clear(); err != nil {
			log.Printf("Display: clear failed: %v", err)
		}
		return
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		log.Printf("Failed to load fonts: %v", err)
		return
	}

	detector := presence.NewDetector(cfg.PresenceMACs, cfg.PresenceCacheTTL)
	d := &daemon{
		screen:    screen,
		renderer:  renderer,
		monitor:   sysmon.NewMonitor(),
		detector:  detector,
		scheduler: refresh.NewScheduler(cfg, detector),
		override:  *interval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("Shutting down...")
		cancel()
	}()

	if *once {
		d.update(ctx, time.Now())
		return
	}

	log.Println("Display daemon running")
	d.run(ctx)
}

// daemon owns the station loop: sample the machine, render the stats frame,
// drive the panel.
type daemon struct {
	screen    *epd.Screen
	renderer  *render.Renderer
	monitor   *sysmon.Monitor
	detector  *presence.Detector
	scheduler *refresh.Scheduler
	override  time.Duration
}

// run wakes every second and repaints once the scheduled interval has
// passed. The interval is recomputed on every wake, so a presence change
// takes effect at the next repaint rather than the one after.
func (d *daemon) run(ctx context.Context) {
	now := time.Now()
	d.update(ctx, now)
	lastUpdate := now

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if now.Before(lastUpdate.Add(d.interval(ctx, now))) {
				continue
			}
			d.update(ctx, now)
			lastUpdate = now
		case <-ctx.Done():
			log.Println("Display loop stopped")
			return
		}
	}
}

func (d *daemon) interval(ctx context.Context, now time.Time) time.Duration {
	if d.override > 0 {
		return d.override
	}
	return d.scheduler.Interval(ctx, now)
}

// update paints one stats frame. A failed repaint gets one shot at showing
// an error frame; past that the panel keeps whatever it had.
func (d *daemon) update(ctx context.Context, now time.Time) {
	frame := d.renderer.Stats(render.StatsData{
		Now:                now,
		Stats:              d.monitor.Sample(ctx),
		PresenceConfigured: d.detector.Configured(),
		Present:            d.detector.IsAnyonePresent(ctx),
	})

	if err := d.screen.Render(frame, false); err != nil {
		log.Printf("Display: repaint failed: %v", err)
		if err := d.screen.Render(d.renderer.Error(err.Error()), true); err != nil {
			log.Printf("Display: error frame failed: %v", err)
		}
	}
}
