package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
	"github.com/narulaskaran/pi-zero/internal/finance"
	"github.com/narulaskaran/pi-zero/internal/render"
	"github.com/narulaskaran/pi-zero/internal/sysmon"
	"github.com/narulaskaran/pi-zero/internal/weather"
)

// Renders every frame with sample data and writes them as PNGs, so layout
// changes can be checked without a panel or a network connection.
func main() {
	outputDir := flag.String("output", ".", "directory to write preview frames into")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load fonts: %v", err)
	}

	now := time.Now()
	frames := []struct {
		name string
		img  image.Image
	}{
		{"dashboard.png", renderer.Dashboard(sampleDashboard(now))},
		{"stats.png", renderer.Stats(sampleStats(now))},
		{"error.png", renderer.Error("failed to fetch arrivals: connection refused")},
	}

	for _, frame := range frames {
		path := filepath.Join(*outputDir, frame.name)
		if err := writePNG(path, frame.img); err != nil {
			log.Fatalf("Failed to write %s: %v", frame.name, err)
		}
		b := frame.img.Bounds()
		log.Printf("Wrote %s (%dx%d)", path, b.Dx(), b.Dy())
	}

	log.Println("Preview complete!")
}

func sampleDashboard(now time.Time) render.DashboardData {
	battery := 82
	daily := make([]weather.Day, 7)
	codes := []int{0, 2, 3, 61, 0, 71, 95}
	for i := range daily {
		daily[i] = weather.Day{
			Date:  now.AddDate(0, 0, i),
			Code:  codes[i],
			HighF: 70 + float64(i),
			LowF:  55 + float64(i),
		}
	}

	return render.DashboardData{
		Now: now,
		Board: &arrivals.Board{
			Group: "96 St",
			Uptown: arrivals.DirectionList{
				Label: "Uptown (Manhattan)",
				Arrivals: []arrivals.Arrival{
					{Route: "A", MinutesAway: 0},
					{Route: "C", MinutesAway: 4},
					{Route: "A", MinutesAway: 9},
					{Route: "B", MinutesAway: 15},
				},
			},
			Downtown: arrivals.DirectionList{
				Label: "Downtown (Brooklyn)",
				Arrivals: []arrivals.Arrival{
					{Route: "C", MinutesAway: 2},
					{Route: "A", MinutesAway: 6},
					{Route: "B", MinutesAway: 11},
				},
			},
		},
		Weather: &weather.Report{
			Current: weather.Current{TemperatureF: 72, Code: 2},
			Daily:   daily,
		},
		Quotes: []finance.Quote{
			{Symbol: "^GSPC", Label: "S&P 500", Price: 6411.37, ChangePercent: 0.42},
			{Symbol: "BTC-USD", Label: "BTC", Price: 112840, ChangePercent: -1.73},
			{Symbol: "GC=F", Label: "GOLD", Price: 3418.5, ChangePercent: 0.11},
		},
		Battery:    &battery,
		NextUpdate: now.Add(60 * time.Second),
	}
}

func sampleStats(now time.Time) render.StatsData {
	return render.StatsData{
		Now: now,
		Stats: sysmon.Stats{
			CPUTempC:      47.2,
			CPUTempOK:     true,
			RAMPercent:    38,
			RAMUsedMB:     163,
			RAMTotalMB:    428,
			RAMOK:         true,
			WiFiSSID:      "homelan-iot",
			WiFiSignalDBm: -58,
			WiFiOK:        true,
		},
		PresenceConfigured: true,
		Present:            true,
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
