package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/image/bmp"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
	"github.com/narulaskaran/pi-zero/internal/history"
	"github.com/narulaskaran/pi-zero/internal/render"
)

// fallbackRefreshSeconds is what the frame is told to sleep when the
// scheduler cannot be consulted.
const fallbackRefreshSeconds = 120

// RefreshRateResponse is the body the battery-powered frame polls before
// deciding how long to sleep.
type RefreshRateResponse struct {
	RefreshRate int    `json:"refresh_rate"`
	Error       string `json:"error,omitempty"`
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}

// ArrivalsResponse is the JSON response for GET /api/arrivals
type ArrivalsResponse struct {
	Boards   []arrivals.Board `json:"boards"`
	PolledAt time.Time        `json:"polled_at"`
}

// HistoryResponse is the JSON response for GET /api/history
type HistoryResponse struct {
	Snapshots []history.Snapshot `json:"snapshots"`
	Count     int                `json:"count"`
}

// handleRefreshRate handles GET /refresh-rate
func (s *Server) handleRefreshRate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.scheduler == nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(RefreshRateResponse{
			RefreshRate: fallbackRefreshSeconds,
			Error:       "scheduler not configured",
		})
		return
	}

	interval := s.scheduler.Interval(r.Context(), s.now())
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(RefreshRateResponse{RefreshRate: int(interval.Seconds())})
}

// handleDisplayBMP handles GET /display.bmp
// The frame is dithered to black and white before encoding; the panel can
// only show those two, and dithered gray survives as texture.
func (s *Server) handleDisplayBMP(w http.ResponseWriter, r *http.Request) {
	data := s.dashboardData(r.Context())
	if v, err := strconv.Atoi(r.URL.Query().Get("battery")); err == nil && v >= 0 && v <= 100 {
		data.Battery = &v
	}

	mono := ditherMono(s.renderer.Dashboard(data))
	w.Header().Set("Content-Type", "image/bmp")
	if err := bmp.Encode(w, mono); err != nil {
		log.Printf("Server: failed to encode bmp: %v", err)
	}
}

// handleDisplayPNG handles GET /display.png, the grayscale preview surface.
func (s *Server) handleDisplayPNG(w http.ResponseWriter, r *http.Request) {
	img := s.renderer.Dashboard(s.dashboardData(r.Context()))
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("Server: failed to encode png: %v", err)
	}
}

// handleHealth handles GET /health with a database connectivity check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "error",
			"database":  "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

// handleArrivals handles GET /api/arrivals
// Returns the latest poll snapshot for all configured stop groups.
func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snap := s.holder.Latest()
	if snap == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "no poll cycle has completed yet"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ArrivalsResponse{Boards: snap.Boards, PolledAt: snap.PolledAt})
}

// handleHistory handles GET /api/history?hours=N (default 24).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "hours must be a positive integer"})
			return
		}
		hours = parsed
	}

	snapshots, err := s.store.RecentSnapshots(r.Context(), time.Duration(hours)*time.Hour, 500)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "failed to read history"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HistoryResponse{Snapshots: snapshots, Count: len(snapshots)})
}

// dashboardData assembles the latest snapshot into frame content.
func (s *Server) dashboardData(ctx context.Context) render.DashboardData {
	data := render.DashboardData{Now: s.now()}
	if snap := s.holder.Latest(); snap != nil {
		if len(snap.Boards) > 0 {
			data.Board = &snap.Boards[0]
		}
		data.Weather = snap.Weather
		data.Quotes = snap.Quotes
	}
	if s.scheduler != nil {
		data.NextUpdate = data.Now.Add(s.scheduler.Interval(ctx, data.Now))
	}
	return data
}

// ditherMono reduces a grayscale frame to pure black and white with
// Floyd-Steinberg error diffusion.
func ditherMono(src *image.Gray) *image.Paletted {
	dst := image.NewPaletted(src.Bounds(), color.Palette{color.Black, color.White})
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, image.Point{})
	return dst
}
