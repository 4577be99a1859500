package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/narulaskaran/pi-zero/internal/history"
	"github.com/narulaskaran/pi-zero/internal/render"
)

// IntervalScheduler yields the advisory refresh interval for a wall-clock
// instant. Implemented by refresh.Scheduler.
type IntervalScheduler interface {
	Interval(ctx context.Context, now time.Time) time.Duration
}

// HistoryStore is the slice of the history store the handlers read.
type HistoryStore interface {
	RecentSnapshots(ctx context.Context, within time.Duration, limit int) ([]history.Snapshot, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP surface over the latest poll snapshot: rendered frames
// for the e-reader, the refresh-rate endpoint it polls, and a JSON API.
type Server struct {
	holder    *Holder
	scheduler IntervalScheduler
	renderer  *render.Renderer
	store     HistoryStore
	now       func() time.Time
}

// New creates the HTTP layer.
func New(holder *Holder, scheduler IntervalScheduler, renderer *render.Renderer, store HistoryStore) *Server {
	return &Server{
		holder:    holder,
		scheduler: scheduler,
		renderer:  renderer,
		store:     store,
		now:       time.Now,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/refresh-rate", s.handleRefreshRate)
	r.Get("/display.bmp", s.handleDisplayBMP)
	r.Get("/display.png", s.handleDisplayPNG)
	r.Get("/api/arrivals", s.handleArrivals)
	r.Get("/api/history", s.handleHistory)
	return r
}
