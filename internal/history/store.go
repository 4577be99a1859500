package history

import (
	"context"
	"time"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
)

// Row is one arrival in a stored snapshot.
type Row struct {
	GroupName   string    `json:"group"`
	Direction   string    `json:"direction"`
	Route       string    `json:"route"`
	ArrivesAt   time.Time `json:"arrives_at"`
	MinutesAway int       `json:"minutes_away"`
}

// Snapshot is one stored poll result.
type Snapshot struct {
	ID       string    `json:"id"`
	PolledAt time.Time `json:"polled_at"`
	Rows     []Row     `json:"arrivals"`
}

// Store persists arrival snapshots. SQLite is the default backend; Postgres
// takes over when DATABASE_URL is set.
type Store interface {
	SaveSnapshot(ctx context.Context, polledAt time.Time, boards []arrivals.Board) (string, error)
	RecentSnapshots(ctx context.Context, within time.Duration, limit int) ([]Snapshot, error)
	Cleanup(ctx context.Context, retention time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Open picks the backend from configuration.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		return ConnectPostgres(ctx, databaseURL)
	}
	return ConnectSQLite(ctx, sqlitePath)
}

// flatten turns boards into history rows, preserving board order.
func flatten(boards []arrivals.Board) []Row {
	var rows []Row
	for _, board := range boards {
		for _, arrival := range board.Uptown.Arrivals {
			rows = append(rows, Row{
				GroupName:   board.Group,
				Direction:   "uptown",
				Route:       arrival.Route,
				ArrivesAt:   arrival.ArrivesAt,
				MinutesAway: arrival.MinutesAway,
			})
		}
		for _, arrival := range board.Downtown.Arrivals {
			rows = append(rows, Row{
				GroupName:   board.Group,
				Direction:   "downtown",
				Route:       arrival.Route,
				ArrivesAt:   arrival.ArrivesAt,
				MinutesAway: arrival.MinutesAway,
			})
		}
	}
	return rows
}
