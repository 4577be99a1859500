package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS arrival_snapshots (
    snapshot_id   TEXT PRIMARY KEY,
    polled_at_utc TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_arrival_snapshots_polled_at
    ON arrival_snapshots (polled_at_utc);

CREATE TABLE IF NOT EXISTS arrival_history (
    id             BIGSERIAL PRIMARY KEY,
    snapshot_id    TEXT NOT NULL REFERENCES arrival_snapshots (snapshot_id) ON DELETE CASCADE,
    group_name     TEXT NOT NULL,
    direction      TEXT NOT NULL,
    route          TEXT NOT NULL,
    arrives_at_utc TIMESTAMPTZ NOT NULL,
    minutes_away   INTEGER NOT NULL,
    polled_at_utc  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_arrival_history_snapshot
    ON arrival_history (snapshot_id);

CREATE INDEX IF NOT EXISTS idx_arrival_history_polled_at
    ON arrival_history (polled_at_utc);
`

// PostgresStore keeps snapshot history in Postgres, for installs that
// already run one and want retention past what an SD card should hold.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and ensures the schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("Connected to Postgres history database")
	return &PostgresStore{pool: pool}, nil
}

// SaveSnapshot writes one poll's boards and returns the snapshot id.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, polledAt time.Time, boards []arrivals.Board) (string, error) {
	snapshotID := uuid.New().String()
	polledAt = polledAt.UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"INSERT INTO arrival_snapshots (snapshot_id, polled_at_utc) VALUES ($1, $2)",
		snapshotID, polledAt,
	); err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	for _, row := range flatten(boards) {
		if _, err := tx.Exec(ctx, `
			INSERT INTO arrival_history (
				snapshot_id, group_name, direction, route,
				arrives_at_utc, minutes_away, polled_at_utc
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, snapshotID, row.GroupName, row.Direction, row.Route,
			row.ArrivesAt.UTC(), row.MinutesAway, polledAt,
		); err != nil {
			return "", fmt.Errorf("failed to insert arrival row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// RecentSnapshots returns the newest snapshots within the window, most
// recent first.
func (s *PostgresStore) RecentSnapshots(ctx context.Context, within time.Duration, limit int) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.snapshot_id, s.polled_at_utc,
		       h.group_name, h.direction, h.route, h.arrives_at_utc, h.minutes_away
		FROM arrival_snapshots s
		LEFT JOIN arrival_history h ON h.snapshot_id = s.snapshot_id
		WHERE s.polled_at_utc >= NOW() - $1::interval
		ORDER BY s.polled_at_utc DESC, h.id ASC
	`, fmt.Sprintf("%d seconds", int(within.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	index := make(map[string]int)

	for rows.Next() {
		var id string
		var polledAt time.Time
		var groupName, direction, route *string
		var arrivesAt *time.Time
		var minutesAway *int
		if err := rows.Scan(&id, &polledAt, &groupName, &direction, &route, &arrivesAt, &minutesAway); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		pos, ok := index[id]
		if !ok {
			if limit > 0 && len(snapshots) >= limit {
				break
			}
			snapshots = append(snapshots, Snapshot{ID: id, PolledAt: polledAt})
			pos = len(snapshots) - 1
			index[id] = pos
		}

		if groupName == nil {
			continue
		}
		snapshots[pos].Rows = append(snapshots[pos].Rows, Row{
			GroupName:   *groupName,
			Direction:   *direction,
			Route:       *route,
			ArrivesAt:   *arrivesAt,
			MinutesAway: *minutesAway,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
	}
	return snapshots, nil
}

// Cleanup deletes data older than the retention duration. The history table
// goes with its snapshots via ON DELETE CASCADE.
func (s *PostgresStore) Cleanup(ctx context.Context, retention time.Duration) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM arrival_snapshots WHERE polled_at_utc < NOW() - $1::interval",
		fmt.Sprintf("%d seconds", int(retention.Seconds())),
	)
	if err != nil {
		return fmt.Errorf("failed to cleanup snapshots: %w", err)
	}
	if deleted := tag.RowsAffected(); deleted > 0 {
		log.Printf("Cleanup: deleted %d snapshots older than %v", deleted, retention)
	}
	return nil
}

// Ping checks the pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
