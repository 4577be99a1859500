package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps snapshot history in a local SQLite file. SQLite only
// supports one writer at a time, so writes go through a single connection
// and a mutex; cleanup running concurrently with the poll loop would
// otherwise trip "cannot start a transaction within a transaction".
type SQLiteStore struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// ConnectSQLite opens the database with WAL mode and ensures the schema.
func ConnectSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}

	store := &SQLiteStore{conn: conn}
	if err := store.ensureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Connected to SQLite history database: %s", path)
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveSnapshot writes one poll's boards and returns the snapshot id.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, polledAt time.Time, boards []arrivals.Board) (string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshotID := uuid.New().String()
	polledAtStr := polledAt.UTC().Format(time.RFC3339)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO arrival_snapshots (snapshot_id, polled_at_utc) VALUES (?, ?)",
		snapshotID, polledAtStr,
	); err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO arrival_history (
			snapshot_id, group_name, direction, route,
			arrives_at_utc, minutes_away, polled_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare history statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range flatten(boards) {
		if _, err := stmt.ExecContext(ctx,
			snapshotID, row.GroupName, row.Direction, row.Route,
			row.ArrivesAt.UTC().Format(time.RFC3339), row.MinutesAway, polledAtStr,
		); err != nil {
			return "", fmt.Errorf("failed to insert arrival row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// RecentSnapshots returns the newest snapshots within the window, most
// recent first, each with its rows in stored order.
func (s *SQLiteStore) RecentSnapshots(ctx context.Context, within time.Duration, limit int) ([]Snapshot, error) {
	hours := int(within.Hours())
	if hours < 1 {
		hours = 1
	}

	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT s.snapshot_id, s.polled_at_utc,
		       h.group_name, h.direction, h.route, h.arrives_at_utc, h.minutes_away
		FROM arrival_snapshots s
		LEFT JOIN arrival_history h ON h.snapshot_id = s.snapshot_id
		WHERE datetime(s.polled_at_utc) >= datetime('now', '-%d hours')
		ORDER BY s.polled_at_utc DESC, h.id ASC
	`, hours))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	index := make(map[string]int)

	for rows.Next() {
		var id, polledAtStr string
		var groupName, direction, route, arrivesAtStr sql.NullString
		var minutesAway sql.NullInt64
		if err := rows.Scan(&id, &polledAtStr, &groupName, &direction, &route, &arrivesAtStr, &minutesAway); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		pos, ok := index[id]
		if !ok {
			if limit > 0 && len(snapshots) >= limit {
				break
			}
			polledAt, err := time.Parse(time.RFC3339, polledAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse polled_at %q: %w", polledAtStr, err)
			}
			snapshots = append(snapshots, Snapshot{ID: id, PolledAt: polledAt})
			pos = len(snapshots) - 1
			index[id] = pos
		}

		if !groupName.Valid {
			continue // snapshot with no arrivals
		}
		arrivesAt, err := time.Parse(time.RFC3339, arrivesAtStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse arrives_at %q: %w", arrivesAtStr.String, err)
		}
		snapshots[pos].Rows = append(snapshots[pos].Rows, Row{
			GroupName:   groupName.String,
			Direction:   direction.String,
			Route:       route.String,
			ArrivesAt:   arrivesAt,
			MinutesAway: int(minutesAway.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
	}
	return snapshots, nil
}

// Cleanup deletes data older than the retention duration.
func (s *SQLiteStore) Cleanup(ctx context.Context, retention time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	hours := int(retention.Hours())
	if hours < 1 {
		hours = 1
	}

	queries := []struct {
		name  string
		query string
	}{
		{
			name:  "arrival_history",
			query: fmt.Sprintf("DELETE FROM arrival_history WHERE datetime(polled_at_utc) < datetime('now', '-%d hours')", hours),
		},
		{
			name:  "arrival_snapshots",
			query: fmt.Sprintf("DELETE FROM arrival_snapshots WHERE datetime(polled_at_utc) < datetime('now', '-%d hours')", hours),
		},
	}

	totalDeleted := 0
	for _, q := range queries {
		result, err := s.conn.ExecContext(ctx, q.query)
		if err != nil {
			return fmt.Errorf("failed to cleanup %s: %w", q.name, err)
		}
		rows, _ := result.RowsAffected()
		totalDeleted += int(rows)
	}

	if totalDeleted > 0 {
		log.Printf("Cleanup: deleted %d history records older than %d hours", totalDeleted, hours)
	}
	return nil
}

// Ping checks the connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
