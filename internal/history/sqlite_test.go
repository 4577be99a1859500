package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := ConnectSQLite(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("ConnectSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBoards(now time.Time) []arrivals.Board {
	return []arrivals.Board{
		{
			Group: "96 St",
			Uptown: arrivals.DirectionList{
				Label: "Uptown",
				Arrivals: []arrivals.Arrival{
					{Route: "A", ArrivesAt: now.Add(3 * time.Minute), MinutesAway: 3},
					{Route: "C", ArrivesAt: now.Add(5 * time.Minute), MinutesAway: 5},
				},
			},
			Downtown: arrivals.DirectionList{
				Label: "Downtown",
				Arrivals: []arrivals.Arrival{
					{Route: "A", ArrivesAt: now.Add(7 * time.Minute), MinutesAway: 7},
				},
			},
		},
	}
}

func TestSQLiteStore_SaveAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	id, err := store.SaveSnapshot(ctx, now, sampleBoards(now))
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if id == "" {
		t.Fatal("SaveSnapshot returned an empty id")
	}

	snapshots, err := store.RecentSnapshots(ctx, 24*time.Hour, 0)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}

	snap := snapshots[0]
	if snap.ID != id {
		t.Errorf("expected snapshot id %q, got %q", id, snap.ID)
	}
	if !snap.PolledAt.Equal(now) {
		t.Errorf("expected polled_at %v, got %v", now, snap.PolledAt)
	}
	if len(snap.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(snap.Rows))
	}

	first := snap.Rows[0]
	if first.GroupName != "96 St" || first.Direction != "uptown" || first.Route != "A" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.MinutesAway != 3 {
		t.Errorf("expected 3 minutes away, got %d", first.MinutesAway)
	}
	if !first.ArrivesAt.Equal(now.Add(3 * time.Minute)) {
		t.Errorf("expected arrives_at %v, got %v", now.Add(3*time.Minute), first.ArrivesAt)
	}
	if last := snap.Rows[2]; last.Direction != "downtown" {
		t.Errorf("expected downtown row last, got %q", last.Direction)
	}
}

func TestSQLiteStore_OrderAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	var ids []string
	for _, age := range []time.Duration{2 * time.Minute, time.Minute, 0} {
		id, err := store.SaveSnapshot(ctx, now.Add(-age), sampleBoards(now))
		if err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
		ids = append(ids, id)
	}

	snapshots, err := store.RecentSnapshots(ctx, 24*time.Hour, 2)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].ID != ids[2] || snapshots[1].ID != ids[1] {
		t.Errorf("expected newest first, got %q then %q", snapshots[0].ID, snapshots[1].ID)
	}
}

func TestSQLiteStore_EmptyBoards(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := store.SaveSnapshot(ctx, now, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	snapshots, err := store.RecentSnapshots(ctx, 24*time.Hour, 0)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if len(snapshots[0].Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(snapshots[0].Rows))
	}
}

func TestSQLiteStore_Cleanup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	oldID, err := store.SaveSnapshot(ctx, now.Add(-200*time.Hour), sampleBoards(now))
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	keepID, err := store.SaveSnapshot(ctx, now, sampleBoards(now))
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	if err := store.Cleanup(ctx, 168*time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	snapshots, err := store.RecentSnapshots(ctx, 9999*time.Hour, 0)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snapshots) != 1 || snapshots[0].ID != keepID {
		t.Fatalf("expected only the recent snapshot to survive, got %+v", snapshots)
	}

	var orphans int
	if err := store.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM arrival_history WHERE snapshot_id = ?", oldID,
	).Scan(&orphans); err != nil {
		t.Fatalf("failed to count history rows: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected old history rows to be deleted, got %d", orphans)
	}
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	store, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("expected a SQLite store, got %T", store)
	}
}
