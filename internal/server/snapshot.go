package server

import (
	"sync"
	"time"

	"github.com/narulaskaran/pi-zero/internal/arrivals"
	"github.com/narulaskaran/pi-zero/internal/finance"
	"github.com/narulaskaran/pi-zero/internal/weather"
)

// Snapshot is one poll cycle's complete output. It is never mutated after
// Publish, so readers always see a whole cycle, never a torn one.
type Snapshot struct {
	Boards   []arrivals.Board
	Weather  *weather.Report
	Quotes   []finance.Quote
	PolledAt time.Time
}

// Holder hands the latest snapshot from the poll loop to the HTTP handlers
// with a pointer swap.
type Holder struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Publish replaces the current snapshot.
func (h *Holder) Publish(snap *Snapshot) {
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
}

// Latest returns the most recent snapshot, or nil before the first poll.
func (h *Holder) Latest() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}
