package refresh

import (
	"context"
	"time"

	"github.com/narulaskaran/pi-zero/internal/config"
)

// PresenceChecker reports whether a tracked device is home. Implemented by
// presence.Detector.
type PresenceChecker interface {
	Configured() bool
	IsAnyonePresent(ctx context.Context) bool
}

// Scheduler picks how often display surfaces should repaint. The interval is
// advisory: the battery-powered frame asks over HTTP before going back to
// sleep, the wired panel compares it against its own clock.
type Scheduler struct {
	fast  time.Duration
	slow  time.Duration
	night time.Duration

	nightStart int // hour, inclusive
	nightEnd   int // hour, exclusive

	presence PresenceChecker
}

// NewScheduler builds a scheduler from config. presence may be nil when no
// detection is wired up.
func NewScheduler(cfg *config.Config, presence PresenceChecker) *Scheduler {
	return &Scheduler{
		fast:       cfg.RefreshFast,
		slow:       cfg.RefreshSlow,
		night:      cfg.RefreshNight,
		nightStart: cfg.NightStartHour,
		nightEnd:   cfg.NightEndHour,
		presence:   presence,
	}
}

// Interval decides the repaint interval for the given instant.
// Night hours win unconditionally: there is no point burning refreshes for
// an empty room, whoever is home. Outside the window, presence picks
// between fast and slow; without presence detection the answer is fast.
func (s *Scheduler) Interval(ctx context.Context, now time.Time) time.Duration {
	if inNightWindow(now.Hour(), s.nightStart, s.nightEnd) {
		return s.night
	}
	if s.presence != nil && s.presence.Configured() {
		if s.presence.IsAnyonePresent(ctx) {
			return s.fast
		}
		return s.slow
	}
	return s.fast
}

// inNightWindow treats the window as [start, end) on whole hours, wrapping
// midnight when start > end. An empty window (start == end) never matches.
func inNightWindow(hour, start, end int) bool {
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}
