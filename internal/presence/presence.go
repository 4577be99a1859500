package presence

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// Verdict is the outcome of one detection method.
type Verdict int

const (
	// Unavailable means the method could not answer: tool missing, no
	// permission, timeout, or no data source. The chain falls through.
	Unavailable Verdict = iota
	Absent
	Present
)

func (v Verdict) String() string {
	switch v {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unavailable"
	}
}

// Method is one way of checking whether a tracked device is on the network.
type Method interface {
	Name() string
	Probe(ctx context.Context, targets []string) Verdict
}

// Detector answers "is anyone home" by running detection methods in priority
// order behind a short-lived cache. Detection shells out and reads system
// files, so callers hit the cache far more often than the network.
type Detector struct {
	targets  []string
	cacheTTL time.Duration
	methods  []Method
	now      func() time.Time

	mu         sync.Mutex
	cached     bool
	computedAt time.Time
	hasCached  bool
}

// NewDetector builds a detector with the default method chain: arp-scan
// first (fast, needs privileges), dhcp lease files as fallback. Target MACs
// are matched case-insensitively.
func NewDetector(targets []string, cacheTTL time.Duration) *Detector {
	return NewDetectorWithMethods(targets, cacheTTL, []Method{
		NewARPScanMethod(),
		NewDHCPLeasesMethod(),
	})
}

// NewDetectorWithMethods builds a detector with an explicit chain.
func NewDetectorWithMethods(targets []string, cacheTTL time.Duration, methods []Method) *Detector {
	normalized := make([]string, 0, len(targets))
	for _, target := range targets {
		if trimmed := strings.ToLower(strings.TrimSpace(target)); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return &Detector{
		targets:  normalized,
		cacheTTL: cacheTTL,
		methods:  methods,
		now:      time.Now,
	}
}

// Configured reports whether any targets are being tracked.
func (d *Detector) Configured() bool {
	return len(d.targets) > 0
}

// IsAnyonePresent reports whether any tracked device is on the network.
// A fresh cached answer is returned as-is. With no targets configured it is
// always false and neither probes nor caches. When every method is
// unavailable the answer is false (fail closed) and that answer is cached.
func (d *Detector) IsAnyonePresent(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.hasCached && now.Sub(d.computedAt) < d.cacheTTL {
		return d.cached
	}

	if len(d.targets) == 0 {
		return false
	}

	result := d.detect(ctx)
	d.cached = result
	d.computedAt = now
	d.hasCached = true
	return result
}

func (d *Detector) detect(ctx context.Context) bool {
	for _, method := range d.methods {
		switch method.Probe(ctx, d.targets) {
		case Present:
			return true
		case Absent:
			return false
		case Unavailable:
			// Try the next method.
		}
	}
	log.Println("Presence: no detection method available, assuming away")
	return false
}

// matchTargets scans command or file output for any target MAC.
func matchTargets(haystack string, targets []string) Verdict {
	haystack = strings.ToLower(haystack)
	for _, target := range targets {
		if strings.Contains(haystack, target) {
			return Present
		}
	}
	return Absent
}
