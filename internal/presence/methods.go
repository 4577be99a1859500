package presence

import (
	"context"
	"os"
	"os/exec"
	"time"
)

// probeTimeout bounds one arp-scan run. A LAN sweep normally finishes in a
// second or two; anything longer means the tool is wedged.
const probeTimeout = 5 * time.Second

// arpScanMethod sweeps the local network with arp-scan. Needs root or
// CAP_NET_RAW, so it is usually wired up through sudo.
type arpScanMethod struct {
	timeout time.Duration
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewARPScanMethod returns the arp-scan detection method.
func NewARPScanMethod() Method {
	return &arpScanMethod{
		timeout: probeTimeout,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

func (m *arpScanMethod) Name() string { return "arp-scan" }

func (m *arpScanMethod) Probe(ctx context.Context, targets []string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	out, err := m.run(ctx, "sudo", "arp-scan", "--localnet", "--quiet")
	if err != nil {
		// Missing binary, denied sudo, non-zero exit or timeout: this
		// method cannot answer right now.
		return Unavailable
	}
	return matchTargets(string(out), targets)
}

// dhcpLeasesMethod reads dhcpd lease files for the tracked hardware
// addresses. Slower to notice departures than an active scan, but needs no
// privileges.
type dhcpLeasesMethod struct {
	paths []string
}

var defaultLeasePaths = []string{
	"/var/lib/dhcp/dhcpd.leases",
	"/var/lib/dhcpd/dhcpd.leases",
	"/var/db/dhcpd.leases",
}

// NewDHCPLeasesMethod returns the dhcp lease file detection method.
func NewDHCPLeasesMethod() Method {
	return &dhcpLeasesMethod{paths: defaultLeasePaths}
}

func (m *dhcpLeasesMethod) Name() string { return "dhcp-leases" }

func (m *dhcpLeasesMethod) Probe(ctx context.Context, targets []string) Verdict {
	verdict := Unavailable
	for _, path := range m.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if matchTargets(string(data), targets) == Present {
			return Present
		}
		// At least one lease file was readable, so a miss is a real answer.
		verdict = Absent
	}
	return verdict
}
