package sysmon

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

const commandTimeout = 5 * time.Second

var signalLevelRegex = regexp.MustCompile(`Signal level=(-?\d+) dBm`)

// Stats is one sample of the machine's vitals. Each section has its own ok
// flag; a Pi without WiFi still reports CPU and memory.
type Stats struct {
	CPUTempC  float64
	CPUTempOK bool

	RAMPercent float64
	RAMUsedMB  float64
	RAMTotalMB float64
	RAMOK      bool

	WiFiSSID      string
	WiFiSignalDBm int
	WiFiOK        bool
}

// Monitor samples CPU temperature, memory and WiFi state.
type Monitor struct {
	run         func(ctx context.Context, name string, args ...string) ([]byte, error)
	thermalPath string
}

// NewMonitor builds a monitor using the Pi's native tools.
func NewMonitor() *Monitor {
	return &Monitor{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		thermalPath: "/sys/class/thermal/thermal_zone0/temp",
	}
}

// Sample collects everything it can; sections fail independently.
func (m *Monitor) Sample(ctx context.Context) Stats {
	var stats Stats
	stats.CPUTempC, stats.CPUTempOK = m.cpuTemp(ctx)
	stats.RAMPercent, stats.RAMUsedMB, stats.RAMTotalMB, stats.RAMOK = memoryUsage(ctx)
	stats.WiFiSSID, stats.WiFiSignalDBm, stats.WiFiOK = m.wifi(ctx)
	return stats
}

// cpuTemp asks the firmware first, then the kernel's thermal zone.
func (m *Monitor) cpuTemp(ctx context.Context) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if out, err := m.run(ctx, "vcgencmd", "measure_temp"); err == nil {
		if temp, ok := parseVcgencmdTemp(string(out)); ok {
			return temp, true
		}
	}

	if data, err := os.ReadFile(m.thermalPath); err == nil {
		if temp, ok := parseThermalZone(string(data)); ok {
			return temp, true
		}
	}

	return 0, false
}

// parseVcgencmdTemp parses vcgencmd output like "temp=42.8'C".
func parseVcgencmdTemp(out string) (float64, bool) {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "temp=") {
		return 0, false
	}
	out = strings.TrimPrefix(out, "temp=")
	out = strings.TrimSuffix(out, "'C")
	temp, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, false
	}
	return temp, true
}

// parseThermalZone parses the kernel's millidegree reading.
func parseThermalZone(data string) (float64, bool) {
	milli, err := strconv.Atoi(strings.TrimSpace(data))
	if err != nil {
		return 0, false
	}
	return float64(milli) / 1000.0, true
}

func memoryUsage(ctx context.Context) (percent, usedMB, totalMB float64, ok bool) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, 0, false
	}
	return vm.UsedPercent, float64(vm.Used) / 1024 / 1024, float64(vm.Total) / 1024 / 1024, true
}

// wifi reads the SSID via iwgetid and the signal level via iwconfig.
func (m *Monitor) wifi(ctx context.Context) (ssid string, signalDBm int, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := m.run(ctx, "iwgetid", "-r")
	if err != nil {
		return "", 0, false
	}
	ssid = strings.TrimSpace(string(out))
	if ssid == "" {
		return "", 0, false
	}

	if out, err := m.run(ctx, "iwconfig", "wlan0"); err == nil {
		if level, found := parseSignalLevel(string(out)); found {
			signalDBm = level
		}
	}
	return ssid, signalDBm, true
}

// parseSignalLevel pulls the dBm value out of iwconfig output.
func parseSignalLevel(out string) (int, bool) {
	match := signalLevelRegex.FindStringSubmatch(out)
	if match == nil {
		return 0, false
	}
	level, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return level, true
}

// SignalBars maps a dBm reading to a 1-4 bar strength indicator; 0 means no
// reading.
func SignalBars(dbm int) int {
	switch {
	case dbm == 0:
		return 0
	case dbm >= -50:
		return 4
	case dbm >= -60:
		return 3
	case dbm >= -70:
		return 2
	default:
		return 1
	}
}
