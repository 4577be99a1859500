package sysmon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseVcgencmdTemp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"temp=42.8'C\n", 42.8, true},
		{"temp=61.0'C", 61.0, true},
		{"garbage", 0, false},
		{"temp=notanumber'C", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseVcgencmdTemp(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseVcgencmdTemp(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseThermalZone(t *testing.T) {
	if got, ok := parseThermalZone("42800\n"); !ok || got != 42.8 {
		t.Errorf("parseThermalZone(42800) = (%v, %v), want (42.8, true)", got, ok)
	}
	if _, ok := parseThermalZone("whatever"); ok {
		t.Error("parseThermalZone accepted garbage")
	}
}

func TestCPUTempFallsBackToThermalZone(t *testing.T) {
	thermal := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(thermal, []byte("51234\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &Monitor{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, errors.New("vcgencmd: not found")
		},
		thermalPath: thermal,
	}

	temp, ok := m.cpuTemp(context.Background())
	if !ok || temp != 51.234 {
		t.Errorf("cpuTemp = (%v, %v), want (51.234, true)", temp, ok)
	}
}

func TestCPUTempUnavailable(t *testing.T) {
	m := &Monitor{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, errors.New("not found")
		},
		thermalPath: filepath.Join(t.TempDir(), "missing"),
	}

	if _, ok := m.cpuTemp(context.Background()); ok {
		t.Error("cpuTemp reported ok with no source available")
	}
}

func TestWiFiParsesSSIDAndSignal(t *testing.T) {
	m := &Monitor{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			switch name {
			case "iwgetid":
				return []byte("HomeNet5G\n"), nil
			case "iwconfig":
				return []byte("wlan0  IEEE 802.11  ESSID:\"HomeNet5G\"\n          Link Quality=58/70  Signal level=-52 dBm\n"), nil
			}
			return nil, errors.New("unexpected command")
		},
	}

	ssid, signal, ok := m.wifi(context.Background())
	if !ok || ssid != "HomeNet5G" || signal != -52 {
		t.Errorf("wifi = (%q, %d, %v), want (HomeNet5G, -52, true)", ssid, signal, ok)
	}
}

func TestWiFiUnavailableWithoutSSID(t *testing.T) {
	m := &Monitor{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("\n"), nil
		},
	}

	if _, _, ok := m.wifi(context.Background()); ok {
		t.Error("wifi reported ok with an empty SSID")
	}
}

func TestSignalBars(t *testing.T) {
	tests := []struct {
		dbm  int
		want int
	}{
		{-45, 4},
		{-50, 4},
		{-55, 3},
		{-60, 3},
		{-65, 2},
		{-70, 2},
		{-80, 1},
		{0, 0},
	}

	for _, tt := range tests {
		if got := SignalBars(tt.dbm); got != tt.want {
			t.Errorf("SignalBars(%d) = %d, want %d", tt.dbm, got, tt.want)
		}
	}
}
