package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `{
	"current_weather": {"temperature": 71.3, "weathercode": 2},
	"daily": {
		"time": ["2026-08-24", "2026-08-25", "2026-08-26"],
		"weathercode": [0, 61, 95],
		"temperature_2m_max": [82.1, 75.0, 70.2],
		"temperature_2m_min": [66.0, 64.2, 61.8]
	}
}`

func testClientFor(server *httptest.Server) *Client {
	c := NewClient(40.7128, -74.0060)
	c.client = server.Client()
	c.baseURL = server.URL
	return c
}

func TestFetchParsesReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("current_weather") != "true" {
			t.Errorf("missing current_weather param in %s", r.URL.RawQuery)
		}
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	report, err := testClientFor(server).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if report.Current.TemperatureF != 71.3 || report.Current.Code != 2 {
		t.Errorf("current = %+v, want 71.3F code 2", report.Current)
	}
	if len(report.Daily) != 3 {
		t.Fatalf("daily = %d entries, want 3", len(report.Daily))
	}
	if report.Daily[1].Code != 61 || report.Daily[1].HighF != 75.0 || report.Daily[1].LowF != 64.2 {
		t.Errorf("daily[1] = %+v, want rain 75/64.2", report.Daily[1])
	}
}

func TestFetchServesFromCache(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	c := testClientFor(server)
	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background()); err != nil {
			t.Fatalf("Fetch %d returned error: %v", i+1, err)
		}
	}

	if requests != 1 {
		t.Errorf("upstream requests = %d, want 1 (rest served from cache)", requests)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := testClientFor(server).Fetch(context.Background()); err == nil {
		t.Error("Fetch returned nil error for a 503 response")
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "CLEAR"},
		{2, "PT CLDY"},
		{3, "CLOUDY"},
		{45, "FOG"},
		{53, "DRIZZLE"},
		{63, "RAIN"},
		{73, "SNOW"},
		{81, "SHOWERS"},
		{96, "STORM"},
		{42, "---"},
	}

	for _, tt := range tests {
		if got := Summary(tt.code); got != tt.want {
			t.Errorf("Summary(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
