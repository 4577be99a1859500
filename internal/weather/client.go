package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bluele/gcache"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	cacheTTL       = 10 * time.Minute
	cacheKey       = "report"
)

// Current is the conditions right now.
type Current struct {
	TemperatureF float64
	Code         int
}

// Day is one entry of the daily forecast.
type Day struct {
	Date  time.Time
	Code  int
	HighF float64
	LowF  float64
}

// Report bundles current conditions with the week ahead.
type Report struct {
	Current Current
	Daily   []Day
}

// Client fetches forecasts from open-meteo. Responses are cached so the
// poll loop can ask every cycle without hammering the API.
type Client struct {
	client  *http.Client
	baseURL string
	lat     float64
	lon     float64
	cache   gcache.Cache
}

// NewClient creates a weather client for a fixed location.
func NewClient(lat, lon float64) *Client {
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		lat:     lat,
		lon:     lon,
		cache:   gcache.New(1).LRU().Expiration(cacheTTL).Build(),
	}
}

// apiResponse mirrors the open-meteo JSON shape.
type apiResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weathercode"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Fetch returns the current report, from cache when fresh.
func (c *Client) Fetch(ctx context.Context) (*Report, error) {
	if cached, err := c.cache.Get(cacheKey); err == nil {
		return cached.(*Report), nil
	}

	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&current_weather=true&daily=weathercode,temperature_2m_max,temperature_2m_min&temperature_unit=fahrenheit&timezone=auto",
		c.baseURL, c.lat, c.lon)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report := &Report{
		Current: Current{
			TemperatureF: payload.CurrentWeather.Temperature,
			Code:         payload.CurrentWeather.WeatherCode,
		},
	}
	for i, day := range payload.Daily.Time {
		if i >= len(payload.Daily.WeatherCode) || i >= len(payload.Daily.Temperature2mMax) || i >= len(payload.Daily.Temperature2mMin) {
			break
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		report.Daily = append(report.Daily, Day{
			Date:  date,
			Code:  payload.Daily.WeatherCode[i],
			HighF: payload.Daily.Temperature2mMax[i],
			LowF:  payload.Daily.Temperature2mMin[i],
		})
	}

	c.cache.Set(cacheKey, report)
	return report, nil
}

// Summary maps a WMO weather code to a short display label.
func Summary(code int) string {
	switch {
	case code == 0:
		return "CLEAR"
	case code <= 2:
		return "PT CLDY"
	case code == 3:
		return "CLOUDY"
	case code == 45 || code == 48:
		return "FOG"
	case code >= 51 && code <= 57:
		return "DRIZZLE"
	case code >= 61 && code <= 67:
		return "RAIN"
	case code >= 71 && code <= 77:
		return "SNOW"
	case code >= 80 && code <= 82:
		return "SHOWERS"
	case code == 85 || code == 86:
		return "SNOW"
	case code >= 95:
		return "STORM"
	default:
		return "---"
	}
}
