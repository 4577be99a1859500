package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the dashboard server and display daemon
type Config struct {
	// HTTP server
	Port int

	// Arrivals polling
	PollInterval time.Duration
	FeedTimeout  time.Duration
	MTAAPIKey    string
	NumTrains    int
	StationsPath string

	// Snapshot history
	DatabasePath   string
	DatabaseURL    string
	RetentionHours int

	// Presence detection
	PresenceMACs     []string
	PresenceCacheTTL time.Duration

	// Refresh rate scheduling
	RefreshFast    time.Duration
	RefreshSlow    time.Duration
	RefreshNight   time.Duration
	NightStartHour int
	NightEndHour   int

	// Weather + finance
	WeatherLat     float64
	WeatherLon     float64
	FinanceTickers []string

	// E-paper panel
	MaxPartialRefreshes int
	DisablePartial      bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// HTTP server
		Port: getEnvInt("PORT", 8080),

		// Arrivals polling
		PollInterval: time.Duration(getEnvInt("POLL_INTERVAL", 60)) * time.Second,
		FeedTimeout:  time.Duration(getEnvInt("FEED_TIMEOUT_SECONDS", 5)) * time.Second,
		MTAAPIKey:    getEnv("MTA_API_KEY", ""),
		NumTrains:    getEnvInt("NUM_TRAINS", 10),
		StationsPath: getEnv("STATIONS_CONFIG", "stations.yml"),

		// Snapshot history
		DatabasePath:   getEnv("DB_PATH", "/data/arrivals.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RetentionHours: getEnvInt("RETENTION_HOURS", 168),

		// Presence detection
		PresenceMACs:     getEnvList("PRESENCE_MACS", nil),
		PresenceCacheTTL: time.Duration(getEnvInt("PRESENCE_CACHE_SECONDS", 30)) * time.Second,

		// Refresh rate scheduling
		RefreshFast:    time.Duration(getEnvInt("REFRESH_RATE_FAST", 1)) * time.Second,
		RefreshSlow:    time.Duration(getEnvInt("REFRESH_RATE_SLOW", 30)) * time.Second,
		RefreshNight:   time.Duration(getEnvInt("REFRESH_RATE_NIGHT", 30)) * time.Second,
		NightStartHour: getEnvInt("NIGHT_START_HOUR", 1),
		NightEndHour:   getEnvInt("NIGHT_END_HOUR", 7),

		// Weather + finance
		WeatherLat:     getEnvFloat("WEATHER_LAT", 40.7128),
		WeatherLon:     getEnvFloat("WEATHER_LON", -74.0060),
		FinanceTickers: getEnvList("FINANCE_TICKERS", []string{"^GSPC", "BTC-USD", "GC=F"}),

		// E-paper panel
		MaxPartialRefreshes: getEnvInt("DISPLAY_MAX_PARTIAL_REFRESHES", 10),
		DisablePartial:      getEnvBool("DISPLAY_NO_PARTIAL", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
