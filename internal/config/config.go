package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
)

// AppConfig holds everything the binary needs from the environment.
type AppConfig struct {
	// Outbound HTTP client timeout.
	HTTPTimeout time.Duration

	// UserAgent identifies this client to met.no, which requires one.
	UserAgent string

	// ResolveDeadline bounds the wait for a first positioning fix.
	ResolveDeadline time.Duration

	// Debounce is the quiet period for place search.
	Debounce time.Duration

	// RefreshInterval controls the background widget refresh cadence.
	RefreshInterval time.Duration

	// CachePath is the SQLite file backing the widget cache.
	CachePath string

	// StaticFix, when valid and non-zero, enables a fixed positioning feed.
	StaticFix geo.Coordinate

	// Lang is the display language (zh or en).
	Lang i18n.Lang

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := &AppConfig{}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.ResolveDeadline, err = getenvDuration("RESOLVE_DEADLINE", "8s"); err != nil {
		return nil, err
	}
	if cfg.Debounce, err = getenvDuration("SEARCH_DEBOUNCE", "500ms"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "20m"); err != nil {
		return nil, err
	}

	cfg.UserAgent = getenvDefault("USER_AGENT", "FlameWeather/1.1 https://github.com/flame-software/flame-weather")
	cfg.CachePath = getenvDefault("WIDGET_CACHE_PATH", "widget_cache.db")
	cfg.Lang = i18n.Parse(getenvDefault("LANG_CODE", "zh"))
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.StaticFix = geo.Coordinate{
		Latitude:  getenvFloat("STATIC_FIX_LAT", 0),
		Longitude: getenvFloat("STATIC_FIX_LON", 0),
	}
	if !cfg.StaticFix.IsZero() && !cfg.StaticFix.Valid() {
		return nil, fmt.Errorf("STATIC_FIX_LAT/STATIC_FIX_LON out of range: %s", cfg.StaticFix.Key())
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
