package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/powera/wiki-scripts/internal/infra"
)

const (
	// DefaultMaxInputBytes bounds the page text accepted by any operation
	DefaultMaxInputBytes = 2 << 20

	// DefaultBotName is checked against {{bots}} markers when no name is given
	DefaultBotName = "PowerBOT"
)

// Config holds engine settings
type Config struct {
	// MaxInputBytes rejects larger page text before parsing
	MaxInputBytes int

	// CacheEntries and CacheTTL size the render cache; zero entries disables it
	CacheEntries int
	CacheTTL     time.Duration

	// BotName is the default for bot exclusion checks
	BotName string

	// LogLevel for the server logger
	LogLevel slog.Level

	// MetricsAddr serves /metrics when set (e.g. ":9090")
	MetricsAddr string
}

// DefaultConfig returns the settings used when no environment is set
func DefaultConfig() *Config {
	return &Config{
		MaxInputBytes: DefaultMaxInputBytes,
		CacheEntries:  infra.DefaultMaxCacheEntries,
		CacheTTL:      infra.DefaultCacheTTL,
		BotName:       DefaultBotName,
		LogLevel:      slog.LevelInfo,
	}
}

// LoadConfig loads configuration from environment variables.
// Unparseable numbers and durations fall back to defaults; an unknown log
// level is an error.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("WIKITEXT_MAX_INPUT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxInputBytes = n
		}
	}

	if v := os.Getenv("WIKITEXT_CACHE_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheEntries = n
		}
	}

	if v := os.Getenv("WIKITEXT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}

	if v := strings.TrimSpace(os.Getenv("WIKITEXT_BOT_NAME")); v != "" {
		cfg.BotName = v
	}

	if v := os.Getenv("WIKITEXT_LOG_LEVEL"); v != "" {
		level, err := ParseLogLevel(v)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	cfg.MetricsAddr = os.Getenv("WIKITEXT_METRICS_ADDR")

	return cfg, nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}
