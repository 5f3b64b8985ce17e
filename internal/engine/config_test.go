package engine

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"WIKITEXT_MAX_INPUT_BYTES", "WIKITEXT_CACHE_ENTRIES", "WIKITEXT_CACHE_TTL",
		"WIKITEXT_BOT_NAME", "WIKITEXT_LOG_LEVEL", "WIKITEXT_METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxInputBytes != DefaultMaxInputBytes {
		t.Errorf("MaxInputBytes = %d, want %d", cfg.MaxInputBytes, DefaultMaxInputBytes)
	}
	if cfg.CacheEntries != 1000 {
		t.Errorf("CacheEntries = %d, want 1000", cfg.CacheEntries)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.CacheTTL)
	}
	if cfg.BotName != "PowerBOT" {
		t.Errorf("BotName = %q, want PowerBOT", cfg.BotName)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("WIKITEXT_MAX_INPUT_BYTES", "4096")
	t.Setenv("WIKITEXT_CACHE_ENTRIES", "0")
	t.Setenv("WIKITEXT_CACHE_TTL", "30s")
	t.Setenv("WIKITEXT_BOT_NAME", " ExampleBot ")
	t.Setenv("WIKITEXT_LOG_LEVEL", "DEBUG")
	t.Setenv("WIKITEXT_METRICS_ADDR", ":9090")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxInputBytes != 4096 {
		t.Errorf("MaxInputBytes = %d, want 4096", cfg.MaxInputBytes)
	}
	if cfg.CacheEntries != 0 {
		t.Errorf("CacheEntries = %d, want 0", cfg.CacheEntries)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.BotName != "ExampleBot" {
		t.Errorf("BotName = %q, want ExampleBot", cfg.BotName)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", cfg.MetricsAddr)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WIKITEXT_MAX_INPUT_BYTES", "lots")
	t.Setenv("WIKITEXT_CACHE_ENTRIES", "-3")
	t.Setenv("WIKITEXT_CACHE_TTL", "soon")
	t.Setenv("WIKITEXT_LOG_LEVEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxInputBytes != DefaultMaxInputBytes {
		t.Errorf("MaxInputBytes = %d, want default", cfg.MaxInputBytes)
	}
	if cfg.CacheEntries != 1000 {
		t.Errorf("CacheEntries = %d, want default", cfg.CacheEntries)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want default", cfg.CacheTTL)
	}
}

func TestLoadConfig_UnknownLogLevel(t *testing.T) {
	t.Setenv("WIKITEXT_LOG_LEVEL", "verbose")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"Info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
