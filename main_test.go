package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/powera/wiki-scripts/internal/engine"
	"github.com/powera/wiki-scripts/metrics"
	"github.com/powera/wiki-scripts/tools"
)

func TestRecoverPanic(t *testing.T) {
	// This test verifies recoverPanic properly catches panics
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	func() {
		defer recoverPanic(logger, "test operation")
		panic("test panic")
	}()

	// If we get here, the panic was recovered
}

func TestInstructions(t *testing.T) {
	text := instructions()
	for _, spec := range tools.AllTools {
		if !strings.Contains(text, spec.Name) {
			t.Errorf("instructions missing tool %s", spec.Name)
		}
	}
	if !strings.Contains(text, "WIKITEXT_METRICS_ADDR") {
		t.Error("instructions should document configuration")
	}
}

func TestNewServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(engine.WithLogger(logger))
	defer eng.Close()

	if server := newServer(eng, logger); server == nil {
		t.Fatal("newServer returned nil")
	}
}

func TestNewLogger(t *testing.T) {
	logger := newLogger(os.Stderr, slog.LevelWarn)
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestMetricsMux(t *testing.T) {
	metrics.RecordRender("wiki", 0.001, true)
	srv := httptest.NewServer(newMetricsMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "wikitext_mcp_renders_total") {
		t.Error("/metrics should expose wikitext_mcp collectors")
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", health.StatusCode)
	}
}
