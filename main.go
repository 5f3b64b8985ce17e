// Wikitext MCP Server - A Model Context Protocol server for wikitext pages
// Provides tools for parsing, rendering, inspecting and editing page markup
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/powera/wiki-scripts/internal/engine"
	"github.com/powera/wiki-scripts/tools"
	"github.com/powera/wiki-scripts/tracing"
)

const (
	ServerName    = "wikitext-mcp-server"
	ServerVersion = "1.0.0"
)

// recoverPanic logs a panic in a background goroutine instead of crashing the server
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

func main() {
	// Load configuration from environment
	config, err := engine.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := newLogger(os.Stderr, config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config *engine.Config, logger *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	eng := engine.New(engine.WithConfig(config), engine.WithLogger(logger))
	defer eng.Close()

	if config.MetricsAddr != "" {
		go serveMetrics(ctx, config.MetricsAddr, logger)
	}

	server := newServer(eng, logger)

	logger.Info("Starting Wikitext MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"max_input_bytes", config.MaxInputBytes,
		"cache_entries", config.CacheEntries,
		"metrics_addr", config.MetricsAddr,
	)

	// Run server on stdio transport
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newServer creates the MCP server with every tool registered.
func newServer(eng *engine.Engine, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions(),
	})

	tools.NewHandlerRegistry(eng, logger).RegisterAll(server)
	return server
}

// instructions lists the tools and configuration for the client.
func instructions() string {
	var sb strings.Builder
	sb.WriteString("Wikitext MCP Server parses MediaWiki markup passed in as text and renders, inspects or edits it. It never fetches or saves pages.\n\nAvailable tools:\n")
	for _, spec := range tools.AllTools {
		fmt.Fprintf(&sb, "- %s: %s\n", spec.Name, spec.Title)
	}
	sb.WriteString(`
Configure via environment variables:
- WIKITEXT_MAX_INPUT_BYTES: Largest accepted page (default 2 MiB)
- WIKITEXT_CACHE_ENTRIES / WIKITEXT_CACHE_TTL: Render cache size and lifetime
- WIKITEXT_BOT_NAME: Default bot for exclusion checks
- WIKITEXT_LOG_LEVEL: debug, info, warn, error
- WIKITEXT_METRICS_ADDR: Serve Prometheus metrics on this address`)
	return sb.String()
}

func newLogger(w *os.File, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// newMetricsMux exposes Prometheus metrics and a liveness probe.
func newMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// serveMetrics runs the metrics listener until ctx ends.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	defer recoverPanic(logger, "metrics_server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           newMetricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", "addr", addr, "error", err)
	}
}
