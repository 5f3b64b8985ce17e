// Package metrics provides Prometheus metrics for the wikitext MCP server.
// It tracks tool calls, parse and render work, cache performance, and error rates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "wikitext_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// ParsesTotal counts page parses by status
	ParsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "parses_total",
		Help:      "Total page parses by status",
	}, []string{"status"})

	// ParseDuration measures tokenize+build time
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "parse_duration_seconds",
		Help:      "Time to tokenize and build one page",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
	})

	// TokensParsed tracks the token count of parsed pages
	TokensParsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "tokens_per_page",
		Help:      "Token count distribution of parsed pages",
		Buckets:   []float64{10, 100, 1000, 5000, 10000, 50000, 100000, 500000},
	})

	// MalformedLinks counts links closed early by a paragraph break
	MalformedLinks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "malformed_links_total",
		Help:      "Links closed early by a paragraph break",
	})

	// UnhandledCharacters counts pages containing characters no lexical rule matched
	UnhandledCharacters = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "pages_with_unhandled_characters_total",
		Help:      "Parsed pages containing characters that matched no lexical rule",
	})

	// RendersTotal counts renders by output format and status
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "renders_total",
		Help:      "Total renders by format and status",
	}, []string{"format", "status"})

	// RenderDuration measures render latency by output format
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "render_duration_seconds",
		Help:      "Render latency distribution by format",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
	}, []string{"format"})

	// EngineErrors counts failed engine operations by error code
	EngineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "errors_total",
		Help:      "Engine errors by operation and error code",
	}, []string{"operation", "error_code"})

	// EditOperations counts tree edits by type and outcome
	EditOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "edit_operations_total",
		Help:      "Template edits by operation and status",
	}, []string{"operation", "status"})

	// CacheHits counts render cache hits
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Total cache hit count",
	})

	// CacheMisses counts render cache misses
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Total cache miss count",
	})

	// CacheSize tracks current cache entry count
	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_entries",
		Help:      "Current number of cache entries",
	})

	// DedupShared counts requests answered by an identical in-flight request
	DedupShared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "dedup_shared_total",
		Help:      "Requests served from an identical in-flight request",
	})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// ContentSize tracks page sizes processed
	ContentSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "content_size_bytes",
		Help:      "Content size distribution in bytes",
		Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000, 2000000},
	}, []string{"operation"})
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordParse records one parse. Diagnostics are only counted for successful parses.
func RecordParse(duration float64, tokens, malformedLinks int, unhandled bool, success bool) {
	ParsesTotal.WithLabelValues(status(success)).Inc()
	ParseDuration.Observe(duration)
	if !success {
		return
	}
	TokensParsed.Observe(float64(tokens))
	if malformedLinks > 0 {
		MalformedLinks.Add(float64(malformedLinks))
	}
	if unhandled {
		UnhandledCharacters.Inc()
	}
}

// RecordRender records one render of a tree into format
func RecordRender(format string, duration float64, success bool) {
	RendersTotal.WithLabelValues(format, status(success)).Inc()
	RenderDuration.WithLabelValues(format).Observe(duration)
}

// RecordError records a failed engine operation
func RecordError(operation, errorCode string) {
	EngineErrors.WithLabelValues(operation, errorCode).Inc()
}

// RecordEdit records a template edit
func RecordEdit(operation string, success bool) {
	EditOperations.WithLabelValues(operation, status(success)).Inc()
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// SetCacheSize updates the current cache size gauge
func SetCacheSize(size int64) {
	CacheSize.Set(float64(size))
}
