// Package engine is the service layer over the wikitext core. It validates
// input, caches renders, coalesces identical in-flight work, and records
// logs, metrics and spans for every operation.
package engine

import (
	"context"
	"log/slog"
	"time"

	wikierrors "github.com/powera/wiki-scripts/internal/errors"
	"github.com/powera/wiki-scripts/internal/infra"
	"github.com/powera/wiki-scripts/metrics"
	"github.com/powera/wiki-scripts/tracing"
	"github.com/powera/wiki-scripts/wikitext"
)

// Engine runs wikitext operations. It is safe for concurrent use: every call
// parses its own tree.
type Engine struct {
	Config *Config
	Logger *slog.Logger
	Cache  *infra.Cache[string]
	Dedup  *infra.RequestDeduplicator[string]

	cacheSet bool
}

// Option configures the Engine
type Option func(*Engine)

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// WithConfig replaces the default configuration
func WithConfig(c *Config) Option {
	return func(e *Engine) {
		e.Config = c
	}
}

// WithCache sets a custom render cache; nil disables caching
func WithCache(c *infra.Cache[string]) Option {
	return func(e *Engine) {
		e.Cache = c
		e.cacheSet = true
	}
}

// New creates an engine. Without WithCache, a cache sized from the config is
// created unless the config asks for zero entries.
func New(opts ...Option) *Engine {
	e := &Engine{
		Config: DefaultConfig(),
		Logger: slog.Default(),
		Dedup:  infra.NewRequestDeduplicator[string](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.cacheSet && e.Config.CacheEntries > 0 {
		e.Cache = infra.NewCache[string](e.Config.CacheEntries, e.Config.CacheTTL)
	}
	return e
}

// Close releases resources held by the engine
func (e *Engine) Close() {
	if e.Cache != nil {
		e.Cache.Close()
	}
}

// CacheStats returns the render cache counters, zero when caching is off
func (e *Engine) CacheStats() infra.CacheStats {
	if e.Cache == nil {
		return infra.CacheStats{}
	}
	return e.Cache.Stats()
}

// parse validates and parses page text for op, recording diagnostics.
func (e *Engine) parse(ctx context.Context, op, text string) (*wikitext.Document, error) {
	if err := ValidateText(text, e.Config.MaxInputBytes); err != nil {
		metrics.RecordError(op, wikierrors.Code[wikitext.ErrorCode](err))
		return nil, err
	}

	_, span := tracing.StartSpan(ctx, "wikitext.parse")
	defer span.End()

	metrics.ContentSize.WithLabelValues(op).Observe(float64(len(text)))

	start := time.Now()
	doc, err := wikitext.Parse(text)
	duration := time.Since(start).Seconds()

	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordParse(duration, 0, 0, false, false)
		metrics.RecordError(op, wikierrors.Code[wikitext.ErrorCode](err))
		e.Logger.Warn("Parse failed", "operation", op, "bytes", len(text), "error", err)
		return nil, err
	}

	d := doc.Diagnostics
	tracing.AddDocumentAttributes(span, len(text), d.Tokens, d.MalformedLinks)
	metrics.RecordParse(duration, d.Tokens, d.MalformedLinks, len(d.Unhandled) > 0, true)

	if d.MalformedLinks > 0 {
		e.Logger.Warn("Malformed links closed at paragraph break",
			"operation", op,
			"count", d.MalformedLinks)
	}
	if len(d.Unhandled) > 0 {
		e.Logger.Debug("Unhandled characters",
			"operation", op,
			"chars", string(d.Unhandled))
	}
	return doc, nil
}

// render produces format from text, consulting the cache and coalescing
// identical concurrent requests. Only successful renders are cached.
func (e *Engine) render(ctx context.Context, op, text string, format Format) (string, bool, error) {
	key := infra.Key("render", string(format), text)

	if e.Cache != nil {
		if out, ok := e.Cache.Get(key); ok {
			metrics.RecordCacheAccess(true)
			return out, true, nil
		}
		metrics.RecordCacheAccess(false)
	}

	out, shared, err := e.Dedup.Do(ctx, key, func() (string, error) {
		doc, err := e.parse(ctx, op, text)
		if err != nil {
			return "", err
		}
		return e.renderTree(ctx, op, doc, format)
	})
	if shared {
		metrics.DedupShared.Inc()
	}
	if err != nil {
		return "", false, err
	}

	if e.Cache != nil {
		e.Cache.Set(key, out)
		metrics.SetCacheSize(e.Cache.Size())
	}
	return out, false, nil
}

// renderTree renders an already parsed block.
func (e *Engine) renderTree(ctx context.Context, op string, b wikitext.Block, format Format) (string, error) {
	_, span := tracing.StartSpan(ctx, "wikitext.render")
	defer span.End()
	tracing.AddRenderAttributes(span, string(format), false)

	start := time.Now()
	var out string
	var err error
	switch format {
	case FormatNormalized:
		out = wikitext.Normalized(b)
	case FormatText:
		out = wikitext.PlainText(b)
	case FormatLatex:
		out, err = wikitext.Latex(b)
	default:
		out = wikitext.Wiki(b)
	}
	metrics.RecordRender(string(format), time.Since(start).Seconds(), err == nil)

	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordError(op, wikierrors.Code[wikitext.ErrorCode](err))
		return "", err
	}
	return out, nil
}

// edit parses text, applies fn, and serializes the result when fn changed it.
func (e *Engine) edit(ctx context.Context, op, text string, fn func(*wikitext.Document) (bool, error)) (EditResult, error) {
	doc, err := e.parse(ctx, op, text)
	if err != nil {
		metrics.RecordEdit(op, false)
		return EditResult{}, err
	}

	changed, err := fn(doc)
	if err != nil {
		metrics.RecordEdit(op, false)
		metrics.RecordError(op, wikierrors.Code[wikitext.ErrorCode](err))
		return EditResult{}, err
	}
	metrics.RecordEdit(op, true)

	if !changed {
		return EditResult{Text: text}, nil
	}
	return EditResult{Text: wikitext.Wiki(doc), Changed: true}, nil
}
