package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/powera/wiki-scripts/internal/engine"
	wikierrors "github.com/powera/wiki-scripts/internal/errors"
	"github.com/powera/wiki-scripts/metrics"
	"github.com/powera/wiki-scripts/tracing"
	"github.com/powera/wiki-scripts/wikitext"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(eng *engine.Engine, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		engine: eng,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	e := h.engine

	switch spec.Method {
	// Render tools
	case "Render":
		register(h, server, tool, spec, e.RenderMCP)
	case "Lede":
		register(h, server, tool, spec, e.LedeMCP)

	// Link tools
	case "Links":
		register(h, server, tool, spec, e.LinksMCP)
	case "WeightedLinks":
		register(h, server, tool, spec, e.WeightedLinksMCP)

	// Template tools
	case "Templates":
		register(h, server, tool, spec, e.TemplatesMCP)
	case "Infobox":
		register(h, server, tool, spec, e.InfoboxMCP)

	// Page tools
	case "BotCheck":
		register(h, server, tool, spec, e.BotCheckMCP)
	case "ArticleClass":
		register(h, server, tool, spec, e.ArticleClassMCP)
	case "Diagnostics":
		register(h, server, tool, spec, e.DiagnosticsMCP)

	// Edit tools
	case "SetParam":
		register(h, server, tool, spec, e.SetParamMCP)
	case "RemoveParam":
		register(h, server, tool, spec, e.RemoveParamMCP)
	case "RemoveTemplates":
		register(h, server, tool, spec, e.RemoveTemplatesMCP)
	case "UpsertTemplate":
		register(h, server, tool, spec, e.UpsertTemplateMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	// The SDK treats a nil DestructiveHint as true, so it is always explicit.
	annotations.DestructiveHint = ptr(spec.Destructive)
	annotations.OpenWorldHint = ptr(spec.OpenWorld)

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the engine method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, wrap(h, spec, method))
}

// wrap returns the typed MCP handler for method. It is split from register
// so handlers can be exercised without a transport.
func wrap[Args, Result any](
	h *HandlerRegistry,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) mcp.ToolHandlerFor[Args, Result] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err = method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			code := wikierrors.Code[wikitext.ErrorCode](err)
			span.SetAttributes(attribute.String("mcp.tool.error_code", code))
			tracing.RecordError(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed", "tool", spec.Name, "error_code", code, "error", err)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	}
}

// recoverPanic recovers from panics in tool handlers and reports them as errors.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error: %v", toolName, rec)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case engine.RenderArgs:
		attrs = append(attrs, "bytes", len(a.Text), "format", a.Format)
	case engine.LedeArgs:
		attrs = append(attrs, "bytes", len(a.Text), "format", a.Format)
	case engine.LinksArgs:
		attrs = append(attrs, "bytes", len(a.Text))
	case engine.TemplatesArgs:
		attrs = append(attrs, "bytes", len(a.Text), "kind", a.Kind)
	case engine.PageArgs:
		attrs = append(attrs, "bytes", len(a.Text))
	case engine.BotCheckArgs:
		attrs = append(attrs, "bytes", len(a.Text), "bot", a.Bot)
	case engine.SetParamArgs:
		attrs = append(attrs, "bytes", len(a.Text), "kind", a.Kind, "key", a.Key, "occurrence", a.Occurrence)
	case engine.RemoveParamArgs:
		attrs = append(attrs, "bytes", len(a.Text), "kind", a.Kind, "key", a.Key, "occurrence", a.Occurrence)
	case engine.RemoveTemplatesArgs:
		attrs = append(attrs, "bytes", len(a.Text), "kind", a.Kind)
	case engine.UpsertTemplateArgs:
		attrs = append(attrs, "bytes", len(a.Text), "kind", a.Kind, "params", len(a.Params))
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case engine.RenderResult:
		attrs = append(attrs, "output_chars", len(r.Output), "cached", r.Cached)
	case engine.LedeResult:
		attrs = append(attrs, "found", r.Found, "output_chars", len(r.Lede))
	case engine.LinksResult:
		attrs = append(attrs, "links", r.Count)
	case engine.WeightedLinksResult:
		attrs = append(attrs, "links", r.Count)
	case engine.TemplatesResult:
		attrs = append(attrs, "templates", r.Count)
	case engine.InfoboxResult:
		attrs = append(attrs, "found", r.Found)
	case engine.BotCheckResult:
		attrs = append(attrs, "allowed", r.Allowed)
	case engine.ArticleClassResult:
		attrs = append(attrs, "class", r.Class)
	case engine.DiagnosticsResult:
		attrs = append(attrs, "tokens", r.Tokens, "malformed_links", r.MalformedLinks, "unhandled", len(r.Unhandled))
	case engine.EditResult:
		attrs = append(attrs, "changed", r.Changed, "output_bytes", len(r.Text))
	}

	h.logger.Info("Tool executed", attrs...)
}
