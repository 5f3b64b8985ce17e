// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively and registered through type-safe handlers
// that add tracing, metrics, panic recovery and logging.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to an engine method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "wikitext_render")
	Name string

	// Method is the engine method name (e.g., "Render")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (render, links, templates, edit, page)
	Category string

	// ReadOnly indicates the tool returns information without producing new page text
	ReadOnly bool

	// Destructive indicates the returned page text may lose content
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ToolsByCategory returns the specs in a category, in definition order.
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
